// Package mgmt pkg/mgmt/types.go
package mgmt

import "fmt"

// Endpoint identifies one node's management interface. Immutable once
// created; Key is the identity used by the session registry.
type Endpoint struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// Key returns the host:port identity of the endpoint.
func (e Endpoint) Key() string {
	return fmt.Sprintf("%s:%d", e.Host, e.Port)
}

// SessionMode says how much of the management interface is usable.
type SessionMode string

const (
	// ModeFull means the protocol session answers attribute reads.
	ModeFull SessionMode = "full"
	// ModeBasic means the node is reachable but no protocol session could
	// be negotiated; callers must fall back to the command interface.
	ModeBasic SessionMode = "basic"
)

// SessionState tracks session lifecycle. Transitions are monotonic forward
// except for an explicit reset; a Closed session never reappears.
type SessionState int

const (
	StateDisconnected SessionState = iota
	StateConnectivityVerified
	StateSessionEstablished
	StateDegraded
	StateClosed
)

func (s SessionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnectivityVerified:
		return "connectivity_verified"
	case StateSessionEstablished:
		return "session_established"
	case StateDegraded:
		return "degraded"
	case StateClosed:
		return "closed"
	default:
		return "invalid"
	}
}

// ValueKind tags the shape of a remote attribute value.
type ValueKind int

const (
	// KindAbsent means the attribute could not be read.
	KindAbsent ValueKind = iota
	// KindNumber is a plain numeric value.
	KindNumber
	// KindComposite is a structured record with named numeric sub-fields,
	// e.g. a memory usage record with used/max/committed.
	KindComposite
)

// Value is the tagged result of one attribute read. Conversion happens per
// kind; callers never probe the runtime type of a raw payload.
type Value struct {
	Kind      ValueKind
	Num       float64
	Composite map[string]float64
}

// NumberValue builds a numeric Value.
func NumberValue(v float64) Value {
	return Value{Kind: KindNumber, Num: v}
}

// CompositeValue builds a composite Value.
func CompositeValue(fields map[string]float64) Value {
	return Value{Kind: KindComposite, Composite: fields}
}

// AbsentValue is the zero Value.
func AbsentValue() Value {
	return Value{}
}

// Number returns the numeric payload of a KindNumber value.
func (v Value) Number() (float64, bool) {
	if v.Kind != KindNumber {
		return 0, false
	}

	return v.Num, true
}

// Field returns a named sub-field of a KindComposite value. Fields are
// addressed by name, never by position.
func (v Value) Field(name string) (float64, bool) {
	if v.Kind != KindComposite {
		return 0, false
	}

	f, ok := v.Composite[name]

	return f, ok
}
