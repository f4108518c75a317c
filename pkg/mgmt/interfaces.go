// Package mgmt pkg/mgmt/interfaces.go
package mgmt

import (
	"context"
	"time"
)

//go:generate mockgen -destination=mock_mgmt.go -package=mgmt github.com/ringview/ringview/pkg/mgmt AttributeReader,Prober

// AttributeReader reads one named attribute from a node's management
// interface. Each read is independently fallible and carries its own
// context deadline.
type AttributeReader interface {
	// ReadAttribute reads attribute attr of the named managed object.
	ReadAttribute(ctx context.Context, object, attr string) (Value, error)
}

// Prober verifies basic network reachability of a host:port before any
// protocol negotiation is attempted.
type Prober interface {
	Probe(ctx context.Context, host string, port int, timeout time.Duration) error
}

// ReaderFactory builds an AttributeReader for one candidate service
// address. Injected into the registry so negotiation is testable without a
// live agent.
type ReaderFactory func(baseURL string) AttributeReader
