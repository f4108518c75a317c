// Package mgmt pkg/mgmt/session.go
package mgmt

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
)

const (
	// Verification read target: cheap and always present on any JVM.
	verifyObject = "java.lang:type=Runtime"
	verifyAttr   = "Uptime"

	defaultConnectTimeout = 10 * time.Second
)

// DefaultCandidatePaths are the candidate service address forms tried in
// order during negotiation. The bridge agent can be mounted at different
// roots depending on how it was deployed.
var DefaultCandidatePaths = []string{
	"/jolokia",
	"/jolokia-war",
	"/monitoring/jolokia",
}

// Session is one negotiated management session. One per endpoint, cached in
// the Registry; not shared across endpoints.
type Session struct {
	endpoint Endpoint
	mode     SessionMode
	reader   AttributeReader

	mu    sync.RWMutex
	state SessionState
}

// Endpoint returns the endpoint the session belongs to.
func (s *Session) Endpoint() Endpoint {
	return s.endpoint
}

// Mode returns the negotiated mode.
func (s *Session) Mode() SessionMode {
	return s.mode
}

// State returns the current lifecycle state.
func (s *Session) State() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state
}

// ReadAttribute reads one attribute through the session. Basic-mode
// sessions cannot answer queries; callers must use the command fallback.
func (s *Session) ReadAttribute(ctx context.Context, object, attr string) (Value, error) {
	s.mu.RLock()
	state := s.state
	s.mu.RUnlock()

	if state == StateClosed {
		return AbsentValue(), ErrSessionClosed
	}

	if s.mode != ModeFull || s.reader == nil {
		return AbsentValue(), ErrSessionBasic
	}

	return s.reader.ReadAttribute(ctx, object, attr)
}

func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = StateClosed
}

// SessionResult is the outcome of a connect attempt.
type SessionResult struct {
	Session *Session
	Mode    SessionMode
	Err     error
}

// RegistryOption customizes a Registry.
type RegistryOption func(*Registry)

// WithProber overrides the reachability probe strategy.
func WithProber(p Prober) RegistryOption {
	return func(r *Registry) {
		r.prober = p
	}
}

// WithReaderFactory overrides how attribute readers are built per candidate
// address.
func WithReaderFactory(f ReaderFactory) RegistryOption {
	return func(r *Registry) {
		r.factory = f
	}
}

// WithCandidatePaths overrides the candidate address forms.
func WithCandidatePaths(paths []string) RegistryOption {
	return func(r *Registry) {
		if len(paths) > 0 {
			r.candidates = paths
		}
	}
}

// WithTimeouts overrides the probe and negotiation timeouts.
func WithTimeouts(probe, connect time.Duration) RegistryOption {
	return func(r *Registry) {
		if probe > 0 {
			r.probeTimeout = probe
		}

		if connect > 0 {
			r.connectTimeout = connect
		}
	}
}

// Registry owns the per-endpoint session cache. It is the only shared
// mutable state across concurrent extraction calls: connects for the same
// endpoint serialize on a per-endpoint lock while distinct endpoints
// proceed fully in parallel.
type Registry struct {
	prober         Prober
	factory        ReaderFactory
	candidates     []string
	probeTimeout   time.Duration
	connectTimeout time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
	locks    map[string]*sync.Mutex
}

// NewRegistry creates a session registry with TCP probing and the HTTP
// bridge reader by default.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		prober:         TCPProber{},
		factory:        NewHTTPReader,
		candidates:     DefaultCandidatePaths,
		probeTimeout:   defaultProbeTimeout,
		connectTimeout: defaultConnectTimeout,
		sessions:       make(map[string]*Session),
		locks:          make(map[string]*sync.Mutex),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// endpointLock returns the lock serializing connects for one endpoint key.
func (r *Registry) endpointLock(key string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.locks[key]
	if !ok {
		l = &sync.Mutex{}
		r.locks[key] = l
	}

	return l
}

// Connect negotiates (or returns the cached) session for an endpoint.
//
// The flow is: reachability probe first, fail fast on transport failure;
// then candidate addresses in order, each confirmed with a verification
// read so an open socket that cannot answer queries does not count; if all
// candidates fail but the probe succeeded, the session is recorded in basic
// mode so the caller can use the command fallback.
func (r *Registry) Connect(ctx context.Context, endpoint Endpoint) *SessionResult {
	if endpoint.Host == "" || endpoint.Port <= 0 {
		return &SessionResult{Err: fmt.Errorf("%w: %q", ErrInvalidEndpoint, endpoint.Key())}
	}

	key := endpoint.Key()

	lock := r.endpointLock(key)
	lock.Lock()
	defer lock.Unlock()

	r.mu.Lock()
	cached, ok := r.sessions[key]
	r.mu.Unlock()

	if ok && cached.State() != StateClosed {
		return &SessionResult{Session: cached, Mode: cached.Mode()}
	}

	if err := r.prober.Probe(ctx, endpoint.Host, endpoint.Port, r.probeTimeout); err != nil {
		return &SessionResult{Err: err}
	}

	session := r.negotiate(ctx, endpoint)

	r.mu.Lock()
	r.sessions[key] = session
	r.mu.Unlock()

	return &SessionResult{Session: session, Mode: session.Mode()}
}

// negotiate walks the candidate addresses; the endpoint is already known
// reachable at this point.
func (r *Registry) negotiate(ctx context.Context, endpoint Endpoint) *Session {
	for _, path := range r.candidates {
		baseURL := fmt.Sprintf("http://%s:%d%s", endpoint.Host, endpoint.Port, path)
		reader := r.factory(baseURL)

		verifyCtx, cancel := context.WithTimeout(ctx, r.connectTimeout)
		_, err := reader.ReadAttribute(verifyCtx, verifyObject, verifyAttr)

		cancel()

		if err != nil {
			log.Printf("Candidate %s failed verification for %s: %v", path, endpoint.Key(), err)
			continue
		}

		log.Printf("Established management session for %s via %s", endpoint.Key(), path)

		return &Session{
			endpoint: endpoint,
			mode:     ModeFull,
			reader:   reader,
			state:    StateSessionEstablished,
		}
	}

	log.Printf("All candidate addresses failed for %s, downgrading to basic mode", endpoint.Key())

	return &Session{
		endpoint: endpoint,
		mode:     ModeBasic,
		state:    StateDegraded,
	}
}

// Get returns the cached session for an endpoint, if any.
func (r *Registry) Get(endpoint Endpoint) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[endpoint.Key()]

	return s, ok
}

// Close closes and evicts one endpoint's session. A later Connect
// negotiates from scratch; the closed session itself never comes back.
func (r *Registry) Close(endpoint Endpoint) {
	key := endpoint.Key()

	r.mu.Lock()
	session, ok := r.sessions[key]
	delete(r.sessions, key)
	r.mu.Unlock()

	if ok {
		session.close()
	}
}

// CloseAll closes every cached session, for process shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.sessions))

	for key, s := range r.sessions {
		sessions = append(sessions, s)
		delete(r.sessions, key)
	}
	r.mu.Unlock()

	for _, s := range sessions {
		s.close()
	}
}
