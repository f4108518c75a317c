// Package broadcast pkg/broadcast/source.go
package broadcast

import (
	"net"
	"time"
)

const defaultSourceTimeout = 2 * time.Second

// TCPSource reports the upstream source connected while a TCP dial to its
// address succeeds. The check runs at most once per tick, so a short dial
// timeout keeps the poll loop responsive.
type TCPSource struct {
	addr    string
	timeout time.Duration
}

// NewTCPSource creates a dial-based source gate.
func NewTCPSource(addr string, timeout time.Duration) *TCPSource {
	if timeout <= 0 {
		timeout = defaultSourceTimeout
	}

	return &TCPSource{addr: addr, timeout: timeout}
}

// Connected implements Source.
func (s *TCPSource) Connected() bool {
	conn, err := net.DialTimeout("tcp", s.addr, s.timeout)
	if err != nil {
		return false
	}

	_ = conn.Close()

	return true
}

// AlwaysConnected is a Source for deployments without an upstream gate.
type AlwaysConnected struct{}

// Connected implements Source.
func (AlwaysConnected) Connected() bool { return true }
