// Package discovery pkg/discovery/static.go
package discovery

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/ringview/ringview/pkg/mgmt"
)

// StaticProvider serves a fixed endpoint list parsed once at construction.
type StaticProvider struct {
	endpoints []mgmt.Endpoint
}

// NewStatic parses "host:port" entries into a fixed provider.
func NewStatic(addrs []string) (*StaticProvider, error) {
	endpoints, err := ParseEndpoints(addrs)
	if err != nil {
		return nil, err
	}

	return &StaticProvider{endpoints: endpoints}, nil
}

// Endpoints implements Provider.
func (p *StaticProvider) Endpoints(_ context.Context) ([]mgmt.Endpoint, error) {
	out := make([]mgmt.Endpoint, len(p.endpoints))
	copy(out, p.endpoints)

	return out, nil
}

// ParseEndpoints converts "host:port" strings to endpoints, rejecting
// malformed entries up front rather than at poll time.
func ParseEndpoints(addrs []string) ([]mgmt.Endpoint, error) {
	endpoints := make([]mgmt.Endpoint, 0, len(addrs))

	for _, addr := range addrs {
		host, portStr, err := net.SplitHostPort(addr)
		if err != nil {
			return nil, fmt.Errorf("invalid endpoint %q: %w", addr, err)
		}

		port, err := strconv.Atoi(portStr)
		if err != nil || port <= 0 || port > 65535 {
			return nil, fmt.Errorf("invalid endpoint %q: bad port", addr)
		}

		endpoints = append(endpoints, mgmt.Endpoint{Host: host, Port: port})
	}

	return endpoints, nil
}
