// Package collector pkg/collector/interfaces.go
package collector

import (
	"context"

	"github.com/ringview/ringview/pkg/mgmt"
)

//go:generate mockgen -destination=mock_collector.go -package=collector github.com/ringview/ringview/pkg/collector AttributeSource,SessionConnector

// AttributeSource is what extraction needs from a session: independently
// fallible, deadline-carrying attribute reads. *mgmt.Session satisfies it.
type AttributeSource interface {
	ReadAttribute(ctx context.Context, object, attr string) (mgmt.Value, error)
}

// SessionConnector hands out sessions per endpoint. *mgmt.Registry
// satisfies it.
type SessionConnector interface {
	Connect(ctx context.Context, endpoint mgmt.Endpoint) *mgmt.SessionResult
}
