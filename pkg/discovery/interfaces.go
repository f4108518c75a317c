// Package discovery supplies the list of cluster endpoints to poll. The
// monitoring core re-reads the provider every cycle so cluster membership
// changes take effect without a restart.
package discovery

import (
	"context"

	"github.com/ringview/ringview/pkg/mgmt"
)

//go:generate mockgen -destination=mock_discovery.go -package=discovery github.com/ringview/ringview/pkg/discovery Provider

// Provider returns the current set of endpoints to poll.
type Provider interface {
	Endpoints(ctx context.Context) ([]mgmt.Endpoint, error)
}
