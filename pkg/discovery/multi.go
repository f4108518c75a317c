// Package discovery pkg/discovery/multi.go
package discovery

import (
	"context"

	"github.com/ringview/ringview/pkg/mgmt"
)

// MultiProvider merges the endpoint lists of several providers. The
// consumer deduplicates by endpoint key, so overlap is harmless.
type MultiProvider struct {
	providers []Provider
}

// NewMulti combines providers.
func NewMulti(providers ...Provider) *MultiProvider {
	return &MultiProvider{providers: providers}
}

// Endpoints implements Provider. A failing member fails the whole read;
// partial membership views would silently shrink the cluster.
func (p *MultiProvider) Endpoints(ctx context.Context) ([]mgmt.Endpoint, error) {
	var out []mgmt.Endpoint

	for _, provider := range p.providers {
		endpoints, err := provider.Endpoints(ctx)
		if err != nil {
			return nil, err
		}

		out = append(out, endpoints...)
	}

	return out, nil
}
