// Package alerts pkg/alerts/interfaces.go

//go:generate mockgen -destination=mock_alerts.go -package=alerts github.com/ringview/ringview/pkg/alerts AlertService

package alerts

import (
	"context"
)

// AlertService defines the interface for alert sinks.
type AlertService interface {
	// Alert sends an alert through the service
	Alert(ctx context.Context, alert *Alert) error

	// IsEnabled returns whether the alerter is enabled
	IsEnabled() bool
}
