package alerts

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/ringview/ringview/pkg/metrics"
)

// Tracker watches cluster health transitions and fires alerts when the
// cluster degrades or recovers. Repeated assessments with the same status
// produce no traffic; only edges do.
type Tracker struct {
	alerters []AlertService

	mu   sync.Mutex
	last metrics.Status
}

// NewTracker creates a tracker fanning out to the given alerters.
func NewTracker(alerters ...AlertService) *Tracker {
	return &Tracker{
		alerters: alerters,
		last:     metrics.StatusUnknown,
	}
}

// Observe records an assessment and fires alerts on status transitions.
// It returns the alert it fired, or nil when the status did not change
// in an alert-worthy way.
func (t *Tracker) Observe(ctx context.Context, assessment *metrics.HealthAssessment) *Alert {
	t.mu.Lock()
	prev := t.last
	t.last = assessment.Status
	t.mu.Unlock()

	if assessment.Status == prev {
		return nil
	}

	alert := t.buildAlert(prev, assessment)
	if alert == nil {
		return nil
	}

	for _, a := range t.alerters {
		if !a.IsEnabled() {
			continue
		}

		if err := a.Alert(ctx, alert); err != nil {
			log.Printf("Failed to deliver alert '%s': %v", alert.Title, err)
		}
	}

	return alert
}

func (t *Tracker) buildAlert(prev metrics.Status, assessment *metrics.HealthAssessment) *Alert {
	details := map[string]any{
		"previous_status": string(prev),
		"issues":          assessment.Issues,
	}
	if assessment.Score != nil {
		details["score"] = *assessment.Score
	}

	switch assessment.Status {
	case metrics.StatusCritical, metrics.StatusDegraded:
		return &Alert{
			Level:   levelFor(assessment.Status),
			Title:   fmt.Sprintf("Cluster %s", assessment.Status),
			Message: fmt.Sprintf("Cluster health changed from %s to %s", prev, assessment.Status),
			Status:  assessment.Status,
			Details: details,
		}
	case metrics.StatusHealthy, metrics.StatusWarning:
		// Recovery is only interesting when leaving a bad state.
		if prev != metrics.StatusCritical && prev != metrics.StatusDegraded {
			return nil
		}

		return &Alert{
			Level:   Info,
			Title:   "Cluster recovered",
			Message: fmt.Sprintf("Cluster health recovered from %s to %s", prev, assessment.Status),
			Status:  assessment.Status,
			Details: details,
		}
	default:
		return nil
	}
}

func levelFor(status metrics.Status) Level {
	if status == metrics.StatusCritical {
		return Error
	}

	return Warning
}
