package alerts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ringview/ringview/pkg/metrics"
)

func TestWebhookAlerter_PostsAlert(t *testing.T) {
	var received Alert

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	alerter := NewWebhookAlerter(WebhookConfig{
		Enabled: true,
		URL:     server.URL,
		Headers: []Header{{Key: "X-Api-Key", Value: "secret"}},
	})

	err := alerter.Alert(context.Background(), &Alert{
		Level:  Error,
		Title:  "Cluster critical",
		Status: metrics.StatusCritical,
	})
	require.NoError(t, err)

	assert.Equal(t, "Cluster critical", received.Title)
	assert.Equal(t, metrics.StatusCritical, received.Status)
	assert.NotEmpty(t, received.Timestamp)
}

func TestWebhookAlerter_Disabled(t *testing.T) {
	alerter := NewWebhookAlerter(WebhookConfig{Enabled: false})

	err := alerter.Alert(context.Background(), &Alert{Title: "ignored"})
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestWebhookAlerter_Cooldown(t *testing.T) {
	calls := 0

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	alerter := NewWebhookAlerter(WebhookConfig{
		Enabled:  true,
		URL:      server.URL,
		Cooldown: time.Hour,
	})

	require.NoError(t, alerter.Alert(context.Background(), &Alert{Title: "repeat"}))

	err := alerter.Alert(context.Background(), &Alert{Title: "repeat"})
	assert.ErrorIs(t, err, ErrCooldown)
	assert.Equal(t, 1, calls)
}

func TestWebhookAlerter_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer server.Close()

	alerter := NewWebhookAlerter(WebhookConfig{Enabled: true, URL: server.URL})

	err := alerter.Alert(context.Background(), &Alert{Title: "rejected"})
	assert.ErrorIs(t, err, ErrWebhookStatus)
}

type recordingAlerter struct {
	alerts []*Alert
	err    error
}

func (r *recordingAlerter) Alert(_ context.Context, alert *Alert) error {
	r.alerts = append(r.alerts, alert)
	return r.err
}

func (*recordingAlerter) IsEnabled() bool { return true }

func assessment(status metrics.Status, score int) *metrics.HealthAssessment {
	return &metrics.HealthAssessment{Status: status, Score: &score}
}

func TestTracker_FiresOnDegradation(t *testing.T) {
	sink := &recordingAlerter{}
	tracker := NewTracker(sink)

	alert := tracker.Observe(context.Background(), assessment(metrics.StatusCritical, 40))
	require.NotNil(t, alert)

	assert.Equal(t, Error, alert.Level)
	assert.Equal(t, metrics.StatusCritical, alert.Status)
	require.Len(t, sink.alerts, 1)
	assert.Equal(t, 40, sink.alerts[0].Details["score"])
}

func TestTracker_SilentOnSteadyState(t *testing.T) {
	sink := &recordingAlerter{}
	tracker := NewTracker(sink)

	require.NotNil(t, tracker.Observe(context.Background(), assessment(metrics.StatusDegraded, 55)))
	assert.Nil(t, tracker.Observe(context.Background(), assessment(metrics.StatusDegraded, 50)))
	assert.Len(t, sink.alerts, 1)
}

func TestTracker_FiresRecovery(t *testing.T) {
	sink := &recordingAlerter{}
	tracker := NewTracker(sink)

	tracker.Observe(context.Background(), assessment(metrics.StatusCritical, 30))

	alert := tracker.Observe(context.Background(), assessment(metrics.StatusHealthy, 100))
	require.NotNil(t, alert)

	assert.Equal(t, Info, alert.Level)
	assert.Contains(t, alert.Message, "recovered")
}

func TestTracker_NoRecoveryAlertFromUnknown(t *testing.T) {
	sink := &recordingAlerter{}
	tracker := NewTracker(sink)

	// First healthy observation after startup is not a recovery.
	assert.Nil(t, tracker.Observe(context.Background(), assessment(metrics.StatusHealthy, 100)))
	assert.Empty(t, sink.alerts)
}

func TestTracker_DeliveryErrorDoesNotBlockOthers(t *testing.T) {
	failing := &recordingAlerter{err: errors.New("boom")}
	working := &recordingAlerter{}
	tracker := NewTracker(failing, working)

	tracker.Observe(context.Background(), assessment(metrics.StatusDegraded, 55))

	assert.Len(t, failing.alerts, 1)
	assert.Len(t, working.alerts, 1)
}
