package alerts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ringview/ringview/pkg/metrics"
)

const webhookTimeout = 10 * time.Second

// Level maps a cluster status to an alert severity.
type Level string

const (
	Info    Level = "info"
	Warning Level = "warning"
	Error   Level = "error"
)

// Alert is the payload posted to webhook receivers.
type Alert struct {
	Level     Level          `json:"level"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Status    metrics.Status `json:"status"`
	Timestamp string         `json:"timestamp"`
	Details   map[string]any `json:"details,omitempty"`
}

// Header is a custom HTTP header attached to webhook posts.
type Header struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// WebhookConfig configures a single webhook receiver.
type WebhookConfig struct {
	Enabled  bool          `json:"enabled"`
	URL      string        `json:"url"`
	Headers  []Header      `json:"headers,omitempty"`
	Cooldown time.Duration `json:"cooldown,omitempty"`
}

func (w *WebhookConfig) UnmarshalJSON(data []byte) error {
	type Alias WebhookConfig

	aux := &struct {
		Cooldown string `json:"cooldown"`
		*Alias
	}{
		Alias: (*Alias)(w),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	if aux.Cooldown != "" {
		duration, err := time.ParseDuration(aux.Cooldown)
		if err != nil {
			return fmt.Errorf("invalid cooldown format: %w", err)
		}

		w.Cooldown = duration
	}

	return nil
}

// WebhookAlerter posts alerts to an HTTP endpoint, suppressing repeats of
// the same title within the configured cooldown.
type WebhookAlerter struct {
	config    WebhookConfig
	client    *http.Client
	mu        sync.Mutex
	lastFired map[string]time.Time
}

// NewWebhookAlerter creates an alerter for one receiver.
func NewWebhookAlerter(config WebhookConfig) *WebhookAlerter {
	return &WebhookAlerter{
		config:    config,
		client:    &http.Client{Timeout: webhookTimeout},
		lastFired: make(map[string]time.Time),
	}
}

// IsEnabled implements AlertService.
func (w *WebhookAlerter) IsEnabled() bool {
	return w.config.Enabled
}

// Alert implements AlertService.
func (w *WebhookAlerter) Alert(ctx context.Context, alert *Alert) error {
	if !w.IsEnabled() {
		return ErrDisabled
	}

	if err := w.checkCooldown(alert.Title); err != nil {
		return err
	}

	if alert.Timestamp == "" {
		alert.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	payload, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("failed to marshal alert: %w", err)
	}

	return w.send(ctx, payload)
}

func (w *WebhookAlerter) checkCooldown(title string) error {
	if w.config.Cooldown <= 0 {
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	last, seen := w.lastFired[title]
	if seen && time.Since(last) < w.config.Cooldown {
		log.Printf("Alert '%s' is within cooldown period, skipping", title)
		return ErrCooldown
	}

	w.lastFired[title] = time.Now()

	return nil
}

func (w *WebhookAlerter) send(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.config.URL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	w.setHeaders(req)

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Printf("failed to close response body: %v", err)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))

		return fmt.Errorf("%w: status=%d body=%s", ErrWebhookStatus, resp.StatusCode, string(body))
	}

	return nil
}

func (w *WebhookAlerter) setHeaders(req *http.Request) {
	hasContentType := false

	for _, header := range w.config.Headers {
		if strings.EqualFold(header.Key, "content-type") {
			hasContentType = true
		}

		req.Header.Set(header.Key, header.Value)
	}

	if !hasContentType {
		req.Header.Set("Content-Type", "application/json")
	}
}
