package config

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ringview/ringview/pkg/alerts"
)

// Duration wraps time.Duration for JSON configs: accepts either a
// duration string ("5s") or nanoseconds as a number.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		// parse numeric as nanoseconds
		*d = Duration(time.Duration(value))
		return nil
	case string:
		dur, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}

		*d = Duration(dur)

		return nil
	default:
		return errInvalidDuration
	}
}

// ServerConfig configures the ringview monitoring server.
type ServerConfig struct {
	ListenAddr   string   `json:"listen_addr"`   // e.g., :8080
	PollInterval Duration `json:"poll_interval"` // how often to poll the cluster

	// Cluster membership: a fixed list, a file re-read every cycle, or both.
	Nodes     []string `json:"nodes,omitempty"`
	NodesFile string   `json:"nodes_file,omitempty"`

	// Management endpoint negotiation.
	CandidatePaths []string `json:"candidate_paths,omitempty"`
	ProbeTimeout   Duration `json:"probe_timeout,omitempty"`
	ConnectTimeout Duration `json:"connect_timeout,omitempty"`

	// Extraction budgets.
	ReadTimeout Duration `json:"read_timeout,omitempty"`
	NodeTimeout Duration `json:"node_timeout,omitempty"`

	// Upstream gate; empty means always connected.
	SourceAddr string `json:"source_addr,omitempty"`

	// API limits. Zero RateRPS disables rate limiting.
	RateRPS   float64 `json:"rate_rps,omitempty"`
	RateBurst int     `json:"rate_burst,omitempty"`

	Webhooks []alerts.WebhookConfig `json:"webhooks,omitempty"`
}

// Validate implements Validator.
func (c *ServerConfig) Validate() error {
	if c.ListenAddr == "" {
		return errNoListenAddr
	}

	if len(c.Nodes) == 0 && c.NodesFile == "" {
		return errNoNodes
	}

	return nil
}
