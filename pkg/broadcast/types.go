// Package broadcast distributes poll-cycle results to WebSocket
// subscribers. The poll loop lives here too: every tick extracts the
// cluster, aggregates, scores, and fans the results out by topic.
package broadcast

import (
	"github.com/ringview/ringview/pkg/health"
	"github.com/ringview/ringview/pkg/metrics"
)

// Topics a subscriber can select.
const (
	TopicMetrics    = "metrics"
	TopicOperations = "operations"
	TopicAlerts     = "alerts"
)

// Envelope types on the wire.
const (
	TypeMetricsUpdate    = "metrics_update"
	TypeOperationsUpdate = "operations_update"
	TypeAlert            = "alert"

	TypeSubscribe   = "subscribe"
	TypeUnsubscribe = "unsubscribe"
)

// Envelope wraps every outbound frame.
type Envelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// ControlMessage is an inbound subscribe/unsubscribe frame.
type ControlMessage struct {
	Type     string   `json:"type"`
	Channels []string `json:"channels"`
}

// MetricsPayload is the data of a metrics_update frame.
type MetricsPayload struct {
	Cluster metrics.AggregatedMetrics `json:"cluster"`
	Health  metrics.HealthAssessment  `json:"health"`
	Nodes   []metrics.NodeMetrics     `json:"nodes"`
}

// PoolActivity is one thread pool's live task counts with its label.
type PoolActivity struct {
	Name    string            `json:"name"`
	Active  metrics.Float     `json:"active"`
	Pending metrics.Float     `json:"pending"`
	Status  health.PoolStatus `json:"status"`
}

// NodeOperations summarizes what one node is busy with: compaction
// backlog, hint backlog, and its busiest thread pool.
type NodeOperations struct {
	NodeID            string                  `json:"node_id"`
	Reachable         bool                    `json:"reachable"`
	CompactionPending metrics.Float           `json:"compaction_pending"`
	CompactionStatus  health.CompactionStatus `json:"compaction_status"`
	HintsTotal        metrics.Float           `json:"hints_total"`
	HintsStatus       health.HintsStatus      `json:"hints_status"`
	Pools             []PoolActivity          `json:"pools"`
	BusiestPool       string                  `json:"busiest_pool,omitempty"`
}

// OperationsPayload is the data of an operations_update frame.
type OperationsPayload struct {
	Nodes []NodeOperations `json:"nodes"`
}

func validTopic(topic string) bool {
	switch topic {
	case TopicMetrics, TopicOperations, TopicAlerts:
		return true
	default:
		return false
	}
}
