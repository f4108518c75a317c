// Package metrics pkg/metrics/types.go
package metrics

import "time"

// LatencyGroup holds one request class's latency statistics. Values are in
// milliseconds after extraction; Count and OneMinuteRate are unitless. The
// group is populated all-or-nothing: a partially failed set of reads leaves
// every field absent so mixed units never reach aggregation.
type LatencyGroup struct {
	Mean          Float `json:"mean_ms"`
	P95           Float `json:"p95_ms"`
	P99           Float `json:"p99_ms"`
	Count         Float `json:"count"`
	OneMinuteRate Float `json:"one_minute_rate"`
}

// Valid reports whether the group was fully extracted.
func (g LatencyGroup) Valid() bool {
	return g.Mean.Valid() && g.P95.Valid() && g.P99.Valid() && g.Count.Valid() && g.OneMinuteRate.Valid()
}

// Performance groups per-request-class latency stats.
type Performance struct {
	Read  LatencyGroup `json:"read"`
	Write LatencyGroup `json:"write"`
	Range LatencyGroup `json:"range"`
}

// ErrorCounts are cumulative error counters reported by a node.
type ErrorCounts struct {
	ReadTimeouts      Float `json:"read_timeouts"`
	WriteTimeouts     Float `json:"write_timeouts"`
	ReadUnavailables  Float `json:"read_unavailables"`
	WriteUnavailables Float `json:"write_unavailables"`
	ReadFailures      Float `json:"read_failures"`
	WriteFailures     Float `json:"write_failures"`
	StorageExceptions Float `json:"storage_exceptions"`
}

// Resources holds storage and JVM resource usage.
type Resources struct {
	StorageLoad      Float  `json:"storage_load_bytes"`
	StorageLoadHuman string `json:"storage_load,omitempty"`

	HeapUsed      Float  `json:"heap_used_bytes"`
	HeapMax       Float  `json:"heap_max_bytes"`
	HeapCommitted Float  `json:"heap_committed_bytes"`
	HeapPercent   Float  `json:"heap_percent"`
	HeapUsedHuman string `json:"heap_used,omitempty"`

	NonHeapUsed      Float  `json:"non_heap_used_bytes"`
	NonHeapCommitted Float  `json:"non_heap_committed_bytes"`
	NonHeapUsedHuman string `json:"non_heap_used,omitempty"`

	GCYoungCount  Float `json:"gc_young_count"`
	GCYoungTimeMs Float `json:"gc_young_time_ms"`
	GCOldCount    Float `json:"gc_old_count"`
	GCOldTimeMs   Float `json:"gc_old_time_ms"`
}

// CacheStats holds key and row cache statistics.
type CacheStats struct {
	KeyHitRate  Float `json:"key_hit_rate"`
	KeyRequests Float `json:"key_requests"`
	RowHitRate  Float `json:"row_hit_rate"`
	RowRequests Float `json:"row_requests"`
}

// PoolStats holds one thread pool's task counters.
type PoolStats struct {
	Active    Float `json:"active"`
	Pending   Float `json:"pending"`
	Completed Float `json:"completed"`
}

// ThreadPools covers the pools the catalog monitors.
type ThreadPools struct {
	Mutation        PoolStats `json:"mutation"`
	Read            PoolStats `json:"read"`
	Compaction      PoolStats `json:"compaction"`
	NativeTransport PoolStats `json:"native_transport"`
}

// CompactionStats holds compaction backlog counters.
type CompactionStats struct {
	PendingTasks   Float `json:"pending_tasks"`
	CompletedTasks Float `json:"completed_tasks"`
}

// HintStats holds hinted-handoff counters.
type HintStats struct {
	Total Float `json:"total"`
}

// NodeMetrics is one node's sample for a single poll cycle. Every leaf is
// optional; nothing here is retained across cycles.
type NodeMetrics struct {
	NodeID    string    `json:"node_id"`
	Timestamp time.Time `json:"timestamp"`
	Reachable bool      `json:"reachable"`
	Mode      string    `json:"mode,omitempty"`

	Performance Performance     `json:"performance"`
	Errors      ErrorCounts     `json:"errors"`
	Resources   Resources       `json:"resources"`
	Cache       CacheStats      `json:"cache"`
	ThreadPools ThreadPools     `json:"thread_pools"`
	Compaction  CompactionStats `json:"compaction"`
	Hints       HintStats       `json:"hints"`
}

// AggregatedCache is the cluster-wide cache view. Hits are derived per node
// as round(hitRate*requests) before summing so the aggregate hit rate is
// request-weighted rather than a naive average.
type AggregatedCache struct {
	KeyHitRate  Float `json:"key_hit_rate"`
	KeyHits     Float `json:"key_hits"`
	KeyRequests Float `json:"key_requests"`
	RowHitRate  Float `json:"row_hit_rate"`
	RowHits     Float `json:"row_hits"`
	RowRequests Float `json:"row_requests"`
}

// AggregatedLatency is a cluster-wide latency view for one request class:
// averages across contributing nodes plus a worst-case p99 ceiling.
type AggregatedLatency struct {
	Mean          Float `json:"mean_ms"`
	P95           Float `json:"p95_ms"`
	P99           Float `json:"p99_ms"`
	P99Max        Float `json:"p99_max_ms"`
	Count         Float `json:"count"`
	OneMinuteRate Float `json:"one_minute_rate"`
}

// AggregatedMetrics is the cluster-wide merge of per-node samples. A field
// with zero contributing nodes stays absent; it is never coerced to zero.
type AggregatedMetrics struct {
	Timestamp      time.Time `json:"timestamp"`
	NodeCount      int       `json:"node_count"`
	ReachableCount int       `json:"reachable_count"`

	Read  AggregatedLatency `json:"read"`
	Write AggregatedLatency `json:"write"`
	Range AggregatedLatency `json:"range"`

	Errors ErrorCounts `json:"errors"`

	// ErrorRate is present only when timeouts, unavailables, failures and
	// total throughput are all simultaneously available.
	ErrorRate Float `json:"error_rate"`

	StorageLoad      Float  `json:"storage_load_bytes"`
	StorageLoadHuman string `json:"storage_load,omitempty"`
	HeapPercent      Float  `json:"heap_percent"`
	HeapUsed         Float  `json:"heap_used_bytes"`
	HeapMax          Float  `json:"heap_max_bytes"`

	Cache       AggregatedCache `json:"cache"`
	ThreadPools ThreadPools     `json:"thread_pools"`
	Compaction  CompactionStats `json:"compaction"`
	Hints       HintStats       `json:"hints"`
}

// Status is a composite cluster health status.
type Status string

const (
	StatusUnknown  Status = "unknown"
	StatusHealthy  Status = "healthy"
	StatusWarning  Status = "warning"
	StatusDegraded Status = "degraded"
	StatusCritical Status = "critical"
)

// HealthAssessment is the derived status for one poll cycle. Score is nil
// when no monitored dimension had a present value.
type HealthAssessment struct {
	Status Status   `json:"status"`
	Score  *int     `json:"score"`
	Issues []string `json:"issues"`
}
