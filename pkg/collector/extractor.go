// Package collector pkg/collector/extractor.go
package collector

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/ringview/ringview/pkg/metrics"
	"github.com/ringview/ringview/pkg/mgmt"
)

const (
	defaultReadTimeout = 10 * time.Second
	defaultNodeTimeout = 30 * time.Second
)

// Extractor pulls the metric catalog out of a node's management session.
// Extract never fails as a whole: each attribute read is independently
// fallible and a failed read leaves its field absent.
type Extractor struct {
	readTimeout time.Duration
	nodeTimeout time.Duration
}

// ExtractorOption customizes an Extractor.
type ExtractorOption func(*Extractor)

// WithReadTimeout sets the per-attribute read timeout.
func WithReadTimeout(d time.Duration) ExtractorOption {
	return func(e *Extractor) {
		if d > 0 {
			e.readTimeout = d
		}
	}
}

// WithNodeTimeout sets the per-node extraction budget used by
// ExtractCluster.
func WithNodeTimeout(d time.Duration) ExtractorOption {
	return func(e *Extractor) {
		if d > 0 {
			e.nodeTimeout = d
		}
	}
}

// NewExtractor creates an extractor with default timeouts.
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		readTimeout: defaultReadTimeout,
		nodeTimeout: defaultNodeTimeout,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// parallel runs the given funcs concurrently and waits for all of them.
func parallel(fns ...func()) {
	var wg sync.WaitGroup

	wg.Add(len(fns))

	for _, fn := range fns {
		go func(f func()) {
			defer wg.Done()
			f()
		}(fn)
	}

	wg.Wait()
}

// Extract pulls the full catalog from one session. Catalog sections run
// concurrently; every read carries its own timeout so one hanging
// attribute cannot stall the rest.
func (e *Extractor) Extract(ctx context.Context, src AttributeSource, nodeID string) *metrics.NodeMetrics {
	nm := &metrics.NodeMetrics{
		NodeID:    nodeID,
		Timestamp: time.Now(),
		Reachable: true,
		Mode:      string(mgmt.ModeFull),
	}

	parallel(
		func() { nm.Performance = e.performance(ctx, src) },
		func() { nm.Errors = e.errorCounts(ctx, src) },
		func() { nm.Resources = e.resources(ctx, src) },
		func() { nm.Cache = e.cacheStats(ctx, src) },
		func() { nm.ThreadPools = e.threadPools(ctx, src) },
		func() { nm.Compaction = e.compaction(ctx, src) },
		func() { nm.Hints = e.hints(ctx, src) },
	)

	return nm
}

func (e *Extractor) performance(ctx context.Context, src AttributeSource) metrics.Performance {
	var p metrics.Performance

	parallel(
		func() { p.Read = e.latencyGroup(ctx, src, readLatency) },
		func() { p.Write = e.latencyGroup(ctx, src, writeLatency) },
		func() { p.Range = e.latencyGroup(ctx, src, rangeLatency) },
	)

	return p
}

// latencyGroup issues the five correlated reads of one request class. The
// group is all-or-nothing: if any sub-read fails the whole group stays
// absent, since partially populated groups would mix units downstream.
// Latency values arrive in microseconds and are stored in milliseconds.
func (e *Extractor) latencyGroup(ctx context.Context, src AttributeSource, refs latencyGroupRefs) metrics.LatencyGroup {
	var mean, p95, p99, count, rate metrics.Float

	parallel(
		func() { mean = readNumber(ctx, src, refs.mean, e.readTimeout) },
		func() { p95 = readNumber(ctx, src, refs.p95, e.readTimeout) },
		func() { p99 = readNumber(ctx, src, refs.p99, e.readTimeout) },
		func() { count = readNumber(ctx, src, refs.count, e.readTimeout) },
		func() { rate = readNumber(ctx, src, refs.rate, e.readTimeout) },
	)

	if !mean.Valid() || !p95.Valid() || !p99.Valid() || !count.Valid() || !rate.Valid() {
		return metrics.LatencyGroup{}
	}

	return metrics.LatencyGroup{
		Mean:          microsToMillis(mean),
		P95:           microsToMillis(p95),
		P99:           microsToMillis(p99),
		Count:         count,
		OneMinuteRate: rate,
	}
}

func (e *Extractor) errorCounts(ctx context.Context, src AttributeSource) metrics.ErrorCounts {
	var ec metrics.ErrorCounts

	parallel(
		func() { ec.ReadTimeouts = readNumber(ctx, src, readTimeouts, e.readTimeout) },
		func() { ec.WriteTimeouts = readNumber(ctx, src, writeTimeouts, e.readTimeout) },
		func() { ec.ReadUnavailables = readNumber(ctx, src, readUnavailables, e.readTimeout) },
		func() { ec.WriteUnavailables = readNumber(ctx, src, writeUnavailables, e.readTimeout) },
		func() { ec.ReadFailures = readNumber(ctx, src, readFailures, e.readTimeout) },
		func() { ec.WriteFailures = readNumber(ctx, src, writeFailures, e.readTimeout) },
		func() { ec.StorageExceptions = readNumber(ctx, src, storageExceptions, e.readTimeout) },
	)

	return ec
}

func (e *Extractor) resources(ctx context.Context, src AttributeSource) metrics.Resources {
	var (
		res     metrics.Resources
		heap    map[string]metrics.Float
		nonHeap map[string]metrics.Float
	)

	parallel(
		func() { res.StorageLoad = readNumber(ctx, src, storageLoad, e.readTimeout) },
		func() { heap = readComposite(ctx, src, heapMemory, e.readTimeout, "used", "max", "committed") },
		func() { nonHeap = readComposite(ctx, src, nonHeapMemory, e.readTimeout, "used", "committed") },
		func() { res.GCYoungCount, res.GCYoungTimeMs = e.gcStats(ctx, src, gcYoungCandidates) },
		func() { res.GCOldCount, res.GCOldTimeMs = e.gcStats(ctx, src, gcOldCandidates) },
	)

	res.HeapUsed = heap["used"]
	res.HeapMax = heap["max"]
	res.HeapCommitted = heap["committed"]
	res.HeapPercent = heapPercent(res.HeapUsed, res.HeapMax)

	res.NonHeapUsed = nonHeap["used"]
	res.NonHeapCommitted = nonHeap["committed"]

	res.StorageLoadHuman = metrics.FormatBytesOpt(res.StorageLoad)
	res.HeapUsedHuman = metrics.FormatBytesOpt(res.HeapUsed)
	res.NonHeapUsedHuman = metrics.FormatBytesOpt(res.NonHeapUsed)

	return res
}

// gcStats probes the candidate collector names in order; the first one
// whose CollectionCount answers wins. CollectionTime is already reported
// in milliseconds.
func (e *Extractor) gcStats(ctx context.Context, src AttributeSource, candidates []string) (count, timeMs metrics.Float) {
	for _, object := range candidates {
		c := readNumber(ctx, src, attrRef{object, "CollectionCount"}, e.readTimeout)
		if !c.Valid() {
			continue
		}

		t := readNumber(ctx, src, attrRef{object, "CollectionTime"}, e.readTimeout)

		return c, t
	}

	return metrics.Absent(), metrics.Absent()
}

func (e *Extractor) cacheStats(ctx context.Context, src AttributeSource) metrics.CacheStats {
	var cs metrics.CacheStats

	parallel(
		func() { cs.KeyHitRate = readNumber(ctx, src, keyCacheHitRate, e.readTimeout) },
		func() { cs.KeyRequests = readNumber(ctx, src, keyCacheRequests, e.readTimeout) },
		func() { cs.RowHitRate = readNumber(ctx, src, rowCacheHitRate, e.readTimeout) },
		func() { cs.RowRequests = readNumber(ctx, src, rowCacheRequests, e.readTimeout) },
	)

	return cs
}

func (e *Extractor) threadPools(ctx context.Context, src AttributeSource) metrics.ThreadPools {
	var tp metrics.ThreadPools

	parallel(
		func() { tp.Mutation = e.poolStats(ctx, src, mutationPool) },
		func() { tp.Read = e.poolStats(ctx, src, readPool) },
		func() { tp.Compaction = e.poolStats(ctx, src, compactionPool) },
		func() { tp.NativeTransport = e.poolStats(ctx, src, nativeTransportPool) },
	)

	return tp
}

func (e *Extractor) poolStats(ctx context.Context, src AttributeSource, refs poolGroupRefs) metrics.PoolStats {
	var ps metrics.PoolStats

	parallel(
		func() { ps.Active = readNumber(ctx, src, refs.active, e.readTimeout) },
		func() { ps.Pending = readNumber(ctx, src, refs.pending, e.readTimeout) },
		func() { ps.Completed = readNumber(ctx, src, refs.completed, e.readTimeout) },
	)

	return ps
}

func (e *Extractor) compaction(ctx context.Context, src AttributeSource) metrics.CompactionStats {
	var cs metrics.CompactionStats

	parallel(
		func() { cs.PendingTasks = readNumber(ctx, src, compactionPending, e.readTimeout) },
		func() { cs.CompletedTasks = readNumber(ctx, src, compactionCompleted, e.readTimeout) },
	)

	return cs
}

func (e *Extractor) hints(ctx context.Context, src AttributeSource) metrics.HintStats {
	return metrics.HintStats{
		Total: readNumber(ctx, src, totalHints, e.readTimeout),
	}
}

// ExtractCluster connects and extracts every endpoint in parallel with a
// per-node budget, so one slow or unreachable node cannot block metrics
// for the others. Duplicate endpoints are collapsed so no node is counted
// twice in one cycle. Unreachable nodes yield a record with Reachable
// false and every field absent; basic-mode nodes yield Reachable true with
// Mode "basic".
func (e *Extractor) ExtractCluster(
	ctx context.Context, connector SessionConnector, endpoints []mgmt.Endpoint,
) []metrics.NodeMetrics {
	seen := make(map[string]struct{}, len(endpoints))
	unique := make([]mgmt.Endpoint, 0, len(endpoints))

	for _, ep := range endpoints {
		if _, dup := seen[ep.Key()]; dup {
			continue
		}

		seen[ep.Key()] = struct{}{}
		unique = append(unique, ep)
	}

	results := make([]metrics.NodeMetrics, len(unique))

	var wg sync.WaitGroup

	wg.Add(len(unique))

	for i, ep := range unique {
		go func(idx int, endpoint mgmt.Endpoint) {
			defer wg.Done()

			nodeCtx, cancel := context.WithTimeout(ctx, e.nodeTimeout)
			defer cancel()

			results[idx] = e.extractNode(nodeCtx, connector, endpoint)
		}(i, ep)
	}

	wg.Wait()

	return results
}

func (e *Extractor) extractNode(ctx context.Context, connector SessionConnector, endpoint mgmt.Endpoint) metrics.NodeMetrics {
	nodeID := endpoint.Key()

	result := connector.Connect(ctx, endpoint)
	if result.Err != nil {
		log.Printf("Node %s unreachable: %v", nodeID, result.Err)

		return metrics.NodeMetrics{
			NodeID:    nodeID,
			Timestamp: time.Now(),
			Reachable: false,
		}
	}

	if result.Mode == mgmt.ModeBasic {
		// Reachable but non-queryable: the surrounding system falls back
		// to the command interface for this node.
		return metrics.NodeMetrics{
			NodeID:    nodeID,
			Timestamp: time.Now(),
			Reachable: true,
			Mode:      string(mgmt.ModeBasic),
		}
	}

	return *e.Extract(ctx, result.Session, nodeID)
}
