// Package aggregate merges per-node metric samples into cluster-wide
// totals and averages under partial failure. Every rule is absence-aware:
// a field with zero contributing nodes stays absent, never zero.
package aggregate

import (
	"time"

	"github.com/ringview/ringview/pkg/metrics"
)

// Aggregate merges one poll cycle's node samples. It is a pure function:
// the same input list always yields the same result, and each node
// contributes at most once (callers pass one sample per node per cycle).
func Aggregate(nodes []metrics.NodeMetrics) metrics.AggregatedMetrics {
	agg := metrics.AggregatedMetrics{
		Timestamp: time.Now(),
		NodeCount: len(nodes),
	}

	for i := range nodes {
		if nodes[i].Reachable {
			agg.ReachableCount++
		}
	}

	agg.Read = latency(nodes, func(n *metrics.NodeMetrics) metrics.LatencyGroup { return n.Performance.Read })
	agg.Write = latency(nodes, func(n *metrics.NodeMetrics) metrics.LatencyGroup { return n.Performance.Write })
	agg.Range = latency(nodes, func(n *metrics.NodeMetrics) metrics.LatencyGroup { return n.Performance.Range })

	agg.Errors = metrics.ErrorCounts{
		ReadTimeouts:      sum(nodes, func(n *metrics.NodeMetrics) metrics.Float { return n.Errors.ReadTimeouts }),
		WriteTimeouts:     sum(nodes, func(n *metrics.NodeMetrics) metrics.Float { return n.Errors.WriteTimeouts }),
		ReadUnavailables:  sum(nodes, func(n *metrics.NodeMetrics) metrics.Float { return n.Errors.ReadUnavailables }),
		WriteUnavailables: sum(nodes, func(n *metrics.NodeMetrics) metrics.Float { return n.Errors.WriteUnavailables }),
		ReadFailures:      sum(nodes, func(n *metrics.NodeMetrics) metrics.Float { return n.Errors.ReadFailures }),
		WriteFailures:     sum(nodes, func(n *metrics.NodeMetrics) metrics.Float { return n.Errors.WriteFailures }),
		StorageExceptions: sum(nodes, func(n *metrics.NodeMetrics) metrics.Float { return n.Errors.StorageExceptions }),
	}

	agg.ErrorRate = errorRate(agg)

	agg.StorageLoad = sum(nodes, func(n *metrics.NodeMetrics) metrics.Float { return n.Resources.StorageLoad })
	agg.StorageLoadHuman = metrics.FormatBytesOpt(agg.StorageLoad)
	agg.HeapPercent = mean(nodes, func(n *metrics.NodeMetrics) metrics.Float { return n.Resources.HeapPercent })
	agg.HeapUsed = sum(nodes, func(n *metrics.NodeMetrics) metrics.Float { return n.Resources.HeapUsed })
	agg.HeapMax = sum(nodes, func(n *metrics.NodeMetrics) metrics.Float { return n.Resources.HeapMax })

	agg.Cache = cache(nodes)

	agg.ThreadPools = metrics.ThreadPools{
		Mutation:        pool(nodes, func(n *metrics.NodeMetrics) metrics.PoolStats { return n.ThreadPools.Mutation }),
		Read:            pool(nodes, func(n *metrics.NodeMetrics) metrics.PoolStats { return n.ThreadPools.Read }),
		Compaction:      pool(nodes, func(n *metrics.NodeMetrics) metrics.PoolStats { return n.ThreadPools.Compaction }),
		NativeTransport: pool(nodes, func(n *metrics.NodeMetrics) metrics.PoolStats { return n.ThreadPools.NativeTransport }),
	}

	agg.Compaction = metrics.CompactionStats{
		PendingTasks:   sum(nodes, func(n *metrics.NodeMetrics) metrics.Float { return n.Compaction.PendingTasks }),
		CompletedTasks: sum(nodes, func(n *metrics.NodeMetrics) metrics.Float { return n.Compaction.CompletedTasks }),
	}

	agg.Hints = metrics.HintStats{
		Total: sum(nodes, func(n *metrics.NodeMetrics) metrics.Float { return n.Hints.Total }),
	}

	return agg
}

func column(nodes []metrics.NodeMetrics, get func(*metrics.NodeMetrics) metrics.Float) []metrics.Float {
	out := make([]metrics.Float, 0, len(nodes))
	for i := range nodes {
		out = append(out, get(&nodes[i]))
	}

	return out
}

func sum(nodes []metrics.NodeMetrics, get func(*metrics.NodeMetrics) metrics.Float) metrics.Float {
	return metrics.Sum(column(nodes, get)...)
}

func mean(nodes []metrics.NodeMetrics, get func(*metrics.NodeMetrics) metrics.Float) metrics.Float {
	return metrics.Mean(column(nodes, get)...)
}

// latency combines one request class across nodes: arithmetic mean for the
// latency statistics, sum for count and throughput, max for the p99
// ceiling. Only fully extracted groups contribute.
func latency(nodes []metrics.NodeMetrics, get func(*metrics.NodeMetrics) metrics.LatencyGroup) metrics.AggregatedLatency {
	var means, p95s, p99s, counts, rates []metrics.Float

	for i := range nodes {
		g := get(&nodes[i])
		if !g.Valid() {
			continue
		}

		means = append(means, g.Mean)
		p95s = append(p95s, g.P95)
		p99s = append(p99s, g.P99)
		counts = append(counts, g.Count)
		rates = append(rates, g.OneMinuteRate)
	}

	return metrics.AggregatedLatency{
		Mean:          metrics.Mean(means...),
		P95:           metrics.Mean(p95s...),
		P99:           metrics.Mean(p99s...),
		P99Max:        metrics.Max(p99s...),
		Count:         metrics.Sum(counts...),
		OneMinuteRate: metrics.Sum(rates...),
	}
}

func pool(nodes []metrics.NodeMetrics, get func(*metrics.NodeMetrics) metrics.PoolStats) metrics.PoolStats {
	return metrics.PoolStats{
		Active:    sum(nodes, func(n *metrics.NodeMetrics) metrics.Float { return get(n).Active }),
		Pending:   sum(nodes, func(n *metrics.NodeMetrics) metrics.Float { return get(n).Pending }),
		Completed: sum(nodes, func(n *metrics.NodeMetrics) metrics.Float { return get(n).Completed }),
	}
}

// cache derives hits per node as round(hitRate*requests) before summing,
// so nodes with very different request volumes are weighted correctly; the
// aggregate hit rate is sum(hits)/sum(requests), not an average of rates.
func cache(nodes []metrics.NodeMetrics) metrics.AggregatedCache {
	keyHits := perNodeHits(nodes,
		func(n *metrics.NodeMetrics) (metrics.Float, metrics.Float) { return n.Cache.KeyHitRate, n.Cache.KeyRequests })
	rowHits := perNodeHits(nodes,
		func(n *metrics.NodeMetrics) (metrics.Float, metrics.Float) { return n.Cache.RowHitRate, n.Cache.RowRequests })

	keyRequests := sum(nodes, func(n *metrics.NodeMetrics) metrics.Float { return n.Cache.KeyRequests })
	rowRequests := sum(nodes, func(n *metrics.NodeMetrics) metrics.Float { return n.Cache.RowRequests })

	return metrics.AggregatedCache{
		KeyHits:     keyHits,
		KeyRequests: keyRequests,
		KeyHitRate:  hitRate(keyHits, keyRequests),
		RowHits:     rowHits,
		RowRequests: rowRequests,
		RowHitRate:  hitRate(rowHits, rowRequests),
	}
}

func perNodeHits(
	nodes []metrics.NodeMetrics, get func(*metrics.NodeMetrics) (rate, requests metrics.Float),
) metrics.Float {
	var hits []metrics.Float

	for i := range nodes {
		rate, requests := get(&nodes[i])

		r, ok := rate.Get()
		if !ok {
			continue
		}

		q, ok := requests.Get()
		if !ok {
			continue
		}

		hits = append(hits, metrics.FloatOf(r*q).Round())
	}

	return metrics.Sum(hits...)
}

func hitRate(hits, requests metrics.Float) metrics.Float {
	h, ok := hits.Get()
	if !ok {
		return metrics.Absent()
	}

	q, ok := requests.Get()
	if !ok || q <= 0 {
		return metrics.Absent()
	}

	return metrics.FloatOf(h / q)
}

// errorRate is present only when every error counter and the total request
// throughput are simultaneously available; a partial error rate would look
// complete and mislead. Null propagates instead.
func errorRate(agg metrics.AggregatedMetrics) metrics.Float {
	counters := []metrics.Float{
		agg.Errors.ReadTimeouts, agg.Errors.WriteTimeouts,
		agg.Errors.ReadUnavailables, agg.Errors.WriteUnavailables,
		agg.Errors.ReadFailures, agg.Errors.WriteFailures,
	}

	var total float64

	for _, c := range counters {
		v, ok := c.Get()
		if !ok {
			return metrics.Absent()
		}

		total += v
	}

	readCount, ok := agg.Read.Count.Get()
	if !ok {
		return metrics.Absent()
	}

	writeCount, ok := agg.Write.Count.Get()
	if !ok {
		return metrics.Absent()
	}

	requests := readCount + writeCount
	if requests <= 0 {
		return metrics.Absent()
	}

	return metrics.FloatOf(total / requests)
}
