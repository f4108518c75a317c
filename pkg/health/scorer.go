// Package health pkg/health/scorer.go
package health

import (
	"fmt"

	"github.com/ringview/ringview/pkg/metrics"
)

// Threshold and deduction constants. Only dimensions with a present value
// participate; absence never counts for or against the cluster.
const (
	errorRateCritical = 0.05
	errorRateWarning  = 0.01

	heapCriticalPct = 90
	heapWarningPct  = 80

	latencyCriticalMs = 50
	latencyWarningMs  = 20

	cacheMinRequests = 1000

	deductErrorCritical   = 30
	deductErrorWarning    = 10
	deductHeapCritical    = 25
	deductHeapWarning     = 10
	deductLatencyCritical = 20
	deductLatencyWarning  = 10
	deductPoolOverloaded  = 20
	deductPoolBusy        = 5
	deductCachePoor       = 15
	deductCompactionLag   = 15
	deductHintsHigh       = 10

	maxScore = 100

	statusHealthyMin  = 90
	statusWarningMin  = 70
	statusDegradedMin = 50
)

// Score derives a composite health assessment from the aggregated view
// plus the per-node samples. With zero present dimensions the status is
// unknown with a single explanatory issue; absence of data is never
// reported as health.
func Score(agg metrics.AggregatedMetrics, perNode []metrics.NodeMetrics) metrics.HealthAssessment {
	s := scorer{score: maxScore}

	s.errorRate(agg)
	s.heap(agg)
	s.latency(agg)
	s.pools(agg, perNode)
	s.keyCache(agg)
	s.compaction(agg)
	s.hints(agg)

	if s.present == 0 {
		return metrics.HealthAssessment{
			Status: metrics.StatusUnknown,
			Issues: []string{"insufficient data: no metric dimension could be queried this cycle"},
		}
	}

	score := s.score
	if score < 0 {
		score = 0
	}

	if score > maxScore {
		score = maxScore
	}

	status := statusFor(score)
	if s.critical {
		// A dimension past its critical breakpoint pins the status even
		// when the remaining dimensions keep the score up.
		status = metrics.StatusCritical
	}

	return metrics.HealthAssessment{
		Status: status,
		Score:  &score,
		Issues: s.issues,
	}
}

func statusFor(score int) metrics.Status {
	switch {
	case score >= statusHealthyMin:
		return metrics.StatusHealthy
	case score >= statusWarningMin:
		return metrics.StatusWarning
	case score >= statusDegradedMin:
		return metrics.StatusDegraded
	default:
		return metrics.StatusCritical
	}
}

type scorer struct {
	score    int
	present  int
	critical bool
	issues   []string
}

func (s *scorer) deduct(points int, issue string) {
	s.score -= points
	s.issues = append(s.issues, issue)
}

func (s *scorer) errorRate(agg metrics.AggregatedMetrics) {
	rate, ok := agg.ErrorRate.Get()
	if !ok {
		return
	}

	s.present++

	switch {
	case rate > errorRateCritical:
		s.critical = true
		s.deduct(deductErrorCritical, fmt.Sprintf("critical: cluster error rate %.1f%% exceeds %.0f%%",
			rate*100, errorRateCritical*100))
	case rate > errorRateWarning:
		s.deduct(deductErrorWarning, fmt.Sprintf("elevated cluster error rate %.1f%%", rate*100))
	}
}

func (s *scorer) heap(agg metrics.AggregatedMetrics) {
	pct, ok := agg.HeapPercent.Get()
	if !ok {
		return
	}

	s.present++

	switch {
	case pct > heapCriticalPct:
		s.critical = true
		s.deduct(deductHeapCritical, fmt.Sprintf("critical: heap memory usage at %.0f%%", pct))
	case pct > heapWarningPct:
		s.deduct(deductHeapWarning, fmt.Sprintf("heap memory usage at %.0f%%", pct))
	}
}

// latency evaluates read and write means together and deducts once for the
// worst breach, so a cluster slow on both paths is not punished twice for
// the same saturation.
func (s *scorer) latency(agg metrics.AggregatedMetrics) {
	worst := 0.0
	class := ""
	found := false

	if v, ok := agg.Read.Mean.Get(); ok {
		s.present++

		worst, class, found = v, "read", true
	}

	if v, ok := agg.Write.Mean.Get(); ok {
		s.present++

		if !found || v > worst {
			worst, class = v, "write"
		}

		found = true
	}

	if !found {
		return
	}

	switch {
	case worst > latencyCriticalMs:
		s.deduct(deductLatencyCritical, fmt.Sprintf("high %s latency: %.1fms mean", class, worst))
	case worst > latencyWarningMs:
		s.deduct(deductLatencyWarning, fmt.Sprintf("elevated %s latency: %.1fms mean", class, worst))
	}
}

// pools scans every node's pools plus the cluster totals and deducts once
// for the worst pool state observed.
func (s *scorer) pools(agg metrics.AggregatedMetrics, perNode []metrics.NodeMetrics) {
	worst := PoolIdle
	worstName := ""
	found := false

	consider := func(owner, name string, ps metrics.PoolStats) {
		pending, ok := ps.Pending.Get()
		if !ok {
			return
		}

		found = true

		status := ClassifyPool(ps.Active.Or(0), pending)
		if poolRank(status) > poolRank(worst) {
			worst = status
			worstName = fmt.Sprintf("%s %s", owner, name)
		}
	}

	for i := range perNode {
		node := &perNode[i]
		consider(node.NodeID, "mutation", node.ThreadPools.Mutation)
		consider(node.NodeID, "read", node.ThreadPools.Read)
		consider(node.NodeID, "compaction", node.ThreadPools.Compaction)
		consider(node.NodeID, "native-transport", node.ThreadPools.NativeTransport)
	}

	consider("cluster", "mutation", agg.ThreadPools.Mutation)
	consider("cluster", "read", agg.ThreadPools.Read)
	consider("cluster", "compaction", agg.ThreadPools.Compaction)
	consider("cluster", "native-transport", agg.ThreadPools.NativeTransport)

	if !found {
		return
	}

	s.present++

	switch worst {
	case PoolOverloaded:
		s.deduct(deductPoolOverloaded, fmt.Sprintf("thread pool overloaded: %s", worstName))
	case PoolBusy:
		s.deduct(deductPoolBusy, fmt.Sprintf("thread pool busy: %s", worstName))
	case PoolIdle, PoolActive:
	}
}

func poolRank(s PoolStatus) int {
	switch s {
	case PoolIdle:
		return 0
	case PoolActive:
		return 1
	case PoolBusy:
		return 2
	case PoolOverloaded:
		return 3
	default:
		return 0
	}
}

// keyCache deducts only when the cache is both inefficient and actually
// exercised; a poor rate over a handful of requests says nothing.
func (s *scorer) keyCache(agg metrics.AggregatedMetrics) {
	rate, ok := agg.Cache.KeyHitRate.Get()
	if !ok {
		return
	}

	requests, ok := agg.Cache.KeyRequests.Get()
	if !ok {
		return
	}

	s.present++

	if ClassifyCache(rate) == CachePoor && requests > cacheMinRequests {
		s.deduct(deductCachePoor, fmt.Sprintf("poor key cache efficiency: %.0f%% hit rate over %.0f requests",
			rate*100, requests))
	}
}

func (s *scorer) compaction(agg metrics.AggregatedMetrics) {
	pending, ok := agg.Compaction.PendingTasks.Get()
	if !ok {
		return
	}

	s.present++

	if ClassifyCompaction(pending) == CompactionBehind {
		s.deduct(deductCompactionLag, fmt.Sprintf("compaction falling behind: %.0f pending tasks", pending))
	}
}

func (s *scorer) hints(agg metrics.AggregatedMetrics) {
	total, ok := agg.Hints.Total.Get()
	if !ok {
		return
	}

	s.present++

	if ClassifyHints(total) == HintsHigh {
		s.deduct(deductHintsHigh, fmt.Sprintf("high hint backlog: %.0f hints", total))
	}
}
