// Package health pkg/health/labels.go
package health

// Categorical labels are pure functions of a single value against fixed
// breakpoints. They feed both the scorer and the API's per-node view.

// CacheEfficiency classifies a hit rate in [0,1].
type CacheEfficiency string

const (
	CacheGood CacheEfficiency = "good"
	CacheFair CacheEfficiency = "fair"
	CachePoor CacheEfficiency = "poor"
)

const (
	cacheGoodMin = 0.85
	cacheFairMin = 0.60
)

// ClassifyCache labels a cache hit rate.
func ClassifyCache(hitRate float64) CacheEfficiency {
	switch {
	case hitRate >= cacheGoodMin:
		return CacheGood
	case hitRate >= cacheFairMin:
		return CacheFair
	default:
		return CachePoor
	}
}

// PoolStatus classifies a thread pool by its pending backlog.
type PoolStatus string

const (
	PoolIdle       PoolStatus = "idle"
	PoolActive     PoolStatus = "active"
	PoolBusy       PoolStatus = "busy"
	PoolOverloaded PoolStatus = "overloaded"
)

const (
	poolBusyPending       = 50
	poolOverloadedPending = 100
)

// ClassifyPool labels a thread pool from its active and pending counts.
func ClassifyPool(active, pending float64) PoolStatus {
	switch {
	case pending > poolOverloadedPending:
		return PoolOverloaded
	case pending > poolBusyPending:
		return PoolBusy
	case active > 0 || pending > 0:
		return PoolActive
	default:
		return PoolIdle
	}
}

// CompactionStatus classifies the compaction backlog.
type CompactionStatus string

const (
	CompactionCurrent CompactionStatus = "current"
	CompactionActive  CompactionStatus = "active"
	CompactionBehind  CompactionStatus = "behind"
)

const (
	compactionCurrentMax = 5
	compactionActiveMax  = 20
)

// ClassifyCompaction labels the pending compaction task count.
func ClassifyCompaction(pending float64) CompactionStatus {
	switch {
	case pending <= compactionCurrentMax:
		return CompactionCurrent
	case pending <= compactionActiveMax:
		return CompactionActive
	default:
		return CompactionBehind
	}
}

// HintsStatus classifies the hinted-handoff backlog.
type HintsStatus string

const (
	HintsNone HintsStatus = "none"
	HintsSome HintsStatus = "some"
	HintsHigh HintsStatus = "high"
)

const hintsHighMin = 1000

// ClassifyHints labels the total hint count.
func ClassifyHints(total float64) HintsStatus {
	switch {
	case total <= 0:
		return HintsNone
	case total <= hintsHighMin:
		return HintsSome
	default:
		return HintsHigh
	}
}
