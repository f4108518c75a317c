// Package broadcast pkg/broadcast/operations.go
package broadcast

import (
	"github.com/ringview/ringview/pkg/health"
	"github.com/ringview/ringview/pkg/metrics"
)

// BuildOperations derives the per-node activity view from the same samples
// the metrics topic carries. Unreachable nodes keep their entry so the
// operations view always lists the whole cluster.
func BuildOperations(nodes []metrics.NodeMetrics) OperationsPayload {
	out := OperationsPayload{
		Nodes: make([]NodeOperations, 0, len(nodes)),
	}

	for i := range nodes {
		out.Nodes = append(out.Nodes, nodeOperations(&nodes[i]))
	}

	return out
}

func nodeOperations(node *metrics.NodeMetrics) NodeOperations {
	op := NodeOperations{
		NodeID:            node.NodeID,
		Reachable:         node.Reachable,
		CompactionPending: node.Compaction.PendingTasks,
		HintsTotal:        node.Hints.Total,
	}

	if !node.Reachable {
		return op
	}

	op.CompactionStatus = health.ClassifyCompaction(node.Compaction.PendingTasks.Or(0))
	op.HintsStatus = health.ClassifyHints(node.Hints.Total.Or(0))

	pools := []struct {
		name  string
		stats metrics.PoolStats
	}{
		{"mutation", node.ThreadPools.Mutation},
		{"read", node.ThreadPools.Read},
		{"compaction", node.ThreadPools.Compaction},
		{"native_transport", node.ThreadPools.NativeTransport},
	}

	var busiest string

	var busiestPending float64

	for _, pool := range pools {
		activity := PoolActivity{
			Name:    pool.name,
			Active:  pool.stats.Active,
			Pending: pool.stats.Pending,
			Status:  health.ClassifyPool(pool.stats.Active.Or(0), pool.stats.Pending.Or(0)),
		}
		op.Pools = append(op.Pools, activity)

		if pending := pool.stats.Pending.Or(0); pending > busiestPending {
			busiestPending = pending
			busiest = pool.name
		}
	}

	op.BusiestPool = busiest

	return op
}
