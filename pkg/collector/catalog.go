// Package collector pkg/collector/catalog.go
package collector

// attrRef names one independently queryable attribute of the remote
// management object model.
type attrRef struct {
	object string
	attr   string
}

// The fixed extraction catalog. Attribute names follow the storage engine's
// management object model; every entry is optional at extraction time.
var (
	readLatency  = latencyRefs("org.apache.cassandra.metrics:type=ClientRequest,scope=Read,name=Latency")
	writeLatency = latencyRefs("org.apache.cassandra.metrics:type=ClientRequest,scope=Write,name=Latency")
	rangeLatency = latencyRefs("org.apache.cassandra.metrics:type=ClientRequest,scope=RangeSlice,name=Latency")

	readTimeouts      = attrRef{"org.apache.cassandra.metrics:type=ClientRequest,scope=Read,name=Timeouts", "Count"}
	writeTimeouts     = attrRef{"org.apache.cassandra.metrics:type=ClientRequest,scope=Write,name=Timeouts", "Count"}
	readUnavailables  = attrRef{"org.apache.cassandra.metrics:type=ClientRequest,scope=Read,name=Unavailables", "Count"}
	writeUnavailables = attrRef{"org.apache.cassandra.metrics:type=ClientRequest,scope=Write,name=Unavailables", "Count"}
	readFailures      = attrRef{"org.apache.cassandra.metrics:type=ClientRequest,scope=Read,name=Failures", "Count"}
	writeFailures     = attrRef{"org.apache.cassandra.metrics:type=ClientRequest,scope=Write,name=Failures", "Count"}

	storageLoad       = attrRef{"org.apache.cassandra.metrics:type=Storage,name=Load", "Count"}
	storageExceptions = attrRef{"org.apache.cassandra.metrics:type=Storage,name=Exceptions", "Count"}
	totalHints        = attrRef{"org.apache.cassandra.metrics:type=Storage,name=TotalHints", "Count"}

	keyCacheHitRate  = attrRef{"org.apache.cassandra.metrics:type=Cache,scope=KeyCache,name=HitRate", "Value"}
	keyCacheRequests = attrRef{"org.apache.cassandra.metrics:type=Cache,scope=KeyCache,name=Requests", "Count"}
	rowCacheHitRate  = attrRef{"org.apache.cassandra.metrics:type=Cache,scope=RowCache,name=HitRate", "Value"}
	rowCacheRequests = attrRef{"org.apache.cassandra.metrics:type=Cache,scope=RowCache,name=Requests", "Count"}

	mutationPool        = poolRefs("org.apache.cassandra.metrics:type=ThreadPools,path=request,scope=MutationStage")
	readPool            = poolRefs("org.apache.cassandra.metrics:type=ThreadPools,path=request,scope=ReadStage")
	compactionPool      = poolRefs("org.apache.cassandra.metrics:type=ThreadPools,path=internal,scope=CompactionExecutor")
	nativeTransportPool = poolRefs("org.apache.cassandra.metrics:type=ThreadPools,path=transport,scope=Native-Transport-Requests")

	compactionPending   = attrRef{"org.apache.cassandra.metrics:type=Compaction,name=PendingTasks", "Value"}
	compactionCompleted = attrRef{"org.apache.cassandra.metrics:type=Compaction,name=CompletedTasks", "Value"}

	heapMemory    = attrRef{"java.lang:type=Memory", "HeapMemoryUsage"}
	nonHeapMemory = attrRef{"java.lang:type=Memory", "NonHeapMemoryUsage"}
)

// Garbage collector object names differ per configured collector; the
// candidates are tried in order and the first readable one wins.
var (
	gcYoungCandidates = []string{
		"java.lang:type=GarbageCollector,name=G1 Young Generation",
		"java.lang:type=GarbageCollector,name=ParNew",
		"java.lang:type=GarbageCollector,name=Copy",
	}
	gcOldCandidates = []string{
		"java.lang:type=GarbageCollector,name=G1 Old Generation",
		"java.lang:type=GarbageCollector,name=ConcurrentMarkSweep",
		"java.lang:type=GarbageCollector,name=MarkSweepCompact",
	}
)

// latencyRefs builds the five correlated reads of one latency group. The
// group is only usable as a whole; partial results would mix units.
type latencyGroupRefs struct {
	mean, p95, p99, count, rate attrRef
}

func latencyRefs(object string) latencyGroupRefs {
	return latencyGroupRefs{
		mean:  attrRef{object, "Mean"},
		p95:   attrRef{object, "95thPercentile"},
		p99:   attrRef{object, "99thPercentile"},
		count: attrRef{object, "Count"},
		rate:  attrRef{object, "OneMinuteRate"},
	}
}

type poolGroupRefs struct {
	active, pending, completed attrRef
}

func poolRefs(object string) poolGroupRefs {
	return poolGroupRefs{
		active:    attrRef{object, "ActiveTasks"},
		pending:   attrRef{object, "PendingTasks"},
		completed: attrRef{object, "CompletedTasks"},
	}
}
