package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ringview/ringview/pkg/collector"
	"github.com/ringview/ringview/pkg/metrics"
	"github.com/ringview/ringview/pkg/mgmt"
)

type fakeConn struct {
	mu     sync.Mutex
	frames [][]byte
	fail   bool
	closed bool
}

func (c *fakeConn) WriteMessage(_ int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.fail {
		return errors.New("write failed")
	}

	c.frames = append(c.frames, append([]byte(nil), data...))

	return nil
}

func (c *fakeConn) SetWriteDeadline(_ time.Time) error { return nil }

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true

	return nil
}

func (c *fakeConn) frameCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.frames)
}

func (c *fakeConn) envelopes(t *testing.T) []Envelope {
	t.Helper()

	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Envelope, 0, len(c.frames))

	for _, frame := range c.frames {
		var env Envelope
		require.NoError(t, json.Unmarshal(frame, &env))
		out = append(out, env)
	}

	return out
}

// flakySource answers Connected with a scripted sequence, repeating the
// last answer once the script runs out.
type flakySource struct {
	mu      sync.Mutex
	answers []bool
}

func (s *flakySource) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.answers) == 0 {
		return false
	}

	answer := s.answers[0]
	if len(s.answers) > 1 {
		s.answers = s.answers[1:]
	}

	return answer
}

type staticEndpoints []mgmt.Endpoint

func (s staticEndpoints) Endpoints(_ context.Context) ([]mgmt.Endpoint, error) {
	return s, nil
}

type unreachableConnector struct{}

func (unreachableConnector) Connect(_ context.Context, _ mgmt.Endpoint) *mgmt.SessionResult {
	return &mgmt.SessionResult{Err: mgmt.ErrUnreachable}
}

func newTestBroadcaster(source Source, opts ...BroadcasterOption) *Broadcaster {
	provider := staticEndpoints{
		{Host: "10.0.0.1", Port: 8778},
		{Host: "10.0.0.2", Port: 8778},
	}

	extractor := collector.NewExtractor(
		collector.WithReadTimeout(time.Second),
		collector.WithNodeTimeout(2*time.Second),
	)

	return NewBroadcaster(extractor, unreachableConnector{}, provider, source, opts...)
}

func TestBroadcaster_PublishDropsFailedSubscriber(t *testing.T) {
	b := newTestBroadcaster(AlwaysConnected{})

	good1 := &fakeConn{}
	good2 := &fakeConn{}
	bad := &fakeConn{fail: true}

	b.Register(good1, TopicMetrics)
	b.Register(good2, TopicMetrics)
	b.Register(bad, TopicMetrics)

	b.Publish(TopicMetrics, Envelope{Type: TypeMetricsUpdate, Data: "payload"})

	assert.Equal(t, 1, good1.frameCount())
	assert.Equal(t, 1, good2.frameCount())
	assert.Equal(t, 2, b.SubscriberCount())
	assert.True(t, bad.closed)
}

func TestBroadcaster_PublishRespectsTopics(t *testing.T) {
	b := newTestBroadcaster(AlwaysConnected{})

	metricsOnly := &fakeConn{}
	opsOnly := &fakeConn{}

	b.Register(metricsOnly, TopicMetrics)
	b.Register(opsOnly, TopicOperations)

	b.Publish(TopicOperations, Envelope{Type: TypeOperationsUpdate, Data: "ops"})

	assert.Zero(t, metricsOnly.frameCount())
	assert.Equal(t, 1, opsOnly.frameCount())
}

func TestBroadcaster_CycleSkippedWhenSourceDisconnected(t *testing.T) {
	b := newTestBroadcaster(&flakySource{answers: []bool{false}})

	b.cycle(context.Background())

	metricsSnap, opsSnap := b.Snapshot()
	assert.Nil(t, metricsSnap)
	assert.Nil(t, opsSnap)
}

func TestBroadcaster_CycleBuildsSnapshotAndBroadcasts(t *testing.T) {
	b := newTestBroadcaster(AlwaysConnected{})

	conn := &fakeConn{}
	b.Register(conn, TopicMetrics, TopicOperations)

	b.cycle(context.Background())

	metricsSnap, opsSnap := b.Snapshot()
	require.NotNil(t, metricsSnap)
	require.NotNil(t, opsSnap)

	assert.Equal(t, 2, metricsSnap.Cluster.NodeCount)
	assert.Zero(t, metricsSnap.Cluster.ReachableCount)
	assert.Equal(t, metrics.StatusUnknown, metricsSnap.Health.Status)
	assert.Len(t, opsSnap.Nodes, 2)

	envelopes := conn.envelopes(t)
	require.Len(t, envelopes, 2)

	types := []string{envelopes[0].Type, envelopes[1].Type}
	assert.Contains(t, types, TypeMetricsUpdate)
	assert.Contains(t, types, TypeOperationsUpdate)
}

func TestBroadcaster_DiscardsResultsWhenSourceDropsMidCycle(t *testing.T) {
	// Connected at tick start, gone by the time extraction finishes: the
	// cycle's results must not become the snapshot.
	b := newTestBroadcaster(&flakySource{answers: []bool{true, false}})

	b.cycle(context.Background())

	metricsSnap, _ := b.Snapshot()
	assert.Nil(t, metricsSnap)
}

type panickyProvider struct{}

func (panickyProvider) Endpoints(_ context.Context) ([]mgmt.Endpoint, error) {
	panic("discovery exploded")
}

func TestBroadcaster_CycleSurvivesPanic(t *testing.T) {
	extractor := collector.NewExtractor()
	b := NewBroadcaster(extractor, unreachableConnector{}, panickyProvider{}, AlwaysConnected{})

	assert.NotPanics(t, func() {
		b.cycle(context.Background())
	})
}

func TestBroadcaster_RegisterSendsSnapshot(t *testing.T) {
	b := newTestBroadcaster(AlwaysConnected{})

	b.cycle(context.Background())

	conn := &fakeConn{}
	b.Register(conn, TopicMetrics, TopicOperations)

	// Both topic snapshots arrive without waiting for the next tick.
	assert.Equal(t, 2, conn.frameCount())
}

func TestBroadcaster_HandleControl(t *testing.T) {
	b := newTestBroadcaster(AlwaysConnected{})

	sub := b.Register(&fakeConn{}, TopicMetrics)
	require.True(t, sub.Subscribed(TopicMetrics))
	require.False(t, sub.Subscribed(TopicAlerts))

	b.HandleControl(sub, ControlMessage{Type: TypeSubscribe, Channels: []string{TopicAlerts, "bogus"}})
	assert.True(t, sub.Subscribed(TopicAlerts))
	assert.False(t, sub.Subscribed("bogus"))

	b.HandleControl(sub, ControlMessage{Type: TypeUnsubscribe, Channels: []string{TopicMetrics}})
	assert.False(t, sub.Subscribed(TopicMetrics))
}

func TestNewSubscriber_DefaultsToMetricsTopic(t *testing.T) {
	sub := NewSubscriber(&fakeConn{}, "nonsense")

	assert.True(t, sub.Subscribed(TopicMetrics))
	assert.False(t, sub.Subscribed("nonsense"))
}

func TestBuildOperations(t *testing.T) {
	nodes := []metrics.NodeMetrics{
		{
			NodeID:    "10.0.0.1:8778",
			Reachable: true,
			ThreadPools: metrics.ThreadPools{
				Mutation: metrics.PoolStats{
					Active:  metrics.FloatOf(4),
					Pending: metrics.FloatOf(120),
				},
				Read: metrics.PoolStats{
					Active:  metrics.FloatOf(1),
					Pending: metrics.FloatOf(3),
				},
			},
			Compaction: metrics.CompactionStats{PendingTasks: metrics.FloatOf(30)},
			Hints:      metrics.HintStats{Total: metrics.FloatOf(0)},
		},
		{NodeID: "10.0.0.2:8778", Reachable: false},
	}

	payload := BuildOperations(nodes)
	require.Len(t, payload.Nodes, 2)

	first := payload.Nodes[0]
	assert.Equal(t, "mutation", first.BusiestPool)
	assert.Equal(t, "behind", string(first.CompactionStatus))
	assert.Equal(t, "none", string(first.HintsStatus))

	require.Len(t, first.Pools, 4)
	assert.Equal(t, "overloaded", string(first.Pools[0].Status))
	assert.Equal(t, "active", string(first.Pools[1].Status))
	assert.Equal(t, "idle", string(first.Pools[2].Status))

	second := payload.Nodes[1]
	assert.False(t, second.Reachable)
	assert.Empty(t, second.Pools)
	assert.Empty(t, second.BusiestPool)
}
