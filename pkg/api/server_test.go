package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ringview/ringview/pkg/broadcast"
	"github.com/ringview/ringview/pkg/metrics"
)

type fakeHub struct {
	mu          sync.Mutex
	metricsSnap *broadcast.MetricsPayload
	opsSnap     *broadcast.OperationsPayload
	subs        []*broadcast.Subscriber
}

func (h *fakeHub) Snapshot() (*broadcast.MetricsPayload, *broadcast.OperationsPayload) {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.metricsSnap, h.opsSnap
}

func (h *fakeHub) Register(conn broadcast.Conn, topics ...string) *broadcast.Subscriber {
	sub := broadcast.NewSubscriber(conn, topics...)

	h.mu.Lock()
	h.subs = append(h.subs, sub)
	h.mu.Unlock()

	return sub
}

func (h *fakeHub) Unregister(_ *broadcast.Subscriber) {}

func (h *fakeHub) HandleControl(sub *broadcast.Subscriber, msg broadcast.ControlMessage) {
	switch msg.Type {
	case broadcast.TypeSubscribe:
		sub.Subscribe(msg.Channels)
	case broadcast.TypeUnsubscribe:
		sub.Unsubscribe(msg.Channels)
	}
}

func (h *fakeHub) lastSub() *broadcast.Subscriber {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.subs) == 0 {
		return nil
	}

	return h.subs[len(h.subs)-1]
}

func snapshotHub() *fakeHub {
	score := 100

	return &fakeHub{
		metricsSnap: &broadcast.MetricsPayload{
			Cluster: metrics.AggregatedMetrics{NodeCount: 2, ReachableCount: 2},
			Health:  metrics.HealthAssessment{Status: metrics.StatusHealthy, Score: &score},
			Nodes: []metrics.NodeMetrics{
				{NodeID: "10.0.0.1:8778", Reachable: true},
				{NodeID: "10.0.0.2:8778", Reachable: true},
			},
		},
		opsSnap: &broadcast.OperationsPayload{
			Nodes: []broadcast.NodeOperations{{NodeID: "10.0.0.1:8778", Reachable: true}},
		},
	}
}

func TestAPI_UnavailableBeforeFirstCycle(t *testing.T) {
	server := httptest.NewServer(NewAPIServer(&fakeHub{}))
	defer server.Close()

	for _, path := range []string{"/api/cluster", "/api/nodes", "/api/operations", "/api/health"} {
		resp, err := http.Get(server.URL + path)
		require.NoError(t, err)
		resp.Body.Close()

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode, path)
	}
}

func TestAPI_GetCluster(t *testing.T) {
	server := httptest.NewServer(NewAPIServer(snapshotHub()))
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/cluster")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var body struct {
		Cluster metrics.AggregatedMetrics `json:"cluster"`
		Health  metrics.HealthAssessment  `json:"health"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	assert.Equal(t, 2, body.Cluster.NodeCount)
	assert.Equal(t, metrics.StatusHealthy, body.Health.Status)
}

func TestAPI_GetNode(t *testing.T) {
	server := httptest.NewServer(NewAPIServer(snapshotHub()))
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/nodes/10.0.0.2:8778")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var node metrics.NodeMetrics
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&node))
	assert.Equal(t, "10.0.0.2:8778", node.NodeID)

	missing, err := http.Get(server.URL + "/api/nodes/10.9.9.9:8778")
	require.NoError(t, err)
	missing.Body.Close()

	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestAPI_GetOperations(t *testing.T) {
	server := httptest.NewServer(NewAPIServer(snapshotHub()))
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/operations")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var ops broadcast.OperationsPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ops))
	assert.Len(t, ops.Nodes, 1)
}

func TestAPI_CORSPreflights(t *testing.T) {
	server := httptest.NewServer(NewAPIServer(snapshotHub()))
	defer server.Close()

	req, err := http.NewRequest(http.MethodOptions, server.URL+"/api/cluster", http.NoBody)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestAPI_RateLimit(t *testing.T) {
	server := httptest.NewServer(NewAPIServer(snapshotHub(), WithRateLimit(1, 1)))
	defer server.Close()

	first, err := http.Get(server.URL + "/api/health")
	require.NoError(t, err)
	first.Body.Close()
	require.Equal(t, http.StatusOK, first.StatusCode)

	second, err := http.Get(server.URL + "/api/health")
	require.NoError(t, err)
	second.Body.Close()

	assert.Equal(t, http.StatusTooManyRequests, second.StatusCode)
}

func TestAPI_WebSocketSubscribe(t *testing.T) {
	hub := snapshotHub()
	server := httptest.NewServer(NewAPIServer(hub))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?topics=metrics"

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)

	if resp != nil {
		resp.Body.Close()
	}

	defer conn.Close()

	// Registration happens in the handler goroutine after the dial returns.
	require.Eventually(t, func() bool {
		return hub.lastSub() != nil
	}, 2*time.Second, 10*time.Millisecond)

	sub := hub.lastSub()
	assert.True(t, sub.Subscribed(broadcast.TopicMetrics))
	assert.False(t, sub.Subscribed(broadcast.TopicAlerts))

	// Deliver a frame through the registered subscriber and read it back.
	require.NoError(t, sub.Send(broadcast.Envelope{Type: broadcast.TypeMetricsUpdate, Data: "hello"}, time.Second))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	_, frame, err := conn.ReadMessage()
	require.NoError(t, err)

	var env broadcast.Envelope
	require.NoError(t, json.Unmarshal(frame, &env))
	assert.Equal(t, broadcast.TypeMetricsUpdate, env.Type)

	// Control frame flips the topic set server-side.
	control := broadcast.ControlMessage{Type: broadcast.TypeSubscribe, Channels: []string{broadcast.TopicAlerts}}
	require.NoError(t, conn.WriteJSON(control))

	require.Eventually(t, func() bool {
		return sub.Subscribed(broadcast.TopicAlerts)
	}, 2*time.Second, 10*time.Millisecond)
}
