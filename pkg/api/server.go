// Package api serves the HTTP surface: REST views over the latest poll
// cycle, the Prometheus endpoint, and the WebSocket subscriber upgrade.
// Handlers are thin; they read the same snapshot the broadcaster built.
package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ringview/ringview/pkg/broadcast"
	httpx "github.com/ringview/ringview/pkg/http"
)

// Hub is what the API needs from the broadcaster. *broadcast.Broadcaster
// satisfies it.
type Hub interface {
	Snapshot() (*broadcast.MetricsPayload, *broadcast.OperationsPayload)
	Register(conn broadcast.Conn, topics ...string) *broadcast.Subscriber
	Unregister(sub *broadcast.Subscriber)
	HandleControl(sub *broadcast.Subscriber, msg broadcast.ControlMessage)
}

// ClusterResponse is the /api/cluster body.
type ClusterResponse struct {
	Cluster any `json:"cluster"`
	Health  any `json:"health"`
}

// APIServer routes HTTP requests over the broadcaster's snapshot.
type APIServer struct {
	router   *mux.Router
	hub      Hub
	upgrader websocket.Upgrader
}

// APIOption customizes an APIServer.
type APIOption func(*APIServer)

// WithRateLimit wraps the router with per-client rate limiting.
func WithRateLimit(rps float64, burst int) APIOption {
	return func(s *APIServer) {
		s.router.Use(httpx.NewRateLimiter(rps, burst).Middleware)
	}
}

// NewAPIServer creates the API router.
func NewAPIServer(hub Hub, opts ...APIOption) *APIServer {
	s := &APIServer{
		router: mux.NewRouter(),
		hub:    hub,
		upgrader: websocket.Upgrader{
			// The REST surface is already open cross-origin.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}

	s.router.Use(httpx.CommonMiddleware)

	for _, opt := range opts {
		opt(s)
	}

	s.setupRoutes()

	return s
}

func (s *APIServer) setupRoutes() {
	s.router.HandleFunc("/api/cluster", s.getCluster).Methods(http.MethodGet)
	s.router.HandleFunc("/api/nodes", s.getNodes).Methods(http.MethodGet)
	s.router.HandleFunc("/api/nodes/{id}", s.getNode).Methods(http.MethodGet)
	s.router.HandleFunc("/api/operations", s.getOperations).Methods(http.MethodGet)
	s.router.HandleFunc("/api/health", s.getHealth).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	s.router.HandleFunc("/ws", s.serveWS)
}

// ServeHTTP implements http.Handler.
func (s *APIServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (s *APIServer) getCluster(w http.ResponseWriter, _ *http.Request) {
	snapshot, _ := s.hub.Snapshot()
	if snapshot == nil {
		http.Error(w, "No poll cycle completed yet", http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, ClusterResponse{Cluster: snapshot.Cluster, Health: snapshot.Health})
}

func (s *APIServer) getNodes(w http.ResponseWriter, _ *http.Request) {
	snapshot, _ := s.hub.Snapshot()
	if snapshot == nil {
		http.Error(w, "No poll cycle completed yet", http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, snapshot.Nodes)
}

func (s *APIServer) getNode(w http.ResponseWriter, r *http.Request) {
	snapshot, _ := s.hub.Snapshot()
	if snapshot == nil {
		http.Error(w, "No poll cycle completed yet", http.StatusServiceUnavailable)
		return
	}

	nodeID := mux.Vars(r)["id"]

	for i := range snapshot.Nodes {
		if snapshot.Nodes[i].NodeID == nodeID {
			writeJSON(w, snapshot.Nodes[i])
			return
		}
	}

	http.Error(w, "Node not found", http.StatusNotFound)
}

func (s *APIServer) getOperations(w http.ResponseWriter, _ *http.Request) {
	_, operations := s.hub.Snapshot()
	if operations == nil {
		http.Error(w, "No poll cycle completed yet", http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, operations)
}

func (s *APIServer) getHealth(w http.ResponseWriter, _ *http.Request) {
	snapshot, _ := s.hub.Snapshot()
	if snapshot == nil {
		http.Error(w, "No poll cycle completed yet", http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, snapshot.Health)
}

// serveWS upgrades the connection and registers it as a subscriber. The
// read loop only consumes subscribe/unsubscribe control frames; all data
// flows the other way.
func (s *APIServer) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	var topics []string
	if raw := r.URL.Query().Get("topics"); raw != "" {
		topics = strings.Split(raw, ",")
	}

	sub := s.hub.Register(conn, topics...)
	defer s.hub.Unregister(sub)

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var msg broadcast.ControlMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			log.Printf("Ignoring malformed control message from %s: %v", sub.ID, err)
			continue
		}

		s.hub.HandleControl(sub, msg)
	}
}
