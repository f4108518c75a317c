// Package core wires configuration into the running monitor: session
// registry, discovery, broadcaster, alerting and the HTTP API. It is the
// lifecycle.Service the binary hands to RunServer.
package core

import (
	"context"
	"log"
	"time"

	"github.com/ringview/ringview/pkg/alerts"
	"github.com/ringview/ringview/pkg/api"
	"github.com/ringview/ringview/pkg/broadcast"
	"github.com/ringview/ringview/pkg/collector"
	"github.com/ringview/ringview/pkg/config"
	"github.com/ringview/ringview/pkg/discovery"
	"github.com/ringview/ringview/pkg/mgmt"
	"github.com/ringview/ringview/pkg/stats"
)

const defaultRateBurst = 10

// Server is the composed monitoring service.
type Server struct {
	registry    *mgmt.Registry
	broadcaster *broadcast.Broadcaster
	apiServer   *api.APIServer

	cancel context.CancelFunc
	done   chan struct{}
}

// NewServer builds the service from config.
func NewServer(cfg *config.ServerConfig) (*Server, error) {
	registry := mgmt.NewRegistry(
		mgmt.WithCandidatePaths(cfg.CandidatePaths),
		mgmt.WithTimeouts(time.Duration(cfg.ProbeTimeout), time.Duration(cfg.ConnectTimeout)),
	)

	extractor := collector.NewExtractor(
		collector.WithReadTimeout(time.Duration(cfg.ReadTimeout)),
		collector.WithNodeTimeout(time.Duration(cfg.NodeTimeout)),
	)

	provider, err := buildProvider(cfg)
	if err != nil {
		return nil, err
	}

	var source broadcast.Source = broadcast.AlwaysConnected{}
	if cfg.SourceAddr != "" {
		source = broadcast.NewTCPSource(cfg.SourceAddr, 0)
	}

	selfStats := stats.New()

	opts := []broadcast.BroadcasterOption{
		broadcast.WithInterval(time.Duration(cfg.PollInterval)),
		broadcast.WithStats(selfStats),
	}

	if alerters := buildAlerters(cfg); len(alerters) > 0 {
		opts = append(opts, broadcast.WithTracker(alerts.NewTracker(alerters...)))
	}

	broadcaster := broadcast.NewBroadcaster(extractor, registry, provider, source, opts...)

	var apiOpts []api.APIOption

	if cfg.RateRPS > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = defaultRateBurst
		}

		apiOpts = append(apiOpts, api.WithRateLimit(cfg.RateRPS, burst))
	}

	return &Server{
		registry:    registry,
		broadcaster: broadcaster,
		apiServer:   api.NewAPIServer(broadcaster, apiOpts...),
	}, nil
}

func buildProvider(cfg *config.ServerConfig) (discovery.Provider, error) {
	var providers []discovery.Provider

	if len(cfg.Nodes) > 0 {
		static, err := discovery.NewStatic(cfg.Nodes)
		if err != nil {
			return nil, err
		}

		providers = append(providers, static)
	}

	if cfg.NodesFile != "" {
		providers = append(providers, discovery.NewFile(cfg.NodesFile, time.Duration(cfg.PollInterval)))
	}

	if len(providers) == 1 {
		return providers[0], nil
	}

	return discovery.NewMulti(providers...), nil
}

func buildAlerters(cfg *config.ServerConfig) []alerts.AlertService {
	var out []alerts.AlertService

	for _, hook := range cfg.Webhooks {
		if hook.Enabled {
			out = append(out, alerts.NewWebhookAlerter(hook))
		}
	}

	return out
}

// Handler returns the HTTP surface for the lifecycle server.
func (s *Server) Handler() *api.APIServer {
	return s.apiServer
}

// Start implements lifecycle.Service: it runs the poll loop until Stop.
func (s *Server) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)

		if err := s.broadcaster.Run(runCtx); err != nil && runCtx.Err() == nil {
			log.Printf("Broadcaster stopped: %v", err)
		}
	}()

	return nil
}

// Stop implements lifecycle.Service.
func (s *Server) Stop(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}

	if s.done != nil {
		select {
		case <-s.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	s.registry.CloseAll()

	return nil
}
