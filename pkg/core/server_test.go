package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ringview/ringview/pkg/config"
)

func testConfig() *config.ServerConfig {
	return &config.ServerConfig{
		ListenAddr:   ":0",
		PollInterval: config.Duration(time.Hour),
		Nodes:        []string{"127.0.0.1:1"},
		ProbeTimeout: config.Duration(50 * time.Millisecond),
	}
}

func TestNewServer(t *testing.T) {
	srv, err := NewServer(testConfig())
	require.NoError(t, err)

	assert.NotNil(t, srv.Handler())
}

func TestNewServer_InvalidNode(t *testing.T) {
	cfg := testConfig()
	cfg.Nodes = []string{"not-an-endpoint"}

	_, err := NewServer(cfg)
	assert.Error(t, err)
}

func TestServer_StartStop(t *testing.T) {
	srv, err := NewServer(testConfig())
	require.NoError(t, err)

	require.NoError(t, srv.Start(context.Background()))

	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	assert.NoError(t, srv.Stop(stopCtx))
}
