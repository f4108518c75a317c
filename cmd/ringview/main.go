package main

import (
	"context"
	"flag"
	"log"

	"github.com/ringview/ringview/pkg/config"
	"github.com/ringview/ringview/pkg/core"
	"github.com/ringview/ringview/pkg/lifecycle"
)

func main() {
	configPath := flag.String("config", "/etc/ringview/ringview.json", "Path to config file")
	flag.Parse()

	var cfg config.ServerConfig
	if err := config.LoadAndValidate(*configPath, &cfg); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	server, err := core.NewServer(&cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	if err := lifecycle.RunServer(context.Background(), &lifecycle.ServerOptions{
		ListenAddr:  cfg.ListenAddr,
		ServiceName: "ringview",
		Service:     server,
		Handler:     server.Handler(),
	}); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
