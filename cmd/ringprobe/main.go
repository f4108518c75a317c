// ringprobe connects to a single node's management endpoint, runs the
// extraction catalog once and prints the resulting record as JSON. Useful
// for verifying bridge connectivity before pointing the server at a node.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"github.com/ringview/ringview/pkg/collector"
	"github.com/ringview/ringview/pkg/discovery"
	"github.com/ringview/ringview/pkg/mgmt"
)

func main() {
	var (
		addr    = flag.String("addr", "", "Management endpoint as host:port")
		paths   = flag.String("paths", "", "Comma-separated candidate base paths (default: built-in list)")
		timeout = flag.Duration("timeout", 30*time.Second, "Overall probe timeout")
		useICMP = flag.Bool("icmp", false, "Use ICMP echo for the reachability probe (requires privileges)")
	)

	flag.Parse()

	if *addr == "" {
		flag.Usage()
		os.Exit(2)
	}

	endpoints, err := discovery.ParseEndpoints([]string{*addr})
	if err != nil {
		log.Fatalf("Invalid endpoint: %v", err)
	}

	var opts []mgmt.RegistryOption

	if *paths != "" {
		opts = append(opts, mgmt.WithCandidatePaths(strings.Split(*paths, ",")))
	}

	if *useICMP {
		opts = append(opts, mgmt.WithProber(mgmt.ICMPProber{}))
	}

	registry := mgmt.NewRegistry(opts...)
	defer registry.CloseAll()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	endpoint := endpoints[0]

	result := registry.Connect(ctx, endpoint)
	if result.Err != nil {
		log.Fatalf("Connect to %s failed: %v", endpoint.Key(), result.Err)
	}

	log.Printf("Session established for %s in %s mode", endpoint.Key(), result.Mode)

	if result.Mode == mgmt.ModeBasic {
		log.Fatalf("Endpoint %s is reachable but no candidate address answered; nothing to extract", endpoint.Key())
	}

	extractor := collector.NewExtractor()
	record := extractor.Extract(ctx, result.Session, endpoint.Key())

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(record); err != nil {
		log.Fatalf("Failed to encode record: %v", err)
	}
}
