// Package discovery pkg/discovery/file.go
package discovery

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/ringview/ringview/pkg/mgmt"
)

const defaultRefresh = 5 * time.Second

// FileProvider reads endpoints from a file with one "host:port" per line
// (comments and blank lines allowed). The file is re-read when its mtime
// changes or the refresh interval elapses, so edits by an orchestrator are
// picked up by the next poll cycle.
type FileProvider struct {
	path    string
	refresh time.Duration

	mu       sync.Mutex
	lastRead time.Time
	mtime    time.Time
	cache    []mgmt.Endpoint
}

// NewFile creates a file-backed provider.
func NewFile(path string, refresh time.Duration) *FileProvider {
	if refresh <= 0 {
		refresh = defaultRefresh
	}

	return &FileProvider{path: path, refresh: refresh}
}

// Endpoints implements Provider.
func (p *FileProvider) Endpoints(_ context.Context) ([]mgmt.Endpoint, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	stat, err := os.Stat(p.path)
	if err != nil {
		// Serve the last good list when the file is briefly missing, but
		// fail loudly when there never was one.
		if p.cache != nil {
			return append([]mgmt.Endpoint(nil), p.cache...), nil
		}

		return nil, fmt.Errorf("failed to stat endpoints file: %w", err)
	}

	now := time.Now()

	if stat.ModTime().After(p.mtime) || now.Sub(p.lastRead) >= p.refresh || p.cache == nil {
		endpoints, err := p.load()
		if err != nil {
			if p.cache != nil {
				return append([]mgmt.Endpoint(nil), p.cache...), nil
			}

			return nil, err
		}

		p.cache = endpoints
		p.lastRead = now
		p.mtime = stat.ModTime()
	}

	return append([]mgmt.Endpoint(nil), p.cache...), nil
}

func (p *FileProvider) load() ([]mgmt.Endpoint, error) {
	f, err := os.Open(p.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open endpoints file: %w", err)
	}
	defer f.Close()

	var addrs []string

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		addrs = append(addrs, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read endpoints file: %w", err)
	}

	return ParseEndpoints(addrs)
}
