// Package lifecycle runs a service plus its HTTP server and handles
// signal-driven shutdown with a bounded grace period.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const (
	ShutdownTimeout   = 10 * time.Second
	ReadHeaderTimeout = 10 * time.Second
)

// Service defines the interface that all services must implement.
type Service interface {
	Start(context.Context) error
	Stop(context.Context) error
}

// ServerOptions holds configuration for creating a server.
type ServerOptions struct {
	ListenAddr  string
	ServiceName string
	Service     Service
	Handler     http.Handler
}

// RunServer starts a service with the provided options and handles lifecycle.
func RunServer(ctx context.Context, opts *ServerOptions) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	log.Printf("*** Starting service %s", opts.ServiceName)

	httpServer := &http.Server{
		Addr:              opts.ListenAddr,
		Handler:           opts.Handler,
		ReadHeaderTimeout: ReadHeaderTimeout,
	}

	errChan := make(chan error, 1)

	go func() {
		if err := opts.Service.Start(ctx); err != nil {
			select {
			case errChan <- err:
			default:
				log.Printf("Service error: %v", err)
			}
		}
	}()

	go func() {
		log.Printf("Starting HTTP server on %s", opts.ListenAddr)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case errChan <- err:
			default:
				log.Printf("HTTP server error: %v", err)
			}
		}
	}()

	return handleShutdown(ctx, cancel, httpServer, opts.Service, errChan)
}

func handleShutdown(
	ctx context.Context, cancel context.CancelFunc, httpServer *http.Server, svc Service, errChan chan error) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	var runErr error

	select {
	case sig := <-sigChan:
		log.Printf("Received signal %v, initiating shutdown", sig)
	case err := <-errChan:
		log.Printf("Received error: %v, initiating shutdown", err)
		runErr = fmt.Errorf("service error: %w", err)
	case <-ctx.Done():
		log.Printf("Context canceled, initiating shutdown")
		runErr = ctx.Err()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer shutdownCancel()

	cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during HTTP shutdown: %v", err)
	}

	if err := svc.Stop(shutdownCtx); err != nil {
		log.Printf("Error during service shutdown: %v", err)

		if runErr == nil {
			runErr = fmt.Errorf("shutdown error: %w", err)
		}
	}

	return runErr
}
