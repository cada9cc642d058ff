package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shipfast/engage-monitor/internal/api"
	"github.com/shipfast/engage-monitor/internal/config"
	"github.com/shipfast/engage-monitor/internal/oembed"
	"github.com/shipfast/engage-monitor/internal/queue"
	"github.com/shipfast/engage-monitor/internal/rssmirror"
	"github.com/shipfast/engage-monitor/internal/source"
	"github.com/shipfast/engage-monitor/internal/storage"
	"github.com/shipfast/engage-monitor/internal/suggest"
	"github.com/shipfast/engage-monitor/internal/syndication"
	"github.com/shipfast/engage-monitor/internal/xapi"
)

// checkPortAvailable verifies that the target port is not already in use.
// This prevents confusion from stale processes occupying the port.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v\n"+
			"  Hint: Run 'lsof -i :%d' to find the blocking process", port, addr, err, port)
	}
	ln.Close()
	return nil
}

func main() {
	// Load configuration
	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Pre-flight check: verify the target port is available
	host := cfg.Server.GetHost()
	port := cfg.Server.Port
	if port == 0 {
		port = 8080
	}
	if err := checkPortAvailable(host, port); err != nil {
		log.Fatalf("Pre-flight check FAILED: %v", err)
	}
	log.Printf("Pre-flight check passed: port %d is available", port)

	// Initialize storage
	blobs, err := storage.New(context.Background(), cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	log.Printf("Storage backend: %s", cfg.Storage.Type)

	// Initialize the X API client. It doubles as the timeline source and
	// the reply poster; unconfigured credentials leave both paths
	// returning an explanatory error instead of failing startup.
	xClient := xapi.NewClient(cfg.XAPI)
	if xClient.Configured() {
		log.Println("X API credentials present, authenticated fetch and reply enabled")
	} else {
		log.Println("X API not configured, running with syndication and import only")
	}

	// Source adapters
	timeline := xapi.NewAdapter(xClient)
	synd := syndication.NewClient(cfg.Syndication)
	var mirror source.Adapter
	if cfg.RSSMirror.Enabled() {
		mirror = rssmirror.NewClient(cfg.RSSMirror)
		log.Printf("RSS mirror enabled: %s", cfg.RSSMirror.BaseURL)
	}

	// Suggestion engine and review queue
	engine := suggest.NewEngine()
	q := queue.NewService(blobs, engine)

	handlers := api.NewHandlers(
		cfg.Ingest,
		timeline,
		synd,
		mirror,
		oembed.NewClient(cfg.OEmbed),
		engine,
		q,
		xClient,
	)
	server := api.NewServer(cfg.Server, handlers)

	// Run the server; main blocks on the signal handler below.
	go func() {
		addr := fmt.Sprintf("%s:%d", host, port)
		log.Printf("Listening on %s", addr)
		if err := server.ListenAndServe(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
	log.Println("Server stopped")
}
