package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/shipfast/engage-monitor/internal/config"
	"github.com/shipfast/engage-monitor/internal/ingest"
	"github.com/shipfast/engage-monitor/internal/oembed"
	"github.com/shipfast/engage-monitor/internal/queue"
	"github.com/shipfast/engage-monitor/internal/source"
	"github.com/shipfast/engage-monitor/internal/suggest"
)

// Poster publishes a reply to a tweet. The queue never talks to the
// network directly; everything goes through this boundary.
type Poster interface {
	Configured() bool
	PostReply(ctx context.Context, tweetID, text string) (string, error)
}

// Handlers contains the HTTP handlers and their dependencies
type Handlers struct {
	ingestCfg   config.IngestConfig
	timeline    source.Adapter // authenticated X API timelines
	syndication source.Adapter // public syndication fallback
	mirror      source.Adapter // optional RSS mirror, nil when disabled
	importer    *oembed.Client
	engine      *suggest.Engine
	orch        *ingest.Orchestrator
	queue       *queue.Service
	poster      Poster
}

// NewHandlers creates the handler set. mirror may be nil when no RSS
// mirror is configured.
func NewHandlers(
	ingestCfg config.IngestConfig,
	timeline source.Adapter,
	syndication source.Adapter,
	mirror source.Adapter,
	importer *oembed.Client,
	engine *suggest.Engine,
	q *queue.Service,
	poster Poster,
) *Handlers {
	return &Handlers{
		ingestCfg:   ingestCfg,
		timeline:    timeline,
		syndication: syndication,
		mirror:      mirror,
		importer:    importer,
		engine:      engine,
		orch:        ingest.New(),
		queue:       q,
		poster:      poster,
	}
}

// HealthCheck returns service liveness and the posting configuration
// state so dashboards can show both with one probe.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":       "ok",
		"time":         time.Now().UTC().Format(time.RFC3339),
		"x_configured": h.poster.Configured(),
	})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
