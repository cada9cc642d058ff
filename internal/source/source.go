// Package source defines the contract shared by every tweet source
// adapter and the error taxonomy the ingestion orchestrator relies on.
package source

import (
	"context"

	"github.com/shipfast/engage-monitor/internal/engage"
)

// Adapter fetches up to limit tweets for one target. The target is a
// handle for timeline sources and a tweet URL for single-tweet import.
// Implementations return items already normalized to the canonical shape.
type Adapter interface {
	Fetch(ctx context.Context, target string, limit int) ([]engage.TweetItem, error)
}
