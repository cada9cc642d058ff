// Package ingest runs batch fetches across source adapters and folds
// per-target failures into a partial result instead of aborting the batch.
package ingest

import (
	"context"
	"fmt"
	"strings"

	"github.com/shipfast/engage-monitor/internal/engage"
	"github.com/shipfast/engage-monitor/internal/pkg/logger"
	"github.com/shipfast/engage-monitor/internal/source"
)

// Result is the outcome of one batch fetch. Items holds everything that
// was retrieved and deduplicated; Errors holds one human-readable entry
// per failed target. A batch with only failures still returns a Result.
type Result struct {
	Items  []engage.TweetItem
	Errors []string
}

// Orchestrator fans a list of targets out to a single source adapter,
// sequentially, and collects the survivors.
type Orchestrator struct{}

// New creates a new Orchestrator
func New() *Orchestrator {
	return &Orchestrator{}
}

// FetchBatch fetches up to perTarget items for each target through the
// adapter. Targets already present in seen are dropped, as are
// duplicates across targets within the batch. An auth denial aborts the
// remainder of the batch because every further call would fail the same
// way.
func (o *Orchestrator) FetchBatch(ctx context.Context, adapter source.Adapter, targets []string, seen engage.SeenIDSet, perTarget int) Result {
	var res Result
	for _, target := range targets {
		target = strings.TrimSpace(target)
		if target == "" {
			continue
		}

		items, err := adapter.Fetch(ctx, target, perTarget)
		if err != nil {
			res.Errors = append(res.Errors, formatTargetError(target, err))
			if source.IsAuthDenied(err) {
				logger.Warn("batch aborted on auth denial", "target", target)
				break
			}
			logger.Warn("target fetch failed", "target", target, "error", err.Error())
			continue
		}

		res.Items = append(res.Items, engage.Dedupe(items, seen)...)
	}
	return res
}

// formatTargetError renders one batch error entry. Handle targets get an
// @ prefix so the UI can show who failed; URL targets are shown as-is.
func formatTargetError(target string, err error) string {
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		return fmt.Sprintf("%s: %s", target, err.Error())
	}
	return fmt.Sprintf("@%s: %s", strings.TrimPrefix(target, "@"), err.Error())
}

// CapTargets trims a target list to the batch limit.
func CapTargets(targets []string, limit int) []string {
	if len(targets) > limit {
		return targets[:limit]
	}
	return targets
}
