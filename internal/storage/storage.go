// Package storage persists the review queue and the account list as
// JSON blobs keyed by name. Four backends share one interface: memory
// for tests, local files for single-box deployments, Redis for shared
// state, and S3 for serverless-ish setups.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/shipfast/engage-monitor/internal/config"
)

// ErrNotFound is returned by Get when the key has never been written.
// Callers treat it as "start from empty", not as a failure.
var ErrNotFound = errors.New("storage: key not found")

// Blobs reads and writes named JSON documents. Put replaces the whole
// value; there are no partial updates, the queue is small enough to
// rewrite on every mutation.
type Blobs interface {
	Get(ctx context.Context, key string, v interface{}) error
	Put(ctx context.Context, key string, v interface{}) error
}

// New creates the blob backend selected by the configuration.
func New(ctx context.Context, cfg config.StorageConfig) (Blobs, error) {
	switch cfg.Type {
	case "", "memory":
		return NewMemory(), nil
	case "local":
		return NewLocal(cfg.LocalPath)
	case "redis":
		return NewRedis(cfg.RedisAddr)
	case "s3":
		return NewS3(ctx, cfg.S3Bucket, cfg.AWSRegion)
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
}
