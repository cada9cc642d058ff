// Package engage defines the canonical representation of imported
// social content shared by every source adapter and the review queue.
package engage

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Metrics holds public engagement counts for one tweet. Only the
// syndication source reports them; other sources leave Metrics nil.
type Metrics struct {
	Likes   int `json:"likes"`
	Replies int `json:"replies"`
	Reposts int `json:"reposts"`
}

// TweetItem is the normalized, source-agnostic shape of one imported tweet.
// SourceTweetID is the natural dedup key; ID is a synthetic, locally-unique
// key used only for list rendering.
type TweetItem struct {
	ID            string    `json:"id"`
	Author        string    `json:"author"`
	Handle        string    `json:"handle"`
	Text          string    `json:"tweet_text"`
	URL           string    `json:"tweet_url"`
	SourceTweetID string    `json:"tweet_id"`
	CreatedAt     time.Time `json:"created_at"`
	Metrics       *Metrics  `json:"metrics,omitempty"`
}

// NewItemID returns a fresh synthetic item id. The eng_ prefix and
// timestamp segment match ids minted for imported batches, so items from
// any source share one id space.
func NewItemID() string {
	return fmt.Sprintf("eng_%d_%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}

// TweetURL builds the canonical tweet URL for sources that report only a
// handle and tweet id.
func TweetURL(handle, sourceTweetID string) string {
	return fmt.Sprintf("https://x.com/%s/status/%s", handle, sourceTweetID)
}
