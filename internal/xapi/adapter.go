package xapi

import (
	"context"
	"time"

	"github.com/shipfast/engage-monitor/internal/engage"
)

// Adapter exposes the authenticated client as a timeline source.
type Adapter struct {
	client *Client
}

// NewAdapter creates a source adapter over the authenticated client.
func NewAdapter(client *Client) *Adapter {
	return &Adapter{client: client}
}

// Fetch returns up to limit recent original tweets for a handle,
// normalized to the canonical item shape. Metrics are not reported by
// this source.
func (a *Adapter) Fetch(ctx context.Context, handle string, limit int) ([]engage.TweetItem, error) {
	user, err := a.client.LookupUser(ctx, handle)
	if err != nil {
		return nil, err
	}

	tweets, err := a.client.UserTweets(ctx, user.ID, limit)
	if err != nil {
		return nil, err
	}

	items := make([]engage.TweetItem, 0, len(tweets))
	for _, t := range tweets {
		if len(items) >= limit {
			break
		}
		items = append(items, convert(t, user))
	}
	return items, nil
}

func convert(t Tweet, user *User) engage.TweetItem {
	createdAt, err := time.Parse(time.RFC3339, t.CreatedAt)
	if err != nil {
		createdAt = time.Now().UTC()
	}
	return engage.TweetItem{
		ID:            engage.NewItemID(),
		Author:        user.Name,
		Handle:        user.Username,
		Text:          t.Text,
		URL:           engage.TweetURL(user.Username, t.ID),
		SourceTweetID: t.ID,
		CreatedAt:     createdAt,
	}
}
