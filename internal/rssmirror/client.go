// Package rssmirror implements an optional timeline source over public
// RSS mirrors of account timelines. It is wired only when a mirror base
// URL is configured; its failures are per-target like any other source.
package rssmirror

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/shipfast/engage-monitor/internal/config"
	"github.com/shipfast/engage-monitor/internal/engage"
	"github.com/shipfast/engage-monitor/internal/oembed"
	"github.com/shipfast/engage-monitor/internal/pkg/httpretry"
	"github.com/shipfast/engage-monitor/internal/source"
)

// Client fetches account timelines from an RSS mirror instance
type Client struct {
	baseURL    string
	parser     *gofeed.Parser
	httpClient httpretry.HTTPDoer
}

// NewClient creates a new RSS mirror client
func NewClient(cfg config.RSSMirrorConfig) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		parser:  gofeed.NewParser(),
		httpClient: &http.Client{
			Timeout: cfg.Timeout(),
		},
	}
}

// Fetch returns up to limit tweets from the mirror's RSS feed for a
// handle. Feed items that do not link to a single tweet are skipped.
func (c *Client) Fetch(ctx context.Context, handle string, limit int) ([]engage.TweetItem, error) {
	handle = strings.TrimPrefix(strings.TrimSpace(handle), "@")

	endpoint := fmt.Sprintf("%s/%s/rss", c.baseURL, url.PathEscape(handle))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, source.WrapError(source.KindNetwork, err, "fetching feed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, source.StatusError(resp.StatusCode, "feed request failed")
	}

	feed, err := c.parser.Parse(resp.Body)
	if err != nil {
		return nil, source.WrapError(source.KindParse, err, "parsing feed")
	}

	author := handle
	if feed.Title != "" {
		// Mirror feeds title as "Name / @handle".
		if i := strings.Index(feed.Title, " / "); i > 0 {
			author = feed.Title[:i]
		} else {
			author = feed.Title
		}
	}

	items := make([]engage.TweetItem, 0, limit)
	for _, fi := range feed.Items {
		if len(items) >= limit {
			break
		}
		tweetID := oembed.ExtractTweetID(fi.Link)
		if tweetID == "" {
			continue
		}
		text := strings.TrimSpace(fi.Title)
		if text == "" {
			continue
		}

		createdAt := time.Now().UTC()
		if fi.PublishedParsed != nil {
			createdAt = fi.PublishedParsed.UTC()
		}

		items = append(items, engage.TweetItem{
			ID:            engage.NewItemID(),
			Author:        author,
			Handle:        handle,
			Text:          text,
			URL:           engage.TweetURL(handle, tweetID),
			SourceTweetID: tweetID,
			CreatedAt:     createdAt,
		})
	}
	return items, nil
}
