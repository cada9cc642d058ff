// Package syndication implements the unauthenticated public timeline
// source adapter. The endpoint serves HTML with one embedded JSON
// document describing the account's recent timeline.
package syndication

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/shipfast/engage-monitor/internal/config"
	"github.com/shipfast/engage-monitor/internal/engage"
	"github.com/shipfast/engage-monitor/internal/pkg/httpretry"
	"github.com/shipfast/engage-monitor/internal/source"
)

// The embedded JSON document lives in this script tag.
const dataScriptSelector = `script#__NEXT_DATA__`

// Client fetches public per-account timelines
type Client struct {
	baseURL    string
	userAgent  string
	httpClient httpretry.HTTPDoer
}

// NewClient creates a new syndication client with a hard request timeout
func NewClient(cfg config.SyndicationConfig) *Client {
	return &Client{
		baseURL:   cfg.BaseURL,
		userAgent: cfg.UserAgent,
		httpClient: &http.Client{
			Timeout: cfg.Timeout(),
		},
	}
}

// Fetch returns up to limit tweets from the public timeline of handle.
// Entries that are not tweets, or that lack text or an id, are skipped.
func (c *Client) Fetch(ctx context.Context, handle string, limit int) ([]engage.TweetItem, error) {
	handle = strings.TrimPrefix(strings.TrimSpace(handle), "@")

	endpoint := fmt.Sprintf("%s/srv/timeline-profile/screen-name/%s", c.baseURL, url.PathEscape(handle))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, source.WrapError(source.KindNetwork, err, "fetching timeline")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, source.StatusError(resp.StatusCode, "timeline request failed")
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, source.WrapError(source.KindParse, err, "reading timeline HTML")
	}

	raw := doc.Find(dataScriptSelector).First().Text()
	if raw == "" {
		return nil, source.NewError(source.KindParse, "timeline HTML has no embedded data document")
	}

	var tl timelineDocument
	if err := json.Unmarshal([]byte(raw), &tl); err != nil {
		return nil, source.WrapError(source.KindParse, err, "parsing embedded timeline data")
	}

	items := make([]engage.TweetItem, 0, limit)
	for _, entry := range tl.Props.PageProps.Timeline.Entries {
		if len(items) >= limit {
			break
		}
		if entry.Type != "tweet" || entry.Content.Tweet == nil {
			continue
		}
		t := entry.Content.Tweet
		if t.IDStr == "" || strings.TrimSpace(t.FullText) == "" {
			continue
		}
		items = append(items, convert(t, handle))
	}
	return items, nil
}

func convert(t *entryTweet, handle string) engage.TweetItem {
	screenName := t.User.ScreenName
	if screenName == "" {
		screenName = handle
	}
	return engage.TweetItem{
		ID:            engage.NewItemID(),
		Author:        t.User.Name,
		Handle:        screenName,
		Text:          t.FullText,
		URL:           engage.TweetURL(screenName, t.IDStr),
		SourceTweetID: t.IDStr,
		CreatedAt:     parseCreatedAt(t.CreatedAt),
		Metrics: &engage.Metrics{
			Likes:   t.FavoriteCount,
			Replies: t.ConversationCount,
			Reposts: t.RetweetCount,
		},
	}
}

// parseCreatedAt accepts both the ISO timestamps of the embedded
// document and the legacy "Mon Jan 2 15:04:05 -0700 2006" format.
func parseCreatedAt(s string) time.Time {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts
	}
	if ts, err := time.Parse(time.RubyDate, s); err == nil {
		return ts
	}
	return time.Now().UTC()
}
