// Package oembed implements single-tweet import through the public
// oEmbed endpoint. The target is a tweet URL rather than a handle.
package oembed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shipfast/engage-monitor/internal/config"
	"github.com/shipfast/engage-monitor/internal/engage"
	"github.com/shipfast/engage-monitor/internal/pkg/httpretry"
	"github.com/shipfast/engage-monitor/internal/source"
)

// Result is the subset of the oEmbed response the importer reads.
type Result struct {
	AuthorName string `json:"author_name"`
	AuthorURL  string `json:"author_url"`
	HTML       string `json:"html"`
	URL        string `json:"url"`
}

// Client imports single tweets by URL
type Client struct {
	baseURL    string
	httpClient httpretry.HTTPDoer
}

// NewClient creates a new oEmbed client with a hard request timeout
func NewClient(cfg config.OEmbedConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout(),
		},
	}
}

// Fetch imports the tweet addressed by rawURL. limit is accepted for
// contract symmetry; a tweet URL always yields at most one item.
func (c *Client) Fetch(ctx context.Context, rawURL string, limit int) ([]engage.TweetItem, error) {
	if limit < 1 {
		return nil, nil
	}

	item, err := c.Import(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return []engage.TweetItem{*item}, nil
}

// Import fetches and normalizes one tweet by URL.
func (c *Client) Import(ctx context.Context, rawURL string) (*engage.TweetItem, error) {
	normalized := NormalizeURL(rawURL)
	tweetID := ExtractTweetID(normalized)
	if tweetID == "" {
		return nil, source.NewError(source.KindValidation, "invalid tweet URL: %s", rawURL)
	}

	endpoint := fmt.Sprintf("%s/oembed?url=%s&omit_script=true", c.baseURL, url.QueryEscape(normalized))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, source.WrapError(source.KindNetwork, err, "fetching oembed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, source.StatusError(resp.StatusCode, "oembed failed")
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, source.WrapError(source.KindNetwork, err, "reading oembed response")
	}

	var result Result
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, source.WrapError(source.KindParse, err, "parsing oembed response")
	}

	text := ExtractText(result.HTML)
	if text == "" {
		return nil, source.NewError(source.KindParse, "empty tweet text")
	}

	return &engage.TweetItem{
		ID:            engage.NewItemID(),
		Author:        result.AuthorName,
		Handle:        extractHandle(result.AuthorURL),
		Text:          text,
		URL:           normalized,
		SourceTweetID: tweetID,
		CreatedAt:     time.Now().UTC(),
	}, nil
}
