// Package xapi implements the authenticated X API source adapter and the
// reply poster. All calls use OAuth 1.0a user-context signing; when any
// of the four credentials is missing the client fails fast without
// touching the network.
package xapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/shipfast/engage-monitor/internal/config"
	"github.com/shipfast/engage-monitor/internal/pkg/httpretry"
	"github.com/shipfast/engage-monitor/internal/pkg/oauth1"
	"github.com/shipfast/engage-monitor/internal/source"
)

const missingCredentialsMsg = "X API not configured. Set TWITTER_API_KEY, TWITTER_API_SECRET, TWITTER_ACCESS_TOKEN and TWITTER_ACCESS_SECRET."

const authDeniedMsg = "access denied: the configured X API plan does not permit reading timelines"

// Client is an authenticated X API client
type Client struct {
	baseURL    string
	signer     *oauth1.Signer
	configured bool
	httpClient httpretry.HTTPDoer
}

// NewClient creates a new X API client
func NewClient(cfg config.XAPIConfig) *Client {
	creds := oauth1.Credentials{
		ConsumerKey:    cfg.APIKey,
		ConsumerSecret: cfg.APISecret,
		AccessToken:    cfg.AccessToken,
		AccessSecret:   cfg.AccessSecret,
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		signer:     oauth1.NewSigner(creds),
		configured: creds.Complete(),
		httpClient: httpretry.New(&http.Client{Timeout: cfg.Timeout()}, 2),
	}
}

// Configured reports whether all four credentials are present
func (c *Client) Configured() bool {
	return c.configured
}

// doRequest makes a signed HTTP request to the X API
func (c *Client) doRequest(ctx context.Context, method, path string, params url.Values, body []byte) ([]byte, error) {
	if !c.configured {
		return nil, source.NewError(source.KindNotConfigured, "%s", missingCredentialsMsg)
	}

	fullURL := c.baseURL + path
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.signer.Sign(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, source.WrapError(source.KindNetwork, err, "executing request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, source.WrapError(source.KindNetwork, err, "reading response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if isPermissionFailure(resp.StatusCode, respBody) {
			return nil, &source.Error{
				Kind:    source.KindAuthDenied,
				Message: authDeniedMsg,
				Status:  resp.StatusCode,
			}
		}
		return nil, source.StatusError(resp.StatusCode, fmt.Sprintf("API error: %s", strings.TrimSpace(string(respBody))))
	}

	return respBody, nil
}

// isPermissionFailure recognizes the capability-level denial the X API
// returns when the configured plan cannot read timelines.
func isPermissionFailure(status int, body []byte) bool {
	if status == http.StatusForbidden {
		return true
	}
	s := string(body)
	return strings.Contains(s, "not permitted") || strings.Contains(s, "Forbidden")
}

// LookupUser resolves a handle to a user id. A leading @ is tolerated.
func (c *Client) LookupUser(ctx context.Context, handle string) (*User, error) {
	handle = strings.TrimPrefix(strings.TrimSpace(handle), "@")

	body, err := c.doRequest(ctx, http.MethodGet, "/2/users/by/username/"+url.PathEscape(handle), nil, nil)
	if err != nil {
		return nil, err
	}

	var resp userResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, source.WrapError(source.KindParse, err, "parsing user lookup")
	}
	if resp.Data == nil {
		return nil, source.NewError(source.KindValidation, "@%s not found", handle)
	}
	return resp.Data, nil
}

// UserTweets fetches up to max recent original tweets for a user id,
// excluding replies and reposts.
func (c *Client) UserTweets(ctx context.Context, userID string, max int) ([]Tweet, error) {
	// The v2 endpoint rejects max_results outside [5,100].
	if max < 5 {
		max = 5
	}
	if max > 100 {
		max = 100
	}

	params := url.Values{}
	params.Set("max_results", fmt.Sprintf("%d", max))
	params.Set("exclude", "replies,retweets")
	params.Set("tweet.fields", "created_at")

	body, err := c.doRequest(ctx, http.MethodGet, "/2/users/"+url.PathEscape(userID)+"/tweets", params, nil)
	if err != nil {
		return nil, err
	}

	var resp timelineResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, source.WrapError(source.KindParse, err, "parsing timeline")
	}
	return resp.Data, nil
}

// PostReply posts text as a reply to tweetID and returns the created
// tweet id. No retry or idempotency is provided at this boundary;
// calling twice for the same item can post twice.
func (c *Client) PostReply(ctx context.Context, tweetID, text string) (string, error) {
	payload, err := json.Marshal(postTweetRequest{
		Text:  text,
		Reply: &replyInfo{InReplyToTweetID: tweetID},
	})
	if err != nil {
		return "", fmt.Errorf("encoding reply: %w", err)
	}

	body, err := c.doRequest(ctx, http.MethodPost, "/2/tweets", nil, payload)
	if err != nil {
		return "", err
	}

	var resp postTweetResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", source.WrapError(source.KindParse, err, "parsing post response")
	}
	if resp.Data == nil {
		if len(resp.Errors) > 0 {
			return "", source.NewError(source.KindNetwork, "post rejected: %s", resp.Errors[0].Detail)
		}
		return "", source.NewError(source.KindParse, "post response missing data")
	}
	return resp.Data.ID, nil
}
