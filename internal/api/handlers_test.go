package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shipfast/engage-monitor/internal/config"
	"github.com/shipfast/engage-monitor/internal/engage"
	"github.com/shipfast/engage-monitor/internal/oembed"
	"github.com/shipfast/engage-monitor/internal/queue"
	"github.com/shipfast/engage-monitor/internal/source"
	"github.com/shipfast/engage-monitor/internal/storage"
	"github.com/shipfast/engage-monitor/internal/suggest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAdapter struct {
	items map[string][]engage.TweetItem
	errs  map[string]error
}

func (a *stubAdapter) Fetch(ctx context.Context, target string, limit int) ([]engage.TweetItem, error) {
	if err := a.errs[target]; err != nil {
		return nil, err
	}
	items := a.items[target]
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

type stubPoster struct {
	configured bool
	err        error
	posted     []string
}

func (p *stubPoster) Configured() bool { return p.configured }

func (p *stubPoster) PostReply(ctx context.Context, tweetID, text string) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	p.posted = append(p.posted, tweetID+":"+text)
	return "900", nil
}

type testEnv struct {
	server *httptest.Server
	poster *stubPoster
	queue  *queue.Service
}

func newTestEnv(t *testing.T, timeline *stubAdapter, oembedURL string) *testEnv {
	t.Helper()

	engine := suggest.NewEngineWithSeed(1)
	q := queue.NewService(storage.NewMemory(), engine)
	poster := &stubPoster{configured: true}

	if timeline == nil {
		timeline = &stubAdapter{}
	}
	importer := oembed.NewClient(config.OEmbedConfig{BaseURL: oembedURL, TimeoutSeconds: 5})

	h := NewHandlers(
		config.IngestConfig{FetchBatchLimit: 15, ImportBatchLimit: 20, PerAccount: 5},
		timeline,
		&stubAdapter{},
		nil,
		importer,
		engine,
		q,
		poster,
	)

	server := httptest.NewServer(SetupRoutes(h))
	t.Cleanup(server.Close)
	return &testEnv{server: server, poster: poster, queue: q}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) (*http.Response, []byte) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, e.server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, buf.Bytes()
}

func fetchTweet(id, text string) engage.TweetItem {
	return engage.TweetItem{
		ID:            "eng_1_" + id,
		Author:        "Pieter Levels",
		Handle:        "levelsio",
		Text:          text,
		URL:           "https://x.com/levelsio/status/" + id,
		SourceTweetID: id,
	}
}

func TestHealthCheck(t *testing.T) {
	env := newTestEnv(t, nil, "http://unused.invalid")

	resp, body := env.do(t, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "ok", out["status"])
	assert.Equal(t, true, out["x_configured"])
}

func TestFetchTimelines(t *testing.T) {
	timeline := &stubAdapter{
		items: map[string][]engage.TweetItem{
			"levelsio": {
				fetchTweet("100", "just shipped a new feature"),
				fetchTweet("101", "another tweet"),
			},
		},
	}
	env := newTestEnv(t, timeline, "http://unused.invalid")

	resp, body := env.do(t, http.MethodPost, "/api/engage/fetch", map[string]interface{}{
		"handles":  []string{"levelsio"},
		"seen_ids": []string{"101"},
	})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var out batchResponse
	require.NoError(t, json.Unmarshal(body, &out))
	require.Len(t, out.Items, 1)
	assert.Empty(t, out.Errors)

	item := out.Items[0]
	assert.Equal(t, "100", item.TweetID)
	assert.Equal(t, queue.StatusPending, item.Status)
	assert.NotEmpty(t, item.Suggestions)
	assert.LessOrEqual(t, len(item.Suggestions), 4)
	assert.Equal(t, item.Suggestions[0], item.EditedReply)
}

func TestFetchTimelinesUnconfigured(t *testing.T) {
	env := newTestEnv(t, nil, "http://unused.invalid")
	env.poster.configured = false

	resp, body := env.do(t, http.MethodPost, "/api/engage/fetch", map[string]interface{}{
		"handles": []string{"levelsio"},
	})

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	var out batchResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Empty(t, out.Items)
	require.Len(t, out.Errors, 1)
	assert.Contains(t, out.Errors[0], "X API not configured")
}

func TestFetchTimelinesSyndicationWorksUnconfigured(t *testing.T) {
	env := newTestEnv(t, nil, "http://unused.invalid")
	env.poster.configured = false

	resp, _ := env.do(t, http.MethodPost, "/api/engage/fetch", map[string]interface{}{
		"handles": []string{"levelsio"},
		"source":  "syndication",
	})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestFetchTimelinesValidation(t *testing.T) {
	env := newTestEnv(t, nil, "http://unused.invalid")

	resp, _ := env.do(t, http.MethodPost, "/api/engage/fetch", map[string]interface{}{
		"handles": []string{},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = env.do(t, http.MethodPost, "/api/engage/fetch", map[string]interface{}{
		"handles": []string{"a"},
		"source":  "carrier-pigeon",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = env.do(t, http.MethodPost, "/api/engage/fetch", map[string]interface{}{
		"handles": []string{"a"},
		"source":  "rss",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestFetchTimelinesSkipsAlreadyQueued(t *testing.T) {
	timeline := &stubAdapter{
		items: map[string][]engage.TweetItem{
			"levelsio": {fetchTweet("100", "already queued")},
		},
	}
	env := newTestEnv(t, timeline, "http://unused.invalid")

	_, err := env.queue.Add(context.Background(), []queue.Item{
		queue.NewItem(fetchTweet("100", "already queued"), nil),
	})
	require.NoError(t, err)

	resp, body := env.do(t, http.MethodPost, "/api/engage/fetch", map[string]interface{}{
		"handles": []string{"levelsio"},
	})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var out batchResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Empty(t, out.Items)
}

func TestImportTweets(t *testing.T) {
	oembedServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		target := r.URL.Query().Get("url")
		if target == "https://x.com/ghost/status/404" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprintf(w, `{
			"author_name": "Pieter Levels",
			"author_url": "https://twitter.com/levelsio",
			"html": "<blockquote><p>just shipped a new feature</p></blockquote>",
			"url": %q
		}`, target)
	}))
	defer oembedServer.Close()

	env := newTestEnv(t, nil, oembedServer.URL)

	resp, body := env.do(t, http.MethodPost, "/api/engage/import", map[string]interface{}{
		"urls": []string{
			"https://twitter.com/levelsio/status/123?s=20",
			"https://x.com/ghost/status/404",
			"https://x.com/levelsio",
			"not a url",
		},
	})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var out importResponse
	require.NoError(t, json.Unmarshal(body, &out))
	require.Len(t, out.Items, 1)
	assert.Equal(t, 1, out.Failed)

	item := out.Items[0]
	assert.Equal(t, "123", item.TweetID)
	assert.Equal(t, "https://x.com/levelsio/status/123", item.TweetURL)
	assert.Equal(t, queue.StatusPending, item.Status)
	assert.NotEmpty(t, item.Suggestions)
}

func TestImportTweetsNoValidURLs(t *testing.T) {
	env := newTestEnv(t, nil, "http://unused.invalid")

	resp, _ := env.do(t, http.MethodPost, "/api/engage/import", map[string]interface{}{
		"urls": []string{"https://x.com/levelsio", ""},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGenerateSuggestions(t *testing.T) {
	env := newTestEnv(t, nil, "http://unused.invalid")

	resp, body := env.do(t, http.MethodPost, "/api/engage/suggestions", map[string]string{
		"tweet_text": "just shipped a new feature",
		"author":     "@levelsio",
	})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var out map[string][]string
	require.NoError(t, json.Unmarshal(body, &out))
	assert.GreaterOrEqual(t, len(out["suggestions"]), 1)
	assert.LessOrEqual(t, len(out["suggestions"]), 4)

	resp, _ = env.do(t, http.MethodPost, "/api/engage/suggestions", map[string]string{
		"tweet_text": "   ",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestReplyStatus(t *testing.T) {
	env := newTestEnv(t, nil, "http://unused.invalid")
	env.poster.configured = false

	resp, body := env.do(t, http.MethodGet, "/api/engage/reply", nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var out map[string]bool
	require.NoError(t, json.Unmarshal(body, &out))
	assert.False(t, out["configured"])
}

func TestPostReply(t *testing.T) {
	env := newTestEnv(t, nil, "http://unused.invalid")

	resp, body := env.do(t, http.MethodPost, "/api/engage/reply", map[string]string{
		"tweet_id": "100",
		"text":     "great work",
	})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var out replyResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.True(t, out.Success)
	assert.Equal(t, "900", out.ID)
	assert.Equal(t, []string{"100:great work"}, env.poster.posted)
}

func TestPostReplyValidationAndFailure(t *testing.T) {
	env := newTestEnv(t, nil, "http://unused.invalid")

	resp, _ := env.do(t, http.MethodPost, "/api/engage/reply", map[string]string{
		"tweet_id": "100",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	env.poster.err = source.NewError(source.KindNetwork, "post rejected: duplicate content")
	resp, body := env.do(t, http.MethodPost, "/api/engage/reply", map[string]string{
		"tweet_id": "100",
		"text":     "great work",
	})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	var out replyResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.False(t, out.Success)
	assert.Contains(t, out.Error, "duplicate content")
}

func TestQueueLifecycle(t *testing.T) {
	env := newTestEnv(t, nil, "http://unused.invalid")

	item := queue.NewItem(fetchTweet("100", "just shipped"), []string{"nice", "congrats"})

	// Add
	resp, body := env.do(t, http.MethodPost, "/api/engage/queue/items", map[string]interface{}{
		"items": []queue.Item{item},
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var added []queue.Item
	require.NoError(t, json.Unmarshal(body, &added))
	require.Len(t, added, 1)

	// List
	resp, body = env.do(t, http.MethodGet, "/api/engage/queue", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var listed []queue.Item
	require.NoError(t, json.Unmarshal(body, &listed))
	require.Len(t, listed, 1)

	// Edit the draft
	resp, body = env.do(t, http.MethodPatch, "/api/engage/queue/items/"+item.ID, map[string]interface{}{
		"edited_reply": "my own reply",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var updated queue.Item
	require.NoError(t, json.Unmarshal(body, &updated))
	assert.Equal(t, "my own reply", updated.EditedReply)

	// Cycle the suggestion
	resp, body = env.do(t, http.MethodPatch, "/api/engage/queue/items/"+item.ID, map[string]interface{}{
		"next_suggestion": true,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &updated))
	assert.Equal(t, 1, updated.SuggestionIndex)
	assert.Equal(t, "congrats", updated.EditedReply)

	// Walk the happy path to done.
	for _, status := range []queue.Status{queue.StatusPosting, queue.StatusDone} {
		resp, _ = env.do(t, http.MethodPatch, "/api/engage/queue/items/"+item.ID, map[string]interface{}{
			"status": status,
		})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}

	// Clear completed
	resp, body = env.do(t, http.MethodDelete, "/api/engage/queue/completed", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var cleared struct {
		Removed int          `json:"removed"`
		Items   []queue.Item `json:"items"`
	}
	require.NoError(t, json.Unmarshal(body, &cleared))
	assert.Equal(t, 1, cleared.Removed)
	assert.Empty(t, cleared.Items)
}

func TestAddQueueItemFromRawText(t *testing.T) {
	env := newTestEnv(t, nil, "http://unused.invalid")

	resp, body := env.do(t, http.MethodPost, "/api/engage/queue/items", map[string]string{
		"tweet_text": "just shipped a new feature",
		"author":     "@levelsio",
		"tweet_url":  "https://x.com/levelsio/status/100",
	})

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var added []queue.Item
	require.NoError(t, json.Unmarshal(body, &added))
	require.Len(t, added, 1)
	assert.Equal(t, "levelsio", added[0].Handle)
	assert.Equal(t, "100", added[0].TweetID)
	assert.Equal(t, queue.StatusPending, added[0].Status)
	assert.NotEmpty(t, added[0].Suggestions)
	assert.Equal(t, added[0].Suggestions[0], added[0].EditedReply)
}

func TestQueueUpdateErrors(t *testing.T) {
	env := newTestEnv(t, nil, "http://unused.invalid")

	item := queue.NewItem(fetchTweet("100", "text"), nil)
	resp, _ := env.do(t, http.MethodPost, "/api/engage/queue/items", map[string]interface{}{
		"items": []queue.Item{item},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Unknown item
	resp, _ = env.do(t, http.MethodPatch, "/api/engage/queue/items/missing", map[string]interface{}{
		"status": queue.StatusPosting,
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Invalid transition: pending cannot jump straight to done.
	resp, _ = env.do(t, http.MethodPatch, "/api/engage/queue/items/"+item.ID, map[string]interface{}{
		"status": queue.StatusDone,
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// No action
	resp, _ = env.do(t, http.MethodPatch, "/api/engage/queue/items/"+item.ID, map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAccountsEndpoints(t *testing.T) {
	env := newTestEnv(t, nil, "http://unused.invalid")

	resp, body := env.do(t, http.MethodPut, "/api/engage/accounts", map[string]interface{}{
		"handles": []string{"@levelsio", "tdinh_me"},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var out map[string][]string
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, []string{"levelsio", "tdinh_me"}, out["handles"])

	resp, body = env.do(t, http.MethodGet, "/api/engage/accounts", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, []string{"levelsio", "tdinh_me"}, out["handles"])
}
