package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/shipfast/engage-monitor/internal/engage"
	"github.com/shipfast/engage-monitor/internal/ingest"
	"github.com/shipfast/engage-monitor/internal/oembed"
	"github.com/shipfast/engage-monitor/internal/queue"
	"github.com/shipfast/engage-monitor/internal/source"
)

const notConfiguredFetchMsg = "X API not configured. Set TWITTER_API_KEY, TWITTER_API_SECRET, TWITTER_ACCESS_TOKEN and TWITTER_ACCESS_SECRET."

type fetchRequest struct {
	Handles    []string `json:"handles"`
	SeenIDs    []string `json:"seen_ids"`
	Source     string   `json:"source"`
	PerAccount int      `json:"per_account"`
}

type batchResponse struct {
	Items  []queue.Item `json:"items"`
	Errors []string     `json:"errors"`
}

// FetchTimelines pulls recent tweets for a list of handles through the
// selected source, attaches reply suggestions and returns queue-ready
// items. The response always carries both items and errors; a partial
// failure is still a 200.
func (h *Handlers) FetchTimelines(w http.ResponseWriter, r *http.Request) {
	var req fetchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, batchResponse{Items: []queue.Item{}, Errors: []string{"invalid request body"}})
		return
	}

	if len(req.Handles) == 0 {
		respondJSON(w, http.StatusBadRequest, batchResponse{Items: []queue.Item{}, Errors: []string{"no accounts specified"}})
		return
	}

	adapter, batchLimit, errMsg := h.selectSource(req.Source)
	if errMsg != "" {
		status := http.StatusBadRequest
		if errMsg == notConfiguredFetchMsg {
			status = http.StatusForbidden
		}
		respondJSON(w, status, batchResponse{Items: []queue.Item{}, Errors: []string{errMsg}})
		return
	}

	perAccount := req.PerAccount
	if perAccount <= 0 {
		perAccount = h.ingestCfg.PerAccount
	}

	seen := engage.NewSeenIDSet(req.SeenIDs)
	if queued, err := h.queue.SeenIDs(r.Context()); err == nil {
		for id := range queued {
			seen.Add(id)
		}
	}

	targets := ingest.CapTargets(req.Handles, batchLimit)
	res := h.orch.FetchBatch(r.Context(), adapter, targets, seen, perAccount)

	respondJSON(w, http.StatusOK, batchResponse{
		Items:  h.toQueueItems(res.Items),
		Errors: nonNil(res.Errors),
	})
}

// selectSource maps the request's source name to an adapter and its
// batch limit. An empty name means the authenticated API.
func (h *Handlers) selectSource(name string) (source.Adapter, int, string) {
	switch name {
	case "", "api":
		if !h.poster.Configured() {
			return nil, 0, notConfiguredFetchMsg
		}
		return h.timeline, h.ingestCfg.FetchBatchLimit, ""
	case "syndication":
		return h.syndication, h.ingestCfg.ImportBatchLimit, ""
	case "rss":
		if h.mirror == nil {
			return nil, 0, "RSS mirror is not configured"
		}
		return h.mirror, h.ingestCfg.ImportBatchLimit, ""
	default:
		return nil, 0, "unknown source: " + name
	}
}

type importRequest struct {
	URLs []string `json:"urls"`
}

type importResponse struct {
	Items  []queue.Item `json:"items"`
	Failed int          `json:"failed"`
}

// ImportTweets resolves tweet URLs through the oEmbed endpoint and
// returns queue-ready items. URLs that do not look like tweet links are
// dropped before any network call; a request with none left is a 400.
func (h *Handlers) ImportTweets(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	valid := make([]string, 0, len(req.URLs))
	for _, u := range req.URLs {
		u = strings.TrimSpace(u)
		if u != "" && oembed.IsTweetURL(u) {
			valid = append(valid, u)
		}
	}
	if len(valid) == 0 {
		respondError(w, http.StatusBadRequest, "no valid tweet URLs found")
		return
	}

	valid = ingest.CapTargets(valid, h.ingestCfg.ImportBatchLimit)

	items := make([]queue.Item, 0, len(valid))
	failed := 0
	for _, u := range valid {
		tweet, err := h.importer.Import(r.Context(), u)
		if err != nil {
			failed++
			continue
		}
		items = append(items, queue.NewItem(*tweet, h.engine.Generate(tweet.Text, tweet.Handle)))
	}

	respondJSON(w, http.StatusOK, importResponse{Items: items, Failed: failed})
}

type suggestionsRequest struct {
	TweetText string `json:"tweet_text"`
	Author    string `json:"author"`
}

// GenerateSuggestions returns a fresh suggestion set for a tweet text.
// Used by the queue UI when the reviewer cycles past the last stored
// suggestion.
func (h *Handlers) GenerateSuggestions(w http.ResponseWriter, r *http.Request) {
	var req suggestionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	text := strings.TrimSpace(req.TweetText)
	if text == "" {
		respondError(w, http.StatusBadRequest, "tweet_text is required")
		return
	}
	author := strings.TrimPrefix(strings.TrimSpace(req.Author), "@")

	respondJSON(w, http.StatusOK, map[string][]string{
		"suggestions": h.engine.Generate(text, author),
	})
}

// ReplyStatus reports whether the posting path is configured.
func (h *Handlers) ReplyStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]bool{"configured": h.poster.Configured()})
}

type replyRequest struct {
	TweetID string `json:"tweet_id"`
	Text    string `json:"text"`
}

type replyResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"tweet_id,omitempty"`
	Error   string `json:"error,omitempty"`
}

// PostReply publishes a reply through the poster boundary. Upstream
// failures come back as a 500 with the error text so the queue can
// store it on the item.
func (h *Handlers) PostReply(w http.ResponseWriter, r *http.Request) {
	var req replyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, replyResponse{Success: false, Error: "invalid request body"})
		return
	}

	tweetID := strings.TrimSpace(req.TweetID)
	text := strings.TrimSpace(req.Text)
	if tweetID == "" || text == "" {
		respondJSON(w, http.StatusBadRequest, replyResponse{Success: false, Error: "tweet_id and text are required"})
		return
	}

	postedID, err := h.poster.PostReply(r.Context(), tweetID, text)
	if err != nil {
		respondJSON(w, http.StatusInternalServerError, replyResponse{Success: false, Error: err.Error()})
		return
	}
	respondJSON(w, http.StatusOK, replyResponse{Success: true, ID: postedID})
}

// toQueueItems attaches generated suggestions to fetched tweets.
func (h *Handlers) toQueueItems(tweets []engage.TweetItem) []queue.Item {
	items := make([]queue.Item, 0, len(tweets))
	for _, t := range tweets {
		items = append(items, queue.NewItem(t, h.engine.Generate(t.Text, t.Handle)))
	}
	return items
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
