package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shipfast/engage-monitor/internal/engage"
	"github.com/shipfast/engage-monitor/internal/oembed"
	"github.com/shipfast/engage-monitor/internal/queue"
)

// GetQueue returns the full review queue, newest first.
func (h *Handlers) GetQueue(w http.ResponseWriter, r *http.Request) {
	items, err := h.queue.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, items)
}

type addItemsRequest struct {
	Items []queue.Item `json:"items"`

	// Single-item form: build one queue item from raw tweet text.
	TweetText string `json:"tweet_text"`
	Author    string `json:"author"`
	TweetURL  string `json:"tweet_url"`
}

// AddQueueItems prepends items to the queue. Accepts either a list of
// queue-ready items from fetch/import, or a single raw tweet text for
// which suggestions are generated here.
func (h *Handlers) AddQueueItems(w http.ResponseWriter, r *http.Request) {
	var req addItemsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if len(req.Items) == 0 {
		text := strings.TrimSpace(req.TweetText)
		if text == "" {
			respondError(w, http.StatusBadRequest, "no items provided")
			return
		}
		author := strings.TrimPrefix(strings.TrimSpace(req.Author), "@")
		req.Items = []queue.Item{queue.NewItem(engage.TweetItem{
			ID:            engage.NewItemID(),
			Author:        author,
			Handle:        author,
			Text:          text,
			URL:           strings.TrimSpace(req.TweetURL),
			SourceTweetID: oembed.ExtractTweetID(req.TweetURL),
			CreatedAt:     time.Now().UTC(),
		}, h.engine.Generate(text, author))}
	}

	for i := range req.Items {
		it := &req.Items[i]
		if it.ID == "" || it.TweetText == "" {
			respondError(w, http.StatusBadRequest, "items require id and tweet_text")
			return
		}
		if it.Status == "" {
			it.Status = queue.StatusPending
		}
		if !queue.ValidStatus(it.Status) {
			respondError(w, http.StatusBadRequest, "unknown status: "+string(it.Status))
			return
		}
	}

	updated, err := h.queue.Add(r.Context(), req.Items)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, updated)
}

type updateItemRequest struct {
	Status         *queue.Status `json:"status,omitempty"`
	ErrorMessage   string        `json:"error_message,omitempty"`
	EditedReply    *string       `json:"edited_reply,omitempty"`
	NextSuggestion bool          `json:"next_suggestion,omitempty"`
}

// UpdateQueueItem applies one mutation to a queue item: a status
// transition, a reply edit, or a suggestion advance. Exactly one action
// is taken per call, checked in that order.
func (h *Handlers) UpdateQueueItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var (
		item queue.Item
		err  error
	)
	switch {
	case req.Status != nil:
		item, err = h.queue.SetStatus(r.Context(), id, *req.Status, req.ErrorMessage)
	case req.EditedReply != nil:
		item, err = h.queue.Edit(r.Context(), id, *req.EditedReply)
	case req.NextSuggestion:
		item, err = h.queue.NextSuggestion(r.Context(), id)
	default:
		respondError(w, http.StatusBadRequest, "no update action provided")
		return
	}

	if err != nil {
		var transition *queue.TransitionError
		switch {
		case errors.Is(err, queue.ErrItemNotFound):
			respondError(w, http.StatusNotFound, "item not found")
		case errors.As(err, &transition):
			respondError(w, http.StatusConflict, transition.Error())
		default:
			respondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	respondJSON(w, http.StatusOK, item)
}

// ClearCompleted removes done and skipped items from the queue.
func (h *Handlers) ClearCompleted(w http.ResponseWriter, r *http.Request) {
	removed, remaining, err := h.queue.ClearCompleted(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"removed": removed,
		"items":   remaining,
	})
}

// GetAccounts returns the monitored handle list.
func (h *Handlers) GetAccounts(w http.ResponseWriter, r *http.Request) {
	handles, err := h.queue.Accounts(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string][]string{"handles": handles})
}

type accountsRequest struct {
	Handles []string `json:"handles"`
}

// SetAccounts replaces the monitored handle list.
func (h *Handlers) SetAccounts(w http.ResponseWriter, r *http.Request) {
	var req accountsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	handles, err := h.queue.SetAccounts(r.Context(), req.Handles)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string][]string{"handles": handles})
}
