package queue

import (
	"fmt"
	"time"

	"github.com/shipfast/engage-monitor/internal/engage"
)

// Status is the review state of a queue item.
type Status string

const (
	StatusPending Status = "pending"
	StatusPosting Status = "posting"
	StatusDone    Status = "done"
	StatusSkipped Status = "skipped"
	StatusError   Status = "error"
)

// validTransitions lists the allowed next states per current state.
// done and skipped are terminal.
var validTransitions = map[Status][]Status{
	StatusPending: {StatusPosting, StatusSkipped},
	StatusPosting: {StatusDone, StatusError, StatusSkipped},
	StatusError:   {StatusPending, StatusPosting, StatusSkipped},
}

// ValidStatus reports whether s is one of the five known states.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusPosting, StatusDone, StatusSkipped, StatusError:
		return true
	}
	return false
}

func canTransition(from, to Status) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Item is one tweet awaiting review plus its reply draft state.
// EditedReply always holds the current draft, whether it came from a
// suggestion or the reviewer's own edits.
type Item struct {
	ID              string          `json:"id"`
	Author          string          `json:"author"`
	Handle          string          `json:"handle"`
	TweetText       string          `json:"tweet_text"`
	TweetURL        string          `json:"tweet_url"`
	TweetID         string          `json:"tweet_id"`
	Suggestions     []string        `json:"suggestions"`
	SuggestionIndex int             `json:"suggestion_index"`
	EditedReply     string          `json:"edited_reply"`
	Status          Status          `json:"status"`
	ErrorMessage    string          `json:"error_message,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	Metrics         *engage.Metrics `json:"metrics,omitempty"`
}

// NewItem builds a pending queue item from a normalized tweet and its
// generated suggestions. The first suggestion seeds the reply draft.
func NewItem(t engage.TweetItem, suggestions []string) Item {
	item := Item{
		ID:          t.ID,
		Author:      t.Author,
		Handle:      t.Handle,
		TweetText:   t.Text,
		TweetURL:    t.URL,
		TweetID:     t.SourceTweetID,
		Suggestions: suggestions,
		Status:      StatusPending,
		CreatedAt:   t.CreatedAt,
		Metrics:     t.Metrics,
	}
	if len(suggestions) > 0 {
		item.EditedReply = suggestions[0]
	}
	return item
}

// TransitionError reports a rejected status change.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot transition from %s to %s", e.From, e.To)
}
