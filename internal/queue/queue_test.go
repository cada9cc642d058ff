package queue

import (
	"context"
	"testing"
	"time"

	"github.com/shipfast/engage-monitor/internal/engage"
	"github.com/shipfast/engage-monitor/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedSuggester returns the same suggestion set on every call.
type fixedSuggester struct {
	out []string
}

func (f *fixedSuggester) Generate(tweetText, author string) []string {
	return f.out
}

func newTestService(suggestions []string) *Service {
	return NewService(storage.NewMemory(), &fixedSuggester{out: suggestions})
}

func testTweet(id string) engage.TweetItem {
	return engage.TweetItem{
		ID:            "eng_1_" + id,
		Author:        "Pieter Levels",
		Handle:        "levelsio",
		Text:          "just shipped a new feature",
		URL:           "https://x.com/levelsio/status/" + id,
		SourceTweetID: id,
		CreatedAt:     time.Now().UTC(),
	}
}

func TestNewItemSeedsDraftFromFirstSuggestion(t *testing.T) {
	item := NewItem(testTweet("100"), []string{"first", "second"})

	assert.Equal(t, StatusPending, item.Status)
	assert.Equal(t, 0, item.SuggestionIndex)
	assert.Equal(t, "first", item.EditedReply)
	assert.Equal(t, "100", item.TweetID)
}

func TestAddPrependsAndPersists(t *testing.T) {
	svc := newTestService(nil)
	ctx := context.Background()

	_, err := svc.Add(ctx, []Item{NewItem(testTweet("100"), []string{"a"})})
	require.NoError(t, err)
	updated, err := svc.Add(ctx, []Item{NewItem(testTweet("101"), []string{"b"})})
	require.NoError(t, err)

	require.Len(t, updated, 2)
	assert.Equal(t, "101", updated[0].TweetID)
	assert.Equal(t, "100", updated[1].TweetID)

	// Round-trips through storage, not just the in-memory view.
	items, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "101", items[0].TweetID)
}

func TestListEmptyQueue(t *testing.T) {
	items, err := newTestService(nil).List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		name string
		from Status
		to   Status
		ok   bool
	}{
		{"pending to posting", StatusPending, StatusPosting, true},
		{"pending to skipped", StatusPending, StatusSkipped, true},
		{"pending to done", StatusPending, StatusDone, false},
		{"posting to done", StatusPosting, StatusDone, true},
		{"posting to error", StatusPosting, StatusError, true},
		{"posting to skipped", StatusPosting, StatusSkipped, true},
		{"error to pending", StatusError, StatusPending, true},
		{"error to posting", StatusError, StatusPosting, true},
		{"error to skipped", StatusError, StatusSkipped, true},
		{"done is terminal", StatusDone, StatusPending, false},
		{"skipped is terminal", StatusSkipped, StatusPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(nil)
			ctx := context.Background()

			item := NewItem(testTweet("100"), nil)
			item.Status = tt.from
			_, err := svc.Add(ctx, []Item{item})
			require.NoError(t, err)

			updated, err := svc.SetStatus(ctx, item.ID, tt.to, "")
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, tt.to, updated.Status)
			} else {
				var transition *TransitionError
				require.ErrorAs(t, err, &transition)
				assert.Equal(t, tt.from, transition.From)
			}
		})
	}
}

func TestSetStatusStoresAndClearsErrorMessage(t *testing.T) {
	svc := newTestService(nil)
	ctx := context.Background()

	item := NewItem(testTweet("100"), nil)
	item.Status = StatusPosting
	_, err := svc.Add(ctx, []Item{item})
	require.NoError(t, err)

	failed, err := svc.SetStatus(ctx, item.ID, StatusError, "upstream rejected the reply")
	require.NoError(t, err)
	assert.Equal(t, "upstream rejected the reply", failed.ErrorMessage)

	retried, err := svc.SetStatus(ctx, item.ID, StatusPending, "")
	require.NoError(t, err)
	assert.Empty(t, retried.ErrorMessage)
}

func TestSetStatusUnknownItem(t *testing.T) {
	svc := newTestService(nil)
	_, err := svc.SetStatus(context.Background(), "missing", StatusPosting, "")
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestSetStatusUnknownStatus(t *testing.T) {
	svc := newTestService(nil)
	_, err := svc.SetStatus(context.Background(), "any", Status("archived"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown status")
}

func TestEdit(t *testing.T) {
	svc := newTestService(nil)
	ctx := context.Background()

	item := NewItem(testTweet("100"), []string{"suggested"})
	_, err := svc.Add(ctx, []Item{item})
	require.NoError(t, err)

	updated, err := svc.Edit(ctx, item.ID, "my own words")
	require.NoError(t, err)
	assert.Equal(t, "my own words", updated.EditedReply)
	// The suggestion cursor is untouched by manual edits.
	assert.Equal(t, 0, updated.SuggestionIndex)
}

func TestNextSuggestionAdvancesAndRegenerates(t *testing.T) {
	svc := newTestService([]string{"fresh one", "fresh two"})
	ctx := context.Background()

	item := NewItem(testTweet("100"), []string{"first", "second"})
	_, err := svc.Add(ctx, []Item{item})
	require.NoError(t, err)

	// Advance within the stored set.
	updated, err := svc.NextSuggestion(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.SuggestionIndex)
	assert.Equal(t, "second", updated.EditedReply)

	// Exhausted: a fresh set replaces the old one and the cursor resets.
	updated, err = svc.NextSuggestion(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.SuggestionIndex)
	assert.Equal(t, []string{"fresh one", "fresh two"}, updated.Suggestions)
	assert.Equal(t, "fresh one", updated.EditedReply)
}

func TestNextSuggestionKeepsStateWhenRegenerationIsEmpty(t *testing.T) {
	svc := newTestService(nil)
	ctx := context.Background()

	item := NewItem(testTweet("100"), []string{"only"})
	_, err := svc.Add(ctx, []Item{item})
	require.NoError(t, err)

	updated, err := svc.NextSuggestion(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.SuggestionIndex)
	assert.Equal(t, []string{"only"}, updated.Suggestions)
}

func TestClearCompleted(t *testing.T) {
	svc := newTestService(nil)
	ctx := context.Background()

	statuses := []Status{StatusPending, StatusDone, StatusSkipped, StatusError, StatusPosting}
	items := make([]Item, 0, len(statuses))
	for i, st := range statuses {
		item := NewItem(testTweet(string(rune('0'+i))), nil)
		item.Status = st
		items = append(items, item)
	}
	_, err := svc.Add(ctx, items)
	require.NoError(t, err)

	removed, remaining, err := svc.ClearCompleted(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	require.Len(t, remaining, 3)
	for _, it := range remaining {
		assert.NotEqual(t, StatusDone, it.Status)
		assert.NotEqual(t, StatusSkipped, it.Status)
	}
}

func TestSeenIDs(t *testing.T) {
	svc := newTestService(nil)
	ctx := context.Background()

	_, err := svc.Add(ctx, []Item{
		NewItem(testTweet("100"), nil),
		NewItem(testTweet("101"), nil),
	})
	require.NoError(t, err)

	seen, err := svc.SeenIDs(ctx)
	require.NoError(t, err)
	assert.True(t, seen.Contains("100"))
	assert.True(t, seen.Contains("101"))
	assert.False(t, seen.Contains("102"))
}

func TestAccountsRoundTrip(t *testing.T) {
	svc := newTestService(nil)
	ctx := context.Background()

	handles, err := svc.Accounts(ctx)
	require.NoError(t, err)
	assert.Empty(t, handles)

	saved, err := svc.SetAccounts(ctx, []string{"@levelsio", " tdinh_me ", "levelsio", ""})
	require.NoError(t, err)
	assert.Equal(t, []string{"levelsio", "tdinh_me"}, saved)

	loaded, err := svc.Accounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, saved, loaded)
}
