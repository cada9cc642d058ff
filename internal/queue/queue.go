// Package queue maintains the persisted review queue and the monitored
// account list. Every mutation rewrites the full queue blob so the
// stored state is always complete and readable on its own.
package queue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/shipfast/engage-monitor/internal/engage"
	"github.com/shipfast/engage-monitor/internal/storage"
)

const (
	queueKey    = "engage_queue_v2"
	accountsKey = "engage_accounts"
)

// ErrItemNotFound is returned when an item id is not in the queue.
var ErrItemNotFound = errors.New("queue: item not found")

// Suggester regenerates reply suggestions when a reviewer exhausts the
// current set.
type Suggester interface {
	Generate(tweetText, author string) []string
}

// Service owns the queue state. All mutations are serialized through a
// mutex and persisted synchronously before the new state is returned.
type Service struct {
	mu      sync.Mutex
	blobs   storage.Blobs
	suggest Suggester
}

// NewService creates a queue service over the given blob store.
func NewService(blobs storage.Blobs, suggest Suggester) *Service {
	return &Service{blobs: blobs, suggest: suggest}
}

func (s *Service) load(ctx context.Context) ([]Item, error) {
	var items []Item
	if err := s.blobs.Get(ctx, queueKey, &items); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return []Item{}, nil
		}
		return nil, fmt.Errorf("loading queue: %w", err)
	}
	return items, nil
}

func (s *Service) save(ctx context.Context, items []Item) error {
	if err := s.blobs.Put(ctx, queueKey, items); err != nil {
		return fmt.Errorf("saving queue: %w", err)
	}
	return nil
}

// List returns the current queue, newest first.
func (s *Service) List(ctx context.Context) ([]Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// SeenIDs returns the source tweet ids already queued, used to keep
// refetches from re-adding content.
func (s *Service) SeenIDs(ctx context.Context) (engage.SeenIDSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.TweetID)
	}
	return engage.NewSeenIDSet(ids), nil
}

// Add prepends items to the queue so the newest imports are reviewed
// first. Returns the new queue.
func (s *Service) Add(ctx context.Context, items []Item) ([]Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	updated := append(append([]Item{}, items...), current...)
	if err := s.save(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// SetStatus moves an item through the review state machine. errMessage
// is stored only for the error state and cleared otherwise.
func (s *Service) SetStatus(ctx context.Context, id string, status Status, errMessage string) (Item, error) {
	if !ValidStatus(status) {
		return Item{}, fmt.Errorf("unknown status %q", status)
	}

	return s.update(ctx, id, func(item *Item) error {
		if !canTransition(item.Status, status) {
			return &TransitionError{From: item.Status, To: status}
		}
		item.Status = status
		if status == StatusError {
			item.ErrorMessage = errMessage
		} else {
			item.ErrorMessage = ""
		}
		return nil
	})
}

// Edit replaces the reply draft for an item.
func (s *Service) Edit(ctx context.Context, id, text string) (Item, error) {
	return s.update(ctx, id, func(item *Item) error {
		item.EditedReply = text
		return nil
	})
}

// NextSuggestion advances the item to its next suggestion, resetting
// the draft. When the current set is exhausted a fresh set is generated
// and the cursor returns to the start.
func (s *Service) NextSuggestion(ctx context.Context, id string) (Item, error) {
	return s.update(ctx, id, func(item *Item) error {
		next := item.SuggestionIndex + 1
		if next < len(item.Suggestions) {
			item.SuggestionIndex = next
			item.EditedReply = item.Suggestions[next]
			return nil
		}

		fresh := s.suggest.Generate(item.TweetText, item.Handle)
		if len(fresh) == 0 {
			return nil
		}
		item.Suggestions = fresh
		item.SuggestionIndex = 0
		item.EditedReply = fresh[0]
		return nil
	})
}

// ClearCompleted removes done and skipped items. Returns the number
// removed and the remaining queue.
func (s *Service) ClearCompleted(ctx context.Context) (int, []Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx)
	if err != nil {
		return 0, nil, err
	}

	remaining := make([]Item, 0, len(items))
	for _, it := range items {
		if it.Status == StatusDone || it.Status == StatusSkipped {
			continue
		}
		remaining = append(remaining, it)
	}

	removed := len(items) - len(remaining)
	if removed == 0 {
		return 0, items, nil
	}
	if err := s.save(ctx, remaining); err != nil {
		return 0, nil, err
	}
	return removed, remaining, nil
}

func (s *Service) update(ctx context.Context, id string, mutate func(*Item) error) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx)
	if err != nil {
		return Item{}, err
	}

	for i := range items {
		if items[i].ID != id {
			continue
		}
		if err := mutate(&items[i]); err != nil {
			return Item{}, err
		}
		if err := s.save(ctx, items); err != nil {
			return Item{}, err
		}
		return items[i], nil
	}
	return Item{}, ErrItemNotFound
}

// Accounts returns the monitored handle list.
func (s *Service) Accounts(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var handles []string
	if err := s.blobs.Get(ctx, accountsKey, &handles); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("loading accounts: %w", err)
	}
	return handles, nil
}

// SetAccounts replaces the monitored handle list. Handles are trimmed,
// stripped of a leading @ and deduplicated preserving order.
func (s *Service) SetAccounts(ctx context.Context, handles []string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(handles))
	clean := make([]string, 0, len(handles))
	for _, h := range handles {
		h = strings.TrimPrefix(strings.TrimSpace(h), "@")
		if h == "" {
			continue
		}
		key := strings.ToLower(h)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		clean = append(clean, h)
	}

	if err := s.blobs.Put(ctx, accountsKey, clean); err != nil {
		return nil, fmt.Errorf("saving accounts: %w", err)
	}
	return clean, nil
}
