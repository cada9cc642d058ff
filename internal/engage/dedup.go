package engage

// SeenIDSet tracks source tweet ids already present in the review queue.
// It is supplied by the caller on each ingestion request so that refetches
// never re-add content the reviewer already has.
type SeenIDSet map[string]struct{}

// NewSeenIDSet builds a set from a list of source tweet ids.
func NewSeenIDSet(ids []string) SeenIDSet {
	s := make(SeenIDSet, len(ids))
	for _, id := range ids {
		if id != "" {
			s[id] = struct{}{}
		}
	}
	return s
}

// Contains reports whether the source tweet id has been seen.
func (s SeenIDSet) Contains(id string) bool {
	_, ok := s[id]
	return ok
}

// Add marks a source tweet id as seen.
func (s SeenIDSet) Add(id string) {
	s[id] = struct{}{}
}

// Dedupe filters items whose SourceTweetID is already in the set, marking
// survivors as seen so overlapping sources in one batch contribute each
// id exactly once.
func Dedupe(items []TweetItem, seen SeenIDSet) []TweetItem {
	out := make([]TweetItem, 0, len(items))
	for _, it := range items {
		if seen.Contains(it.SourceTweetID) {
			continue
		}
		seen.Add(it.SourceTweetID)
		out = append(out, it)
	}
	return out
}
