package transcript

import "sync"

// Segment is one unit of transcribed customer speech identified by a
// session-scoped id. Text for a given id is replaced on every partial or
// final update; segments are never removed.
type Segment struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Store maps segment ids to their current text. Iteration order is arrival
// order of the first update for each id. Last write for an id wins.
type Store struct {
	mu    sync.RWMutex
	order []string
	text  map[string]string
}

// NewStore creates an empty transcript store.
func NewStore() *Store {
	return &Store{text: make(map[string]string)}
}

// Upsert records the current text for a segment id, appending the id to the
// arrival order on first sight. Replaying the same update is a no-op.
func (s *Store) Upsert(id, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.text[id]; !ok {
		s.order = append(s.order, id)
	}
	s.text[id] = text
}

// Get returns the current text for a segment id.
func (s *Store) Get(id string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.text[id]
	return t, ok
}

// Latest returns the most recently created segment.
func (s *Store) Latest() (Segment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.order) == 0 {
		return Segment{}, false
	}
	id := s.order[len(s.order)-1]
	return Segment{ID: id, Text: s.text[id]}, true
}

// Snapshot returns all segments in arrival order.
func (s *Store) Snapshot() []Segment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Segment, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, Segment{ID: id, Text: s.text[id]})
	}
	return out
}

// Len returns the number of known segments.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}
