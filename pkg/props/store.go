package props

import "github.com/vanderheijden86/snapview/pkg/model"

// Store decodes node property bags on first access and keeps them until the
// next Reset. It is not safe for concurrent use.
type Store struct {
	bags map[*model.Node]Bag
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{bags: make(map[*model.Node]Bag)}
}

// Get returns the decoded bag for n. A nil node yields an empty bag.
func (s *Store) Get(n *model.Node) Bag {
	if n == nil {
		return Bag{}
	}
	if s == nil {
		return Decode(n.Props)
	}
	if bag, ok := s.bags[n]; ok {
		return bag
	}
	bag := Decode(n.Props)
	s.bags[n] = bag
	return bag
}

// Reset drops all cached bags. Called whenever a new snapshot is loaded.
func (s *Store) Reset() {
	if s == nil {
		return
	}
	clear(s.bags)
}

// Len returns the number of cached bags.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.bags)
}
