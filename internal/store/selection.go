package store

// SetSelected makes e the entity open for detail/edit.
func (s *Store[T]) SetSelected(e T) {
	s.mu.Lock()
	s.selected = e
	s.hasSelected = true
	s.mu.Unlock()
}

// ClearSelected drops the detail selection.
func (s *Store[T]) ClearSelected() {
	s.mu.Lock()
	var zero T
	s.selected = zero
	s.hasSelected = false
	s.mu.Unlock()
}

// SetSelectedIDs replaces the bulk selection. Ids not present in items
// are ignored so the subset invariant holds.
func (s *Store[T]) SetSelectedIDs(ids []string) {
	s.mu.Lock()
	s.bulk = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if s.indexOfLocked(id) >= 0 {
			s.bulk[id] = struct{}{}
		}
	}
	s.mu.Unlock()
}

// ToggleSelectedID flips one id's membership in the bulk selection.
// Toggling an id absent from items is a no-op.
func (s *Store[T]) ToggleSelectedID(id string) {
	s.mu.Lock()
	if _, ok := s.bulk[id]; ok {
		delete(s.bulk, id)
	} else if s.indexOfLocked(id) >= 0 {
		s.bulk[id] = struct{}{}
	}
	s.mu.Unlock()
}

// SelectAll sets the bulk selection to exactly the current page's ids.
func (s *Store[T]) SelectAll() {
	s.mu.Lock()
	s.bulk = make(map[string]struct{}, len(s.items))
	for _, t := range s.items {
		s.bulk[t.GetID()] = struct{}{}
	}
	s.mu.Unlock()
}

// ClearSelection empties the bulk selection.
func (s *Store[T]) ClearSelection() {
	s.mu.Lock()
	s.bulk = make(map[string]struct{})
	s.mu.Unlock()
}
