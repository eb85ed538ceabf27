package store

// Reconcile appliers. These are the single write path for push events
// and are idempotent by id, so a push echo racing the initiating
// caller's own round trip degrades to a no-op instead of corrupting
// state.

// ApplyCreate inserts e unless its id is already present (the acting
// client's optimistic create may have resolved it first). Reports
// whether the entity was inserted.
func (s *Store[T]) ApplyCreate(e T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOfLocked(e.GetID()) >= 0 {
		return false
	}
	s.items = append([]T{e}, s.items...)
	return true
}

// ApplyUpdate replaces the matching entry and the selection. An id not
// held locally is dropped: partial-page knowledge must not be
// corrupted by ad hoc inserts. Reports whether anything changed.
func (s *Store[T]) ApplyUpdate(e T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replaceLocked(e)
}

// ApplyDelete removes id from items, selection and bulk selection in
// one transition. Absent ids are a no-op. Reports whether the entity
// was present.
func (s *Store[T]) ApplyDelete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeLocked(id)
}
