// Package store implements the per-entity state container of the
// dashboard: canonical list, single selection, bulk-selection set,
// pagination and status flags, with optimistic creates reconciled
// against the backend and against push events.
package store

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/umerali06/fixora-pro-sync/internal/common"
	"github.com/umerali06/fixora-pro-sync/internal/domain"
	"github.com/umerali06/fixora-pro-sync/internal/notify"
)

// Remote is the REST surface a store round-trips through. api.Resource
// satisfies it; tests substitute fakes.
type Remote[T domain.Entity] interface {
	List(ctx context.Context, q domain.ListQuery) ([]T, int, error)
	Get(ctx context.Context, id string) (T, error)
	Create(ctx context.Context, draft T) (T, error)
	Update(ctx context.Context, id string, patch T) (T, error)
	Delete(ctx context.Context, id string) error
	BulkDelete(ctx context.Context, ids []string) error
}

// Pagination mirrors the server's paging view. Total comes from the
// last fetch and is authoritative; it is never derived from len(items).
type Pagination struct {
	Page     int
	PageSize int
	Total    int
}

// Store holds one entity type's synchronized state. All state
// transitions happen under the mutex and are atomic from the caller's
// point of view; remote calls run outside the lock.
type Store[T domain.Entity] struct {
	entity domain.EntityType
	remote Remote[T]
	notes  *notify.Center
	logger *zap.Logger

	mu          sync.Mutex
	items       []T
	selected    T
	hasSelected bool
	bulk        map[string]struct{}
	pagination  Pagination
	loading     bool
	bulkLoading bool
	errMsg      string
	generation  uint64
}

// Option configures a Store.
type Option[T domain.Entity] func(*Store[T])

// WithNotifier wires the notification center for mutation and
// reconciliation notices.
func WithNotifier[T domain.Entity](c *notify.Center) Option[T] {
	return func(s *Store[T]) { s.notes = c }
}

func WithLogger[T domain.Entity](l *zap.Logger) Option[T] {
	return func(s *Store[T]) { s.logger = l }
}

func New[T domain.Entity](entity domain.EntityType, remote Remote[T], opts ...Option[T]) *Store[T] {
	s := &Store[T]{
		entity: entity,
		remote: remote,
		bulk:   make(map[string]struct{}),
		logger: common.L(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// EntityType reports which collection this store holds.
func (s *Store[T]) EntityType() domain.EntityType { return s.entity }

// --- snapshots ---

// Items returns a copy of the list in display order.
func (s *Store[T]) Items() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

// Selected returns the entity open for detail/edit, if any.
func (s *Store[T]) Selected() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected, s.hasSelected
}

// SelectedIDs returns the bulk-selection set.
func (s *Store[T]) SelectedIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.bulk))
	for id := range s.bulk {
		out = append(out, id)
	}
	return out
}

func (s *Store[T]) Pagination() Pagination {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pagination
}

func (s *Store[T]) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *Store[T]) BulkLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bulkLoading
}

// Err returns the last operation's error message, empty when clear.
func (s *Store[T]) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// DismissError clears the error without waiting for the next
// successful operation.
func (s *Store[T]) DismissError() {
	s.mu.Lock()
	s.errMsg = ""
	s.mu.Unlock()
}

// Reset returns the store to its initial state and bumps the
// generation so responses of in-flight calls are discarded instead of
// mutating the fresh state.
func (s *Store[T]) Reset() {
	s.mu.Lock()
	var zero T
	s.items = nil
	s.selected = zero
	s.hasSelected = false
	s.bulk = make(map[string]struct{})
	s.pagination = Pagination{}
	s.loading = false
	s.bulkLoading = false
	s.errMsg = ""
	s.generation++
	s.mu.Unlock()
}

// --- locked helpers ---

func (s *Store[T]) indexOfLocked(id string) int {
	for i, t := range s.items {
		if t.GetID() == id {
			return i
		}
	}
	return -1
}

// removeLocked drops id from items and cascades into selected and the
// bulk selection in the same transition. Reports whether the id was
// present.
func (s *Store[T]) removeLocked(id string) bool {
	i := s.indexOfLocked(id)
	delete(s.bulk, id)
	if s.hasSelected && s.selected.GetID() == id {
		var zero T
		s.selected = zero
		s.hasSelected = false
	}
	if i < 0 {
		return false
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return true
}

// replaceLocked swaps the items entry and selection holding e's id.
// Reports whether an entry existed.
func (s *Store[T]) replaceLocked(e T) bool {
	i := s.indexOfLocked(e.GetID())
	if i < 0 {
		return false
	}
	s.items[i] = e
	if s.hasSelected && s.selected.GetID() == e.GetID() {
		s.selected = e
	}
	return true
}

// confirmCreateLocked swaps the optimistic placeholder for the
// server-confirmed entity. Selection membership held under the temp id
// migrates to the real id so the subset invariant survives a
// select-while-in-flight.
func (s *Store[T]) confirmCreateLocked(tempID string, confirmed T) {
	if i := s.indexOfLocked(tempID); i >= 0 {
		// preserve list position of the placeholder
		s.items[i] = confirmed
	} else if s.indexOfLocked(confirmed.GetID()) < 0 {
		// placeholder vanished (wholesale refetch); insert unless the
		// push channel already delivered the confirmed entity
		s.items = append([]T{confirmed}, s.items...)
	}
	if _, ok := s.bulk[tempID]; ok {
		delete(s.bulk, tempID)
		s.bulk[confirmed.GetID()] = struct{}{}
	}
	if s.hasSelected && s.selected.GetID() == tempID {
		s.selected = confirmed
	}
}

// pruneBulkLocked drops selection ids no longer present in items.
func (s *Store[T]) pruneBulkLocked() {
	for id := range s.bulk {
		if s.indexOfLocked(id) < 0 {
			delete(s.bulk, id)
		}
	}
}

func (s *Store[T]) publish(level notify.Level, action, msg string) {
	if s.notes == nil {
		return
	}
	s.notes.Publish(notify.Notification{
		Level:      level,
		EntityType: s.entity,
		Action:     action,
		Message:    msg,
	})
}
