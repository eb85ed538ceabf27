package domain

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound sentinel for a missing record in a repo.
var ErrNotFound = errors.New("not found")

// MatchFunc decides whether a record satisfies a list query's search
// string and filters. Paging is handled by the repo itself.
type MatchFunc[T Entity] func(t T, q ListQuery) bool

// Repo is an in-memory record set keeping insertion order, newest
// first. It backs the reference shop service; the client-side stores
// never touch it.
type Repo[T Entity] struct {
	mu    sync.RWMutex
	items []T
	match MatchFunc[T]
}

// NewRepo builds a repo. match may be nil, in which case every record
// satisfies every query.
func NewRepo[T Entity](match MatchFunc[T]) *Repo[T] {
	return &Repo[T]{match: match}
}

func (r *Repo[T]) indexOf(id string) int {
	for i, t := range r.items {
		if t.GetID() == id {
			return i
		}
	}
	return -1
}

// Create prepends t. An existing record with the same id is replaced.
func (r *Repo[T]) Create(ctx context.Context, t T) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := r.indexOf(t.GetID()); i >= 0 {
		r.items[i] = t
		return nil
	}
	r.items = append([]T{t}, r.items...)
	return nil
}

func (r *Repo[T]) Get(ctx context.Context, id string) (T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var zero T
	if i := r.indexOf(id); i >= 0 {
		return r.items[i], nil
	}
	return zero, ErrNotFound
}

// List returns the page of records matching q plus the total match
// count. Page numbers start at 1; a page past the end is empty.
func (r *Repo[T]) List(ctx context.Context, q ListQuery) ([]T, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var matched []T
	for _, t := range r.items {
		if r.match == nil || r.match(t, q) {
			matched = append(matched, t)
		}
	}
	total := len(matched)
	if q.PageSize <= 0 {
		return matched, total, nil
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	start := (page - 1) * q.PageSize
	if start >= total {
		return nil, total, nil
	}
	end := start + q.PageSize
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (r *Repo[T]) Update(ctx context.Context, t T) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(t.GetID())
	if i < 0 {
		return ErrNotFound
	}
	r.items[i] = t
	return nil
}

func (r *Repo[T]) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	r.items = append(r.items[:i], r.items[i+1:]...)
	return nil
}

// BulkDelete removes every listed id and returns the ids actually
// removed. Unknown ids are skipped, not errors.
func (r *Repo[T]) BulkDelete(ctx context.Context, ids []string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var removed []string
	for _, id := range ids {
		if i := r.indexOf(id); i >= 0 {
			r.items = append(r.items[:i], r.items[i+1:]...)
			removed = append(removed, id)
		}
	}
	return removed, nil
}

// Len reports the record count.
func (r *Repo[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}
