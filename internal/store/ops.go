package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/umerali06/fixora-pro-sync/internal/apierr"
	"github.com/umerali06/fixora-pro-sync/internal/domain"
	"github.com/umerali06/fixora-pro-sync/internal/notify"
	"github.com/umerali06/fixora-pro-sync/internal/observability"
)

// Fetch replaces the list wholesale with one server page and adopts
// the reported total. On failure the list is untouched.
func (s *Store[T]) Fetch(ctx context.Context, q domain.ListQuery) error {
	start := time.Now()
	s.mu.Lock()
	gen := s.generation
	s.loading = true
	s.mu.Unlock()

	items, total, err := s.remote.List(ctx, q)
	observability.ObserveStoreOp(string(s.entity), "fetch", err, time.Since(start))

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		return nil
	}
	s.loading = false
	if err != nil {
		s.errMsg = err.Error()
		s.publish(notify.LevelError, "fetch", err.Error())
		return err
	}
	s.items = items
	s.pagination = Pagination{Page: q.Page, PageSize: q.PageSize, Total: total}
	s.pruneBulkLocked()
	if s.hasSelected {
		if i := s.indexOfLocked(s.selected.GetID()); i >= 0 {
			s.selected = s.items[i]
		}
	}
	s.errMsg = ""
	return nil
}

// FetchByID populates the selection only; the list is not mutated.
func (s *Store[T]) FetchByID(ctx context.Context, id string) (T, error) {
	start := time.Now()
	s.mu.Lock()
	gen := s.generation
	s.loading = true
	s.mu.Unlock()

	e, err := s.remote.Get(ctx, id)
	observability.ObserveStoreOp(string(s.entity), "fetch_by_id", err, time.Since(start))

	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	if s.generation != gen {
		return zero, nil
	}
	s.loading = false
	if err != nil {
		s.errMsg = err.Error()
		s.publish(notify.LevelError, "fetch", err.Error())
		return zero, err
	}
	s.selected = e
	s.hasSelected = true
	// keep the list entry in sync when the record is on the current page
	s.replaceLocked(e)
	s.errMsg = ""
	return e, nil
}

// Create inserts an optimistic placeholder synchronously, then issues
// the remote create. The temp id ties this call to exactly its own
// placeholder, so concurrent creates resolve independently.
func (s *Store[T]) Create(ctx context.Context, draft T) (T, error) {
	start := time.Now()
	now := time.Now().Unix()
	tempID := domain.NewTempID()
	draft.SetID(tempID)
	draft.Touch(now)

	s.mu.Lock()
	gen := s.generation
	s.loading = true
	s.items = append([]T{draft}, s.items...)
	s.mu.Unlock()

	confirmed, err := s.remote.Create(ctx, draft)
	observability.ObserveStoreOp(string(s.entity), "create", err, time.Since(start))

	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	if s.generation != gen {
		// store was reset while the create was in flight
		observability.ObserveOptimistic(string(s.entity), "discarded")
		s.logger.Debug("discarding stale create response",
			zap.String("entity", string(s.entity)), zap.String("temp_id", tempID))
		return zero, nil
	}
	s.loading = false
	if err != nil {
		s.removeLocked(tempID)
		s.errMsg = err.Error()
		observability.ObserveOptimistic(string(s.entity), "rolled_back")
		s.publish(notify.LevelError, "create", err.Error())
		return zero, err
	}
	s.confirmCreateLocked(tempID, confirmed)
	s.errMsg = ""
	observability.ObserveOptimistic(string(s.entity), "confirmed")
	s.publish(notify.LevelSuccess, "create", fmt.Sprintf("%s created", s.entity))
	return confirmed, nil
}

// Update has no optimistic pre-mutation: local state changes only once
// the server confirms.
func (s *Store[T]) Update(ctx context.Context, id string, patch T) (T, error) {
	start := time.Now()
	s.mu.Lock()
	gen := s.generation
	s.loading = true
	s.mu.Unlock()

	confirmed, err := s.remote.Update(ctx, id, patch)
	observability.ObserveStoreOp(string(s.entity), "update", err, time.Since(start))

	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	if s.generation != gen {
		return zero, nil
	}
	s.loading = false
	if err != nil {
		s.errMsg = err.Error()
		s.publish(notify.LevelError, "update", err.Error())
		return zero, err
	}
	s.replaceLocked(confirmed)
	s.errMsg = ""
	s.publish(notify.LevelSuccess, "update", fmt.Sprintf("%s updated", s.entity))
	return confirmed, nil
}

// Delete removes the entity only after the server confirms. A server
// 404 counts as success: the record is gone either way.
func (s *Store[T]) Delete(ctx context.Context, id string) error {
	start := time.Now()
	s.mu.Lock()
	gen := s.generation
	s.loading = true
	s.mu.Unlock()

	err := s.remote.Delete(ctx, id)
	if err != nil && errors.Is(err, apierr.ErrNotFound) {
		err = nil
	}
	observability.ObserveStoreOp(string(s.entity), "delete", err, time.Since(start))

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		return nil
	}
	s.loading = false
	if err != nil {
		s.errMsg = err.Error()
		s.publish(notify.LevelError, "delete", err.Error())
		return err
	}
	s.removeLocked(id)
	s.errMsg = ""
	s.publish(notify.LevelSuccess, "delete", fmt.Sprintf("%s deleted", s.entity))
	return nil
}

// BulkDelete removes the id set all-or-nothing. On failure nothing is
// removed locally.
func (s *Store[T]) BulkDelete(ctx context.Context, ids []string) error {
	start := time.Now()
	s.mu.Lock()
	gen := s.generation
	s.bulkLoading = true
	s.mu.Unlock()

	err := s.remote.BulkDelete(ctx, ids)
	observability.ObserveStoreOp(string(s.entity), "bulk_delete", err, time.Since(start))

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		return nil
	}
	s.bulkLoading = false
	if err != nil {
		s.errMsg = err.Error()
		s.publish(notify.LevelError, "bulk_delete", err.Error())
		return err
	}
	for _, id := range ids {
		s.removeLocked(id)
	}
	s.errMsg = ""
	s.publish(notify.LevelSuccess, "bulk_delete",
		fmt.Sprintf("%d %s records deleted", len(ids), s.entity))
	return nil
}
