package realtime

import (
	"encoding/json"

	"github.com/umerali06/fixora-pro-sync/internal/domain"
	"github.com/umerali06/fixora-pro-sync/internal/store"
)

// StoreApplier adapts one typed store to the Dispatcher's raw-JSON
// surface.
type StoreApplier[T domain.Entity] struct {
	Store *store.Store[T]
	New   func() T
}

func NewStoreApplier[T domain.Entity](s *store.Store[T], newT func() T) StoreApplier[T] {
	return StoreApplier[T]{Store: s, New: newT}
}

func (a StoreApplier[T]) ApplyCreate(data []byte) (bool, error) {
	e := a.New()
	if err := json.Unmarshal(data, e); err != nil {
		return false, err
	}
	return a.Store.ApplyCreate(e), nil
}

func (a StoreApplier[T]) ApplyUpdate(data []byte) (bool, error) {
	e := a.New()
	if err := json.Unmarshal(data, e); err != nil {
		return false, err
	}
	return a.Store.ApplyUpdate(e), nil
}

func (a StoreApplier[T]) ApplyDelete(id string) bool {
	return a.Store.ApplyDelete(id)
}
