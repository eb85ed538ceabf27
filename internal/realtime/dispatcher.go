// Package realtime maintains the push-event connection to the backend
// and applies inbound entity mutations into the matching stores.
package realtime

import (
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/umerali06/fixora-pro-sync/internal/common"
	"github.com/umerali06/fixora-pro-sync/internal/domain"
	"github.com/umerali06/fixora-pro-sync/internal/notify"
	"github.com/umerali06/fixora-pro-sync/internal/observability"
)

// Applier is the reconcile surface one entity store exposes to the
// channel. Payloads arrive as raw JSON.
type Applier interface {
	ApplyCreate(data []byte) (bool, error)
	ApplyUpdate(data []byte) (bool, error)
	ApplyDelete(id string) bool
}

// Dispatcher routes change events to the applier registered for their
// entity type. Unknown types and malformed payloads are dropped with a
// log line, never propagated as entity errors.
type Dispatcher struct {
	mu       sync.RWMutex
	appliers map[domain.EntityType]Applier
	notes    *notify.Center
	logger   *zap.Logger
}

func NewDispatcher(notes *notify.Center) *Dispatcher {
	return &Dispatcher{
		appliers: make(map[domain.EntityType]Applier),
		notes:    notes,
		logger:   common.L(),
	}
}

func (d *Dispatcher) Register(t domain.EntityType, a Applier) {
	d.mu.Lock()
	d.appliers[t] = a
	d.mu.Unlock()
}

// Dispatch applies one event. The returned error reports malformed
// input; a dropped-but-wellformed event (unknown local id) is not an
// error.
func (d *Dispatcher) Dispatch(ev domain.ChangeEvent) error {
	if !domain.ValidChangeAction(ev.Action) {
		return fmt.Errorf("unknown action %q", ev.Action)
	}
	d.mu.RLock()
	a, ok := d.appliers[ev.EntityType]
	d.mu.RUnlock()
	if !ok {
		d.logger.Debug("no applier for entity type, dropping event",
			zap.String("entity", string(ev.EntityType)))
		return nil
	}

	applied := false
	switch ev.Action {
	case domain.ActionCreate:
		ok, err := a.ApplyCreate(ev.Data)
		if err != nil {
			return fmt.Errorf("apply create: %w", err)
		}
		applied = ok
	case domain.ActionUpdate:
		ok, err := a.ApplyUpdate(ev.Data)
		if err != nil {
			return fmt.Errorf("apply update: %w", err)
		}
		applied = ok
	case domain.ActionDelete:
		var ref struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(ev.Data, &ref); err != nil || ref.ID == "" {
			return fmt.Errorf("delete event without id")
		}
		applied = a.ApplyDelete(ref.ID)
	}

	if applied {
		observability.ObserveRealtimeEvent(string(ev.EntityType), string(ev.Action))
		observability.EventApplied.Add(1)
		if d.notes != nil {
			d.notes.Publish(notify.Notification{
				Level:      notify.LevelInfo,
				EntityType: ev.EntityType,
				Action:     string(ev.Action),
				Message:    fmt.Sprintf("%s %sd remotely", ev.EntityType, lower(ev.Action)),
			})
		}
	}
	return nil
}

func lower(a domain.ChangeAction) string {
	switch a {
	case domain.ActionCreate:
		return "create"
	case domain.ActionUpdate:
		return "update"
	default:
		return "delete"
	}
}
