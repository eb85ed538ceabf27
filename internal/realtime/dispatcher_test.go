package realtime

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/umerali06/fixora-pro-sync/internal/domain"
	"github.com/umerali06/fixora-pro-sync/internal/notify"
	"github.com/umerali06/fixora-pro-sync/internal/store"
)

type nullRemote struct{}

func (nullRemote) List(ctx context.Context, q domain.ListQuery) ([]*domain.Todo, int, error) {
	return nil, 0, nil
}
func (nullRemote) Get(ctx context.Context, id string) (*domain.Todo, error) { return nil, nil }
func (nullRemote) Create(ctx context.Context, draft *domain.Todo) (*domain.Todo, error) {
	return draft, nil
}
func (nullRemote) Update(ctx context.Context, id string, patch *domain.Todo) (*domain.Todo, error) {
	return patch, nil
}
func (nullRemote) Delete(ctx context.Context, id string) error        { return nil }
func (nullRemote) BulkDelete(ctx context.Context, ids []string) error { return nil }

func newDispatcherWithTodoStore(t *testing.T) (*Dispatcher, *store.Store[*domain.Todo]) {
	t.Helper()
	st := store.New[*domain.Todo](domain.EntityTodo, nullRemote{})
	d := NewDispatcher(notify.NewCenter())
	d.Register(domain.EntityTodo, NewStoreApplier(st, func() *domain.Todo { return &domain.Todo{} }))
	return d, st
}

func event(t *testing.T, et domain.EntityType, action domain.ChangeAction, payload any) domain.ChangeEvent {
	t.Helper()
	b, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return domain.ChangeEvent{EntityType: et, Action: action, Data: b}
}

func TestDispatchCreateUpdateDelete(t *testing.T) {
	d, st := newDispatcherWithTodoStore(t)

	if err := d.Dispatch(event(t, domain.EntityTodo, domain.ActionCreate, &domain.Todo{ID: "t1", Title: "a"})); err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(st.Items()) != 1 {
		t.Fatalf("create not applied")
	}

	if err := d.Dispatch(event(t, domain.EntityTodo, domain.ActionUpdate, &domain.Todo{ID: "t1", Title: "b"})); err != nil {
		t.Fatalf("update: %v", err)
	}
	if st.Items()[0].Title != "b" {
		t.Fatalf("update not applied")
	}

	if err := d.Dispatch(event(t, domain.EntityTodo, domain.ActionDelete, map[string]string{"id": "t1"})); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(st.Items()) != 0 {
		t.Fatalf("delete not applied")
	}
}

func TestDispatchIdempotent(t *testing.T) {
	d, st := newDispatcherWithTodoStore(t)
	ev := event(t, domain.EntityTodo, domain.ActionCreate, &domain.Todo{ID: "t1"})
	if err := d.Dispatch(ev); err != nil {
		t.Fatalf("first: %v", err)
	}
	if err := d.Dispatch(ev); err != nil {
		t.Fatalf("duplicate must not error: %v", err)
	}
	if len(st.Items()) != 1 {
		t.Fatalf("duplicate applied twice")
	}
}

func TestDispatchUnknownEntityDropped(t *testing.T) {
	d, _ := newDispatcherWithTodoStore(t)
	ev := event(t, domain.EntityType("widget"), domain.ActionCreate, map[string]string{"id": "w1"})
	if err := d.Dispatch(ev); err != nil {
		t.Fatalf("unknown entity must be dropped silently, got %v", err)
	}
}

func TestDispatchMalformed(t *testing.T) {
	d, _ := newDispatcherWithTodoStore(t)
	if err := d.Dispatch(domain.ChangeEvent{EntityType: domain.EntityTodo, Action: "EXPLODE"}); err == nil {
		t.Fatalf("unknown action must error")
	}
	if err := d.Dispatch(domain.ChangeEvent{
		EntityType: domain.EntityTodo,
		Action:     domain.ActionDelete,
		Data:       json.RawMessage(`{}`),
	}); err == nil {
		t.Fatalf("delete without id must error")
	}
	if err := d.Dispatch(domain.ChangeEvent{
		EntityType: domain.EntityTodo,
		Action:     domain.ActionCreate,
		Data:       json.RawMessage(`{not json`),
	}); err == nil {
		t.Fatalf("malformed payload must error")
	}
}

func TestAppliedEventNotifies(t *testing.T) {
	center := notify.NewCenter()
	st := store.New[*domain.Todo](domain.EntityTodo, nullRemote{})
	d := NewDispatcher(center)
	d.Register(domain.EntityTodo, NewStoreApplier(st, func() *domain.Todo { return &domain.Todo{} }))
	ch := center.Subscribe()
	defer center.Unsubscribe(ch)

	if err := d.Dispatch(event(t, domain.EntityTodo, domain.ActionCreate, &domain.Todo{ID: "t1"})); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	n := <-ch
	if n.Level != notify.LevelInfo || n.EntityType != domain.EntityTodo {
		t.Fatalf("unexpected notification %#v", n)
	}
}
