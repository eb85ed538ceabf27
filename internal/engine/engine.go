// Package engine assembles the sync core: one API client, one store
// per entity type, the notification center and the reconciliation
// channel with every applier registered. This is the surface the
// dashboard consumes.
package engine

import (
	"context"

	"github.com/umerali06/fixora-pro-sync/internal/api"
	"github.com/umerali06/fixora-pro-sync/internal/common"
	"github.com/umerali06/fixora-pro-sync/internal/domain"
	"github.com/umerali06/fixora-pro-sync/internal/notify"
	"github.com/umerali06/fixora-pro-sync/internal/realtime"
	"github.com/umerali06/fixora-pro-sync/internal/store"
)

// SyncSet is the full set of entity stores sharing one backend
// connection.
type SyncSet struct {
	Customers     *store.Store[*domain.Customer]
	Inventory     *store.Store[*domain.InventoryItem]
	RepairTickets *store.Store[*domain.RepairTicket]
	Invoices      *store.Store[*domain.Invoice]
	Todos         *store.Store[*domain.Todo]
	Activities    *store.Store[*domain.Activity]

	Notifications *notify.Center
	Channel       *realtime.Channel

	client *api.Client
}

// New wires a SyncSet against the backend described by cfg.
func New(cfg *common.Config) *SyncSet {
	tokens := api.StaticToken(cfg.APIToken)
	client := api.NewClient(cfg.APIBaseURL, tokens,
		api.WithTimeout(cfg.RequestTimeout),
		api.WithReadRetries(cfg.ReadRetries),
	)
	notes := notify.NewCenter()
	dispatcher := realtime.NewDispatcher(notes)

	s := &SyncSet{
		Notifications: notes,
		client:        client,
	}
	s.Customers = newStore(client, notes, dispatcher, domain.EntityCustomer,
		api.PathCustomers, func() *domain.Customer { return &domain.Customer{} })
	s.Inventory = newStore(client, notes, dispatcher, domain.EntityInventoryItem,
		api.PathInventoryItems, func() *domain.InventoryItem { return &domain.InventoryItem{} })
	s.RepairTickets = newStore(client, notes, dispatcher, domain.EntityRepairTicket,
		api.PathRepairTickets, func() *domain.RepairTicket { return &domain.RepairTicket{} })
	s.Invoices = newStore(client, notes, dispatcher, domain.EntityInvoice,
		api.PathInvoices, func() *domain.Invoice { return &domain.Invoice{} })
	s.Todos = newStore(client, notes, dispatcher, domain.EntityTodo,
		api.PathTodos, func() *domain.Todo { return &domain.Todo{} })
	s.Activities = newStore(client, notes, dispatcher, domain.EntityActivity,
		api.PathActivities, func() *domain.Activity { return &domain.Activity{} })

	s.Channel = realtime.NewChannel(realtime.Config{
		BaseURL:     cfg.APIBaseURL,
		Path:        cfg.EventsPath,
		Tokens:      tokens,
		MinDelay:    cfg.ReconnectMinDelay,
		MaxDelay:    cfg.ReconnectMaxDelay,
		MaxAttempts: cfg.ReconnectMaxAttempts,
	}, dispatcher, notes)

	return s
}

// newStore builds one typed store and registers its reconcile applier.
func newStore[T domain.Entity](
	client *api.Client,
	notes *notify.Center,
	dispatcher *realtime.Dispatcher,
	entity domain.EntityType,
	path string,
	newT func() T,
) *store.Store[T] {
	res := api.NewResource(client, path, newT)
	st := store.New[T](entity, res, store.WithNotifier[T](notes))
	dispatcher.Register(entity, realtime.NewStoreApplier(st, newT))
	return st
}

// Connect opens the real-time channel.
func (s *SyncSet) Connect(ctx context.Context) { s.Channel.Connect(ctx) }

// Disconnect closes the real-time channel.
func (s *SyncSet) Disconnect() { s.Channel.Disconnect() }

// ResetAll clears every store, discarding in-flight responses.
func (s *SyncSet) ResetAll() {
	s.Customers.Reset()
	s.Inventory.Reset()
	s.RepairTickets.Reset()
	s.Invoices.Reset()
	s.Todos.Reset()
	s.Activities.Reset()
}
