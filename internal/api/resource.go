package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/umerali06/fixora-pro-sync/internal/apierr"
	"github.com/umerali06/fixora-pro-sync/internal/domain"
)

// Entity collection paths on the backend.
const (
	PathCustomers      = "/v1/customers"
	PathInventoryItems = "/v1/inventory-items"
	PathRepairTickets  = "/v1/repair-tickets"
	PathInvoices       = "/v1/invoices"
	PathTodos          = "/v1/todos"
	PathActivities     = "/v1/activities"
)

// PathFor maps an entity type to its collection path.
func PathFor(t domain.EntityType) string {
	switch t {
	case domain.EntityCustomer:
		return PathCustomers
	case domain.EntityInventoryItem:
		return PathInventoryItems
	case domain.EntityRepairTicket:
		return PathRepairTickets
	case domain.EntityInvoice:
		return PathInvoices
	case domain.EntityTodo:
		return PathTodos
	case domain.EntityActivity:
		return PathActivities
	}
	return ""
}

// page mirrors the backend list envelope.
type page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

// Resource binds one entity collection to the typed remote contract
// the stores consume.
type Resource[T domain.Entity] struct {
	c    *Client
	path string
	newT func() T
}

func NewResource[T domain.Entity](c *Client, path string, newT func() T) *Resource[T] {
	return &Resource[T]{c: c, path: path, newT: newT}
}

func (r *Resource[T]) List(ctx context.Context, q domain.ListQuery) ([]T, int, error) {
	if q.Page < 1 {
		return nil, 0, apierr.Validation(fmt.Sprintf("page must be >= 1, got %d", q.Page))
	}
	if q.PageSize <= 0 {
		return nil, 0, apierr.Validation(fmt.Sprintf("page_size must be > 0, got %d", q.PageSize))
	}
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("page_size", strconv.Itoa(q.PageSize))
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	for k, fv := range q.Filters {
		v.Set(k, fv)
	}
	var p page[T]
	if err := r.c.do(ctx, http.MethodGet, r.path, v, nil, &p); err != nil {
		return nil, 0, err
	}
	return p.Items, p.Total, nil
}

func (r *Resource[T]) Get(ctx context.Context, id string) (T, error) {
	out := r.newT()
	if id == "" {
		return out, apierr.Validation("id must not be empty")
	}
	if err := r.c.do(ctx, http.MethodGet, r.path+"/"+id, nil, nil, out); err != nil {
		return out, err
	}
	return out, nil
}

func (r *Resource[T]) Create(ctx context.Context, draft T) (T, error) {
	out := r.newT()
	if err := r.c.do(ctx, http.MethodPost, r.path, nil, draft, out); err != nil {
		return out, err
	}
	return out, nil
}

func (r *Resource[T]) Update(ctx context.Context, id string, patch T) (T, error) {
	out := r.newT()
	if id == "" {
		return out, apierr.Validation("id must not be empty")
	}
	if err := r.c.do(ctx, http.MethodPut, r.path+"/"+id, nil, patch, out); err != nil {
		return out, err
	}
	return out, nil
}

func (r *Resource[T]) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apierr.Validation("id must not be empty")
	}
	return r.c.do(ctx, http.MethodDelete, r.path+"/"+id, nil, nil, nil)
}

func (r *Resource[T]) BulkDelete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return apierr.Validation("ids must not be empty")
	}
	body := map[string][]string{"ids": ids}
	return r.c.do(ctx, http.MethodPost, r.path+"/bulk-delete", nil, body, nil)
}
