package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/umerali06/fixora-pro-sync/internal/apierr"
	"github.com/umerali06/fixora-pro-sync/internal/domain"
)

func newTestResource(t *testing.T, h http.HandlerFunc, opts ...Option) (*Resource[*domain.Customer], *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := NewClient(srv.URL, StaticToken("tok-1"), opts...)
	return NewResource(c, PathCustomers, func() *domain.Customer { return &domain.Customer{} }), srv
}

func TestClientSendsBearerToken(t *testing.T) {
	var got atomic.Value
	res, _ := newTestResource(t, func(w http.ResponseWriter, r *http.Request) {
		got.Store(r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]any{"items": []any{}, "total": 0})
	})
	if _, _, err := res.List(context.Background(), domain.ListQuery{Page: 1, PageSize: 10}); err != nil {
		t.Fatalf("list: %v", err)
	}
	if got.Load() != "Bearer tok-1" {
		t.Fatalf("authorization header: %v", got.Load())
	}
}

func TestClientRetriesReads(t *testing.T) {
	var calls atomic.Int32
	res, _ := newTestResource(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]string{{"id": "c1", "name": "amy"}},
			"total": 1,
		})
	}, WithReadRetries(3))
	items, total, err := res.List(context.Background(), domain.ListQuery{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list after retries: %v", err)
	}
	if total != 1 || len(items) != 1 || items[0].ID != "c1" {
		t.Fatalf("unexpected page: %d items, total %d", len(items), total)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestClientNeverRetriesMutations(t *testing.T) {
	var calls atomic.Int32
	res, _ := newTestResource(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}, WithReadRetries(3))
	_, err := res.Create(context.Background(), &domain.Customer{Name: "amy"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if calls.Load() != 1 {
		t.Fatalf("mutation retried: %d calls", calls.Load())
	}
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	res, _ := newTestResource(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"code": "not_found", "message": "customer missing"})
	}, WithReadRetries(3))
	_, err := res.Get(context.Background(), "ghost")
	if !errors.Is(err, apierr.ErrNotFound) {
		t.Fatalf("want not_found, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("4xx retried: %d calls", calls.Load())
	}
}

func TestClientStatusMapping(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{401, apierr.ErrAuth},
		{403, apierr.ErrForbidden},
		{404, apierr.ErrNotFound},
		{409, apierr.ErrConflict},
		{422, apierr.ErrValidation},
	}
	for _, c := range cases {
		status := c.status
		res, _ := newTestResource(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}, WithReadRetries(0))
		_, err := res.Get(context.Background(), "c1")
		if !errors.Is(err, c.want) {
			t.Fatalf("status %d: got %v", c.status, err)
		}
	}
}

func TestClientWireErrorCodeSurfaces(t *testing.T) {
	res, _ := newTestResource(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"code": "conflict", "message": "illegal transition"})
	})
	_, err := res.Update(context.Background(), "t1", &domain.Customer{})
	var ae *apierr.Error
	if !errors.As(err, &ae) {
		t.Fatalf("expected *apierr.Error, got %v", err)
	}
	if ae.Code != "conflict" || ae.Message != "illegal transition" {
		t.Fatalf("wire fields lost: %#v", ae)
	}
}

func TestClientTimeout(t *testing.T) {
	res, _ := newTestResource(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}, WithTimeout(50*time.Millisecond), WithReadRetries(0))
	_, err := res.Get(context.Background(), "c1")
	if !errors.Is(err, apierr.ErrTimeout) {
		t.Fatalf("want timeout, got %v", err)
	}
}

func TestClientTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listens anymore
	c := NewClient(srv.URL, nil, WithReadRetries(0))
	res := NewResource(c, PathCustomers, func() *domain.Customer { return &domain.Customer{} })
	_, err := res.Get(context.Background(), "c1")
	if !errors.Is(err, apierr.ErrTransport) {
		t.Fatalf("want transport error, got %v", err)
	}
}

func TestResourceValidatesBeforeNetwork(t *testing.T) {
	called := false
	res, _ := newTestResource(t, func(w http.ResponseWriter, r *http.Request) { called = true })
	if _, _, err := res.List(context.Background(), domain.ListQuery{Page: 0, PageSize: 10}); !errors.Is(err, apierr.ErrValidation) {
		t.Fatalf("page 0 must fail validation, got %v", err)
	}
	if _, _, err := res.List(context.Background(), domain.ListQuery{Page: 1, PageSize: 0}); !errors.Is(err, apierr.ErrValidation) {
		t.Fatalf("page_size 0 must fail validation, got %v", err)
	}
	if _, err := res.Get(context.Background(), ""); !errors.Is(err, apierr.ErrValidation) {
		t.Fatalf("empty id must fail validation, got %v", err)
	}
	if err := res.BulkDelete(context.Background(), nil); !errors.Is(err, apierr.ErrValidation) {
		t.Fatalf("empty ids must fail validation, got %v", err)
	}
	if called {
		t.Fatalf("validation failures must not hit the network")
	}
}

func TestResourceListQueryEncoding(t *testing.T) {
	var gotQuery atomic.Value
	res, _ := newTestResource(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery.Store(r.URL.Query().Encode())
		json.NewEncoder(w).Encode(map[string]any{"items": []any{}, "total": 0})
	})
	_, _, err := res.List(context.Background(), domain.ListQuery{
		Page: 2, PageSize: 25, Search: "amy",
		Filters: map[string]string{"status": "IN_REPAIR"},
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	q := gotQuery.Load().(string)
	if q != "page=2&page_size=25&search=amy&status=IN_REPAIR" {
		t.Fatalf("unexpected query %q", q)
	}
}
