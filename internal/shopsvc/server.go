// Package shopsvc assembles the reference repair-shop backend: the
// REST contract the sync core consumes plus the SSE change feed.
package shopsvc

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/route"
	prom "github.com/hertz-contrib/monitor-prometheus"

	"github.com/umerali06/fixora-pro-sync/internal/common"
	"github.com/umerali06/fixora-pro-sync/internal/domain"
	"github.com/umerali06/fixora-pro-sync/internal/observability"
)

var promOnce sync.Once

// shopState groups the repos and broadcaster behind one server so
// tests can build isolated instances.
type shopState struct {
	customers *domain.Repo[*domain.Customer]
	items     *domain.Repo[*domain.InventoryItem]
	tickets   *domain.Repo[*domain.RepairTicket]
	invoices  *domain.Repo[*domain.Invoice]
	todos     *domain.Repo[*domain.Todo]
	acts      *domain.Repo[*domain.Activity]
	bus       *broadcaster
}

func newShopState() *shopState {
	return &shopState{
		customers: domain.NewRepo(matchCustomer),
		items:     domain.NewRepo(matchItem),
		tickets:   domain.NewRepo(matchTicket),
		invoices:  domain.NewRepo(matchInvoice),
		todos:     domain.NewRepo(matchTodo),
		acts:      domain.NewRepo(matchActivity),
		bus:       newBroadcaster(),
	}
}

// BuildServer assembles the Hertz server with all routes for reuse in
// tests.
func BuildServer(cfg *common.Config) *server.Hertz {
	common.InitLogger()
	common.InitHertzLogger()
	st := newShopState()

	var h *server.Hertz
	promOnce.Do(func() {
		if cfg.PromDisable {
			h = server.Default(server.WithHostPorts(cfg.HTTPAddr))
		} else {
			h = server.Default(
				server.WithHostPorts(cfg.HTTPAddr),
				server.WithTracer(prom.NewServerTracer(":9100", "/metrics", prom.WithEnableGoCollector(true))),
			)
		}
	})
	if h == nil { // subsequent builds without the tracer to avoid duplicate /metrics
		h = server.Default(server.WithHostPorts(cfg.HTTPAddr))
	}
	for _, m := range common.Middlewares() {
		h.Use(m)
	}
	h.Use(func(c context.Context, ctx *app.RequestContext) {
		ctx.Response.Header.Set("X-Fixora-Project", common.ProjectName)
		ctx.Response.Header.Set("X-Fixora-Version", common.ProjectVersion)
		ctx.Next(c)
	})
	h.GET("/metrics/domain", func(c context.Context, ctx *app.RequestContext) {
		ctx.Response.Header.Set("Content-Type", "text/plain; charset=utf-8")
		ctx.Write([]byte(observability.Snapshot()))
	})
	registerHealthRoutes(h)

	v1 := h.Group("/v1", common.AuthMiddleware(cfg.APIToken))

	registerEntityRoutes(v1, "/customers", domain.EntityCustomer, st.customers, st.bus,
		func() *domain.Customer { return &domain.Customer{} },
		entityHooks[*domain.Customer]{
			beforeUpdate: func(ex, p *domain.Customer) { p.CreatedAt = ex.CreatedAt },
			created:      func() { observability.CustomerCreated.Add(1) },
		})
	registerEntityRoutes(v1, "/inventory-items", domain.EntityInventoryItem, st.items, st.bus,
		func() *domain.InventoryItem { return &domain.InventoryItem{} },
		entityHooks[*domain.InventoryItem]{
			beforeUpdate: func(ex, p *domain.InventoryItem) { p.CreatedAt = ex.CreatedAt },
			created:      func() { observability.ItemCreated.Add(1) },
		})
	registerEntityRoutes(v1, "/repair-tickets", domain.EntityRepairTicket, st.tickets, st.bus,
		func() *domain.RepairTicket { return &domain.RepairTicket{} },
		entityHooks[*domain.RepairTicket]{
			normalize: func(t *domain.RepairTicket) {
				if t.Status == "" {
					t.Status = domain.StatusReceived
				}
			},
			beforeUpdate: func(ex, p *domain.RepairTicket) {
				p.CreatedAt = ex.CreatedAt
				// status moves go through the dedicated route
				p.Status = ex.Status
			},
			created: func() { observability.TicketCreated.Add(1) },
		})
	registerEntityRoutes(v1, "/invoices", domain.EntityInvoice, st.invoices, st.bus,
		func() *domain.Invoice { return &domain.Invoice{} },
		entityHooks[*domain.Invoice]{
			normalize: func(v *domain.Invoice) { v.Recalculate() },
			beforeUpdate: func(ex, p *domain.Invoice) {
				p.CreatedAt = ex.CreatedAt
				if !ex.Paid && p.Paid {
					observability.InvoicePaid.Add(1)
				}
			},
			created: func() { observability.InvoiceCreated.Add(1) },
		})
	registerEntityRoutes(v1, "/todos", domain.EntityTodo, st.todos, st.bus,
		func() *domain.Todo { return &domain.Todo{} },
		entityHooks[*domain.Todo]{
			beforeUpdate: func(ex, p *domain.Todo) { p.CreatedAt = ex.CreatedAt },
			created:      func() { observability.TodoCreated.Add(1) },
		})
	registerEntityRoutes(v1, "/activities", domain.EntityActivity, st.acts, st.bus,
		func() *domain.Activity { return &domain.Activity{} },
		entityHooks[*domain.Activity]{
			beforeUpdate: func(ex, p *domain.Activity) { p.CreatedAt = ex.CreatedAt },
			created:      func() { observability.ActivityLogged.Add(1) },
		})

	registerTicketStatusRoute(v1, st)
	registerEventsRoute(v1, st.bus)

	return h
}

func registerHealthRoutes(h *server.Hertz) {
	h.GET("/health", func(c context.Context, ctx *app.RequestContext) {
		ctx.JSON(200, map[string]any{"status": "ok"})
	})
	h.GET("/ready", func(c context.Context, ctx *app.RequestContext) {
		ctx.JSON(200, map[string]any{"status": "ready", "backend": "memory"})
	})
}

// registerTicketStatusRoute is the status-machine gate: forward one
// step at a time, cancel from any non-terminal state.
func registerTicketStatusRoute(g *route.RouterGroup, st *shopState) {
	g.PUT("/repair-tickets/:id/status", func(c context.Context, ctx *app.RequestContext) {
		var req struct {
			Status domain.TicketStatus `json:"status"`
		}
		if err := ctx.Bind(&req); err != nil || !domain.ValidTicketStatus(req.Status) {
			common.WriteError(c, ctx, 400, common.ErrCodeBadRequest, badRequestMsg)
			return
		}
		id := string(ctx.Param("id"))
		t, err := st.tickets.Get(c, id)
		if err != nil {
			common.WriteError(c, ctx, 404, common.ErrCodeNotFound, notFoundMsg)
			return
		}
		if !domain.CanTransition(t.Status, req.Status) {
			common.WriteError(c, ctx, 409, common.ErrCodeConflict,
				"illegal status transition "+string(t.Status)+" -> "+string(req.Status))
			return
		}
		next := *t
		next.Status = req.Status
		next.Touch(time.Now().Unix())
		st.tickets.Update(c, &next)
		observability.TicketStatusMove.Add(1)
		st.bus.publish(domain.EntityRepairTicket, domain.ActionUpdate, &next)
		ctx.JSON(200, &next)
	})
}

// --- list matchers ---

func containsFold(s, sub string) bool {
	return sub == "" || strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func matchCustomer(t *domain.Customer, q domain.ListQuery) bool {
	return containsFold(t.Name+" "+t.Email+" "+t.Phone, q.Search)
}

func matchItem(t *domain.InventoryItem, q domain.ListQuery) bool {
	if v, ok := q.Filters["category"]; ok && t.Category != v {
		return false
	}
	if v, ok := q.Filters["low_stock"]; ok && v == "true" && !t.LowStock() {
		return false
	}
	return containsFold(t.Name+" "+t.SKU, q.Search)
}

func matchTicket(t *domain.RepairTicket, q domain.ListQuery) bool {
	if v, ok := q.Filters["status"]; ok && string(t.Status) != v {
		return false
	}
	if v, ok := q.Filters["customer_id"]; ok && t.CustomerID != v {
		return false
	}
	return containsFold(t.Device+" "+t.Problem, q.Search)
}

func matchInvoice(t *domain.Invoice, q domain.ListQuery) bool {
	if v, ok := q.Filters["customer_id"]; ok && t.CustomerID != v {
		return false
	}
	if v, ok := q.Filters["paid"]; ok {
		if (v == "true") != t.Paid {
			return false
		}
	}
	return true
}

func matchTodo(t *domain.Todo, q domain.ListQuery) bool {
	if v, ok := q.Filters["done"]; ok {
		if (v == "true") != t.Done {
			return false
		}
	}
	return containsFold(t.Title, q.Search)
}

func matchActivity(t *domain.Activity, q domain.ListQuery) bool {
	if v, ok := q.Filters["kind"]; ok && t.Kind != v {
		return false
	}
	return containsFold(t.Subject+" "+t.Message, q.Search)
}
