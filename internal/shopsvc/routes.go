package shopsvc

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/route"
	"github.com/google/uuid"

	"github.com/umerali06/fixora-pro-sync/internal/common"
	"github.com/umerali06/fixora-pro-sync/internal/domain"
	"github.com/umerali06/fixora-pro-sync/internal/observability"
)

const notFoundMsg = "not found"
const badRequestMsg = "bad request"

// entityHooks customize the generic CRUD routes per entity type.
type entityHooks[T domain.Entity] struct {
	// normalize runs server-side derivations before persisting
	// (e.g. invoice totals). Optional.
	normalize func(T)
	// beforeUpdate lets the existing record inform the incoming patch
	// (preserve created_at). Optional.
	beforeUpdate func(existing, patch T)
	// created is the domain counter bumped per create. Optional.
	created func()
}

func parseListQuery(ctx *app.RequestContext) domain.ListQuery {
	q := domain.ListQuery{
		Page:     1,
		PageSize: 20,
		Filters:  map[string]string{},
	}
	if v, err := strconv.Atoi(ctx.Query("page")); err == nil {
		q.Page = v
	}
	if v, err := strconv.Atoi(ctx.Query("page_size")); err == nil {
		q.PageSize = v
	}
	q.Search = ctx.Query("search")
	ctx.QueryArgs().VisitAll(func(key, value []byte) {
		switch string(key) {
		case "page", "page_size", "search":
		default:
			q.Filters[string(key)] = string(value)
		}
	})
	return q
}

// registerEntityRoutes wires the full CRUD + bulk-delete contract for
// one entity collection.
func registerEntityRoutes[T domain.Entity](
	g *route.RouterGroup,
	path string,
	et domain.EntityType,
	repo *domain.Repo[T],
	bus *broadcaster,
	newT func() T,
	hooks entityHooks[T],
) {
	g.GET(path, func(c context.Context, ctx *app.RequestContext) {
		q := parseListQuery(ctx)
		if q.Page < 1 || q.PageSize <= 0 {
			common.WriteError(c, ctx, 400, common.ErrCodeBadRequest, badRequestMsg)
			return
		}
		items, total, _ := repo.List(c, q)
		if items == nil {
			items = []T{}
		}
		ctx.JSON(200, map[string]any{"items": items, "total": total})
	})

	g.GET(path+"/:id", func(c context.Context, ctx *app.RequestContext) {
		t, err := repo.Get(c, string(ctx.Param("id")))
		if err != nil {
			common.WriteError(c, ctx, 404, common.ErrCodeNotFound, notFoundMsg)
			return
		}
		ctx.JSON(200, t)
	})

	g.POST(path, func(c context.Context, ctx *app.RequestContext) {
		t := newT()
		if err := ctx.Bind(t); err != nil {
			common.WriteError(c, ctx, 400, common.ErrCodeBadRequest, badRequestMsg)
			return
		}
		// the server owns ids and timestamps, whatever the draft says
		t.SetID(uuid.NewString())
		t.Stamp(time.Now().Unix())
		if hooks.normalize != nil {
			hooks.normalize(t)
		}
		repo.Create(c, t)
		if hooks.created != nil {
			hooks.created()
		}
		bus.publish(et, domain.ActionCreate, t)
		ctx.JSON(201, t)
	})

	g.PUT(path+"/:id", func(c context.Context, ctx *app.RequestContext) {
		id := string(ctx.Param("id"))
		existing, err := repo.Get(c, id)
		if err != nil {
			common.WriteError(c, ctx, 404, common.ErrCodeNotFound, notFoundMsg)
			return
		}
		patch := newT()
		if err := ctx.Bind(patch); err != nil {
			common.WriteError(c, ctx, 400, common.ErrCodeBadRequest, badRequestMsg)
			return
		}
		patch.SetID(id)
		if hooks.beforeUpdate != nil {
			hooks.beforeUpdate(existing, patch)
		}
		patch.Touch(time.Now().Unix())
		if hooks.normalize != nil {
			hooks.normalize(patch)
		}
		repo.Update(c, patch)
		bus.publish(et, domain.ActionUpdate, patch)
		ctx.JSON(200, patch)
	})

	g.DELETE(path+"/:id", func(c context.Context, ctx *app.RequestContext) {
		id := string(ctx.Param("id"))
		if err := repo.Delete(c, id); err != nil {
			common.WriteError(c, ctx, 404, common.ErrCodeNotFound, notFoundMsg)
			return
		}
		observability.RecordDeleted.Add(1)
		bus.publishDelete(et, id)
		ctx.SetStatusCode(204)
	})

	g.POST(path+"/bulk-delete", func(c context.Context, ctx *app.RequestContext) {
		var req struct {
			IDs []string `json:"ids"`
		}
		if err := ctx.Bind(&req); err != nil || len(req.IDs) == 0 {
			common.WriteError(c, ctx, 400, common.ErrCodeBadRequest, badRequestMsg)
			return
		}
		removed, _ := repo.BulkDelete(c, req.IDs)
		for _, id := range removed {
			observability.RecordDeleted.Add(1)
			bus.publishDelete(et, id)
		}
		ctx.SetStatusCode(204)
	})
}

// registerEventsRoute exposes the SSE change feed.
func registerEventsRoute(g *route.RouterGroup, bus *broadcaster) {
	g.GET("/events", func(c context.Context, ctx *app.RequestContext) {
		ctx.Response.Header.Set("Content-Type", "text/event-stream")
		ctx.Response.Header.Set("Cache-Control", "no-cache")
		ctx.Response.Header.Set("Connection", "keep-alive")

		pr, pw := io.Pipe()
		sub := bus.subscribe()
		go func() {
			defer bus.unsubscribe(sub)
			defer pw.Close()
			// handshake comment so clients see bytes immediately
			if _, err := fmt.Fprint(pw, ": connected\n\n"); err != nil {
				return
			}
			ticker := time.NewTicker(15 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case ev, ok := <-sub:
					if !ok {
						return
					}
					if _, err := fmt.Fprintf(pw, "event: change\ndata: {\"entity_type\":%q,\"action\":%q,\"data\":%s}\n\n",
						ev.EntityType, ev.Action, ev.Data); err != nil {
						return
					}
				case <-ticker.C:
					if _, err := fmt.Fprint(pw, ": ping\n\n"); err != nil {
						return
					}
				}
			}
		}()
		ctx.SetBodyStream(pr, -1)
	})
}
