package integration

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/umerali06/fixora-pro-sync/internal/common"
	"github.com/umerali06/fixora-pro-sync/internal/domain"
	"github.com/umerali06/fixora-pro-sync/internal/engine"
	"github.com/umerali06/fixora-pro-sync/internal/shopsvc"
)

func startShop(t *testing.T, addr string) string {
	t.Helper()
	cfg := &common.Config{HTTPAddr: addr, PromDisable: true}
	h := shopsvc.BuildServer(cfg)
	go h.Spin()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		h.Shutdown(ctx)
	})
	baseURL := "http://127.0.0.1" + addr
	ready := false
	for i := 0; i < 100; i++ {
		resp, err := http.Get(baseURL + "/health")
		if err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			ready = true
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if !ready {
		t.Fatalf("shop-svc not ready at %s", baseURL)
	}
	return baseURL
}

func newSyncSet(baseURL string) *engine.SyncSet {
	cfg := &common.Config{
		APIBaseURL:           baseURL,
		RequestTimeout:       5 * time.Second,
		ReadRetries:          2,
		EventsPath:           "/v1/events",
		ReconnectMinDelay:    50 * time.Millisecond,
		ReconnectMaxDelay:    200 * time.Millisecond,
		ReconnectMaxAttempts: 5,
	}
	return engine.New(cfg)
}

func eventually(t *testing.T, d time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(25 * time.Millisecond)
	}
	t.Fatalf("condition never met: %s", msg)
}

// Two clients share one backend; every mutation either client performs
// must surface in the other through the change feed.
func TestTwoClientsConverge(t *testing.T) {
	baseURL := startShop(t, ":18191")
	ctx := context.Background()

	alice := newSyncSet(baseURL)
	bob := newSyncSet(baseURL)
	alice.Connect(ctx)
	bob.Connect(ctx)
	t.Cleanup(alice.Disconnect)
	t.Cleanup(bob.Disconnect)

	// both load the empty page first so updates have local state to hit
	if err := alice.Todos.Fetch(ctx, domain.ListQuery{Page: 1, PageSize: 20}); err != nil {
		t.Fatalf("alice fetch: %v", err)
	}
	if err := bob.Todos.Fetch(ctx, domain.ListQuery{Page: 1, PageSize: 20}); err != nil {
		t.Fatalf("bob fetch: %v", err)
	}

	// create on alice, observe on bob
	td, err := alice.Todos.Create(ctx, &domain.Todo{Title: "calibrate"})
	if err != nil {
		t.Fatalf("alice create: %v", err)
	}
	if domain.IsTempID(td.ID) {
		t.Fatalf("create returned an unconfirmed id")
	}
	eventually(t, 5*time.Second, func() bool {
		for _, x := range bob.Todos.Items() {
			if x.ID == td.ID {
				return true
			}
		}
		return false
	}, "bob never saw alice's create")

	// alice holds exactly one copy despite the push echo
	count := 0
	for _, x := range alice.Todos.Items() {
		if x.ID == td.ID {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("alice holds %d copies of %s", count, td.ID)
	}

	// update on bob, observe on alice
	patch := &domain.Todo{Title: "calibrate", Done: true}
	if _, err := bob.Todos.Update(ctx, td.ID, patch); err != nil {
		t.Fatalf("bob update: %v", err)
	}
	eventually(t, 5*time.Second, func() bool {
		for _, x := range alice.Todos.Items() {
			if x.ID == td.ID && x.Done {
				return true
			}
		}
		return false
	}, "alice never saw bob's update")

	// delete on alice, observe on bob
	if err := alice.Todos.Delete(ctx, td.ID); err != nil {
		t.Fatalf("alice delete: %v", err)
	}
	eventually(t, 5*time.Second, func() bool {
		for _, x := range bob.Todos.Items() {
			if x.ID == td.ID {
				return false
			}
		}
		return true
	}, "bob never saw alice's delete")
}

func TestTicketLifecycleAcrossClients(t *testing.T) {
	baseURL := startShop(t, ":18192")
	ctx := context.Background()

	alice := newSyncSet(baseURL)
	bob := newSyncSet(baseURL)
	alice.Connect(ctx)
	bob.Connect(ctx)
	t.Cleanup(alice.Disconnect)
	t.Cleanup(bob.Disconnect)

	if err := bob.RepairTickets.Fetch(ctx, domain.ListQuery{Page: 1, PageSize: 20}); err != nil {
		t.Fatalf("bob fetch: %v", err)
	}

	tick, err := alice.RepairTickets.Create(ctx, &domain.RepairTicket{Device: "console", Problem: "overheats"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if tick.Status != domain.StatusReceived {
		t.Fatalf("new ticket status %s", tick.Status)
	}
	eventually(t, 5*time.Second, func() bool {
		return len(bob.RepairTickets.Items()) == 1
	}, "ticket never reached bob")

	// the dedicated status route feeds back through the change feed
	req, _ := http.NewRequest(http.MethodPut,
		baseURL+"/v1/repair-tickets/"+tick.ID+"/status",
		strings.NewReader(`{"status":"DIAGNOSED"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("status move: %v", err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Fatalf("status move code %d", resp.StatusCode)
	}

	eventually(t, 5*time.Second, func() bool {
		for _, x := range bob.RepairTickets.Items() {
			if x.ID == tick.ID && x.Status == domain.StatusDiagnosed {
				return true
			}
		}
		return false
	}, "status move never reached bob")
}

// Bulk selection survives a converging delete: ids removed remotely
// fall out of the local selection on their own.
func TestBulkSelectionConverges(t *testing.T) {
	baseURL := startShop(t, ":18193")
	ctx := context.Background()

	alice := newSyncSet(baseURL)
	bob := newSyncSet(baseURL)
	alice.Connect(ctx)
	bob.Connect(ctx)
	t.Cleanup(alice.Disconnect)
	t.Cleanup(bob.Disconnect)

	if err := bob.Todos.Fetch(ctx, domain.ListQuery{Page: 1, PageSize: 20}); err != nil {
		t.Fatalf("bob fetch: %v", err)
	}

	var ids []string
	for _, title := range []string{"a", "b", "c"} {
		td, err := alice.Todos.Create(ctx, &domain.Todo{Title: title})
		if err != nil {
			t.Fatalf("create %s: %v", title, err)
		}
		ids = append(ids, td.ID)
	}
	eventually(t, 5*time.Second, func() bool {
		return len(bob.Todos.Items()) == 3
	}, "bob never converged on 3 todos")

	bob.Todos.SelectAll()
	if err := alice.Todos.BulkDelete(ctx, ids[:2]); err != nil {
		t.Fatalf("bulk delete: %v", err)
	}
	eventually(t, 5*time.Second, func() bool {
		return len(bob.Todos.Items()) == 1 && len(bob.Todos.SelectedIDs()) == 1
	}, "bob's selection never pruned to the surviving todo")
	if bob.Todos.SelectedIDs()[0] != ids[2] {
		t.Fatalf("wrong survivor: %v", bob.Todos.SelectedIDs())
	}
}
