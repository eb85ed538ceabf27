package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/umerali06/fixora-pro-sync/internal/common"
	"github.com/umerali06/fixora-pro-sync/internal/domain"
	"github.com/umerali06/fixora-pro-sync/internal/engine"
	"github.com/umerali06/fixora-pro-sync/internal/observability"
	"github.com/umerali06/fixora-pro-sync/internal/realtime"
	"github.com/umerali06/fixora-pro-sync/internal/shopsvc"
)

func envOr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

// moveTicketStatus drives the dedicated status-machine route.
func moveTicketStatus(ctx context.Context, cfg *common.Config, addr, id string, st domain.TicketStatus) error {
	body := strings.NewReader(fmt.Sprintf(`{"status":%q}`, st))
	req, err := http.NewRequestWithContext(ctx, http.MethodPut,
		"http://"+addr+"/v1/repair-tickets/"+id+"/status", body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if cfg.APIToken != "" {
		req.Header.Set("Authorization", "Bearer "+cfg.APIToken)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status route returned %d", resp.StatusCode)
	}
	return nil
}

func waitPortReady(addr string, deadline time.Time) error {
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", addr, 200*time.Millisecond)
		if err == nil {
			conn.Close()
			return nil
		}
		time.Sleep(50 * time.Millisecond)
	}
	return fmt.Errorf("port %s not ready before deadline", addr)
}

func main() {
	var (
		timeout     = flag.Duration("timeout", 30*time.Second, "overall timeout")
		waitStart   = flag.Duration("wait-start", 4*time.Second, "max wait for inline server ready")
		withInline  = flag.Bool("inline", false, "start shop-svc inline instead of using an existing one (overrides START_INLINE env)")
		metricsAddr = flag.String("metrics", envOr("METRICS_ADDR", ""), "client metrics listen address, empty disables")
	)
	flag.Parse()
	startInline := *withInline || os.Getenv("START_INLINE") == "1"

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	common.InitLogger()
	if srv := observability.InitMetrics("sync-probe", *metricsAddr, common.L()); srv != nil {
		defer srv.Close()
	}

	addr := envOr("SHOP_ADDR", "127.0.0.1:8081")
	if startInline {
		cfg := common.LoadConfig()
		cfg.HTTPAddr = addr
		cfg.PromDisable = true
		h := shopsvc.BuildServer(cfg)
		go h.Spin()
		if err := waitPortReady(addr, time.Now().Add(*waitStart)); err != nil {
			log.Fatalf("shop-svc not ready: %v", err)
		}
	}

	cfg := common.LoadConfig()
	cfg.APIBaseURL = "http://" + addr
	cfg.ReconnectMinDelay = 200 * time.Millisecond
	set := engine.New(cfg)

	set.Channel.OnStatus(func(st realtime.Status) {
		log.Printf("channel: %s (attempt %d)", st.State, st.Attempt)
	})
	set.Connect(ctx)
	defer set.Disconnect()

	log.Printf("Probe using shop=%s inline=%v timeout=%s", addr, startInline, timeout.String())

	// 1. Customer create: the confirmed id must replace the temp one
	cust, err := set.Customers.Create(ctx, &domain.Customer{Name: "probe customer", Email: "probe@example.com"})
	if err != nil {
		log.Fatalf("Customers.Create: %v", err)
	}
	if domain.IsTempID(cust.ID) {
		log.Fatalf("create left a temporary id: %s", cust.ID)
	}
	fmt.Println("Customers.Create =>", cust.ID)

	// 2. Customer update
	cust.Phone = "555-0101"
	upd, err := set.Customers.Update(ctx, cust.ID, cust)
	if err != nil {
		log.Fatalf("Customers.Update: %v", err)
	}
	fmt.Println("Customers.Update =>", upd.Phone)

	// 3. Repair ticket walk through the status machine
	tick, err := set.RepairTickets.Create(ctx, &domain.RepairTicket{
		CustomerID: cust.ID, Device: "laptop", Problem: "no boot",
	})
	if err != nil {
		log.Fatalf("RepairTickets.Create: %v", err)
	}
	fmt.Println("RepairTickets.Create =>", tick.ID, tick.Status)

	for _, st := range []domain.TicketStatus{domain.StatusDiagnosed, domain.StatusWaitingParts} {
		if err := moveTicketStatus(ctx, cfg, addr, tick.ID, st); err != nil {
			log.Fatalf("status move to %s: %v", st, err)
		}
		fmt.Println("RepairTickets status =>", st)
	}

	// 4. Fetch page one and verify totals
	if err := set.Customers.Fetch(ctx, domain.ListQuery{Page: 1, PageSize: 10}); err != nil {
		log.Fatalf("Customers.Fetch: %v", err)
	}
	pg := set.Customers.Pagination()
	fmt.Println("Customers.Fetch => total", pg.Total)

	// 5. Realtime echo: a second sync set must observe the mutation
	other := engine.New(cfg)
	other.Connect(ctx)
	defer other.Disconnect()
	if err := other.Todos.Fetch(ctx, domain.ListQuery{Page: 1, PageSize: 10}); err != nil {
		log.Fatalf("Todos.Fetch: %v", err)
	}
	todo, err := set.Todos.Create(ctx, &domain.Todo{Title: "order parts"})
	if err != nil {
		log.Fatalf("Todos.Create: %v", err)
	}
	echoed := false
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		for _, t := range other.Todos.Items() {
			if t.ID == todo.ID {
				echoed = true
			}
		}
		if echoed {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}
	if !echoed {
		log.Fatalf("todo %s never arrived over the event stream", todo.ID)
	}
	fmt.Println("Realtime echo => ok")

	// 6. Bulk delete
	if err := set.Todos.Fetch(ctx, domain.ListQuery{Page: 1, PageSize: 10}); err != nil {
		log.Fatalf("Todos.Fetch: %v", err)
	}
	set.Todos.SetSelectedIDs([]string{todo.ID})
	if err := set.Todos.BulkDelete(ctx, []string{todo.ID}); err != nil {
		log.Fatalf("Todos.BulkDelete: %v", err)
	}
	fmt.Println("Todos.BulkDelete => ok")

	fmt.Println("probe completed")
}
