package observability

import (
	"fmt"
	"sync/atomic"
)

var (
	CustomerCreated  atomic.Int64
	TicketCreated    atomic.Int64
	TicketStatusMove atomic.Int64
	InvoiceCreated   atomic.Int64
	InvoicePaid      atomic.Int64
	ItemCreated      atomic.Int64
	TodoCreated      atomic.Int64
	ActivityLogged   atomic.Int64
	RecordDeleted    atomic.Int64
	EventPublished   atomic.Int64
	EventApplied     atomic.Int64
)

// Snapshot returns a simple Prometheus-like exposition text for the
// domain counters, served separately from the standard registry.
func Snapshot() string {
	return fmt.Sprintf(`# Fixora domain metrics
fixora_customer_created_total %d
fixora_ticket_created_total %d
fixora_ticket_status_move_total %d
fixora_invoice_created_total %d
fixora_invoice_paid_total %d
fixora_item_created_total %d
fixora_todo_created_total %d
fixora_activity_logged_total %d
fixora_record_deleted_total %d
fixora_event_published_total %d
fixora_event_applied_total %d
`,
		CustomerCreated.Load(),
		TicketCreated.Load(),
		TicketStatusMove.Load(),
		InvoiceCreated.Load(),
		InvoicePaid.Load(),
		ItemCreated.Load(),
		TodoCreated.Load(),
		ActivityLogged.Load(),
		RecordDeleted.Load(),
		EventPublished.Load(),
		EventApplied.Load(),
	)
}
