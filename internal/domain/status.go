package domain

// TicketStatus is the repair ticket lifecycle state.
type TicketStatus string

const (
	StatusReceived       TicketStatus = "RECEIVED"
	StatusDiagnosed      TicketStatus = "DIAGNOSED"
	StatusWaitingParts   TicketStatus = "WAITING_PARTS"
	StatusInRepair       TicketStatus = "IN_REPAIR"
	StatusCompleted      TicketStatus = "COMPLETED"
	StatusReadyForPickup TicketStatus = "READY_FOR_PICKUP"
	StatusDelivered      TicketStatus = "DELIVERED"
	StatusCancelled      TicketStatus = "CANCELLED"
)

// statusOrder is the forward progression of a repair. CANCELLED sits
// outside the chain and is reachable from every non-terminal state.
var statusOrder = []TicketStatus{
	StatusReceived,
	StatusDiagnosed,
	StatusWaitingParts,
	StatusInRepair,
	StatusCompleted,
	StatusReadyForPickup,
	StatusDelivered,
}

func statusIndex(s TicketStatus) int {
	for i, v := range statusOrder {
		if v == s {
			return i
		}
	}
	return -1
}

// ValidTicketStatus reports whether s is a known status.
func ValidTicketStatus(s TicketStatus) bool {
	return s == StatusCancelled || statusIndex(s) >= 0
}

// Terminal reports whether no further transition is allowed from s.
func (s TicketStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransition reports whether a ticket may move from -> to. Forward
// moves go one step at a time; cancellation is allowed from any
// non-terminal state.
func CanTransition(from, to TicketStatus) bool {
	if !ValidTicketStatus(from) || !ValidTicketStatus(to) || from.Terminal() {
		return false
	}
	if to == StatusCancelled {
		return true
	}
	fi, ti := statusIndex(from), statusIndex(to)
	return fi >= 0 && ti == fi+1
}

// NextStatuses lists the statuses reachable from s in one transition.
func NextStatuses(s TicketStatus) []TicketStatus {
	if !ValidTicketStatus(s) || s.Terminal() {
		return nil
	}
	var out []TicketStatus
	if i := statusIndex(s); i >= 0 && i+1 < len(statusOrder) {
		out = append(out, statusOrder[i+1])
	}
	out = append(out, StatusCancelled)
	return out
}
