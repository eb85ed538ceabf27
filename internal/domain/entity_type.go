package domain

// EntityType names one syncable collection. Values match the wire
// `entity_type` field of change events.
type EntityType string

const (
	EntityCustomer      EntityType = "customer"
	EntityInventoryItem EntityType = "inventory_item"
	EntityRepairTicket  EntityType = "repair_ticket"
	EntityInvoice       EntityType = "invoice"
	EntityTodo          EntityType = "todo"
	EntityActivity      EntityType = "activity"
)

// AllEntityTypes returns every known entity type in a stable order.
func AllEntityTypes() []EntityType {
	return []EntityType{
		EntityCustomer,
		EntityInventoryItem,
		EntityRepairTicket,
		EntityInvoice,
		EntityTodo,
		EntityActivity,
	}
}

// ValidEntityType reports whether t names a known collection.
func ValidEntityType(t EntityType) bool {
	switch t {
	case EntityCustomer, EntityInventoryItem, EntityRepairTicket,
		EntityInvoice, EntityTodo, EntityActivity:
		return true
	}
	return false
}

// ListQuery carries the paging, search and filter parameters of a list
// fetch. Page starts at 1; Total in responses is server-authoritative.
type ListQuery struct {
	Page     int
	PageSize int
	Search   string
	Filters  map[string]string
}
