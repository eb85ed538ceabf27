package domain

import "encoding/json"

// ChangeAction is the mutation kind carried by a push event.
type ChangeAction string

const (
	ActionCreate ChangeAction = "CREATE"
	ActionUpdate ChangeAction = "UPDATE"
	ActionDelete ChangeAction = "DELETE"
)

// ValidChangeAction reports whether a is a known action.
func ValidChangeAction(a ChangeAction) bool {
	return a == ActionCreate || a == ActionUpdate || a == ActionDelete
}

// ChangeEvent is one out-of-band entity mutation pushed by the server.
// Data holds the full entity for CREATE/UPDATE and at least {"id"} for
// DELETE.
type ChangeEvent struct {
	EntityType EntityType      `json:"entity_type"`
	Action     ChangeAction    `json:"action"`
	Data       json.RawMessage `json:"data"`
}
