package domain

import "time"

// Event is the wire message pushed to room subscribers after a committed
// mutation. The broadcast layer treats Data as an opaque serializable blob.
type Event struct {
	// Event is the client-facing name, e.g. "new_post" or "delete_location".
	Event string `json:"event"`
	// Room is the broadcast group the event targets.
	Room string `json:"room"`
	// Entity is the singular entity kind (post, location, system).
	Entity string `json:"entity"`
	// Action is the mutation kind: new, update or delete.
	Action string `json:"action"`
	// ResourceID identifies the mutated entity. For deletes it is the only
	// payload besides Data's id echo.
	ResourceID string    `json:"resourceId,omitempty"`
	Data       any       `json:"data,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}
