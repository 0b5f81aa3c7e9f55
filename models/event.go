package models

// EventType names a realtime broadcast event.
type EventType string

const (
	EventListingCreated EventType = "listingCreated"
	EventListingUpdated EventType = "listingUpdated"
	EventListingDeleted EventType = "listingDeleted"
)

// Event is the wire frame pushed to every connected client. Payload is the
// full listing for create/update and the bare numeric id for delete.
type Event struct {
	Event   EventType   `json:"event"`
	Payload interface{} `json:"payload"`
}
