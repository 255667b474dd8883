package domain

import (
	"strings"
	"time"
)

const (
	EntityPost     = "post"
	EntityLocation = "location"
	SystemEntity   = "system"

	RoomPosts     = "posts"
	RoomLocations = "locations"

	ActionNew    = "new"
	ActionUpdate = "update"
	ActionDelete = "delete"

	EventConnected = "connected"
	EventPong      = "pong"
	EventError     = "error"
)

// EventName composes the client-facing event name, e.g. ("new", "post") -> "new_post".
func EventName(action, entity string) string {
	action = strings.TrimSpace(strings.ToLower(action))
	entity = strings.TrimSpace(strings.ToLower(entity))
	if action == "" || entity == "" {
		return ""
	}
	return action + "_" + entity
}

// RoomFor maps an entity kind to its broadcast room.
func RoomFor(entity string) string {
	switch strings.TrimSpace(strings.ToLower(entity)) {
	case EntityPost:
		return RoomPosts
	case EntityLocation:
		return RoomLocations
	case "":
		return ""
	default:
		return strings.TrimSpace(strings.ToLower(entity)) + "s"
	}
}

// NewEntityEvent builds a mutation event targeting the entity's room.
func NewEntityEvent(action, entity, resourceID string, data any, at time.Time) *Event {
	return &Event{
		Event:      EventName(action, entity),
		Room:       RoomFor(entity),
		Entity:     strings.TrimSpace(strings.ToLower(entity)),
		Action:     strings.TrimSpace(strings.ToLower(action)),
		ResourceID: strings.TrimSpace(resourceID),
		Data:       data,
		Timestamp:  at.UTC(),
	}
}

// NewSystemEvent builds a connection-scoped event (connected, pong, error).
func NewSystemEvent(name string, data any, at time.Time) *Event {
	return &Event{
		Event:     name,
		Entity:    SystemEntity,
		Action:    name,
		Data:      data,
		Timestamp: at.UTC(),
	}
}
