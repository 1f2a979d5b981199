package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"salon-server/models"
)

// Type is what happened to the entity.
type Type string

const (
	Created       Type = "created"
	Updated       Type = "updated"
	Deleted       Type = "deleted"
	StatusChanged Type = "status_changed"
)

// Event is a change notification. Observers should treat it as a hint to
// re-fetch rather than as an authoritative diff.
type Event struct {
	ID             string          `json:"id"`
	Seq            uint64          `json:"seq,omitempty"`
	Kind           models.Kind     `json:"kind"`
	EntityID       string          `json:"entity_id"`
	Type           Type            `json:"type"`
	PreviousStatus models.Status   `json:"previous_status,omitempty"`
	NewStatus      models.Status   `json:"new_status,omitempty"`
	Timestamp      time.Time       `json:"timestamp"`
	Origin         string          `json:"origin,omitempty"`
	Data           json.RawMessage `json:"data,omitempty"`
}

// New builds an event for entity e. The snapshot is attached when it
// marshals cleanly.
func New(typ Type, e models.Entity) Event {
	ev := Event{
		ID:        uuid.NewString(),
		Kind:      e.EntityKind(),
		EntityID:  e.EntityID(),
		Type:      typ,
		Timestamp: time.Now(),
	}
	if se, ok := e.(models.StatusEntity); ok {
		ev.NewStatus = se.GetStatus()
	}
	if b, err := json.Marshal(e); err == nil {
		ev.Data = b
	}
	return ev
}

// NewStatusChange builds the single event a successful transition emits.
func NewStatusChange(e models.StatusEntity, from models.Status) Event {
	ev := New(StatusChanged, e)
	ev.PreviousStatus = from
	return ev
}

// RoutingKey is the broker topic, e.g. "booking.status_changed".
func (e Event) RoutingKey() string {
	return fmt.Sprintf("%s.%s", e.Kind, e.Type)
}
