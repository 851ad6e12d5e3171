package domain

import (
	"time"

	"github.com/google/uuid"
)

type BroadcastKind string

const (
	BroadcastGeneral       BroadcastKind = "general"
	BroadcastMissingPerson BroadcastKind = "missing_person"
)

// Broadcast is a facility-initiated public alert not tied to a specific
// incident. Missing-person broadcasts may carry a photo URL.
type Broadcast struct {
	ID         uuid.UUID     `json:"id"`
	FacilityID uuid.UUID     `json:"facility_id"`
	Kind       BroadcastKind `json:"kind"`
	Message    string        `json:"message"`
	PhotoURL   string        `json:"photo_url,omitempty"`
	Lat        float64       `json:"lat"`
	Lng        float64       `json:"lng"`
	CreatedAt  time.Time     `json:"created_at"`
}

// Notification is the durable fan-out output. Only the read flag is ever
// mutated after creation.
type Notification struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	Title       string     `json:"title"`
	Message     string     `json:"message"`
	Lat         float64    `json:"lat"`
	Lng         float64    `json:"lng"`
	Address     string     `json:"address"`
	BroadcastID *uuid.UUID `json:"broadcast_id,omitempty"`
	IsRead      bool       `json:"is_read"`
	CreatedAt   time.Time  `json:"created_at"`
}
