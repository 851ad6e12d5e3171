package domain

import (
	"time"

	"github.com/google/uuid"

	"alertline/pkg/geo"
)

// Alert is a citizen-submitted emergency report. Immutable after creation.
type Alert struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Lat         float64   `json:"lat"`
	Lng         float64   `json:"lng"`
	Address     string    `json:"address"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func (a *Alert) Coordinate() geo.Coordinate {
	return geo.Coordinate{Lat: a.Lat, Lng: a.Lng}
}

type AssignmentStatus string

const (
	StatusAssigned   AssignmentStatus = "assigned"
	StatusInProgress AssignmentStatus = "in_progress"
	StatusResolved   AssignmentStatus = "resolved"
)

// rank orders the lifecycle; transitions never move backwards.
func (s AssignmentStatus) rank() int {
	switch s {
	case StatusAssigned:
		return 0
	case StatusInProgress:
		return 1
	case StatusResolved:
		return 2
	}
	return -1
}

// CanTransitionTo reports whether moving to next is a forward transition.
// Skipping in_progress is allowed; any backwards move is not.
func (s AssignmentStatus) CanTransitionTo(next AssignmentStatus) bool {
	return next.rank() > s.rank()
}

// Assignment links an alert to the selected facilities. AlertID is set at
// creation and never changes; facility refs become nil only when the owning
// account is deleted.
type Assignment struct {
	ID         uuid.UUID        `json:"id"`
	AlertID    uuid.UUID        `json:"alert_id"`
	PoliceID   *uuid.UUID       `json:"police_id,omitempty"`
	HospitalID *uuid.UUID       `json:"hospital_id,omitempty"`
	Status     AssignmentStatus `json:"status"`
	CreatedAt  time.Time        `json:"created_at"`
}
