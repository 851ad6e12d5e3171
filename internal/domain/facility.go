package domain

import (
	"time"

	"github.com/google/uuid"

	"alertline/pkg/geo"
)

type FacilityKind string

const (
	FacilityPolice   FacilityKind = "police"
	FacilityHospital FacilityKind = "hospital"
)

// Facility is a registered police station or hospital. Its coordinate is
// fixed after registration; exactly one owning account per facility.
type Facility struct {
	ID        uuid.UUID    `json:"id"`
	UserID    uuid.UUID    `json:"user_id"`
	Kind      FacilityKind `json:"kind"`
	Name      string       `json:"name"`
	Lat       float64      `json:"lat"`
	Lng       float64      `json:"lng"`
	Phone     string       `json:"phone"`
	CreatedAt time.Time    `json:"created_at"`
}

func (f *Facility) Coordinate() geo.Coordinate {
	return geo.Coordinate{Lat: f.Lat, Lng: f.Lng}
}
