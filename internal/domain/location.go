package domain

import (
	"time"

	"github.com/google/uuid"

	"alertline/pkg/geo"
)

// UserLocation is a user's last-known coordinate. Lat/Lng are nil until the
// user reports a position for the first time; rows with unknown coordinates
// are skipped by proximity scans.
type UserLocation struct {
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username"`
	Lat       *float64  `json:"lat"`
	Lng       *float64  `json:"lng"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (l *UserLocation) Known() bool {
	return l.Lat != nil && l.Lng != nil
}

func (l *UserLocation) Coordinate() geo.Coordinate {
	if !l.Known() {
		return geo.Coordinate{}
	}
	return geo.Coordinate{Lat: *l.Lat, Lng: *l.Lng}
}
