package domain

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser     Role = "user"
	RolePolice   Role = "police"
	RoleHospital Role = "hospital"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Identity is the authenticated caller attached to every request.
type Identity struct {
	UserID   uuid.UUID
	Username string
	Role     Role
}
