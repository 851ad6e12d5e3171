package domain

import "time"

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
	Role  Role   `json:"role"`
}

type RegisterFacilityRequest struct {
	Username   string  `json:"username" validate:"required,min=3,max=64"`
	Password   string  `json:"password" validate:"required,min=6,max=128"`
	SecretCode string  `json:"secret_code" validate:"required"`
	Name       string  `json:"name" validate:"required,max=200"`
	Lat        float64 `json:"lat" validate:"lat"`
	Lng        float64 `json:"lng" validate:"lng"`
	Phone      string  `json:"phone" validate:"required,max=15"`
}

type ReportAlertRequest struct {
	Lat         float64 `json:"lat" validate:"lat"`
	Lng         float64 `json:"lng" validate:"lng"`
	Address     string  `json:"address"`
	Description string  `json:"description"`
}

type ReportAlertResponse struct {
	AlertID      string `json:"alert_id"`
	AssignmentID string `json:"assignment_id"`
	Notified     int    `json:"notified"`
}

type UpdateLocationRequest struct {
	Lat float64 `json:"lat" validate:"lat"`
	Lng float64 `json:"lng" validate:"lng"`
}

type BroadcastRequest struct {
	Message  string        `json:"message" validate:"required,max=500"`
	Kind     BroadcastKind `json:"kind" validate:"omitempty,oneof=general missing_person"`
	PhotoURL string        `json:"photo_url" validate:"omitempty,url,max=500"`
}

type BroadcastResponse struct {
	BroadcastID string `json:"broadcast_id"`
	Notified    int    `json:"notified"`
}

// AssignmentView is the dashboard row: an assignment joined with its alert
// and reporter.
type AssignmentView struct {
	Assignment
	Alert    Alert  `json:"alert"`
	Reporter string `json:"reporter"`
}

type LiveLocation struct {
	Username string  `json:"username"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
}

type NearbyService struct {
	Name    string  `json:"name"`
	Type    string  `json:"type"`
	Lat     float64 `json:"latitude"`
	Lng     float64 `json:"longitude"`
	Address string  `json:"address"`
}

// PushMessage is the payload handed to the delivery gateway; creation of the
// Notification row is the durable output, delivery is best-effort.
type PushMessage struct {
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	CreatedAt time.Time `json:"created_at"`
}
