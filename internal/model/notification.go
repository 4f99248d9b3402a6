package model

import "time"

const (
	NotificationSuccess = "success"
	NotificationError   = "error"
)

// Notification is a user-visible message raised by a command.
type Notification struct {
	ID      string    `json:"id"`
	Level   string    `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}
