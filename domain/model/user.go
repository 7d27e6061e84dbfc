package model

import "time"

// User is a chat-platform user. Turns reference the user by plain UserID
// and the store cascades their deletion when the user row is removed.
type User struct {
	ID           uint   `gorm:"primary_key"`
	ExternalID   *int64 `gorm:"unique_index"` // messaging-platform user id
	IsSubscribed bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
