package model

import "time"

// User is a chat-platform identity. Created on first /start, never deleted;
// only the username is refreshed on later interactions.
type User struct {
	ID        int64     `json:"id"` // Telegram user id
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}
