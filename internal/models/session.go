package models

import "time"

// SessionState is the only state kept per conversation.
type SessionState struct {
	ID                 string    `json:"id"`
	RememberedLocation string    `json:"rememberedLocation,omitempty"`
	UpdatedAt          time.Time `json:"updatedAt"`
}
