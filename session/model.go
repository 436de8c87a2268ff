package session

import "time"

// Session is the server-side session record.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	IP        string    `json:"ip,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Remember  bool      `json:"remember,omitempty"`
}

// Options carries per-session creation inputs.
type Options struct {
	IP        string
	UserAgent string
	Remember  bool
}
