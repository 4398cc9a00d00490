package models

import "time"

// Session is the cached bearer token and its locally estimated expiry.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ActiveAt reports whether the session holds a token whose expiry is
// strictly after now.
func (s Session) ActiveAt(now time.Time) bool {
	return s.Token != "" && s.ExpiresAt.After(now)
}

// IsZero reports whether no session has been stored.
func (s Session) IsZero() bool {
	return s.Token == "" && s.ExpiresAt.IsZero()
}
