package model

import "time"

type Session struct {
	ID                 int64      `json:"id"`
	Token              string     `json:"token"`
	UserID             string     `json:"user_id"`
	AmazonToken        string     `json:"-"`
	AmazonRefreshToken string     `json:"-"`
	AmazonExpiresAt    *time.Time `json:"amazon_expires_at,omitempty"`
	ExpiresAt          time.Time  `json:"expires_at"`
	CreatedAt          time.Time  `json:"created_at"`
}

// AmazonConnected reports whether the session holds an Amazon access token.
func (s *Session) AmazonConnected() bool {
	return s.AmazonToken != ""
}
