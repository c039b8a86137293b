package model

import "time"

// GoogleToken stores a user's calendar OAuth credentials. The record ID is
// the platform user ID.
type GoogleToken struct {
	UserID       string    `json:"user_id"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type"`
	Expiry       time.Time `json:"expiry"`
}

// Expired reports whether the access token needs refreshing.
func (t *GoogleToken) Expired(now time.Time) bool {
	return !t.Expiry.IsZero() && now.After(t.Expiry)
}
