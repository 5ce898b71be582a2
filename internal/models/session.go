package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthEvent names an auth-state transition.
type AuthEvent string

const (
	AuthEventInitialSession AuthEvent = "INITIAL_SESSION"
	AuthEventSignedIn       AuthEvent = "SIGNED_IN"
	AuthEventSignedOut      AuthEvent = "SIGNED_OUT"
	AuthEventTokenRefreshed AuthEvent = "TOKEN_REFRESHED"
)

// Session is the token bundle handed to a signed-in client.
type Session struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	TokenType    string   `json:"token_type"`
	ExpiresIn    int64    `json:"expires_in"`
	ExpiresAt    int64    `json:"expires_at"`
	SessionID    string   `json:"session_id"`
	User         Identity `json:"user"`
}

// Expired reports whether the access token has lapsed at now.
func (s *Session) Expired(now time.Time) bool {
	return s == nil || now.Unix() >= s.ExpiresAt
}

// AuthSession is a server-side session row in auth.sessions.
type AuthSession struct {
	ID           string    `db:"id" json:"id"`
	UserID       string    `db:"user_id" json:"user_id"`
	RefreshToken string    `db:"refresh_token" json:"-"`
	ExpiresAt    time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// AuthClaims is the access token payload.
type AuthClaims struct {
	Email      string `json:"email"`
	SessionID  string `json:"session_id"`
	FatherName string `json:"father_name,omitempty"`
	jwt.RegisteredClaims
}
