package models

import "github.com/golang-jwt/jwt/v5"

// SessionClaims are embedded in the JWT issued after PIN unlock.
type SessionClaims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// UnlockResponse carries the issued session token.
type UnlockResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}
