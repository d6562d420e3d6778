package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// TokenClaims is the claim set carried by both access and refresh tokens.
// Authorities is only populated on access tokens, DeviceFingerprint only on refresh tokens.
type TokenClaims struct {
	Type              string   `json:"type"`
	Authorities       []string `json:"authorities,omitempty"`
	DeviceFingerprint string   `json:"fp,omitempty"`
	jwt.RegisteredClaims
}

// TokenPair is returned by login and refresh
type TokenPair struct {
	AccessToken          string
	RefreshToken         string
	AccessTokenExpiresAt time.Time
}

// Identity is the authenticated caller attached to a request
type Identity struct {
	Subject     string   `json:"subject"`
	Authorities []string `json:"authorities"`
}
