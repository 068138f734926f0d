// Package model defines the data shared between the session, conversation and upload layers.
package model

import (
	"strings"

	"golang.org/x/oauth2"
)

// DefaultTokenKind is used when the backend omits token_type.
const DefaultTokenKind = "bearer"

// Credential is the bearer token proving an authenticated session.
type Credential struct {
	Token string `json:"access_token"`
	Kind  string `json:"token_type"`
}

// IsZero reports whether the credential carries no token.
func (c Credential) IsZero() bool {
	return strings.TrimSpace(c.Token) == ""
}

// OAuth2 converts the credential into an oauth2 token so the standard
// Authorization header formatting applies.
func (c Credential) OAuth2() *oauth2.Token {
	kind := c.Kind
	if kind == "" {
		kind = DefaultTokenKind
	}
	return &oauth2.Token{
		AccessToken: c.Token,
		TokenType:   kind,
	}
}

// Redacted returns a form of the token safe for logs.
func (c Credential) Redacted() string {
	if len(c.Token) > 16 {
		return c.Token[:4] + "..." + c.Token[len(c.Token)-4:]
	}
	if c.Token == "" {
		return ""
	}
	return "***"
}

// User is the minimal identity kept alongside the credential.
type User struct {
	DisplayName string `json:"displayName,omitempty"`
	Email       string `json:"email"`
}
