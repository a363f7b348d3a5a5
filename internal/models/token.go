package models

import "time"

// TokenClient identifies the endpoint flavour a token was issued through.
type TokenClient string

const (
	ClientAPI TokenClient = "api"
	ClientCLI TokenClient = "cli"
)

const (
	EventTokenIssued  = "token_issued"
	EventTokenRevoked = "token_revoked"
)

// TokenEvent is the audit record published for every issued or revoked token.
type TokenEvent struct {
	Event     string      `json:"event"`
	TokenID   string      `json:"jti"`
	Subject   string      `json:"subject"`
	Role      Role        `json:"role"`
	Client    TokenClient `json:"client,omitempty"`
	IssuedAt  time.Time   `json:"issued_at"`
	ExpiresAt time.Time   `json:"expires_at"`
}
