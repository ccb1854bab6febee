package domain

import "time"

// Ticket lifetimes are part of the protocol contract, not tunables.
const (
	// PassportTTL bounds how long a pending authorization may sit between
	// the authorize redirect and the member completing sign-in.
	PassportTTL = time.Hour

	// CodeTTL bounds the window between sign-in completion and the client
	// exchanging the code for tokens.
	CodeTTL = 10 * time.Minute
)

// Key lengths are part of the external contract: passport keys are exactly
// 64 alphanumeric characters, authorization codes exactly 32.
const (
	PassportKeyLength = 64
	CodeLength        = 32
)

// PassportPayload is the pending-authorization context captured when a client
// sends a member to the authorize endpoint. It rides along unchanged through
// the passport and the authorization code until token issuance.
type PassportPayload struct {
	ClientID    string `json:"client_id"`
	RedirectURI string `json:"redirect_uri"`
	Scope       string `json:"scope"`
	State       string `json:"state,omitempty"`
}

// Passport is an opaque single-use ticket for a pending, not-yet-authenticated
// authorization request. The key is the only handle; there is no owner beyond
// whoever holds it.
type Passport struct {
	Key     string
	Payload PassportPayload
}

// AuthorizationCode binds a verified identity to the original authorization
// payload. Minted once at sign-in completion, consumed once at token issuance.
type AuthorizationCode struct {
	Code     string
	Identity Identity
	Payload  PassportPayload
}
