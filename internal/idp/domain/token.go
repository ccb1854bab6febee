package domain

// AccessTokenPayload is what gets encrypted into a bearer access token.
// The ciphertext itself is the token: it is both handed to the client and
// stored verbatim in the session record, so validation can demand exact
// equality (reference-token pattern). Possession alone is never enough.
type AccessTokenPayload struct {
	MemberID       string `json:"member_id"`
	MemberDetailID string `json:"member_detail_id"`
	IssuedAt       int64  `json:"issued_at"`
	Nonce          string `json:"nonce"`
}

// Identity returns the identity pair the token claims to act for.
func (p AccessTokenPayload) Identity() Identity {
	return Identity{MemberID: p.MemberID, MemberDetailID: p.MemberDetailID}
}

// SignCookie is the browser-side first-party session, encrypted with the
// cookie-domain secret. Deliberately distinct from the bearer access token
// and never valid in its place.
type SignCookie struct {
	MemberID       string `json:"member_id"`
	MemberDetailID string `json:"member_detail_id"`
	IssuedAt       int64  `json:"issued_at"`
}

// Identity returns the identity pair the cookie claims.
func (c SignCookie) Identity() Identity {
	return Identity{MemberID: c.MemberID, MemberDetailID: c.MemberDetailID}
}

// TokenBundle is the full result of a session issuance.
type TokenBundle struct {
	IDToken      string `json:"id_token"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}
