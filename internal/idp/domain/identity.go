package domain

import "fmt"

// Identity is the authenticated pair this whole service keys on: the member
// account plus the member detail (the hat the member is currently wearing,
// e.g. a particular child's profile). Every session record, token, and guard
// decision is scoped to this pair.
type Identity struct {
	MemberID       string `json:"member_id"`
	MemberDetailID string `json:"member_detail_id"`
}

// SessionKey returns the deterministic store key for this identity's session
// record. One identity maps to exactly one key, so a new login lands on the
// same record and overwrites it in place.
func (i Identity) SessionKey() string {
	return fmt.Sprintf("session:%s:%s", i.MemberID, i.MemberDetailID)
}

// IsZero reports whether either half of the identity is missing.
func (i Identity) IsZero() bool {
	return i.MemberID == "" || i.MemberDetailID == ""
}
