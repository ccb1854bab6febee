package domain

// Field names of the session record hash. These are wire-level names in the
// backing store; renaming them orphans existing sessions.
const (
	SessionFieldClientMemberID = "clientMemberId"
	SessionFieldIDToken        = "idToken"
	SessionFieldAccessToken    = "accessToken"
	SessionFieldRefreshToken   = "refreshToken"
	SessionFieldData           = "data"
)

// SessionRecord is the per-identity store of issued tokens and correlating
// fields. At most one exists per identity; issuance overwrites in place.
// The record's TTL is the refresh-token lifetime.
type SessionRecord struct {
	ClientMemberID string
	IDToken        string
	AccessToken    string
	RefreshToken   string
	Data           string
}

// Fields flattens the record into the store's field map, skipping empties so
// a partial record doesn't clobber fields it never carried.
func (s SessionRecord) Fields() map[string]string {
	fields := make(map[string]string, 5)
	if s.ClientMemberID != "" {
		fields[SessionFieldClientMemberID] = s.ClientMemberID
	}
	if s.IDToken != "" {
		fields[SessionFieldIDToken] = s.IDToken
	}
	if s.AccessToken != "" {
		fields[SessionFieldAccessToken] = s.AccessToken
	}
	if s.RefreshToken != "" {
		fields[SessionFieldRefreshToken] = s.RefreshToken
	}
	if s.Data != "" {
		fields[SessionFieldData] = s.Data
	}
	return fields
}

// SessionRecordFromFields rebuilds a record from the store's field map.
func SessionRecordFromFields(fields map[string]string) SessionRecord {
	return SessionRecord{
		ClientMemberID: fields[SessionFieldClientMemberID],
		IDToken:        fields[SessionFieldIDToken],
		AccessToken:    fields[SessionFieldAccessToken],
		RefreshToken:   fields[SessionFieldRefreshToken],
		Data:           fields[SessionFieldData],
	}
}
