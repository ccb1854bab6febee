package domain

// Profile is the member profile data the directory collaborator exposes for
// claim shaping. Which fields make it into an ID token is decided by the
// granted scopes, not by what the directory returns.
type Profile struct {
	Name         string
	Email        string
	PhoneNumbers []string
	Children     []string
}

// Recognised profile scopes and the claims they unlock.
const (
	ScopeName  = "name"
	ScopeEmail = "email"
	ScopePhone = "phone"
	ScopeChild = "child"
)

// FilterByScopes returns a copy of the profile with every field not covered
// by the granted scopes zeroed out.
func (p Profile) FilterByScopes(scopes []string) Profile {
	granted := make(map[string]bool, len(scopes))
	for _, s := range scopes {
		granted[s] = true
	}

	var out Profile
	if granted[ScopeName] {
		out.Name = p.Name
	}
	if granted[ScopeEmail] {
		out.Email = p.Email
	}
	if granted[ScopePhone] {
		out.PhoneNumbers = p.PhoneNumbers
	}
	if granted[ScopeChild] {
		out.Children = p.Children
	}
	return out
}
