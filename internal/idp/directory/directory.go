// Package directory is the port to member persistence. The authorization
// core never touches the relational schema; it only asks the directory to
// verify credentials and to describe a member for claim shaping.
package directory

import (
	"context"
	"errors"

	"github.com/parenthub/authcore/internal/idp/domain"
)

// ErrNoMatch reports that credentials did not resolve to an identity, or
// that an identity has no profile. Callers collapse it into their own
// uniform failure; the directory itself never says why.
var ErrNoMatch = errors.New("directory: no match")

// Directory resolves members for the authorization core.
type Directory interface {
	// VerifyCredentials checks an email/password pair and returns the
	// identity it belongs to, or ErrNoMatch.
	VerifyCredentials(ctx context.Context, email, password string) (domain.Identity, error)

	// Profile returns the member profile for claim shaping, or ErrNoMatch.
	Profile(ctx context.Context, identity domain.Identity) (domain.Profile, error)
}
