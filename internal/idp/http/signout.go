package http

import (
	"errors"
	"net/http"

	"github.com/parenthub/authcore/internal/idp/service"
	"github.com/parenthub/authcore/pkg/httpx"
	"github.com/parenthub/authcore/pkg/slogx"
)

// SignoutHandler revokes the whole session for the guarded identity and
// expires the browser cookie. Runs behind the cookie guard.
type SignoutHandler struct {
	Sessions     *service.SessionService
	CookieSecure bool
}

// ServeHTTP godoc
//
//	@Summary		Sign out
//	@Description	Deletes the identity's session record and expires the session cookie.
//	@Description	Every previously issued token for the identity stops validating immediately.
//	@Tags			OAuth2
//	@Produce		json
//	@Success		204	{string}	string	"Session revoked"
//	@Failure		401	{object}	httpx.ErrorBody
//	@Router			/v1/oauth2/signout [post]
func (h *SignoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := identityFromContext(r)

	err := h.Sessions.Revoke(ctx, identity)
	if err != nil && !errors.Is(err, service.ErrSessionNotFound) {
		slogx.FromContext(ctx).Error("session revocation failed", "err", err)
		httpx.WriteServerError(w)
		return
	}

	// An already-absent session is still a successful sign-out; the end
	// state is the same.
	clearSessionCookie(w, h.CookieSecure)
	w.WriteHeader(http.StatusNoContent)
}
