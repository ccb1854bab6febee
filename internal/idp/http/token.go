package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/parenthub/authcore/internal/idp/domain"
	"github.com/parenthub/authcore/internal/idp/service"
	"github.com/parenthub/authcore/pkg/cryptox"
	"github.com/parenthub/authcore/pkg/httpx"
	"github.com/parenthub/authcore/pkg/jwtx"
	"github.com/parenthub/authcore/pkg/slogx"
)

// TokenHandler trades an authorization code for the session token bundle
// and opens the first-party browser session alongside it.
type TokenHandler struct {
	Passports *service.PassportService
	Sessions  *service.SessionService

	// CookieCodec encrypts the browser session cookie. Independent secret
	// from the bearer domain.
	CookieCodec  cryptox.Codec
	CookieSecure bool
}

// ServeHTTP godoc
//
//	@Summary		Exchange an authorization code for tokens
//	@Description	Consumes the single-use code and issues the ID, access, and refresh tokens.
//	@Description	Also sets the HTTP-only session cookie for first-party browser requests.
//	@Description	A replayed or expired code returns the uniform 401 shape.
//	@Tags			OAuth2
//	@Accept			x-www-form-urlencoded
//	@Produce		json
//	@Param			grant_type	formData	string	true	"Must be 'authorization_code'"	default(authorization_code)
//	@Param			code		formData	string	true	"Authorization code from the sign-in redirect"
//	@Success		200			{object}	domain.TokenBundle
//	@Failure		400			{object}	httpx.ErrorBody
//	@Failure		401			{object}	httpx.ErrorBody
//	@Router			/v1/oauth2/token [post]
func (h *TokenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if err := r.ParseForm(); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed form body")
		return
	}

	if grant := strings.TrimSpace(r.Form.Get("grant_type")); grant != "" && grant != "authorization_code" {
		httpx.WriteError(w, http.StatusBadRequest, "unsupported_grant_type", "only authorization_code is supported")
		return
	}

	code := strings.TrimSpace(r.Form.Get("code"))
	if code == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "code is required")
		return
	}

	authCode, err := h.Passports.ConsumeCode(ctx, code)
	if err != nil {
		if errors.Is(err, service.ErrCodeNotFound) {
			httpx.WriteAuthFailure(w)
			return
		}
		log.Error("code consumption failed", "err", err)
		httpx.WriteServerError(w)
		return
	}

	bundle, err := h.Sessions.Issue(ctx, authCode.Identity, authCode.Payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAuthFailure):
			httpx.WriteAuthFailure(w)
		case errors.Is(err, jwtx.ErrNoActiveKey):
			log.Error("token issuance impossible, no active signing key")
			httpx.WriteServerError(w)
		default:
			log.Error("token issuance failed", "err", err)
			httpx.WriteServerError(w)
		}
		return
	}

	if err := h.setSessionCookie(w, authCode.Identity); err != nil {
		// The bundle is already committed; losing the cookie only costs
		// the first-party session, not the tokens.
		log.Error("session cookie encryption failed", "err", err)
	}

	httpx.WriteJSON(w, http.StatusOK, bundle)
}

func (h *TokenHandler) setSessionCookie(w http.ResponseWriter, identity domain.Identity) error {
	value, err := h.CookieCodec.EncryptJSON(domain.SignCookie{
		MemberID:       identity.MemberID,
		MemberDetailID: identity.MemberDetailID,
		IssuedAt:       time.Now().UTC().Unix(),
	})
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(h.Sessions.RefreshTokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
	return nil
}

// clearSessionCookie expires the browser session cookie.
func clearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}
