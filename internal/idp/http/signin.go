package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/parenthub/authcore/internal/idp/directory"
	"github.com/parenthub/authcore/internal/idp/service"
	"github.com/parenthub/authcore/pkg/httpx"
	"github.com/parenthub/authcore/pkg/slogx"
)

// SigninHandler completes the browser sign-in: verifies credentials with the
// directory and trades the passport for an authorization code. The passport
// is consumed on success; a failed sign-in leaves it intact for a retry
// until its TTL runs out.
type SigninHandler struct {
	Passports *service.PassportService
	Directory directory.Directory
}

// ServeHTTP godoc
//
//	@Summary		Complete sign-in and receive the authorization code
//	@Description	Verifies the member's credentials, consumes the passport, and redirects the
//	@Description	browser to the client's callback with a single-use authorization code.
//	@Description	Credential failures and unknown passports return the uniform 401 shape.
//	@Tags			OAuth2
//	@Accept			x-www-form-urlencoded
//	@Produce		json
//	@Param			passport	formData	string	true	"Passport key from the authorize step"
//	@Param			email		formData	string	true	"Member email"
//	@Param			password	formData	string	true	"Member password"
//	@Success		302			{string}	string	"Redirect to redirect_uri with code and state"
//	@Failure		400			{object}	httpx.ErrorBody
//	@Failure		401			{object}	httpx.ErrorBody
//	@Router			/v1/oauth2/signin [post]
func (h *SigninHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if err := r.ParseForm(); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed form body")
		return
	}

	key := strings.TrimSpace(r.Form.Get("passport"))
	email := strings.TrimSpace(r.Form.Get("email"))
	password := r.Form.Get("password")
	if key == "" || email == "" || password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "passport, email and password are required")
		return
	}

	payload, err := h.Passports.FindPassport(ctx, key)
	if err != nil {
		if !errors.Is(err, service.ErrPassportNotFound) {
			log.Error("passport lookup failed", "err", err)
			httpx.WriteServerError(w)
			return
		}
		httpx.WriteAuthFailure(w)
		return
	}

	identity, err := h.Directory.VerifyCredentials(ctx, email, password)
	if err != nil {
		if !errors.Is(err, directory.ErrNoMatch) {
			log.Error("credential verification failed", "err", err)
			httpx.WriteServerError(w)
			return
		}
		httpx.WriteAuthFailure(w)
		return
	}

	code, err := h.Passports.ExchangeForCode(ctx, identity, key, payload)
	if err != nil {
		// A concurrent sign-in may have consumed the passport between the
		// lookup and the exchange; the loser restarts the flow.
		if errors.Is(err, service.ErrPassportNotFound) {
			httpx.WriteAuthFailure(w)
			return
		}
		log.Error("passport exchange failed", "err", err)
		httpx.WriteServerError(w)
		return
	}

	location, err := Redirect{Base: payload.RedirectURI, Code: code, State: payload.State}.URL()
	if err != nil {
		log.Error("redirect build failed", "redirect_uri", payload.RedirectURI, "err", err)
		httpx.WriteServerError(w)
		return
	}

	http.Redirect(w, r, location, http.StatusFound)
}
