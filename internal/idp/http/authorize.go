package http

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/parenthub/authcore/internal/idp/domain"
	"github.com/parenthub/authcore/internal/idp/service"
	"github.com/parenthub/authcore/pkg/httpx"
	"github.com/parenthub/authcore/pkg/slogx"
)

// AuthorizeHandler starts the authorization flow by parking the request
// behind a passport. The browser takes the passport key to the sign-in
// page; nothing about the member is known yet.
type AuthorizeHandler struct {
	Passports *service.PassportService
}

// AuthorizeResponse carries the freshly minted passport key.
type AuthorizeResponse struct {
	Passport  string `json:"passport"`
	ExpiresIn int64  `json:"expires_in"`
}

// HandleGet godoc
//
//	@Summary		Begin the authorization flow
//	@Description	Validates the authorization request and parks it behind a single-use passport.
//	@Description	The returned passport key is carried through the sign-in page and exchanged
//	@Description	for an authorization code once credentials are verified.
//	@Tags			OAuth2
//	@Produce		json
//	@Param			response_type	query		string	true	"Must be 'code'"	default(code)
//	@Param			client_id		query		string	true	"Client identifier"
//	@Param			redirect_uri	query		string	true	"Callback URI"
//	@Param			scope			query		string	false	"Space-delimited profile scopes"	example("name email")
//	@Param			state			query		string	false	"Opaque CSRF value, echoed back on the callback"
//	@Success		200				{object}	AuthorizeResponse
//	@Failure		400				{object}	httpx.ErrorBody
//	@Router			/v1/oauth2/authorize [get]
func (h *AuthorizeHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	responseType := strings.TrimSpace(query.Get("response_type"))
	if responseType != "" && responseType != "code" {
		httpx.WriteError(w, http.StatusBadRequest, "unsupported_response_type", "only response_type=code is supported")
		return
	}

	payload := domain.PassportPayload{
		ClientID:    strings.TrimSpace(query.Get("client_id")),
		RedirectURI: strings.TrimSpace(query.Get("redirect_uri")),
		Scope:       strings.TrimSpace(query.Get("scope")),
		State:       strings.TrimSpace(query.Get("state")),
	}

	if payload.ClientID == "" || payload.RedirectURI == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "client_id and redirect_uri are required")
		return
	}
	if u, err := url.Parse(payload.RedirectURI); err != nil || !u.IsAbs() {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "redirect_uri must be an absolute URI")
		return
	}

	key, err := h.Passports.CreatePassport(r.Context(), payload)
	if err != nil {
		slogx.FromContext(r.Context()).Error("passport creation failed", "err", err)
		httpx.WriteServerError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, AuthorizeResponse{
		Passport:  key,
		ExpiresIn: int64(domain.PassportTTL.Seconds()),
	})
}
