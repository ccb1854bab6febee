package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/parenthub/authcore/internal/idp/service"
	"github.com/parenthub/authcore/pkg/httpx"
	"github.com/parenthub/authcore/pkg/slogx"
)

// UserInfoHandler returns the session view for the guarded identity. Runs
// behind the bearer guard, so reaching it at all means the presented token
// is the currently recorded one.
type UserInfoHandler struct {
	Sessions *service.SessionService
}

// UserInfoResponse is the session view returned to the caller. Tokens are
// never echoed back; the caller already holds them.
type UserInfoResponse struct {
	MemberID       string          `json:"member_id"`
	MemberDetailID string          `json:"member_detail_id"`
	ClientMemberID string          `json:"client_member_id,omitempty"`
	Authorization  json.RawMessage `json:"authorization,omitempty"`
}

// ServeHTTP godoc
//
//	@Summary		Get session info
//	@Description	Returns the authenticated identity and its stored authorization data.
//	@Tags			Session
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	UserInfoResponse
//	@Failure		401	{object}	httpx.ErrorBody
//	@Router			/v1/userinfo [get]
func (h *UserInfoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := identityFromContext(r)

	record, err := h.Sessions.Session(ctx, identity)
	if err != nil {
		// The guard validated this identity a moment ago; a vanished
		// record means it expired or was revoked in between.
		if errors.Is(err, service.ErrSessionNotFound) {
			httpx.WriteAuthFailure(w)
			return
		}
		slogx.FromContext(ctx).Error("session lookup failed", "err", err)
		httpx.WriteServerError(w)
		return
	}

	resp := UserInfoResponse{
		MemberID:       identity.MemberID,
		MemberDetailID: identity.MemberDetailID,
		ClientMemberID: record.ClientMemberID,
	}
	if json.Valid([]byte(record.Data)) {
		resp.Authorization = json.RawMessage(record.Data)
	}

	httpx.WriteJSON(w, http.StatusOK, resp)
}
