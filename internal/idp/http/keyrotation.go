package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/parenthub/authcore/internal/idp/keystore"
	"github.com/parenthub/authcore/internal/idp/service"
	"github.com/parenthub/authcore/pkg/httpx"
	"github.com/parenthub/authcore/pkg/slogx"
)

// KeyRotationHandler exposes the admin surface for signing-key management.
// All routes run behind the bearer guard.
type KeyRotationHandler struct {
	KeyRotationService *service.KeyRotationService
}

// KeypairView is a keypair as listed to admins. Private material never
// leaves the keystore.
type KeypairView struct {
	Kid       string     `json:"kid"`
	Algorithm string     `json:"algorithm"`
	CreatedAt time.Time  `json:"created_at"`
	RetiredAt *time.Time `json:"retired_at,omitempty"`
	ExpiresAt time.Time  `json:"expires_at"`
	Active    bool       `json:"active"`
}

// HandleRotate godoc
//
//	@Summary		Rotate signing keys
//	@Description	Generates and activates a new signing keypair. With retire_existing the
//	@Description	current active keypairs stop signing; they keep verifying until their
//	@Description	grace window lapses.
//	@Tags			Keys
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		service.RotateKeyRequest	false	"Rotation options"
//	@Success		200		{object}	service.RotateKeyResponse
//	@Failure		401		{object}	httpx.ErrorBody
//	@Router			/v1/keys/rotate [post]
func (h *KeyRotationHandler) HandleRotate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req service.RotateKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}

	resp, err := h.KeyRotationService.RotateKey(ctx, req)
	if err != nil {
		slogx.FromContext(ctx).Error("key rotation failed", "err", err)
		httpx.WriteServerError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleListKeys godoc
//
//	@Summary		List signing keys
//	@Description	Returns every persisted keypair, retired ones included.
//	@Tags			Keys
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{array}		KeypairView
//	@Failure		401	{object}	httpx.ErrorBody
//	@Router			/v1/keys [get]
func (h *KeyRotationHandler) HandleListKeys(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	keys, err := h.KeyRotationService.ListKeypairs(ctx)
	if err != nil {
		slogx.FromContext(ctx).Error("key listing failed", "err", err)
		httpx.WriteServerError(w)
		return
	}

	now := time.Now().UTC()
	views := make([]KeypairView, len(keys))
	for i, k := range keys {
		views[i] = KeypairView{
			Kid:       k.Kid,
			Algorithm: k.Algorithm,
			CreatedAt: k.CreatedAt,
			RetiredAt: k.RetiredAt,
			ExpiresAt: k.ExpiresAt,
			Active:    k.IsActive(now),
		}
	}

	httpx.WriteJSON(w, http.StatusOK, views)
}

// HandleRetireKey godoc
//
//	@Summary		Retire a signing key
//	@Description	Removes one keypair from signing duty without minting a replacement.
//	@Tags			Keys
//	@Produce		json
//	@Security		BearerAuth
//	@Param			kid	path		string	true	"Key identifier"
//	@Success		204	{string}	string	"Key retired"
//	@Failure		404	{object}	httpx.ErrorBody
//	@Router			/v1/keys/{kid}/retire [post]
func (h *KeyRotationHandler) HandleRetireKey(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	kid := r.PathValue("kid")
	if kid == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "kid is required")
		return
	}

	if err := h.KeyRotationService.RetireKey(ctx, kid); err != nil {
		if errors.Is(err, keystore.ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "not_found", "no such key")
			return
		}
		slogx.FromContext(ctx).Error("key retirement failed", "kid", kid, "err", err)
		httpx.WriteServerError(w)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
