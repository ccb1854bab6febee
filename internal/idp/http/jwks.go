package http

import (
	"net/http"

	"github.com/parenthub/authcore/pkg/httpx"
	"github.com/parenthub/authcore/pkg/jwtx"
)

// JWKSHandler publishes the public half of every key that may have signed a
// still-valid ID token, retired keys inside their grace window included.
//
//	@Summary		Get JWKS
//	@Description	Returns the JSON Web Key Set relying parties use to verify ID tokens.
//	@Tags			well-known
//	@Produce		json
//	@Success		200	{object}	jwtx.JWKS
//	@Router			/.well-known/jwks.json [get]
func JWKSHandler(pool *jwtx.KeyPool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, pool.VerificationKeys())
	}
}
