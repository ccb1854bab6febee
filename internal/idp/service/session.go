package service

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/parenthub/authcore/internal/idp/directory"
	"github.com/parenthub/authcore/internal/idp/domain"
	"github.com/parenthub/authcore/internal/idp/store"
	"github.com/parenthub/authcore/pkg/cryptox"
	"github.com/parenthub/authcore/pkg/jwtx"
	"github.com/parenthub/authcore/pkg/slogx"
)

// SessionService issues, validates, and revokes the per-identity token
// bundle. An identity holds at most one session: issuance commits the whole
// record in one unit, overwriting whatever was there, and validation demands
// exact equality with the stored access token. Deleting the record is
// therefore instant, global revocation for everything issued to that
// identity.
type SessionService struct {
	Store     store.Store
	Directory directory.Directory
	Pool      *jwtx.KeyPool

	// BearerCodec encrypts access-token payloads. Its secret is
	// independent from the cookie domain; the two ciphertexts are never
	// interchangeable.
	BearerCodec cryptox.Codec

	Issuer          string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// Issue builds the full token bundle for an identity that just completed the
// code exchange and commits the session record in one unit: every token
// field plus the record TTL land together, so there is no window where a
// half-written record sits without an expiry.
func (s *SessionService) Issue(ctx context.Context, identity domain.Identity, payload domain.PassportPayload) (domain.TokenBundle, error) {
	log := slogx.FromContext(ctx)
	now := time.Now().UTC()

	idToken, err := s.signIDToken(ctx, identity, payload, now)
	if err != nil {
		return domain.TokenBundle{}, err
	}

	accessToken, err := s.buildAccessToken(identity, now)
	if err != nil {
		return domain.TokenBundle{}, err
	}

	refreshToken, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return domain.TokenBundle{}, fmt.Errorf("issue session: refresh token: %w", err)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return domain.TokenBundle{}, fmt.Errorf("issue session: marshal authorization data: %w", err)
	}

	err = s.Store.Record(identity.SessionKey()).
		Set(domain.SessionFieldIDToken, idToken).
		Set(domain.SessionFieldAccessToken, accessToken).
		Set(domain.SessionFieldRefreshToken, refreshToken).
		Set(domain.SessionFieldData, string(data)).
		Commit(ctx, s.RefreshTokenTTL)
	if err != nil {
		return domain.TokenBundle{}, fmt.Errorf("issue session: commit record: %w", err)
	}

	log.Info("session issued",
		"member_id", identity.MemberID,
		"member_detail_id", identity.MemberDetailID,
		"client_id", payload.ClientID,
	)

	return domain.TokenBundle{
		IDToken:      idToken,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.AccessTokenTTL.Seconds()),
	}, nil
}

// signIDToken selects a signer from the rotation pool and signs a compact
// ID token with the scope-filtered profile claims.
func (s *SessionService) signIDToken(ctx context.Context, identity domain.Identity, payload domain.PassportPayload, now time.Time) (string, error) {
	profile, err := s.Directory.Profile(ctx, identity)
	if err != nil {
		if errors.Is(err, directory.ErrNoMatch) {
			return "", ErrAuthFailure
		}
		return "", fmt.Errorf("issue session: profile lookup: %w", err)
	}

	scopes := strings.Fields(payload.Scope)
	filtered := profile.FilterByScopes(scopes)

	signer, err := s.Pool.SelectSigner()
	if err != nil {
		// No active key is fatal to issuance; nothing to fall back on.
		return "", fmt.Errorf("issue session: %w", err)
	}

	claims := jwtx.NewIDClaims(
		identity.MemberID,
		jwtx.ProfileClaims{
			Name:         filtered.Name,
			Email:        filtered.Email,
			PhoneNumbers: filtered.PhoneNumbers,
			Children:     filtered.Children,
		},
		s.AccessTokenTTL,
		s.Issuer,
		[]string{payload.ClientID},
		now,
	)

	idToken, err := signer.Sign(claims)
	if err != nil {
		return "", fmt.Errorf("issue session: sign id token: %w", err)
	}
	return idToken, nil
}

// buildAccessToken encrypts the access payload with the bearer-domain
// secret. The ciphertext is the token; no separate lookup handle exists.
func (s *SessionService) buildAccessToken(identity domain.Identity, now time.Time) (string, error) {
	nonce, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return "", fmt.Errorf("issue session: access nonce: %w", err)
	}

	ciphertext, err := s.BearerCodec.EncryptJSON(domain.AccessTokenPayload{
		MemberID:       identity.MemberID,
		MemberDetailID: identity.MemberDetailID,
		IssuedAt:       now.Unix(),
		Nonce:          nonce,
	})
	if err != nil {
		return "", fmt.Errorf("issue session: encrypt access token: %w", err)
	}
	return ciphertext, nil
}

// ValidateAccessToken confirms a presented bearer value is the currently
// recorded access token for the claimed identity. Equality against the
// stored ciphertext comes first; only then is the value decrypted. Any
// mismatch, absence, or malformed ciphertext is the same uniform failure.
func (s *SessionService) ValidateAccessToken(ctx context.Context, bearerValue string, identity domain.Identity) (domain.AccessTokenPayload, error) {
	stored, err := s.Store.Get(ctx, identity.SessionKey(), domain.SessionFieldAccessToken)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			slogx.FromContext(ctx).Error("access token lookup failed", "err", err)
		}
		return domain.AccessTokenPayload{}, ErrAuthFailure
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(bearerValue)) != 1 {
		return domain.AccessTokenPayload{}, ErrAuthFailure
	}

	var payload domain.AccessTokenPayload
	if err := s.BearerCodec.DecryptJSON(bearerValue, &payload); err != nil {
		return domain.AccessTokenPayload{}, ErrAuthFailure
	}

	if payload.Identity() != identity {
		return domain.AccessTokenPayload{}, ErrAuthFailure
	}
	return payload, nil
}

// SetClientMemberID writes the downstream client's member correlation id.
func (s *SessionService) SetClientMemberID(ctx context.Context, identity domain.Identity, value string) error {
	return s.setField(ctx, identity, domain.SessionFieldClientMemberID, value)
}

// SetAuthorizationData overwrites the stored authorization payload, e.g.
// after a consent screen narrows the scopes.
func (s *SessionService) SetAuthorizationData(ctx context.Context, identity domain.Identity, value string) error {
	return s.setField(ctx, identity, domain.SessionFieldData, value)
}

func (s *SessionService) setField(ctx context.Context, identity domain.Identity, field, value string) error {
	if err := s.Store.SetField(ctx, identity.SessionKey(), field, value); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("set session field %s: %w", field, err)
	}
	return nil
}

// Session returns the full record for an identity.
func (s *SessionService) Session(ctx context.Context, identity domain.Identity) (domain.SessionRecord, error) {
	fields, err := s.Store.GetAll(ctx, identity.SessionKey())
	if errors.Is(err, store.ErrNotFound) {
		return domain.SessionRecord{}, ErrSessionNotFound
	}
	if err != nil {
		return domain.SessionRecord{}, fmt.Errorf("get session: %w", err)
	}
	return domain.SessionRecordFromFields(fields), nil
}

// Revoke deletes the whole session record. Every token issued to the
// identity fails validation from this point on, by the same mechanism that
// validates them: the record is gone.
func (s *SessionService) Revoke(ctx context.Context, identity domain.Identity) error {
	if err := s.Store.Delete(ctx, identity.SessionKey()); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("revoke session: %w", err)
	}

	slogx.FromContext(ctx).Info("session revoked",
		"member_id", identity.MemberID,
		"member_detail_id", identity.MemberDetailID,
	)
	return nil
}
