package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/parenthub/authcore/internal/idp/domain"
	"github.com/parenthub/authcore/internal/idp/store"
	"github.com/parenthub/authcore/pkg/cryptox"
	"github.com/parenthub/authcore/pkg/slogx"
)

// Store field names for passport and code records.
const (
	fieldPayload        = "payload"
	fieldMemberID       = "member_id"
	fieldMemberDetailID = "member_detail_id"
)

// PassportService runs the two-phase single-use ticket protocol: a passport
// parks a pending authorization request until the member signs in, then gets
// traded for a short-lived code bound to the verified identity. Both tickets
// are single-use; the store's atomic primitives enforce that, not call
// ordering.
type PassportService struct {
	Store store.Store
}

func passportKey(key string) string { return "passport:" + key }
func codeKey(code string) string    { return "code:" + code }

// CreatePassport mints a passport for a pending authorization request and
// returns its opaque key. Key collisions are treated as store contention
// and surfaced, not retried.
func (s *PassportService) CreatePassport(ctx context.Context, payload domain.PassportPayload) (string, error) {
	key, err := cryptox.GenerateAlphanumeric(domain.PassportKeyLength)
	if err != nil {
		return "", fmt.Errorf("create passport: %w", err)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("create passport: marshal payload: %w", err)
	}

	fields := map[string]string{fieldPayload: string(raw)}
	if err := s.Store.Create(ctx, passportKey(key), fields, domain.PassportTTL); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return "", ErrPassportContention
		}
		return "", fmt.Errorf("create passport: %w", err)
	}

	slogx.FromContext(ctx).Debug("passport created", "client_id", payload.ClientID)
	return key, nil
}

// FindPassport is a pure lookup; it never consumes the passport.
func (s *PassportService) FindPassport(ctx context.Context, key string) (domain.PassportPayload, error) {
	raw, err := s.Store.Get(ctx, passportKey(key), fieldPayload)
	if errors.Is(err, store.ErrNotFound) {
		return domain.PassportPayload{}, ErrPassportNotFound
	}
	if err != nil {
		return domain.PassportPayload{}, fmt.Errorf("find passport: %w", err)
	}

	var payload domain.PassportPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return domain.PassportPayload{}, fmt.Errorf("find passport: unmarshal payload: %w", err)
	}
	return payload, nil
}

// ExchangeForCode trades a passport for an authorization code bound to the
// verified identity. The passport deletion must succeed before any code is
// minted: if the passport is already gone, the exchange fails and no code
// exists, so two racing exchanges of one passport yield at most one code.
func (s *PassportService) ExchangeForCode(ctx context.Context, identity domain.Identity, key string, payload domain.PassportPayload) (string, error) {
	log := slogx.FromContext(ctx)

	if err := s.Store.Delete(ctx, passportKey(key)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrPassportNotFound
		}
		return "", fmt.Errorf("exchange passport: delete: %w", err)
	}

	code, err := cryptox.GenerateAlphanumeric(domain.CodeLength)
	if err != nil {
		return "", fmt.Errorf("exchange passport: %w", err)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("exchange passport: marshal payload: %w", err)
	}

	fields := map[string]string{
		fieldMemberID:       identity.MemberID,
		fieldMemberDetailID: identity.MemberDetailID,
		fieldPayload:        string(raw),
	}
	if err := s.Store.Create(ctx, codeKey(code), fields, domain.CodeTTL); err != nil {
		// The passport is already gone; the member has to restart the
		// flow. Fail-closed, never fail-open.
		log.Warn("code creation failed after passport deletion", "err", err)
		return "", fmt.Errorf("exchange passport: create code: %w", err)
	}

	log.Debug("passport exchanged for code", "member_id", identity.MemberID)
	return code, nil
}

// ConsumeCode atomically reads and deletes an authorization code. A code can
// be consumed exactly once; a concurrent duplicate request finds nothing.
func (s *PassportService) ConsumeCode(ctx context.Context, code string) (domain.AuthorizationCode, error) {
	fields, err := s.Store.Consume(ctx, codeKey(code))
	if errors.Is(err, store.ErrNotFound) {
		return domain.AuthorizationCode{}, ErrCodeNotFound
	}
	if err != nil {
		return domain.AuthorizationCode{}, fmt.Errorf("consume code: %w", err)
	}

	var payload domain.PassportPayload
	if err := json.Unmarshal([]byte(fields[fieldPayload]), &payload); err != nil {
		return domain.AuthorizationCode{}, fmt.Errorf("consume code: unmarshal payload: %w", err)
	}

	return domain.AuthorizationCode{
		Code: code,
		Identity: domain.Identity{
			MemberID:       fields[fieldMemberID],
			MemberDetailID: fields[fieldMemberDetailID],
		},
		Payload: payload,
	}, nil
}

// DeleteCode removes a code outright, e.g. when token issuance fails after
// consumption would otherwise leave a half-used ticket behind.
func (s *PassportService) DeleteCode(ctx context.Context, code string) error {
	if err := s.Store.Delete(ctx, codeKey(code)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrCodeNotFound
		}
		return fmt.Errorf("delete code: %w", err)
	}
	return nil
}
