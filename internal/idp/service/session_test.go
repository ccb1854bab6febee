package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parenthub/authcore/internal/idp/directory"
	"github.com/parenthub/authcore/internal/idp/domain"
	"github.com/parenthub/authcore/pkg/cryptox"
	"github.com/parenthub/authcore/pkg/jwtx"
)

const testIssuer = "https://idp.test"

func newSessionService(t *testing.T) (*SessionService, *directory.Memory) {
	t.Helper()

	pool := jwtx.NewKeyPool(nil)
	signer, _, err := jwtx.GenerateSigner(jwtx.AlgorithmEdDSA)
	require.NoError(t, err)
	require.NoError(t, pool.Activate(signer))

	codec, err := cryptox.NewCodec("session-test-bearer-secret")
	require.NoError(t, err)

	dir := directory.NewMemory()
	svc := &SessionService{
		Store:           newTestStore(t),
		Directory:       dir,
		Pool:            pool,
		BearerCodec:     codec,
		Issuer:          testIssuer,
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
	}
	return svc, dir
}

func registerMember(t *testing.T, dir *directory.Memory) domain.Identity {
	t.Helper()
	identity := domain.Identity{MemberID: "m1", MemberDetailID: "d1"}
	require.NoError(t, dir.Register("alex@example.com", "s3cret-pass", identity, domain.Profile{
		Name:         "Alex Carter",
		Email:        "alex@example.com",
		PhoneNumbers: []string{"+61400000000"},
		Children:     []string{"child-1"},
	}))
	return identity
}

func TestSessionService_IssueAndValidate(t *testing.T) {
	svc, dir := newSessionService(t)
	identity := registerMember(t, dir)
	ctx := context.Background()

	bundle, err := svc.Issue(ctx, identity, testPayload())
	require.NoError(t, err)
	assert.Equal(t, "Bearer", bundle.TokenType)
	assert.Equal(t, int64(3600), bundle.ExpiresIn)
	assert.NotEmpty(t, bundle.IDToken)
	assert.NotEmpty(t, bundle.AccessToken)
	assert.NotEmpty(t, bundle.RefreshToken)

	payload, err := svc.ValidateAccessToken(ctx, bundle.AccessToken, identity)
	require.NoError(t, err)
	assert.Equal(t, identity, payload.Identity())
	assert.NotEmpty(t, payload.Nonce)
}

func TestSessionService_IDTokenClaims(t *testing.T) {
	svc, dir := newSessionService(t)
	identity := registerMember(t, dir)

	// Scope grants name and email only; phone and child stay out.
	bundle, err := svc.Issue(context.Background(), identity, testPayload())
	require.NoError(t, err)

	verifier := jwtx.NewVerifier(svc.Pool.KeySet(), testIssuer, []string{"client-1"})
	claims, err := verifier.Verify(bundle.IDToken)
	require.NoError(t, err)

	assert.Equal(t, identity.MemberID, claims.Subject)
	assert.Equal(t, "Alex Carter", claims.Name)
	assert.Equal(t, "alex@example.com", claims.Email)
	assert.Empty(t, claims.PhoneNumbers)
	assert.Empty(t, claims.Children)
}

func TestSessionService_ValidateFailuresAreUniform(t *testing.T) {
	svc, dir := newSessionService(t)
	identity := registerMember(t, dir)
	ctx := context.Background()

	bundle, err := svc.Issue(ctx, identity, testPayload())
	require.NoError(t, err)

	other := domain.Identity{MemberID: "m2", MemberDetailID: "d2"}

	tests := []struct {
		name     string
		token    string
		identity domain.Identity
	}{
		{"wrong identity", bundle.AccessToken, other},
		{"tampered token", bundle.AccessToken + "x", identity},
		{"garbage token", "not-a-token", identity},
		{"empty token", "", identity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValidateAccessToken(ctx, tt.token, tt.identity)
			assert.ErrorIs(t, err, ErrAuthFailure)
		})
	}
}

func TestSessionService_ReissueInvalidatesPrevious(t *testing.T) {
	svc, dir := newSessionService(t)
	identity := registerMember(t, dir)
	ctx := context.Background()

	first, err := svc.Issue(ctx, identity, testPayload())
	require.NoError(t, err)
	second, err := svc.Issue(ctx, identity, testPayload())
	require.NoError(t, err)

	// One session per identity. The overwrite kills the first bundle.
	_, err = svc.ValidateAccessToken(ctx, first.AccessToken, identity)
	assert.ErrorIs(t, err, ErrAuthFailure)

	_, err = svc.ValidateAccessToken(ctx, second.AccessToken, identity)
	assert.NoError(t, err)
}

func TestSessionService_Revoke(t *testing.T) {
	svc, dir := newSessionService(t)
	identity := registerMember(t, dir)
	ctx := context.Background()

	bundle, err := svc.Issue(ctx, identity, testPayload())
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, identity))

	_, err = svc.ValidateAccessToken(ctx, bundle.AccessToken, identity)
	assert.ErrorIs(t, err, ErrAuthFailure)

	assert.ErrorIs(t, svc.Revoke(ctx, identity), ErrSessionNotFound)
}

func TestSessionService_SessionRecord(t *testing.T) {
	svc, dir := newSessionService(t)
	identity := registerMember(t, dir)
	ctx := context.Background()

	bundle, err := svc.Issue(ctx, identity, testPayload())
	require.NoError(t, err)

	record, err := svc.Session(ctx, identity)
	require.NoError(t, err)
	assert.Equal(t, bundle.IDToken, record.IDToken)
	assert.Equal(t, bundle.AccessToken, record.AccessToken)
	assert.Equal(t, bundle.RefreshToken, record.RefreshToken)
	assert.NotEmpty(t, record.Data)

	require.NoError(t, svc.SetClientMemberID(ctx, identity, "cm-42"))
	record, err = svc.Session(ctx, identity)
	require.NoError(t, err)
	assert.Equal(t, "cm-42", record.ClientMemberID)
}

func TestSessionService_SetFieldWithoutSession(t *testing.T) {
	svc, _ := newSessionService(t)
	identity := domain.Identity{MemberID: "m1", MemberDetailID: "d1"}

	err := svc.SetClientMemberID(context.Background(), identity, "cm-42")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	err = svc.SetAuthorizationData(context.Background(), identity, "{}")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionService_IssueUnknownIdentity(t *testing.T) {
	svc, _ := newSessionService(t)
	identity := domain.Identity{MemberID: "ghost", MemberDetailID: "ghost"}

	_, err := svc.Issue(context.Background(), identity, testPayload())
	assert.ErrorIs(t, err, ErrAuthFailure)
}

func TestSessionService_IssueWithoutActiveKey(t *testing.T) {
	svc, dir := newSessionService(t)
	identity := registerMember(t, dir)

	for _, signer := range svc.Pool.Signers() {
		require.NoError(t, svc.Pool.Retire(signer.KID()))
	}

	_, err := svc.Issue(context.Background(), identity, testPayload())
	assert.ErrorIs(t, err, jwtx.ErrNoActiveKey)
}
