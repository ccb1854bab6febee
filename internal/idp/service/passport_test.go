package service

import (
	"context"
	"regexp"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parenthub/authcore/internal/idp/domain"
	"github.com/parenthub/authcore/internal/idp/store"
	redisstore "github.com/parenthub/authcore/internal/idp/store/drivers/redis"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return redisstore.New(client)
}

func testPayload() domain.PassportPayload {
	return domain.PassportPayload{
		ClientID:    "client-1",
		RedirectURI: "https://app.example.com/callback",
		Scope:       "name email",
		State:       "xyz",
	}
}

func TestPassportService_CreateAndFind(t *testing.T) {
	svc := &PassportService{Store: newTestStore(t)}
	ctx := context.Background()

	key, err := svc.CreatePassport(ctx, testPayload())
	require.NoError(t, err)
	assert.Len(t, key, domain.PassportKeyLength)
	assert.Regexp(t, regexp.MustCompile(`^[a-zA-Z0-9]+$`), key)

	payload, err := svc.FindPassport(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, testPayload(), payload)

	// Lookup never consumes; a second find still works.
	_, err = svc.FindPassport(ctx, key)
	assert.NoError(t, err)
}

func TestPassportService_FindMissing(t *testing.T) {
	svc := &PassportService{Store: newTestStore(t)}

	_, err := svc.FindPassport(context.Background(), "no-such-passport")
	assert.ErrorIs(t, err, ErrPassportNotFound)
}

func TestPassportService_ExchangeConsumesPassport(t *testing.T) {
	svc := &PassportService{Store: newTestStore(t)}
	ctx := context.Background()
	identity := domain.Identity{MemberID: "m1", MemberDetailID: "d1"}

	key, err := svc.CreatePassport(ctx, testPayload())
	require.NoError(t, err)

	code, err := svc.ExchangeForCode(ctx, identity, key, testPayload())
	require.NoError(t, err)
	assert.Len(t, code, domain.CodeLength)
	assert.Regexp(t, regexp.MustCompile(`^[a-zA-Z0-9]+$`), code)

	// Passport is gone; a second exchange must not mint a second code.
	_, err = svc.ExchangeForCode(ctx, identity, key, testPayload())
	assert.ErrorIs(t, err, ErrPassportNotFound)

	_, err = svc.FindPassport(ctx, key)
	assert.ErrorIs(t, err, ErrPassportNotFound)
}

func TestPassportService_ConsumeCodeOnce(t *testing.T) {
	svc := &PassportService{Store: newTestStore(t)}
	ctx := context.Background()
	identity := domain.Identity{MemberID: "m1", MemberDetailID: "d1"}

	key, err := svc.CreatePassport(ctx, testPayload())
	require.NoError(t, err)
	code, err := svc.ExchangeForCode(ctx, identity, key, testPayload())
	require.NoError(t, err)

	got, err := svc.ConsumeCode(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, code, got.Code)
	assert.Equal(t, identity, got.Identity)
	assert.Equal(t, testPayload(), got.Payload)

	// Single use. The duplicate finds nothing.
	_, err = svc.ConsumeCode(ctx, code)
	assert.ErrorIs(t, err, ErrCodeNotFound)
}

func TestPassportService_ConsumeUnknownCode(t *testing.T) {
	svc := &PassportService{Store: newTestStore(t)}

	_, err := svc.ConsumeCode(context.Background(), "never-issued")
	assert.ErrorIs(t, err, ErrCodeNotFound)
}

func TestPassportService_DeleteCode(t *testing.T) {
	svc := &PassportService{Store: newTestStore(t)}
	ctx := context.Background()
	identity := domain.Identity{MemberID: "m1", MemberDetailID: "d1"}

	key, err := svc.CreatePassport(ctx, testPayload())
	require.NoError(t, err)
	code, err := svc.ExchangeForCode(ctx, identity, key, testPayload())
	require.NoError(t, err)

	require.NoError(t, svc.DeleteCode(ctx, code))
	assert.ErrorIs(t, svc.DeleteCode(ctx, code), ErrCodeNotFound)
}
