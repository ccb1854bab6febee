package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parenthub/authcore/internal/idp/directory"
	"github.com/parenthub/authcore/internal/idp/domain"
	"github.com/parenthub/authcore/internal/idp/keystore"
	"github.com/parenthub/authcore/internal/idp/service"
	redisstore "github.com/parenthub/authcore/internal/idp/store/drivers/redis"
	"github.com/parenthub/authcore/pkg/cryptox"
	"github.com/parenthub/authcore/pkg/jwtx"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "http-secrets")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	masterKeyPath := filepath.Join(dir, "master.key")
	if err := os.WriteFile(masterKeyPath, []byte("http-test-master-key"), 0o600); err != nil {
		panic(err)
	}
	cryptox.SetMasterKeyPath(masterKeyPath)

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

func newTestRouter(t *testing.T) *Router {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	st := redisstore.New(client)

	ks, err := keystore.OpenSQLite(filepath.Join(t.TempDir(), "keystore.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = ks.Close() })

	pool := jwtx.NewKeyPool(nil)
	signer, _, err := jwtx.GenerateSigner(jwtx.AlgorithmEdDSA)
	require.NoError(t, err)
	require.NoError(t, pool.Activate(signer))

	cookieCodec, err := cryptox.NewCodec("router-test-cookie-secret")
	require.NoError(t, err)
	bearerCodec, err := cryptox.NewCodec("router-test-bearer-secret")
	require.NoError(t, err)

	dir := directory.NewMemory()
	require.NoError(t, dir.Register("alex@example.com", "s3cret-pass",
		domain.Identity{MemberID: "m1", MemberDetailID: "d1"},
		domain.Profile{Name: "Alex Carter", Email: "alex@example.com"},
	))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := NewRouter(pool, "test", st, ks, logger)
	r.CookieCodec = cookieCodec
	r.BearerCodec = bearerCodec
	r.Directory = dir
	r.PassportService = &service.PassportService{Store: st}
	r.SessionService = &service.SessionService{
		Store:           st,
		Directory:       dir,
		Pool:            pool,
		BearerCodec:     bearerCodec,
		Issuer:          "https://idp.test",
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
	}
	r.KeyRotationService = &service.KeyRotationService{
		Keystore:    ks,
		Pool:        pool,
		Algorithm:   jwtx.AlgorithmEdDSA,
		GracePeriod: 7 * 24 * time.Hour,
	}
	r.ApplyRoutes()
	return r
}

func doForm(t *testing.T, r *Router, path string, form url.Values, mutate ...func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, m := range mutate {
		m(req)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func authorize(t *testing.T, r *Router) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet,
		"/v1/oauth2/authorize?response_type=code&client_id=client-1&redirect_uri=https%3A%2F%2Fapp.example.com%2Fcb&scope=name+email&state=xyz", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp AuthorizeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Passport, domain.PassportKeyLength)
	return resp.Passport
}

func signin(t *testing.T, r *Router, passport string) string {
	t.Helper()
	rec := doForm(t, r, "/v1/oauth2/signin", url.Values{
		"passport": {passport},
		"email":    {"alex@example.com"},
		"password": {"s3cret-pass"},
	})
	require.Equal(t, http.StatusFound, rec.Code, rec.Body.String())

	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "xyz", loc.Query().Get("state"))
	code := loc.Query().Get("code")
	require.Len(t, code, domain.CodeLength)
	return code
}

func exchange(t *testing.T, r *Router, code string) (domain.TokenBundle, *http.Cookie) {
	t.Helper()
	rec := doForm(t, r, "/v1/oauth2/token", url.Values{
		"grant_type": {"authorization_code"},
		"code":       {code},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var bundle domain.TokenBundle
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &bundle))

	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookieName {
			return bundle, c
		}
	}
	t.Fatal("session cookie not set")
	return bundle, nil
}

func TestRouter_EndToEndFlow(t *testing.T) {
	r := newTestRouter(t)

	passport := authorize(t, r)
	code := signin(t, r, passport)
	bundle, cookie := exchange(t, r, code)

	assert.Equal(t, "Bearer", bundle.TokenType)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)

	// Bearer call succeeds while the session is live.
	req := httptest.NewRequest(http.MethodGet, "/v1/userinfo", nil)
	req.Header.Set("Authorization", "Bearer "+bundle.AccessToken)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var info UserInfoResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, "m1", info.MemberID)
	assert.Equal(t, "d1", info.MemberDetailID)

	// Sign out through the first-party cookie.
	rec = doForm(t, r, "/v1/oauth2/signout", url.Values{}, func(req *http.Request) {
		req.AddCookie(cookie)
	})
	require.Equal(t, http.StatusNoContent, rec.Code)

	// The still-decryptable bearer token is now dead.
	req = httptest.NewRequest(http.MethodGet, "/v1/userinfo", nil)
	req.Header.Set("Authorization", "Bearer "+bundle.AccessToken)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_CodeIsSingleUse(t *testing.T) {
	r := newTestRouter(t)

	code := signin(t, r, authorize(t, r))
	_, _ = exchange(t, r, code)

	rec := doForm(t, r, "/v1/oauth2/token", url.Values{"code": {code}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_AuthorizeValidation(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		name  string
		query string
	}{
		{"missing client_id", "redirect_uri=https%3A%2F%2Fapp.example.com%2Fcb"},
		{"missing redirect_uri", "client_id=client-1"},
		{"relative redirect_uri", "client_id=client-1&redirect_uri=%2Fcb"},
		{"wrong response_type", "response_type=token&client_id=client-1&redirect_uri=https%3A%2F%2Fapp.example.com%2Fcb"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/oauth2/authorize?"+tt.query, nil)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestRouter_SigninFailuresAreUniform(t *testing.T) {
	r := newTestRouter(t)
	passport := authorize(t, r)

	tests := []struct {
		name string
		form url.Values
	}{
		{"wrong password", url.Values{"passport": {passport}, "email": {"alex@example.com"}, "password": {"wrong"}}},
		{"unknown member", url.Values{"passport": {passport}, "email": {"nobody@example.com"}, "password": {"s3cret-pass"}}},
		{"unknown passport", url.Values{"passport": {"bogus"}, "email": {"alex@example.com"}, "password": {"s3cret-pass"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doForm(t, r, "/v1/oauth2/signin", tt.form)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), "auth_failure")
		})
	}

	// A failed sign-in leaves the passport intact for a retry.
	signin(t, r, passport)
}

func TestRouter_GuardRejections(t *testing.T) {
	r := newTestRouter(t)

	// Issue a real session so the cross-domain case has live material.
	bundle, cookie := exchange(t, r, signin(t, r, authorize(t, r)))

	t.Run("userinfo without header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/userinfo", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("userinfo with garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/userinfo", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("cookie ciphertext is not a bearer token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/userinfo", nil)
		req.Header.Set("Authorization", "Bearer "+cookie.Value)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("bearer ciphertext is not a cookie", func(t *testing.T) {
		rec := doForm(t, r, "/v1/oauth2/signout", url.Values{}, func(req *http.Request) {
			req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: bundle.AccessToken})
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("signout without cookie", func(t *testing.T) {
		rec := doForm(t, r, "/v1/oauth2/signout", url.Values{})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRouter_SupersededTokenFails(t *testing.T) {
	r := newTestRouter(t)

	first, _ := exchange(t, r, signin(t, r, authorize(t, r)))

	// A second sign-in overwrites the session in place.
	identity := domain.Identity{MemberID: "m1", MemberDetailID: "d1"}
	_, err := r.SessionService.Issue(context.Background(), identity, domain.PassportPayload{
		ClientID: "client-1", RedirectURI: "https://app.example.com/cb", Scope: "name",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/v1/userinfo", nil)
	req.Header.Set("Authorization", "Bearer "+first.AccessToken)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_KeyAdminEndpoints(t *testing.T) {
	r := newTestRouter(t)
	bundle, _ := exchange(t, r, signin(t, r, authorize(t, r)))
	bearer := func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+bundle.AccessToken)
	}

	// Unauthorized without a valid bearer token.
	req := httptest.NewRequest(http.MethodPost, "/v1/keys/rotate", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// Rotate.
	req = httptest.NewRequest(http.MethodPost, "/v1/keys/rotate", strings.NewReader(`{"retire_existing":false}`))
	req.Header.Set("Content-Type", "application/json")
	bearer(req)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var rotated service.RotateKeyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rotated))
	assert.NotEmpty(t, rotated.NewKid)

	// List shows the new keypair.
	req = httptest.NewRequest(http.MethodGet, "/v1/keys", nil)
	bearer(req)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), rotated.NewKid)

	// Retire it again.
	req = httptest.NewRequest(http.MethodPost, "/v1/keys/"+rotated.NewKid+"/retire", nil)
	bearer(req)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// Unknown kid is a 404.
	req = httptest.NewRequest(http.MethodPost, "/v1/keys/no-such-kid/retire", nil)
	bearer(req)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_HealthAndJWKS(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/livez", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/.well-known/jwks.json", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var jwks jwtx.JWKS
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &jwks))
	assert.NotEmpty(t, jwks.Keys)
}
