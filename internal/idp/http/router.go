package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/parenthub/authcore/internal/idp/directory"
	"github.com/parenthub/authcore/internal/idp/keystore"
	"github.com/parenthub/authcore/internal/idp/service"
	"github.com/parenthub/authcore/internal/idp/store"
	"github.com/parenthub/authcore/pkg/cryptox"
	"github.com/parenthub/authcore/pkg/httpx"
	"github.com/parenthub/authcore/pkg/jwtx"
	"github.com/parenthub/authcore/pkg/slogx"

	_ "github.com/parenthub/authcore/api/idp" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	pool         *jwtx.KeyPool
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store    store.Store
	keystore keystore.Keystore

	CookieCodec  cryptox.Codec
	BearerCodec  cryptox.Codec
	CookieSecure bool

	Directory          directory.Directory
	PassportService    *service.PassportService
	SessionService     *service.SessionService
	KeyRotationService *service.KeyRotationService
}

func NewRouter(
	pool *jwtx.KeyPool,
	buildVersion string,
	st store.Store,
	ks keystore.Keystore,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		pool:         pool,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		keystore:     ks,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerOAuth2()
	r.registerSession()
	r.registerKeyRotation()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			ParentHub Identity Provider API
//	@version		0.1.0
//	@description	Authorization core for the ParentHub identity provider: browser sign-in,
//	@description	single-use passports and authorization codes, revocable session tokens.
//	@description
//	@description				ID tokens are signed with rotating EdDSA/RS256 keys published at the JWKS endpoint.
//	@description				Access tokens are opaque reference tokens; validity requires a live session record.
//
//	@contact.name				ParentHub Engineering
//	@contact.url				https://github.com/parenthub/authcore
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Opaque access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerOAuth2() {
	authorizeHandler := &AuthorizeHandler{Passports: r.PassportService}

	// GET /authorize - lenient, it only parks the request behind a passport
	r.Mux.Handle("GET /v1/oauth2/authorize",
		httpx.Chain(http.HandlerFunc(authorizeHandler.HandleGet),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	// POST /signin - strict by IP + email form field against brute force
	signinHandler := &SigninHandler{
		Passports: r.PassportService,
		Directory: r.Directory,
	}
	r.Mux.Handle("POST /v1/oauth2/signin",
		httpx.Chain(signinHandler,
			httpx.RateLimitByIPAndFormField(httpx.StrictLimit, "email"),
		),
	)

	// POST /token - strict by IP, codes are single-use credentials
	tokenHandler := &TokenHandler{
		Passports:    r.PassportService,
		Sessions:     r.SessionService,
		CookieCodec:  r.CookieCodec,
		CookieSecure: r.CookieSecure,
	}
	r.Mux.Handle("POST /v1/oauth2/token",
		httpx.Chain(tokenHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// GET /jwks.json - public endpoint with high limit
	r.Mux.Handle("GET /.well-known/jwks.json",
		httpx.Chain(JWKSHandler(r.pool),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}

func (r *Router) registerSession() {
	// POST /signout - cookie-guarded, first-party browser action
	signoutHandler := &SignoutHandler{
		Sessions:     r.SessionService,
		CookieSecure: r.CookieSecure,
	}
	r.Mux.Handle("POST /v1/oauth2/signout",
		httpx.Chain(signoutHandler,
			CookieGuard(r.CookieCodec),
			httpx.RateLimitByMember(httpx.ModerateLimit),
		),
	)

	// GET /userinfo - bearer-guarded, lenient by member
	userInfoHandler := &UserInfoHandler{Sessions: r.SessionService}
	r.Mux.Handle("GET /v1/userinfo",
		httpx.Chain(userInfoHandler,
			BearerGuard(r.BearerCodec, r.SessionService),
			httpx.RateLimitByMember(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerKeyRotation() {
	h := &KeyRotationHandler{KeyRotationService: r.KeyRotationService}

	guard := BearerGuard(r.BearerCodec, r.SessionService)

	r.Mux.Handle("POST /v1/keys/rotate",
		httpx.Chain(http.HandlerFunc(h.HandleRotate),
			guard,
			httpx.RateLimitByMember(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /v1/keys",
		httpx.Chain(http.HandlerFunc(h.HandleListKeys),
			guard,
			httpx.RateLimitByMember(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /v1/keys/{kid}/retire",
		httpx.Chain(http.HandlerFunc(h.HandleRetireKey),
			guard,
			httpx.RateLimitByMember(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health probes - lenient, monitoring systems poll them
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keystore, r.pool),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
