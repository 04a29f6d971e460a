package http

import (
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/invitegate/internal/gate/cache"
	"github.com/aussiebroadwan/invitegate/internal/gate/service"
	"github.com/aussiebroadwan/invitegate/internal/gate/store"
	"github.com/aussiebroadwan/invitegate/pkg/httpx"
	"github.com/aussiebroadwan/invitegate/pkg/jwtx"
	"github.com/aussiebroadwan/invitegate/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	_ "github.com/aussiebroadwan/invitegate/api/invitegate" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	// verifier authenticates invite code creators. Nil leaves creation open.
	verifier jwtx.Verifier
	logger   *slog.Logger
	gatherer prometheus.Gatherer

	store store.Store
	cache *cache.CacheAside

	// Throttle is the per-IP limit in front of every /api/v1 route.
	Throttle httpx.ThrottleConfig

	InviteService *service.InviteService
	Coordinator   *service.ReservationCoordinator
	Oracle        *service.EligibilityOracle
}

func NewRouter(
	verifier jwtx.Verifier,
	st store.Store,
	c *cache.CacheAside,
	gatherer prometheus.Gatherer,
	corsOrigins []string,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:      http.NewServeMux(),
		verifier: verifier,
		logger:   logger,
		gatherer: gatherer,
		store:    st,
		cache:    c,
		Throttle: httpx.DefaultThrottle,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		cors.New(cors.Options{
			AllowedOrigins: corsOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type", "Authorization"},
			ExposedHeaders: []string{"Content-Range", "X-Total-Count"},
		}).Handler,
	}

	return r
}

func (r *Router) ApplyRoutes() {
	throttle := httpx.Throttle(r.Throttle, httpx.ClientIP)

	r.registerChecks(throttle)
	r.registerRegistrations(throttle)
	r.registerInviteCodes(throttle)
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Invite Gate API
//	@version		0.1.0
//	@description	Invite code and NFT staking gated registration.
//	@description
//	@description				Registrations are bound to a wallet by an EIP-191 personal_sign signature.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/invitegate
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:3001
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Creator token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerChecks(throttle httpx.Middleware) {
	r.Mux.Handle("GET /api/v1/verify-code",
		httpx.Chain(&VerifyCodeHandler{InviteService: r.InviteService}, throttle))
	r.Mux.Handle("GET /api/v1/email-used",
		httpx.Chain(&EmailUsedHandler{InviteService: r.InviteService}, throttle))
	r.Mux.Handle("GET /api/v1/wallet-used",
		httpx.Chain(&WalletUsedHandler{InviteService: r.InviteService}, throttle))
}

func (r *Router) registerRegistrations(throttle httpx.Middleware) {
	r.Mux.Handle("POST /api/v1/reserve",
		httpx.Chain(&ReserveHandler{Coordinator: r.Coordinator}, throttle))
	r.Mux.Handle("POST /api/v1/register-nft",
		httpx.Chain(&RegisterNFTHandler{Coordinator: r.Coordinator}, throttle))
	r.Mux.Handle("GET /api/v1/eligibility",
		httpx.Chain(&EligibilityHandler{Oracle: r.Oracle}, throttle))
}

func (r *Router) registerInviteCodes(throttle httpx.Middleware) {
	var authn httpx.Middleware
	if r.verifier != nil {
		authn = httpx.AuthnMiddleware(r.verifier)
	}

	// Throttle before authn so token guessing is limited too. Stats expose
	// emails and IPs, so they sit behind the same token.
	r.Mux.Handle("POST /api/v1/invite-codes",
		httpx.Chain(&CreateInviteCodeHandler{InviteService: r.InviteService}, throttle, authn))
	r.Mux.Handle("GET /api/v1/invite-codes/{code}/stats",
		httpx.Chain(&InviteCodeStatsHandler{InviteService: r.InviteService}, throttle, authn))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler())
	r.Mux.Handle("GET /readyz", ReadyzHandler(map[string]Pinger{
		"database": r.store,
		"cache":    r.cache,
	}))
	r.Mux.Handle("GET /metrics", promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{}))
}
