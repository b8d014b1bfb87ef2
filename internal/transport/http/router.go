package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vanity-address-api/internal/application/linkage"
	"github.com/vanity-address-api/internal/application/origincache"
	"github.com/vanity-address-api/internal/application/stats"
	"github.com/vanity-address-api/internal/application/transfer"
	"github.com/vanity-address-api/internal/application/vanity"
	"github.com/vanity-address-api/internal/config"
	"github.com/vanity-address-api/internal/infrastructure/dynamo"
	"github.com/vanity-address-api/internal/infrastructure/inventory"
	"github.com/vanity-address-api/internal/infrastructure/ledger"
	"github.com/vanity-address-api/internal/transport/http/handler"
	appmiddleware "github.com/vanity-address-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	OriginRepo       *dynamo.OriginRepo
	APIKeyRepo       *dynamo.APIKeyRepo
	RegistrationRepo *dynamo.RegistrationRepo
	WalletUserRepo   *dynamo.LinkageRepo
	AccountRepo      *dynamo.LinkageRepo
	SearchTermRepo   *dynamo.SearchTermRepo
	PurchaseRepo     *dynamo.PurchaseRepo
	StatisticsRepo   *dynamo.StatisticsRepo
	TempInfoRepo     *dynamo.TempInfoRepo[map[string]interface{}]
	Inventory        *inventory.Client
	Ledger           ledger.Client
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	cache := origincache.New(dynamo.NewConfigLoader(deps.OriginRepo, deps.APIKeyRepo))

	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(appmiddleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowOriginFunc: func(req *http.Request, origin string) bool {
			return cache.ApplicationIDForOrigin(req.Context(), origin) != ""
		},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	publicRL := appmiddleware.NewRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	authMw := appmiddleware.AppAuth(cache)

	statsRec := stats.NewRecorder(deps.StatisticsRepo)
	transferSvc := transfer.NewService(deps.Ledger)
	linkageSvc := linkage.NewService(linkage.ServiceDeps{
		WalletUsers:   deps.WalletUserRepo,
		Accounts:      deps.AccountRepo,
		Registrations: deps.RegistrationRepo,
		SearchTerms:   deps.SearchTermRepo,
	})
	vanitySvc := vanity.NewService(vanity.ServiceDeps{
		Inventory: deps.Inventory,
		Transfer:  transferSvc,
		Purchases: deps.PurchaseRepo,
		Stats:     statsRec,
	})

	healthH := handler.NewHealthHandler()
	originH := handler.NewOriginHandler(cache)
	linkageH := handler.NewLinkageHandler(linkageSvc)
	vanityH := handler.NewVanityHandler(vanitySvc, transferSvc, cfg.LedgerIssuer, cfg.LedgerCurrency)
	statsH := handler.NewStatsHandler(statsRec)
	tempH := handler.NewTempInfoHandler(deps.TempInfoRepo)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)
		r.With(publicRL.Limit).Get("/origins/resolve", originH.Resolve)
		r.With(publicRL.Limit).Get("/return-url", originH.ReturnURL)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/origins", originH.List)
			r.Post("/origins/reset", originH.Reset)

			r.Post("/users/register", linkageH.RegisterUser)
			r.Post("/payloads/wallet-users/{subject}", linkageH.AddWalletUserPayload)
			r.Get("/payloads/wallet-users/{subject}", linkageH.WalletUserPayloads)
			r.Post("/payloads/accounts/{subject}", linkageH.AddAccountPayload)
			r.Get("/payloads/accounts/{subject}", linkageH.AccountPayloads)
			r.Get("/payloads/accounts/{subject}/signin", linkageH.SigninPayloads)
			r.Get("/accounts/{subject}/wallet-user", linkageH.WalletUserForAccount)
			r.Post("/search-terms", linkageH.SaveSearchTerm)
			r.Delete("/search-terms", linkageH.DeleteSearchTerm)

			r.Get("/vanity/search/{term}", vanityH.Search)
			r.Get("/vanity/price", vanityH.Price)
			r.Post("/vanity/handover", vanityH.Handover)
			r.Get("/vanity/purchased/{account}", vanityH.Purchased)

			r.Get("/statistics", statsH.Totals)

			r.Post("/temp-info", tempH.Create)
			r.Get("/temp-info/find", tempH.Find)
			r.Get("/temp-info/{id}", tempH.Get)
			r.Delete("/temp-info/{id}", tempH.Delete)
		})
	})

	return r
}
