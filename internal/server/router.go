package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/ensembleops/ensemble/internal/auth"
	ensmiddleware "github.com/ensembleops/ensemble/internal/middleware"
	"github.com/ensembleops/ensemble/internal/services/iam"
	"github.com/ensembleops/ensemble/internal/services/links"
	"github.com/ensembleops/ensemble/internal/services/scorecard"
	"github.com/ensembleops/ensemble/internal/services/teams"
	"github.com/ensembleops/ensemble/internal/services/turnover"
	"github.com/ensembleops/ensemble/internal/validation"
)

// RouterOptions carries the services mounted by NewRouter.
type RouterOptions struct {
	Teams     *teams.Service
	Turnover  *turnover.Service
	Scorecard *scorecard.Service
	Links     *links.Service

	Login        *iam.LoginService
	Sessions     *auth.SessionStore
	RelyingParty *auth.RelyingParty
	Validator    *validation.Validator

	Logger *zap.Logger
	// SecureCookies marks auxiliary cookies HTTPS-only.
	SecureCookies bool
	CORSOptions   *cors.Options
	HealthHandler http.HandlerFunc
}

// DefaultCORSOptions returns the development CORS policy.
func DefaultCORSOptions() cors.Options {
	return cors.Options{
		AllowedOrigins: []string{
			"http://localhost:5173",
			"http://127.0.0.1:5173",
		},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}
}

func defaultHealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// NewRouter assembles the portal's HTTP routes.
func NewRouter(opts RouterOptions) chi.Router {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &handlers{opts: opts, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	corsCfg := DefaultCORSOptions()
	if opts.CORSOptions != nil {
		corsCfg = *opts.CORSOptions
	}
	r.Use(cors.Handler(corsCfg))

	healthHandler := opts.HealthHandler
	if healthHandler == nil {
		healthHandler = defaultHealthHandler
	}
	r.Get("/health", healthHandler)

	if opts.RelyingParty != nil && opts.Login != nil {
		r.Get("/auth/sso/login", h.ssoLogin)
		r.Method(http.MethodGet, "/auth/sso/callback", opts.RelyingParty.CallbackHandler(h.ssoCallback))
	} else {
		logger.Info("SSO not configured; /auth/sso routes disabled")
	}
	r.Post("/auth/logout", h.logout)

	r.Route("/api", func(r chi.Router) {
		r.Use(ensmiddleware.NewSessionMiddleware(opts.Sessions, logger))
		r.Use(ensmiddleware.RequireSession)

		r.Get("/auth/whoami", h.whoami)
		r.Get("/links", h.searchLinks)

		r.Route("/teams", func(r chi.Router) {
			r.Get("/", h.listTeams)
			r.Post("/", h.createTeam)

			r.Route("/{teamID}", func(r chi.Router) {
				r.Get("/", h.getTeam)
				r.Put("/", h.updateTeam)
				r.Delete("/", h.deleteTeam)

				r.Get("/applications", h.listApplications)
				r.Post("/applications", h.createApplication)
				r.Put("/applications/{appID}", h.updateApplication)
				r.Delete("/applications/{appID}", h.deleteApplication)

				r.Get("/turnovers", h.listTurnover)
				r.Post("/turnovers", h.createTurnover)
				r.Post("/turnovers/finalize", h.finalizeTurnover)
				r.Get("/turnovers/finalizations", h.listFinalizations)
				r.Put("/turnovers/{entryID}", h.updateTurnover)
				r.Delete("/turnovers/{entryID}", h.deleteTurnover)

				r.Get("/scorecard", h.listScorecard)
				r.Put("/scorecard", h.upsertScorecard)
				r.Delete("/scorecard/{entryID}", h.deleteScorecard)

				r.Post("/links", h.createLink)
				r.Put("/links/{linkID}", h.updateLink)
				r.Delete("/links/{linkID}", h.deleteLink)
			})
		})
	})

	return r
}
