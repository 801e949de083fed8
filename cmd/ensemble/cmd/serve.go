package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ensembleops/ensemble/internal/auth"
	"github.com/ensembleops/ensemble/internal/db/bunx"
	"github.com/ensembleops/ensemble/internal/repository"
	"github.com/ensembleops/ensemble/internal/server"
	"github.com/ensembleops/ensemble/internal/services/iam"
	"github.com/ensembleops/ensemble/internal/services/links"
	"github.com/ensembleops/ensemble/internal/services/scorecard"
	"github.com/ensembleops/ensemble/internal/services/teams"
	"github.com/ensembleops/ensemble/internal/services/turnover"
	"github.com/ensembleops/ensemble/internal/telemetry"
	"github.com/ensembleops/ensemble/internal/validation"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Ensemble HTTP server",
	Long:  `Starts the HTTP server with the portal API and, when configured, the SSO endpoints.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Session.Validate(); err != nil {
			return fmt.Errorf("invalid session configuration: %w", err)
		}

		shutdownTracing, err := telemetry.Init(cmd.Context(), cfg.Observability, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize telemetry: %w", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTracing(ctx); err != nil {
				logger.Warn("telemetry shutdown failed", zap.Error(err))
			}
		}()

		db, err := bunx.NewDB(cfg.DatabaseURL, bunx.Options{MaxConns: cfg.MaxDBConnections})
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer bunx.Close(db)

		logger.Info("connected to database", zap.String("type", string(bunx.DetectDatabaseType(cfg.DatabaseURL))))

		teamRepo := repository.NewBunTeamRepository(db)
		appRepo := repository.NewBunApplicationRepository(db)
		turnoverRepo := repository.NewBunTurnoverRepository(db)
		scorecardRepo := repository.NewBunScorecardRepository(db)
		linkRepo := repository.NewBunLinkRepository(db)
		userRepo := repository.NewBunUserRepository(db)
		sessionRepo := repository.NewBunSessionRepository(db)

		secure := strings.HasPrefix(cfg.ServerURL, "https://")

		sessions, err := auth.NewSessionStore(cfg.Session, sessionRepo, secure)
		if err != nil {
			return fmt.Errorf("create session store: %w", err)
		}

		purgeCtx, cancelPurge := context.WithCancel(cmd.Context())
		defer cancelPurge()
		go purgeExpiredSessions(purgeCtx, sessionRepo, sessionPurgeInterval)

		validator, err := validation.NewValidator(validation.DefaultCacheSize)
		if err != nil {
			return fmt.Errorf("create validator: %w", err)
		}

		resolver := iam.NewResolver(teamRepo, logger.Named("iam"))
		login := iam.NewLoginService(userRepo, resolver, cfg.Session.TTL, logger.Named("login"))

		var relyingParty *auth.RelyingParty
		if cfg.OIDC.Enabled() {
			relyingParty, err = auth.NewRelyingParty(cmd.Context(), cfg.OIDC, cfg.Session, secure)
			if err != nil {
				return fmt.Errorf("failed to create relying party: %w", err)
			}
			logger.Info("SSO enabled", zap.String("issuer", cfg.OIDC.Issuer))
		}

		ssoEnabled := relyingParty != nil
		healthHandler := func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			fmt.Fprintf(w, `{"status":"ok","sso_enabled":%t}`, ssoEnabled)
		}

		r := server.NewRouter(server.RouterOptions{
			Teams:         teams.NewService(teamRepo, appRepo, logger.Named("teams")),
			Turnover:      turnover.NewService(turnoverRepo, appRepo, cfg.Turnover.Cooldown, logger.Named("turnover")),
			Scorecard:     scorecard.NewService(scorecardRepo, appRepo, logger.Named("scorecard")),
			Links:         links.NewService(linkRepo, logger.Named("links")),
			Login:         login,
			Sessions:      sessions,
			RelyingParty:  relyingParty,
			Validator:     validator,
			Logger:        logger.Named("http"),
			SecureCookies: secure,
			HealthHandler: healthHandler,
		})

		srv := &http.Server{
			Addr:         cfg.ServerAddr,
			Handler:      r,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("starting server",
				zap.String("addr", cfg.ServerAddr),
				zap.String("url", cfg.ServerURL))
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			logger.Info("shutting down gracefully", zap.String("signal", sig.String()))

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				srv.Close()
				return fmt.Errorf("graceful shutdown failed: %w", err)
			}

			logger.Info("server stopped")
			return nil
		}
	},
}

const sessionPurgeInterval = 15 * time.Minute

// purgeExpiredSessions deletes expired session rows every interval until ctx
// is done. Expired sessions are already rejected on load.
func purgeExpiredSessions(ctx context.Context, repo repository.SessionRepository, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			n, err := repo.DeleteExpired(ctx, time.Now())
			if err != nil {
				logger.Error("session purge failed", zap.Error(err))
				continue
			}
			if n > 0 {
				logger.Debug("purged expired sessions", zap.Int64("count", n))
			}
		case <-ctx.Done():
			return
		}
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
