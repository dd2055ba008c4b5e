package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"keepsake/internal/identity"
	"keepsake/internal/platform/config"
	"keepsake/internal/platform/httpserver"
	"keepsake/internal/platform/kafka"
	"keepsake/internal/platform/metrics"
	platformmw "keepsake/internal/platform/middleware"
	"keepsake/internal/platform/postgres"
	"keepsake/internal/registry/handler"
	id "keepsake/pkg/domain"
	"keepsake/pkg/platform/audit/relay"
	"keepsake/pkg/platform/middleware/auth"
	"keepsake/pkg/platform/middleware/metadata"
	"keepsake/pkg/platform/middleware/request"
	"keepsake/pkg/platform/middleware/requesttime"
	"keepsake/pkg/platform/middleware/version"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the event outbox relay",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, ctx.logger, migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", true, "Apply database migrations before serving")
	return cmd
}

func serve(parent context.Context, cfg *config.Config, logger *slog.Logger, migrate bool) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if migrate && cfg.Database.URL != "" {
		if err := postgres.Migrate(cfg.Database.URL, logger); err != nil {
			return err
		}
	}

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()

	var outbox *relay.Relay
	if len(cfg.Kafka.Brokers) > 0 {
		client, err := kafka.NewClient(cfg.Kafka)
		if err != nil {
			return err
		}
		defer client.Close()
		if err := kafka.EnsureTopic(ctx, client, cfg.Kafka); err != nil {
			return err
		}
		outbox = relay.New(a.db, client, cfg.Kafka.Topic,
			relay.WithBatchSize(cfg.Kafka.BatchSize),
			relay.WithInterval(cfg.Kafka.PollInterval),
			relay.WithLogger(logger),
		)
	}

	tokens := identity.NewTokenService(cfg.Auth.JWTSigningKey, cfg.Auth.Issuer)
	srv := httpserver.New(cfg.Server, newRouter(a, tokens, logger))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting keepsake", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if outbox != nil {
		g.Go(func() error {
			logger.Info("starting outbox relay", "topic", cfg.Kafka.Topic)
			return outbox.Run(gctx)
		})
	}

	return g.Wait()
}

// newRouter builds the public HTTP surface. Registry routes live under /v1 and
// require a bearer token.
func newRouter(a *app, tokens *identity.TokenService, logger *slog.Logger) http.Handler {
	health := httpserver.NewHealth(a.checks)

	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(request.Recover(logger))
	r.Use(metadata.ClientMetadata)
	r.Use(platformmw.AccessLog(logger, metrics.New(a.registry)))

	r.Get("/health/live", health.Live)
	r.Get("/health/ready", health.Ready)
	r.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))

	r.Route("/v1", func(v1 chi.Router) {
		v1.Use(version.ExtractVersion(id.APIVersionV1))
		v1.Use(auth.RequireAuth(identity.NewMiddlewareAdapter(tokens), logger))
		v1.Use(version.ValidateTokenVersion(logger))
		v1.Use(requesttime.Middleware)
		handler.New(a.service, logger).Register(v1)
	})
	return r
}
