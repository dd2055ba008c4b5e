package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"keepsake/internal/identity"
	"keepsake/internal/platform/config"
	"keepsake/internal/platform/httpserver"
	"keepsake/internal/platform/postgres"
	platformredis "keepsake/internal/platform/redis"
	"keepsake/internal/registry/cache"
	registrymetrics "keepsake/internal/registry/metrics"
	"keepsake/internal/registry/service"
	"keepsake/internal/registry/store"
	id "keepsake/pkg/domain"
	"keepsake/pkg/platform/audit/publishers/compliance"
	auditmemory "keepsake/pkg/platform/audit/store/memory"
	auditpostgres "keepsake/pkg/platform/audit/store/postgres"
)

// app holds the wired registry and the resources it owns.
type app struct {
	service  *service.Service
	db       *sql.DB
	redis    *platformredis.Client
	registry *prometheus.Registry
	checks   map[string]httpserver.Check
}

// newApp wires the registry against Postgres when database.url is set and
// against the in-memory stores otherwise.
func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	administrator, err := id.ParseIdentity(cfg.Registry.Administrator)
	if err != nil {
		return nil, fmt.Errorf("registry.administrator: %w", err)
	}

	a := &app{
		registry: prometheus.NewRegistry(),
		checks:   make(map[string]httpserver.Check),
	}
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	registryMetrics := registrymetrics.New(a.registry)
	complianceMetrics := compliance.NewMetrics(a.registry)

	var (
		registryStore service.Store
		publisher     *compliance.Publisher
		storeTx       service.StoreTx
	)
	if cfg.Database.URL == "" {
		logger.Warn("database.url not set, using in-memory stores")
		mem := store.NewInMemory()
		events := auditmemory.NewInMemoryStore()
		registryStore = mem
		publisher = compliance.New(events, compliance.WithLogger(logger), compliance.WithMetrics(complianceMetrics))
		storeTx = service.NewInMemoryStoreTx(mem, events)
	} else {
		db, err := postgres.Open(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		a.db = db
		a.checks["postgres"] = db.PingContext
		registryStore = store.NewPostgres(db)
		publisher = compliance.New(auditpostgres.New(db), compliance.WithLogger(logger), compliance.WithMetrics(complianceMetrics))
		storeTx = service.NewPostgresStoreTx(db, cfg.Registry.TxTimeout)
	}

	// The shared tier is keyed by content id, which only Postgres keeps stable
	// across processes. In-memory ids restart at 1, so Redis would serve
	// another process's descriptors.
	cacheOpts := []cache.Option{cache.WithMetrics(registryMetrics), cache.WithLogger(logger)}
	if cfg.Redis.URL != "" && cfg.Database.URL == "" {
		logger.Warn("redis.url ignored with in-memory stores")
	} else {
		redisClient, err := platformredis.New(ctx, cfg.Redis)
		if err != nil {
			a.close()
			return nil, err
		}
		if redisClient != nil {
			a.redis = redisClient
			a.checks["redis"] = redisClient.Health
			cacheOpts = append(cacheOpts, cache.WithRedis(redisClient.Client))
		}
	}

	opts := []service.Option{
		service.WithLogger(logger),
		service.WithAuditPublisher(publisher),
		service.WithMetrics(registryMetrics),
		service.WithStoreTx(storeTx),
		service.WithContentReader(cache.New(registryStore, cfg.Cache.Size, cfg.Cache.TTL, cacheOpts...)),
	}
	if cfg.Registry.ContractRecipients {
		dir, err := identity.NewStaticContractDirectory(cfg.Registry.ContractIdentities)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("registry.contract_identities: %w", err)
		}
		opts = append(opts, service.WithContractRecipientRule(dir))
	}

	svc, err := service.New(registryStore, administrator, opts...)
	if err != nil {
		a.close()
		return nil, err
	}
	a.service = svc
	return a, nil
}

func (a *app) close() error {
	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}
