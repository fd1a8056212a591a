package cli

import (
	"context"
	"fmt"

	"partyplnr/internal/catalog"
	"partyplnr/internal/chat"
	"partyplnr/internal/common/config"
	"partyplnr/internal/common/database"
	"partyplnr/internal/common/logger"
	"partyplnr/internal/common/observability"
	"partyplnr/internal/compose"
	"partyplnr/internal/fallback"
	"partyplnr/internal/intent"
	"partyplnr/internal/lexicon"
	"partyplnr/internal/ranking"
	"partyplnr/internal/responsecache"
	"partyplnr/internal/session"
)

const connectRetries = 5

// app is the process-wide state built once at startup and shared by
// reference: lexicon, catalog and the services built on them.
type app struct {
	cfg     *config.Config
	logger  logger.Logger
	lexicon *lexicon.Lexicon
	catalog *catalog.Catalog
	chat    *chat.Service
	obs     *observability.Observability
	closers []func() error
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("close failed", map[string]interface{}{"error": err})
		}
	}
	a.obs.Shutdown()
}

func buildApp(ctx context.Context, cfg *config.Config, log logger.Logger) (*app, error) {
	a := &app{
		cfg:     cfg,
		logger:  log,
		lexicon: lexicon.Default(),
		obs:     observability.New(cfg.App.Name, log),
	}

	cat, err := a.loadCatalog(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.catalog = cat

	sessions, cache, err := a.stateBackends(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	opts := []chat.Option{chat.WithObservability(a.obs)}
	if cfg.Engine.NoMatchPolicy == config.NoMatchAI {
		opts = append(opts, chat.WithFallback(a.fallbackGuard()))
	}

	a.chat = chat.NewService(
		intent.New(a.lexicon, cat, intent.WithThreshold(cfg.Engine.FuzzyThreshold)),
		ranking.New(cat, ranking.WithRelaxThreshold(cfg.Engine.FuzzyThreshold)),
		sessions,
		cache,
		compose.New(nil),
		chat.PolicyFromConfig(cfg.Engine),
		log,
		opts...,
	)
	return a, nil
}

func (a *app) loadCatalog(ctx context.Context) (*catalog.Catalog, error) {
	cfg := a.cfg
	src, err := a.catalogSource(ctx)
	if err != nil {
		return nil, err
	}

	loadCtx := ctx
	if timeout := config.GetDuration(cfg.Catalog.LoadTimeout); timeout > 0 {
		var cancel context.CancelFunc
		loadCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	return catalog.Load(loadCtx, src, a.lexicon, catalog.NormalizeOptions{
		DefaultBaseScore: cfg.Catalog.DefaultBaseScore,
		MaxRecords:       cfg.Catalog.MaxRecords,
	}, a.logger)
}

func (a *app) catalogSource(ctx context.Context) (catalog.Source, error) {
	cfg := a.cfg
	switch cfg.Catalog.Source {
	case config.CatalogSourcePostgres:
		pg, err := database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pg.Close)
		if err := retryWithBackoff(ctx, func() error { return pg.Ping(ctx) }, connectRetries, config.GetDuration(1000), a.logger, "PostgreSQL connection"); err != nil {
			return nil, err
		}
		return catalog.PostgresSource{DB: pg.DB, Table: cfg.Catalog.Table, Limit: cfg.Catalog.MaxRecords}, nil

	case config.CatalogSourceElasticsearch:
		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return nil, err
		}
		if err := retryWithBackoff(ctx, func() error { return es.Ping(ctx) }, connectRetries, config.GetDuration(1000), a.logger, "Elasticsearch connection"); err != nil {
			return nil, err
		}
		return catalog.ElasticsearchSource{Client: es.Client, Index: cfg.Catalog.Index, Size: cfg.Catalog.MaxRecords}, nil

	case config.CatalogSourceCSV:
		return catalog.CSVSource{Path: cfg.Catalog.Path}, nil

	default:
		return nil, fmt.Errorf("unknown catalog source %q", cfg.Catalog.Source)
	}
}

func (a *app) stateBackends(ctx context.Context) (session.Store, responsecache.Cache, error) {
	cfg := a.cfg

	var redisClient *database.RedisClient
	if cfg.Session.Backend == config.BackendRedis || cfg.Cache.Backend == config.BackendRedis {
		client, err := database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, client.Close)
		if err := retryWithBackoff(ctx, func() error { return client.Ping(ctx) }, connectRetries, config.GetDuration(1000), a.logger, "Redis connection"); err != nil {
			return nil, nil, err
		}
		redisClient = client
	}

	var sessions session.Store = session.NewMemoryStore()
	if cfg.Session.Backend == config.BackendRedis {
		sessions = session.NewRedisStore(redisClient.Client, cfg.Session.KeyPrefix, config.GetDuration(cfg.Session.IdleTTL))
	}

	ttl := config.GetDuration(cfg.Cache.TTL)
	var cache responsecache.Cache = responsecache.NewMemoryCache(ttl, cfg.Cache.MaxEntries)
	if cfg.Cache.Backend == config.BackendRedis {
		cache = responsecache.NewRedisCache(redisClient.Client, cfg.Cache.KeyPrefix, ttl, a.logger)
	}

	a.logger.Info("state backends ready", map[string]interface{}{
		"session": cfg.Session.Backend,
		"cache":   cfg.Cache.Backend,
	})
	return sessions, cache, nil
}

func (a *app) fallbackGuard() *fallback.Guard {
	timeout := config.GetDuration(a.cfg.AI.Timeout)
	completer, err := fallback.NewOpenAICompleter(a.cfg.AI)
	if err != nil {
		a.logger.Warn("AI fallback disabled", map[string]interface{}{"error": err})
		return fallback.NewGuard(nil, timeout, a.logger)
	}
	return fallback.NewGuard(completer, timeout, a.logger)
}
