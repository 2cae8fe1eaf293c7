package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/quill/internal/config"
	"github.com/MrSnakeDoc/quill/internal/content"
	"github.com/MrSnakeDoc/quill/internal/events"
	"github.com/MrSnakeDoc/quill/internal/httpserver"
	"github.com/MrSnakeDoc/quill/internal/httpserver/deps"
	"github.com/MrSnakeDoc/quill/internal/logger"
	"github.com/MrSnakeDoc/quill/internal/redis"
	"github.com/MrSnakeDoc/quill/internal/scheduler"
	"github.com/MrSnakeDoc/quill/internal/search"
	"github.com/MrSnakeDoc/quill/internal/sources/remote"
	"github.com/MrSnakeDoc/quill/internal/sources/seed"
	"github.com/MrSnakeDoc/quill/internal/store/memory"
	redisstore "github.com/MrSnakeDoc/quill/internal/store/redis"
	"github.com/MrSnakeDoc/quill/internal/utils"
	"github.com/MrSnakeDoc/quill/internal/version"
)

// Cache is a durable cache backend as the app uses it.
type Cache interface {
	content.Cache
	Ping(ctx context.Context) error
	Flush(ctx context.Context) (int, error)
}

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	redisClient *goredis.Client
	cache       Cache
	bus         *events.Bus
	store       *content.Store
	drafts      *content.Drafts
	engine      *search.Engine
}

// New loads the configuration and wires the content store, its cache and
// remote source, and the search engine. Nothing is loaded yet.
func New() (*App, error) {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	a := &App{cfg: cfg, logger: loggerClient}

	switch cfg.CacheBackend {
	case config.BackendRedis:
		// Fail fast if Redis is unavailable
		loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		client, err := redis.New(redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			RedisDB:        cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, loggerClient)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		loggerClient.Info("Redis initialized successfully")
		a.redisClient = client
		a.cache = redisstore.NewStore(client, cfg.CachePrefix, 0)
	default:
		loggerClient.Warn("using in-process memory cache, edits are lost on restart")
		a.cache = memory.NewStore()
	}

	a.bus = events.NewBus(loggerClient.Named("events"))
	a.store = content.NewStore(content.Options{
		Cache:  a.cache,
		Source: remote.NewLoader(cfg.SourceURL, cfg.SourceTimeout, loggerClient.Named("remote")),
		Bus:    a.bus,
		Logger: loggerClient.Named("store"),
		Seed:   seed.Articles,
	})
	a.drafts = content.NewDrafts(a.cache, a.bus, loggerClient.Named("drafts"))

	// Subscribe before loading so the first articlesLoaded builds the index.
	a.engine = search.NewEngine(loggerClient.Named("search"))
	a.engine.Attach(a.bus, a.store.List)

	return a, nil
}

func (a *App) Logger() logger.Logger { return a.logger }
func (a *App) Store() *content.Store { return a.store }
func (a *App) Search() *search.Engine { return a.engine }
func (a *App) Cache() Cache { return a.cache }
func (a *App) Drafts() *content.Drafts { return a.drafts }

// Load initializes the store from cache, remote source or sample data.
func (a *App) Load(ctx context.Context) error {
	if err := a.store.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize content store: %w", err)
	}
	return nil
}

// Run loads the collection, then serves HTTP until SIGINT/SIGTERM.
func (a *App) Run() error {
	a.logger.Infof("🚀 Starting Quill v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("Quill %s", version.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Load(ctx); err != nil {
		return err
	}
	a.logger.Info("content store ready",
		logger.Int("articles", a.store.Count()),
		logger.Int("indexed", a.engine.Size()))

	// Create manual reload trigger channel
	reloadTrigger := make(chan struct{}, 1)

	reloader := scheduler.NewRemoteReloader(a.store, a.logger.Named("reloader"), a.cfg.RefreshInterval, reloadTrigger)
	reloader.Start(ctx)
	a.logger.Info("remote reloader started",
		logger.Duration("interval", a.cfg.RefreshInterval))

	collector := scheduler.NewDraftCollector(a.drafts, a.logger.Named("drafts"), a.cfg.DraftGCInterval, a.cfg.DraftMaxAge)
	collector.Start(ctx)
	a.logger.Info("draft collector started",
		logger.Duration("interval", a.cfg.DraftGCInterval),
		logger.Duration("max_age", a.cfg.DraftMaxAge))

	streamsDone := make(chan struct{})

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:            a.logger,
		StartTime:         time.Now(),
		Version:           version.Version,
		Commit:            version.Commit,
		BuildDate:         version.BuildDate,
		GoVersion:         version.GoVersion,
		TimeNow:           time.Now,
		AllowedCIDRS:      a.cfg.AllowedCIDRS,
		AllowedHosts:      a.cfg.AllowedHosts,
		TrustProxy:        a.cfg.TrustProxy,
		CORSOrigins:       a.cfg.CORSOrigins,
		WriteBurst:        a.cfg.WriteBurst,
		WriteRefillPerMin: a.cfg.WriteRefillPerMin,
		CacheBackend:      a.cfg.CacheBackend,
		CachePing:         a.cache.Ping,
		Store:             a.store,
		Drafts:            a.drafts,
		Search:            a.engine,
		Bus:               a.bus,
		ReloadTrigger:     reloadTrigger,
		Done:              streamsDone,
	}

	server := httpserver.New(a.cfg, a.logger, d)
	a.logger.Info("http api configured",
		logger.Strings("cors_origins", a.cfg.CORSOrigins),
		logger.Int("allowed_cidrs", len(a.cfg.AllowedCIDRS)),
		logger.Int("write_burst", a.cfg.WriteBurst))
	server.OnShutdown(func() { close(streamsDone) })

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case runErr = <-errCh:
	}

	reloader.Stop()
	collector.Stop()

	if runErr == nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Stop(shutdownCtx); err != nil {
			runErr = fmt.Errorf("failed to stop server: %w", err)
		}
	}

	a.Close()
	if runErr != nil {
		return runErr
	}

	a.logger.Info("✅ Quill stopped cleanly")
	return nil
}

// Close releases the Redis connection, if any, and flushes logs.
func (a *App) Close() {
	if a.redisClient != nil {
		utils.MustClose(a.redisClient, "redis", a.logger)
		a.redisClient = nil
	}
	_ = a.logger.Sync()
}
