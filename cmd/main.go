package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/okian/maifilter/internal/adapters/cache"
	"github.com/okian/maifilter/internal/adapters/catalog"
	"github.com/okian/maifilter/internal/adapters/http/api"
	"github.com/okian/maifilter/internal/adapters/http/swagger"
	"github.com/okian/maifilter/internal/adapters/source"
	app "github.com/okian/maifilter/internal/app"
	"github.com/okian/maifilter/internal/config"
	"github.com/okian/maifilter/pkg/logger"
	"github.com/okian/maifilter/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 30 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	redisDialTimeout          = 3 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Logger isn't available yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(logger.WithJSON(cfg.LogJSON)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()
	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	store := catalog.NewStore(
		catalog.WithMusicDataPath(cfg.MusicDataPath),
		catalog.WithChartStatsPath(cfg.ChartStatsPath),
		catalog.WithAliasPath(cfg.AliasPath),
	)
	if err := store.Load(ctx); err != nil {
		log.Error(ctx, "initial catalog load failed", logger.Error(err))
		return
	}

	playerCache, closeCache, err := newCache(ctx, cfg)
	if err != nil {
		log.Error(ctx, "cache setup failed", logger.Error(err))
		return
	}
	defer closeCache()

	svc := app.New(
		app.WithLogger(log),
		app.WithCatalog(store),
		app.WithCache(playerCache),
		app.WithSource(source.NewClient(
			source.WithBaseURL(cfg.ProberURL),
			source.WithToken(cfg.ProberToken),
			source.WithTimeout(cfg.FetchTimeout()),
		)),
	)
	if err := svc.Start(ctx); err != nil {
		log.Error(ctx, "failed to start service", logger.Error(err))
		return
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)
	go reloadOnHangup(ctx, svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newMux(svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}

// newMux registers the docs and every API route.
func newMux(svc api.Dependencies) *http.ServeMux {
	mux := http.NewServeMux()
	swagger.Register(mux)
	api.NewServer(svc).Register(mux)
	return mux
}

// newCache builds the configured player cache. The returned func releases
// any connection it holds.
func newCache(ctx context.Context, cfg *config.Config) (cache.Cache, func(), error) {
	switch cfg.CacheBackend {
	case config.CacheRedis:
		client := redis.NewClient(&redis.Options{
			Addr:        cfg.RedisAddr,
			DB:          cfg.RedisDB,
			DialTimeout: redisDialTimeout,
		})
		rc := cache.NewRedis(client, cache.WithRedisTTL(cfg.CacheTTL()))
		if err := rc.Ping(ctx); err != nil {
			_ = rc.Close()
			return nil, nil, err
		}
		return rc, func() { _ = rc.Close() }, nil
	case config.CacheNone:
		return cache.Noop{}, func() {}, nil
	default:
		return cache.NewMemory(
			cache.WithMaxSize(cfg.CacheSize),
			cache.WithTTL(cfg.CacheTTL()),
		), func() {}, nil
	}
}

// reloadOnHangup reloads the catalog on every SIGHUP.
func reloadOnHangup(ctx context.Context, svc *app.Service) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			if err := svc.ReloadCatalog(ctx); err != nil {
				logger.Get().Error(ctx, "catalog reload failed; keeping previous catalog", logger.Error(err))
			}
		}
	}
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(metrics.RefreshInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystem(m.Alloc, runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordGCPause(avgPauseMs)
	}
}
