package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/knnvote/internal/config"
	"github.com/kailas-cloud/knnvote/internal/db"
	dbRedis "github.com/kailas-cloud/knnvote/internal/db/redis"
	"github.com/kailas-cloud/knnvote/internal/domain/dataset"
	logpkg "github.com/kailas-cloud/knnvote/internal/logger"
	"github.com/kailas-cloud/knnvote/internal/metrics"
	"github.com/kailas-cloud/knnvote/internal/repository/datasetfile"
	"github.com/kailas-cloud/knnvote/internal/repository/resultcache"
	chiTransport "github.com/kailas-cloud/knnvote/internal/transport/chi"
	classifyuc "github.com/kailas-cloud/knnvote/internal/usecase/classify"
	healthuc "github.com/kailas-cloud/knnvote/internal/usecase/health"
	"github.com/kailas-cloud/knnvote/internal/version"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the classification HTTP API",
		Long:  `Serve loads config/<ENV>.yaml (or --config), registers the datasets and serves the HTTP API until SIGINT or SIGTERM`,
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	cmd.Flags().String("env", "", "environment name (default: $ENV or local)")
	cmd.Flags().String("config", "", "explicit config file path")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	env, err := cmd.Flags().GetString("env")
	if err != nil {
		return fmt.Errorf("failed to get env flag: %w", err)
	}
	if env == "" {
		env = config.GetEnv()
	}
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("failed to get config flag: %w", err)
	}

	var cfg config.Config
	if path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load(env)
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting knnvote API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	handler, cleanup, err := buildHandler(ctx, &cfg, logger)
	if err != nil {
		logger.Error("Failed to build server", zap.Error(err))
		return err
	}
	defer cleanup()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadTimeout:       time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		ReadHeaderTimeout: time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting HTTP server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
		return err
	}
	logger.Info("Server stopped gracefully")
	return nil
}

// buildHandler is the composition root: datasets, optional cache, services, router.
func buildHandler(ctx context.Context, cfg *config.Config, logger *zap.Logger) (http.Handler, func(), error) {
	metrics.Register()

	reg, err := buildRegistry(cfg.Datasets)
	if err != nil {
		return nil, nil, err
	}
	for _, d := range reg.List() {
		logger.Info("Dataset registered",
			zap.String("dataset", d.Name()),
			zap.Int("size", d.Len()),
			zap.Int("dim", d.Dim()),
			zap.Strings("classes", d.Catalog().Labels()),
		)
	}

	cleanup := func() {}

	// Pass nil interfaces (not typed nil pointers) when the cache is off.
	var cache classifyuc.Cache
	var pinger healthuc.CachePinger
	if cfg.Cache.Enabled {
		store, err := newCacheStore(ctx, cfg.Cache)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Connected to result cache",
			zap.String("driver", cfg.Cache.Driver),
			zap.Strings("addrs", cfg.Cache.Addrs),
		)
		cleanup = store.Close
		cache = resultcache.New(store, time.Duration(cfg.Cache.TTLSec)*time.Second, metrics.ResultCacheTotal, logger)
		pinger = store
	}

	classifySvc := classifyuc.New(reg, cache, classifyuc.Limits{
		DefaultK: cfg.Classifier.DefaultK,
		MaxK:     cfg.Classifier.MaxK,
	})
	healthSvc := healthuc.New(reg, pinger)

	server := chiTransport.NewServer(classifySvc, healthSvc, logger)
	router := chiTransport.NewRouter(server, chiTransport.RouterConfig{
		APIKeys: cfg.Auth.APIKeys,
		RPS:     cfg.RateLimit.RPS,
		Burst:   cfg.RateLimit.Burst,
	}, logger)
	return router, cleanup, nil
}

// buildRegistry registers the built-in scenarios and every configured file.
func buildRegistry(cfg config.DatasetsConfig) (*dataset.Registry, error) {
	reg := dataset.NewRegistry()

	var all []dataset.Dataset
	if cfg.Builtin {
		builtin, err := dataset.Builtin()
		if err != nil {
			return nil, fmt.Errorf("builtin datasets: %w", err)
		}
		all = append(all, builtin...)
	}
	files, err := datasetfile.LoadAll(cfg.Files)
	if err != nil {
		return nil, err
	}
	all = append(all, files...)

	for _, d := range all {
		if err := reg.Register(d); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// newCacheStore connects to Redis or Valkey; both speak the same protocol.
func newCacheStore(ctx context.Context, cfg config.CacheConfig) (db.Store, error) {
	switch cfg.Driver {
	case "valkey", "redis":
	default:
		return nil, fmt.Errorf("unknown cache driver %q", cfg.Driver)
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Addrs,
		Password: cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create cache store: %w", err)
	}

	if err := store.WaitForReady(ctx, time.Duration(cfg.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("cache not ready: %w", err)
	}
	return store, nil
}
