package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"adforge-server/internal/adapter/repo"
	httpapi "adforge-server/internal/http"
	"adforge-server/internal/http/handlers"
	"adforge-server/internal/infra"
	"adforge-server/internal/infra/credentials"
	"adforge-server/internal/infra/geoip"
	"adforge-server/internal/middleware"
	"adforge-server/internal/postprocess"
	"adforge-server/internal/providers/prompt"
	"adforge-server/internal/providers/setup"
	"adforge-server/internal/service"
	"adforge-server/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer pool.Close()

	runner := infra.NewSQLRunner(pool, logger)
	store := repo.NewStore(runner)
	creds := credentials.NewStore(runner)

	objects, err := newObjectStore(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure object storage")
	}

	registry := setup.NewRegistry(ctx, cfg, creds, logger)
	processor := postprocess.NewProcessor(objects, postprocess.NewFFmpeg(cfg.FFmpegPath), logger)

	generation := service.NewGenerationService(service.GenerationOptions{
		Store:       store,
		Registry:    registry,
		Processor:   processor,
		Enhancer:    prompt.NewStaticEnhancer(),
		WebhookBase: cfg.WebhookBaseURL,
		JobMaxAge:   cfg.JobMaxAge,
		Logger:      logger,
	})
	creditSvc := service.NewCreditService(store, logger)

	app := handlers.NewApp(cfg, logger, store, generation, creditSvc, objects)

	var counter middleware.Counter = middleware.NewMemoryCounter()
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("invalid REDIS_URL")
		}
		counter = middleware.NewRedisCounter(redis.NewClient(redisOpts))
	}

	var lookup middleware.CountryLookup
	if resolver, err := geoip.NewResolver(cfg.GeoIPDBPath); err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	} else if resolver != nil {
		lookup = resolver.CountryCode
	}

	router := httpapi.NewRouter(app, httpapi.RouterOptions{
		JWTSecret:      cfg.JWTSecret,
		RateLimit:      cfg.RateLimitPerMin,
		RateWindow:     time.Minute,
		Counter:        counter,
		CountryLookup:  lookup,
		AllowedOrigins: cfg.AllowedOrigins,
		Logger:         logger,
	})

	server := infra.NewHTTPServer(cfg, router)
	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

func newObjectStore(ctx context.Context, cfg *infra.Config) (storage.ObjectStore, error) {
	if cfg.StorageDriver == "s3" {
		return storage.NewS3Store(ctx, storage.S3Config{
			Endpoint:      cfg.S3Endpoint,
			Region:        cfg.S3Region,
			Bucket:        cfg.S3Bucket,
			AccessKeyID:   cfg.S3AccessKeyID,
			SecretKey:     cfg.S3SecretKey,
			PublicBaseURL: cfg.S3PublicBaseURL,
		})
	}
	path := cfg.StoragePath
	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}
	return storage.NewFileStore(path, cfg.S3PublicBaseURL)
}
