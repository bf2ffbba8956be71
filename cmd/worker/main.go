package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"adforge-server/internal/adapter/repo"
	"adforge-server/internal/infra"
	"adforge-server/internal/infra/credentials"
	"adforge-server/internal/postprocess"
	"adforge-server/internal/providers/setup"
	"adforge-server/internal/service"
	"adforge-server/internal/storage"
)

const (
	resolveBatchSize = 20
	sweepBatchSize   = 50
	sweepEvery       = 10 * time.Minute
)

// resolver drives the poll side of status resolution: it walks non-terminal
// jobs with a vendor task and asks the vendor where they stand. Webhooks
// handle the push side; this loop is the safety net behind them.
type resolver struct {
	generation *service.GenerationService
	logger     infra.Logger
	interval   time.Duration
	store      *repo.Store
}

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
		logger.Fatal().Err(err).Msg("worker: db connection failed")
	}
	defer pool.Close()

	runner := infra.NewSQLRunner(pool, logger)
	store := repo.NewStore(runner)
	creds := credentials.NewStore(runner)

	objects, err := newObjectStore(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to configure storage")
	}

	registry := setup.NewRegistry(ctx, cfg, creds, logger)
	processor := postprocess.NewProcessor(objects, postprocess.NewFFmpeg(cfg.FFmpegPath), logger)

	generation := service.NewGenerationService(service.GenerationOptions{
		Store:       store,
		Registry:    registry,
		Processor:   processor,
		WebhookBase: cfg.WebhookBaseURL,
		JobMaxAge:   cfg.JobMaxAge,
		Logger:      logger,
	})

	r := &resolver{
		generation: generation,
		logger:     logger,
		interval:   cfg.WorkerPollInterval,
		store:      store,
	}
	if err := r.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("worker: stopped with error")
	}
	logger.Info().Msg("worker: stopped")
}

func (r *resolver) Run(ctx context.Context) error {
	r.logger.Info().Msg("worker: started")
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	sweep := time.NewTicker(sweepEvery)
	defer sweep.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-sweep.C:
			swept, err := r.generation.SweepStale(ctx, sweepBatchSize)
			if err != nil {
				r.logger.Error().Err(err).Msg("worker: stale sweep failed")
				continue
			}
			if swept > 0 {
				r.logger.Info().Int("count", swept).Msg("worker: swept stale jobs")
			}
		case <-ticker.C:
			r.resolveBatch(ctx)
		}
	}
}

func (r *resolver) resolveBatch(ctx context.Context) {
	jobs, err := r.store.Jobs().ListResolvable(ctx, resolveBatchSize)
	if err != nil {
		r.logger.Error().Err(err).Msg("worker: list resolvable failed")
		return
	}
	for i := range jobs {
		if ctx.Err() != nil {
			return
		}
		job := &jobs[i]
		if err := r.generation.Resolve(ctx, job.ID); err != nil {
			r.logger.Warn().Str("job_id", job.ID).Str("provider", string(job.Provider)).Err(err).Msg("worker: resolve failed")
		}
	}
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
