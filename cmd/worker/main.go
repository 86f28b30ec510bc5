// The worker curates every SMILES dataset dropped into the watch directory.
// Each settled file is filtered into the output directory, its vocabulary is
// built and validated against the curated stream, and the artifacts are
// persisted through whichever adapters the configuration enables.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/chemforge/smiclean/internal/application/curation"
	"github.com/chemforge/smiclean/internal/config"
	"github.com/chemforge/smiclean/internal/domain/chem"
	"github.com/chemforge/smiclean/internal/domain/filter"
	"github.com/chemforge/smiclean/internal/infrastructure/cache/redis"
	"github.com/chemforge/smiclean/internal/infrastructure/database/postgres"
	"github.com/chemforge/smiclean/internal/infrastructure/messaging/kafka"
	"github.com/chemforge/smiclean/internal/infrastructure/monitoring/logging"
	"github.com/chemforge/smiclean/internal/infrastructure/monitoring/metrics"
	"github.com/chemforge/smiclean/internal/infrastructure/storage/minio"
	"github.com/chemforge/smiclean/internal/infrastructure/watch"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file (default: environment only)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "worker: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.Load(configPath)
	} else {
		cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		return err
	}
	if cfg.Worker.WatchDir == "" {
		return fmt.Errorf("worker.watch_dir must be configured")
	}
	if cfg.Worker.OutputDir == "" {
		return fmt.Errorf("worker.output_dir must be configured")
	}

	logCfg := logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format}
	if cfg.Log.Output != "" {
		logCfg.OutputPaths = []string{cfg.Log.Output}
	}
	log, err := logging.NewLogger(logCfg)
	if err != nil {
		return err
	}
	logging.SetDefault(log)
	log = log.Named("worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(cfg.Worker.OutputDir, 0o755); err != nil {
		return fmt.Errorf("cannot create output directory: %w", err)
	}

	m := metrics.New()
	svc, cleanup, err := buildService(ctx, cfg, log, m)
	if err != nil {
		return err
	}
	defer cleanup()

	// Metrics endpoint.
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	srv := &http.Server{Addr: cfg.Worker.MetricsAddr, Handler: mux}
	go func() {
		log.Info("metrics listening", logging.String("addr", cfg.Worker.MetricsAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("metrics server failed", logging.Err(err))
		}
	}()

	handler := func(ctx context.Context, path string) {
		if err := curate(ctx, svc, cfg, path); err != nil {
			log.Error("dataset curation failed",
				logging.String("path", path), logging.Err(err))
		}
	}

	watcher := watch.New(cfg.Worker.WatchDir, handler, log)
	err = watcher.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Worker.ShutdownTimeout)
	defer cancel()
	if serr := srv.Shutdown(shutdownCtx); serr != nil {
		log.Warn("metrics server shutdown failed", logging.Err(serr))
	}

	if err == context.Canceled {
		log.Info("worker stopped")
		return nil
	}
	return err
}

// curate runs the full workflow for one dropped dataset: filter, build the
// vocabulary from the curated output, then validate the stream against it.
func curate(ctx context.Context, svc *curation.Service, cfg *config.Config, inputPath string) error {
	stem := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	curated := filepath.Join(cfg.Worker.OutputDir, stem+".curated.smi")
	vocabPath := filepath.Join(cfg.Worker.OutputDir, stem+".vocab.json")

	if _, err := svc.Run(ctx, inputPath, curated); err != nil {
		return err
	}

	voc, err := svc.BuildVocabulary(ctx, curated)
	if err != nil {
		return err
	}
	if err := voc.Save(vocabPath); err != nil {
		return err
	}
	return svc.Validate(ctx, curated, vocabPath)
}

// buildService assembles the curation service with every enabled adapter.
func buildService(ctx context.Context, cfg *config.Config, log logging.Logger, m *metrics.Metrics) (*curation.Service, func(), error) {
	pipeline, err := filter.NewPipeline(cfg.Criteria, chem.NewBuiltinOracle())
	if err != nil {
		return nil, nil, err
	}

	opts := curation.Options{
		Concurrency:   cfg.Worker.Concurrency,
		ProgressEvery: cfg.Worker.ProgressEvery,
		Metrics:       m,
	}
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.Redis.Enabled {
		client, err := redis.NewClient(ctx, cfg.Redis)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		closers = append(closers, func() { _ = client.Close() })
		opts.Dedup = redis.NewDeduper(client, cfg.Redis.KeyPrefix, "worker")
	} else {
		opts.Dedup = curation.NewMemoryDeduper()
	}

	if cfg.Database.Enabled {
		pool, err := postgres.Connect(ctx, cfg.Database)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		closers = append(closers, pool.Close)
		store, err := postgres.NewReportStore(ctx, pool, log)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		opts.Reports = store
	}

	if cfg.Kafka.Enabled {
		pub := kafka.NewPublisher(cfg.Kafka, log)
		closers = append(closers, func() { _ = pub.Close() })
		opts.Events = pub
	}

	if cfg.MinIO.Enabled {
		store, err := minio.NewArtifactStore(ctx, cfg.MinIO, log)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		opts.Artifacts = store
	}

	return curation.NewService(pipeline, log, opts), cleanup, nil
}
