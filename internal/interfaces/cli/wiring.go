package cli

import (
	"context"

	"github.com/chemforge/smiclean/internal/application/curation"
	"github.com/chemforge/smiclean/internal/domain/chem"
	"github.com/chemforge/smiclean/internal/domain/filter"
	"github.com/chemforge/smiclean/internal/infrastructure/cache/redis"
	"github.com/chemforge/smiclean/internal/infrastructure/database/postgres"
	"github.com/chemforge/smiclean/internal/infrastructure/messaging/kafka"
	"github.com/chemforge/smiclean/internal/infrastructure/storage/minio"
	"github.com/chemforge/smiclean/pkg/errors"
)

// buildService assembles the curation service from the loaded configuration.
// Infrastructure adapters are attached only for the sections marked enabled;
// with everything disabled the service runs fully local.  The returned
// cleanup closes whatever connections were opened.
func buildService(ctx context.Context, state *appState, dedup bool) (*curation.Service, func(), error) {
	cfg := state.cfg

	pipeline, err := filter.NewPipeline(cfg.Criteria, chem.NewBuiltinOracle())
	if err != nil {
		return nil, nil, err
	}

	opts := curation.Options{
		Concurrency:   cfg.Worker.Concurrency,
		ProgressEvery: cfg.Worker.ProgressEvery,
	}
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if dedup {
		if cfg.Redis.Enabled {
			client, err := redis.NewClient(ctx, cfg.Redis)
			if err != nil {
				cleanup()
				return nil, nil, err
			}
			closers = append(closers, func() { _ = client.Close() })
			opts.Dedup = redis.NewDeduper(client, cfg.Redis.KeyPrefix, "curation")
		} else {
			opts.Dedup = curation.NewMemoryDeduper()
		}
	}

	if cfg.Database.Enabled {
		pool, err := postgres.Connect(ctx, cfg.Database)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		closers = append(closers, pool.Close)
		store, err := postgres.NewReportStore(ctx, pool, state.log)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		opts.Reports = store
	}

	if cfg.Kafka.Enabled {
		pub := kafka.NewPublisher(cfg.Kafka, state.log)
		closers = append(closers, func() { _ = pub.Close() })
		opts.Events = pub
	}

	if cfg.MinIO.Enabled {
		store, err := minio.NewArtifactStore(ctx, cfg.MinIO, state.log)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		opts.Artifacts = store
	}

	return curation.NewService(pipeline, state.log, opts), cleanup, nil
}

// artifactStore opens the configured object store for explicit uploads.
func artifactStore(ctx context.Context, state *appState) (*minio.ArtifactStore, func(), error) {
	if !state.cfg.MinIO.Enabled {
		return nil, nil, errors.New(errors.ErrCodeValidation, "object storage is not enabled in the configuration")
	}
	store, err := minio.NewArtifactStore(ctx, state.cfg.MinIO, state.log)
	if err != nil {
		return nil, nil, err
	}
	return store, func() {}, nil
}
