// Package postgres persists curation run reports.
package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chemforge/smiclean/internal/application/curation"
	"github.com/chemforge/smiclean/internal/config"
	"github.com/chemforge/smiclean/internal/infrastructure/monitoring/logging"
	"github.com/chemforge/smiclean/pkg/errors"
)

// schema creates the report tables.  Rejections reference their run and keep
// the full criterion/reason detail for later analysis.
const schema = `
CREATE TABLE IF NOT EXISTS curation_runs (
	run_id       UUID PRIMARY KEY,
	source_path  TEXT NOT NULL,
	source_sha   TEXT NOT NULL,
	output_path  TEXT NOT NULL,
	started_at   TIMESTAMPTZ NOT NULL,
	finished_at  TIMESTAMPTZ NOT NULL,
	total        INT NOT NULL,
	accepted     INT NOT NULL,
	rejected     INT NOT NULL,
	duplicates   INT NOT NULL,
	skipped      INT NOT NULL
);
CREATE TABLE IF NOT EXISTS curation_rejections (
	run_id    UUID NOT NULL REFERENCES curation_runs(run_id) ON DELETE CASCADE,
	name      TEXT NOT NULL,
	line      INT NOT NULL,
	smiles    TEXT NOT NULL,
	criterion TEXT NOT NULL,
	reason    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_rejections_run ON curation_rejections(run_id);
CREATE INDEX IF NOT EXISTS idx_rejections_criterion ON curation_rejections(criterion);
`

// Connect opens a pgx connection pool from the database configuration.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	pc, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "invalid database configuration")
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.MinConns > 0 {
		pc.MinConns = int32(cfg.MinConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		pc.MaxConnLifetime = cfg.ConnMaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "cannot create connection pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "database unreachable")
	}
	return pool, nil
}

// ReportStore persists run reports.  Implements curation.ReportSink.
type ReportStore struct {
	pool *pgxpool.Pool
	log  logging.Logger
}

// NewReportStore wraps a connection pool and ensures the schema exists.
func NewReportStore(ctx context.Context, pool *pgxpool.Pool, log logging.Logger) (*ReportStore, error) {
	if log == nil {
		log = logging.NewNopLogger()
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "cannot ensure report schema")
	}
	return &ReportStore{pool: pool, log: log.Named("postgres")}, nil
}

// SaveReport stores the run row and bulk-copies its rejection records in one
// transaction.
func (s *ReportStore) SaveReport(ctx context.Context, report *curation.Report) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "cannot begin transaction")
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO curation_runs
			(run_id, source_path, source_sha, output_path, started_at, finished_at,
			 total, accepted, rejected, duplicates, skipped)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		report.RunID.String(), report.Source.Path, report.Source.SHA256, report.Output,
		report.StartedAt, report.FinishedAt,
		report.Total, report.Accepted, report.Rejected, report.Duplicates, report.Skipped)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "cannot insert run report")
	}

	if len(report.Rejections) > 0 {
		rows := make([][]interface{}, 0, len(report.Rejections))
		for _, rej := range report.Rejections {
			rows = append(rows, []interface{}{
				report.RunID.String(), rej.Name, rej.Line, rej.SMILES, rej.Criterion, rej.Reason,
			})
		}
		_, err = tx.CopyFrom(ctx,
			pgx.Identifier{"curation_rejections"},
			[]string{"run_id", "name", "line", "smiles", "criterion", "reason"},
			pgx.CopyFromRows(rows))
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeDatabaseError, "cannot copy rejection records")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "cannot commit run report")
	}
	s.log.Debug("run report persisted",
		logging.String("run_id", report.RunID.String()),
		logging.Int("rejections", len(report.Rejections)))
	return nil
}
