package curation

import (
	"context"

	"github.com/chemforge/smiclean/pkg/types/common"
)

// ReportSink persists run reports and their rejection records.  The postgres
// adapter implements it; runs proceed without one.
type ReportSink interface {
	SaveReport(ctx context.Context, report *Report) error
}

// Event is a run lifecycle notification published to the message broker.
type Event struct {
	Type     string           `json:"type"` // "run.started" | "run.completed" | "run.failed"
	RunID    common.ID        `json:"run_id"`
	Source   common.SourceRef `json:"source"`
	Accepted int              `json:"accepted,omitempty"`
	Rejected int              `json:"rejected,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// Event types.
const (
	EventRunStarted   = "run.started"
	EventRunCompleted = "run.completed"
	EventRunFailed    = "run.failed"
)

// EventPublisher emits run lifecycle events.  The kafka adapter implements
// it; publish failures are logged, never fatal to the run.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// ArtifactStore uploads run artifacts (curated dataset, vocabulary) to
// object storage.  The minio adapter implements it.
type ArtifactStore interface {
	Upload(ctx context.Context, localPath, objectName string) error
}

// Deduper tracks SMILES already admitted in this or previous runs so the
// curated stream never carries duplicates.  Mark returns true when the key
// was new.  The redis adapter implements it; an in-memory implementation
// serves single-process runs.
type Deduper interface {
	Mark(ctx context.Context, smiles string) (bool, error)
}
