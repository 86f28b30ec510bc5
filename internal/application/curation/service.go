package curation

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/chemforge/smiclean/internal/domain/filter"
	"github.com/chemforge/smiclean/internal/domain/token"
	"github.com/chemforge/smiclean/internal/infrastructure/monitoring/logging"
	"github.com/chemforge/smiclean/pkg/errors"
	"github.com/chemforge/smiclean/pkg/types/common"
)

// batchSize bounds how many molecules are in flight per worker-pool round.
const batchSize = 4096

// maxLineBytes is the scanner limit; SMILES lines are short but macrocycle
// datasets occasionally carry very long records.
const maxLineBytes = 1 << 20

// Metrics receives per-molecule pipeline observations.  The prometheus
// adapter implements it; a nil Metrics disables instrumentation.
type Metrics interface {
	MoleculeAccepted()
	MoleculeRejected(criterion string)
	RunCompleted(accepted, rejected int, elapsed time.Duration)
}

// Options wires the optional infrastructure adapters into the service.  Any
// field may be nil; the service degrades to a pure local run.
type Options struct {
	Concurrency   int
	ProgressEvery int

	Reports   ReportSink
	Events    EventPublisher
	Artifacts ArtifactStore
	Dedup     Deduper
	Metrics   Metrics
}

// Service runs the curation workflow.  Molecules are evaluated concurrently
// but results are committed in input order, so the curated output and the
// rejection report are reproducible for a given input and configuration.
type Service struct {
	pipeline *filter.Pipeline
	log      logging.Logger
	opts     Options
}

// NewService builds a curation service around a validated pipeline.
func NewService(p *filter.Pipeline, log logging.Logger, opts Options) *Service {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Service{pipeline: p, log: log.Named("curation"), opts: opts}
}

// parseLine splits one input line into a molecule input.  Format: SMILES
// optionally followed by whitespace and a name.  Nameless molecules get a
// synthetic name from the line number.  Blank lines and #-comments are
// skipped.
func parseLine(line string, lineNo int) (filter.Input, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return filter.Input{}, false
	}
	fields := strings.Fields(trimmed)
	in := filter.Input{SMILES: fields[0], Line: lineNo}
	if len(fields) > 1 {
		in.Name = fields[1]
	} else {
		in.Name = fmt.Sprintf("mol_%d", lineNo)
	}
	return in, true
}

// Run curates the SMILES file at inputPath into outputPath and returns the
// run report.  The input's SourceRef is computed before reading so the
// report pins the exact bytes that were curated.  Fatal faults (tokenizer
// misalignment, I/O) abort the run; per-molecule failures are recorded and
// the run continues.
func (s *Service) Run(ctx context.Context, inputPath, outputPath string) (*Report, error) {
	source, err := common.NewSourceRef(inputPath)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "cannot resolve input source")
	}
	report := newReport(source, outputPath)

	s.log.Info("curation run starting",
		logging.String("run_id", report.RunID.String()),
		logging.String("source", source.String()),
		logging.Int("concurrency", s.opts.Concurrency))
	s.publish(ctx, Event{Type: EventRunStarted, RunID: report.RunID, Source: source})

	if err := s.runFiltering(ctx, inputPath, outputPath, report); err != nil {
		s.publish(ctx, Event{Type: EventRunFailed, RunID: report.RunID, Source: source, Error: err.Error()})
		return report, err
	}

	report.FinishedAt = time.Now().UTC()
	if s.opts.Metrics != nil {
		s.opts.Metrics.RunCompleted(report.Accepted, report.Rejected, report.Duration())
	}
	if s.opts.Reports != nil {
		if err := s.opts.Reports.SaveReport(ctx, report); err != nil {
			s.log.Warn("failed to persist run report", logging.Err(err))
		}
	}
	if s.opts.Artifacts != nil {
		object := fmt.Sprintf("runs/%s/curated.smi", report.RunID)
		if err := s.opts.Artifacts.Upload(ctx, outputPath, object); err != nil {
			s.log.Warn("failed to upload curated dataset", logging.Err(err))
		}
	}
	s.publish(ctx, Event{
		Type: EventRunCompleted, RunID: report.RunID, Source: source,
		Accepted: report.Accepted, Rejected: report.Rejected,
	})

	s.log.Info("curation run finished",
		logging.String("run_id", report.RunID.String()),
		logging.Int("total", report.Total),
		logging.Int("accepted", report.Accepted),
		logging.Int("rejected", report.Rejected),
		logging.Int("duplicates", report.Duplicates),
		logging.Duration("elapsed", report.Duration()))
	return report, nil
}

func (s *Service) runFiltering(ctx context.Context, inputPath, outputPath string, report *Report) error {
	in, err := os.Open(inputPath)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "cannot open input")
	}
	defer in.Close()

	out, err := os.Create(outputPath)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "cannot create output")
	}
	defer out.Close()
	w := bufio.NewWriter(out)

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	batch := make([]filter.Input, 0, batchSize)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		input, ok := parseLine(scanner.Text(), lineNo)
		if !ok {
			report.Skipped++
			continue
		}
		batch = append(batch, input)
		if len(batch) == batchSize {
			if err := s.processBatch(ctx, batch, w, report); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "input read failed")
	}
	if len(batch) > 0 {
		if err := s.processBatch(ctx, batch, w, report); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "output write failed")
	}
	return nil
}

// processBatch evaluates one batch concurrently, then commits results in
// input order.
func (s *Service) processBatch(ctx context.Context, batch []filter.Input, w *bufio.Writer, report *Report) error {
	results := make([]*filter.Result, len(batch))

	p := pool.New().
		WithMaxGoroutines(s.opts.Concurrency).
		WithContext(ctx).
		WithCancelOnError().
		WithFirstError()
	for i := range batch {
		i := i
		p.Go(func(context.Context) error {
			res, err := s.pipeline.Process(batch[i])
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return err
	}

	for _, res := range results {
		report.Total++
		if res.Accepted() {
			if err := s.commitRecord(ctx, res.Record, w, report); err != nil {
				return err
			}
		} else {
			report.addRejection(*res.Rejection, s.pipeline.Criteria().ReportErrors)
			if s.opts.Metrics != nil {
				s.opts.Metrics.MoleculeRejected(res.Rejection.Criterion)
			}
			s.log.Debug("molecule rejected",
				logging.String("name", res.Rejection.Name),
				logging.String("criterion", res.Rejection.Criterion),
				logging.String("reason", res.Rejection.Reason))
		}
		if s.opts.ProgressEvery > 0 && report.Total%s.opts.ProgressEvery == 0 {
			s.log.Info("progress",
				logging.Int("processed", report.Total),
				logging.Int("accepted", report.Accepted),
				logging.Int("rejected", report.Rejected))
		}
	}
	return nil
}

func (s *Service) commitRecord(ctx context.Context, rec *filter.Record, w *bufio.Writer, report *Report) error {
	if s.opts.Dedup != nil {
		fresh, err := s.opts.Dedup.Mark(ctx, rec.SMILES)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeCacheError, "dedup check failed")
		}
		if !fresh {
			report.Duplicates++
			return nil
		}
	}
	if _, err := fmt.Fprintf(w, "%s\t%s\n", rec.SMILES, rec.Name); err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "output write failed")
	}
	report.Accepted++
	if s.opts.Metrics != nil {
		s.opts.Metrics.MoleculeAccepted()
	}
	return nil
}

// publish emits a lifecycle event, logging and swallowing failures.
func (s *Service) publish(ctx context.Context, ev Event) {
	if s.opts.Events == nil {
		return
	}
	if err := s.opts.Events.Publish(ctx, ev); err != nil {
		s.log.Warn("event publish failed", logging.String("type", ev.Type), logging.Err(err))
	}
}

// BuildVocabulary tokenizes every molecule in the curated file and returns
// the vocabulary stamped with the file's SourceRef.  The curated stream is
// consumed as-is: no criterion is re-evaluated here, so the vocabulary is
// exactly the token universe of the dataset it will be checked against.
func (s *Service) BuildVocabulary(ctx context.Context, curatedPath string) (*token.Vocabulary, error) {
	source, err := common.NewSourceRef(curatedPath)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "cannot resolve curated source")
	}

	f, err := os.Open(curatedPath)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "cannot open curated file")
	}
	defer f.Close()

	builder := token.NewBuilder(source)
	tk := s.pipeline.Tokenizer()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		input, ok := parseLine(scanner.Text(), lineNo)
		if !ok {
			continue
		}
		tokens, err := tk.Tokenize(input.SMILES)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeTokenUnrecognized,
				fmt.Sprintf("line %d (%s)", lineNo, input.Name))
		}
		builder.Add(tokens)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "curated read failed")
	}

	voc := builder.Build()
	s.log.Info("vocabulary built",
		logging.String("source", source.String()),
		logging.Int("tokens", voc.Len()),
		logging.Int("max_ring", voc.MaxRingClosure()))
	return voc, nil
}

// Validate runs the consistency guard: the curated file at curatedPath must
// be the exact stream the vocabulary at vocabPath was built from, and every
// token in it must be covered.  Any violation is fatal and reported before
// a downstream stage consumes anything.
func (s *Service) Validate(ctx context.Context, curatedPath, vocabPath string) error {
	voc, err := token.LoadVocabulary(vocabPath)
	if err != nil {
		return err
	}
	guard := token.NewGuard(voc)

	source, err := common.NewSourceRef(curatedPath)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "cannot resolve stream source")
	}
	// Identity first: a rewritten or mis-wired stream fails before any
	// tokenization work happens.
	if err := guard.CheckSource(source); err != nil {
		return err
	}

	f, err := os.Open(curatedPath)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "cannot open stream")
	}
	defer f.Close()

	tk := s.pipeline.Tokenizer()
	var sequences [][]string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		input, ok := parseLine(scanner.Text(), lineNo)
		if !ok {
			continue
		}
		tokens, err := tk.Tokenize(input.SMILES)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeTokenUnrecognized,
				fmt.Sprintf("line %d (%s)", lineNo, input.Name))
		}
		sequences = append(sequences, tokens)
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "stream read failed")
	}

	if err := guard.Check(source, sequences); err != nil {
		return err
	}
	s.log.Info("stream validated against vocabulary",
		logging.String("source", source.String()),
		logging.Int("molecules", len(sequences)),
		logging.Int("tokens", voc.Len()))
	return nil
}

// MemoryDeduper is the in-process Deduper used when no shared cache is
// configured.  Safe for concurrent use.
type MemoryDeduper struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewMemoryDeduper returns an empty in-memory deduper.
func NewMemoryDeduper() *MemoryDeduper {
	return &MemoryDeduper{seen: make(map[string]struct{})}
}

// Mark records the key and reports whether it was new.
func (d *MemoryDeduper) Mark(_ context.Context, smiles string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.seen[smiles]; ok {
		return false, nil
	}
	d.seen[smiles] = struct{}{}
	return true, nil
}
