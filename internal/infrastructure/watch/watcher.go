// Package watch turns a drop directory into a stream of curation jobs: every
// SMILES file created or moved into the directory is handed to the worker
// once its writer has settled.
package watch

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/chemforge/smiclean/internal/infrastructure/monitoring/logging"
	"github.com/chemforge/smiclean/pkg/errors"
)

// settleDelay is how long a file must stay quiet after its last write event
// before it is considered complete.  Copies into the drop directory arrive
// as a Create followed by a burst of Writes.
const settleDelay = 2 * time.Second

// Handler processes one dropped file.
type Handler func(ctx context.Context, path string)

// Watcher monitors a drop directory for new .smi and .txt files.
type Watcher struct {
	dir     string
	handler Handler
	log     logging.Logger
	settle  time.Duration

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// New builds a watcher over dir.
func New(dir string, handler Handler, log logging.Logger) *Watcher {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Watcher{
		dir:     dir,
		handler: handler,
		log:     log.Named("watch"),
		settle:  settleDelay,
		pending: make(map[string]*time.Timer),
	}
}

// Run watches until the context is cancelled.  Watch errors are logged and
// the loop continues; only watcher construction fails hard.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "cannot create filesystem watcher")
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "cannot watch drop directory")
	}
	w.log.Info("watching drop directory", logging.String("dir", w.dir))

	for {
		select {
		case <-ctx.Done():
			w.cancelPending()
			return ctx.Err()

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			w.schedule(ctx, ev.Name)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", logging.Err(err))
		}
	}
}

// relevant filters for dataset files being created or written.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		return false
	}
	switch strings.ToLower(filepath.Ext(ev.Name)) {
	case ".smi", ".txt":
		return true
	}
	return false
}

// schedule arms (or re-arms) the settle timer for the file.  The handler
// fires only after the file has been quiet for settleDelay.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.pending[path]; ok {
		timer.Reset(w.settle)
		return
	}
	w.pending[path] = time.AfterFunc(w.settle, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		w.log.Info("dataset dropped", logging.String("path", path))
		w.handler(ctx, path)
	})
}

func (w *Watcher) cancelPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, timer := range w.pending {
		timer.Stop()
		delete(w.pending, path)
	}
}
