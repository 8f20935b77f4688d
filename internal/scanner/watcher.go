package scanner

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// doneSuffix marks spool files that have already been processed.
const doneSuffix = ".done"

// settleDelay is how long a spool file must go quiet before it is
// read. Producers create a file and then write it, so the first event
// can arrive while the file is still half-written.
const settleDelay = 200 * time.Millisecond

// Processor consumes a batch of scanned codes.
type Processor interface {
	ProcessCodes(ctx context.Context, codes []string)
}

// Watcher monitors a spool directory for dropped scan files. Each file
// holds one code per line; once processed, the file is renamed with a
// .done suffix so it is not picked up again.
type Watcher struct {
	dir  string
	proc Processor
	log  *zap.Logger
}

// NewWatcher creates a watcher over dir, creating it if necessary.
func NewWatcher(dir string, proc Processor, log *zap.Logger) (*Watcher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create spool directory: %w", err)
	}
	return &Watcher{dir: dir, proc: proc, log: log}, nil
}

// Run processes any files already in the spool, then watches for new
// ones until the context is canceled.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.sweep(ctx); err != nil {
		return err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fs watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.log.Info("watching spool directory", zap.String("dir", w.dir))

	// Each event (re)arms a per-file timer; the file is read only once
	// it has gone quiet for settleDelay, so a producer writing in
	// several chunks is seen as one complete file.
	ready := make(chan string)
	pending := make(map[string]*time.Timer)
	defer func() {
		for _, t := range pending {
			t.Stop()
		}
	}()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case path := <-ready:
				delete(pending, path)
				w.processFile(ctx, path)
			case event, ok := <-fw.Events:
				if !ok {
					return nil
				}
				if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
					continue
				}
				if strings.HasSuffix(event.Name, doneSuffix) {
					continue
				}
				if t, ok := pending[event.Name]; ok {
					t.Stop()
				}
				path := event.Name
				pending[path] = time.AfterFunc(settleDelay, func() {
					select {
					case ready <- path:
					case <-ctx.Done():
					}
				})
			case err, ok := <-fw.Errors:
				if !ok {
					return nil
				}
				w.log.Warn("fs watcher error", zap.Error(err))
			}
		}
	})
	return g.Wait()
}

// sweep handles files that were dropped before the watcher started.
func (w *Watcher) sweep(ctx context.Context) error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("read spool directory: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || strings.HasSuffix(e.Name(), doneSuffix) {
			continue
		}
		w.processFile(ctx, filepath.Join(w.dir, e.Name()))
	}
	return nil
}

func (w *Watcher) processFile(ctx context.Context, path string) {
	codes, err := readCodes(path)
	if err != nil {
		w.log.Warn("skipping unreadable spool file",
			zap.String("file", path), zap.Error(err))
		return
	}
	// An empty file is left in place: a producer may still be writing
	// it, and the next event will pick it up again.
	if len(codes) == 0 {
		w.log.Debug("spool file has no codes yet", zap.String("file", path))
		return
	}

	w.log.Info("processing spool file",
		zap.String("file", path), zap.Int("codes", len(codes)))
	w.proc.ProcessCodes(ctx, codes)
	if err := os.Rename(path, path+doneSuffix); err != nil {
		w.log.Warn("could not mark spool file done",
			zap.String("file", path), zap.Error(err))
	}
}

// readCodes reads one code per line, skipping blanks and # comments.
func readCodes(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var codes []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		codes = append(codes, line)
	}
	return codes, sc.Err()
}
