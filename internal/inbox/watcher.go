// Package inbox processes report files dropped into a directory.
package inbox

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jvs-project/reportstore/internal/report"
	"github.com/jvs-project/reportstore/pkg/logging"
	"github.com/jvs-project/reportstore/pkg/model"
)

// RejectedSuffix is appended to inbox files that could not be stored.
const RejectedSuffix = ".rejected"

// DefaultDebounce is how long a file must stay quiet before it is picked up.
const DefaultDebounce = 500 * time.Millisecond

// Processor stores a decoded report and reports write failures.
// *report.Store implements it.
type Processor interface {
	Write(r *model.Report) (string, error)
}

// Watcher feeds report files from Dir into a Processor.
type Watcher struct {
	Dir       string
	Processor Processor
	Log       *logging.Logger
	Debounce  time.Duration
}

// New creates a watcher with the default debounce.
func New(dir string, p Processor, log *logging.Logger) *Watcher {
	return &Watcher{Dir: dir, Processor: p, Log: log, Debounce: DefaultDebounce}
}

func (w *Watcher) log() *logging.Logger {
	if w.Log != nil {
		return w.Log
	}
	return logging.Global()
}

// IsCandidate reports whether name looks like a report file. Hidden files
// (temporary uploads) and rejected files are ignored.
func IsCandidate(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, RejectedSuffix) {
		return false
	}
	switch strings.ToLower(filepath.Ext(base)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

// Drain handles every candidate already present in Dir, oldest name first.
// It returns the number of reports stored.
func (w *Watcher) Drain() (int, error) {
	entries, err := os.ReadDir(w.Dir)
	if err != nil {
		return 0, fmt.Errorf("read inbox %s: %w", w.Dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() && IsCandidate(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	stored := 0
	for _, name := range names {
		if ok, _ := w.HandleFile(filepath.Join(w.Dir, name)); ok {
			stored++
		}
	}
	return stored, nil
}

// HandleFile decodes path, hands the report to the processor and removes the
// file once the report is on disk. A file that cannot be decoded, names an
// invalid host or could not be written is renamed with RejectedSuffix. A file
// that is already gone is skipped silently.
func (w *Watcher) HandleFile(path string) (bool, error) {
	r, err := report.DecodeFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		w.reject(path, err)
		return false, err
	}

	written, err := w.Processor.Write(r)
	if err != nil {
		w.reject(path, err)
		return false, err
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		w.log().Warn("Could not remove processed inbox file", map[string]any{
			"path":  path,
			"error": err.Error(),
		})
	}
	w.log().Info("Stored report", map[string]any{
		"host":   r.Host,
		"source": path,
		"path":   written,
	})
	return true, nil
}

func (w *Watcher) reject(path string, cause error) {
	target := path + RejectedSuffix
	fields := map[string]any{"path": path}
	if err := os.Rename(path, target); err != nil {
		fields["rename_error"] = err.Error()
	} else {
		fields["rejected"] = target
	}
	w.log().ErrorErr("Rejected inbox file", cause, fields)
}

// Run drains Dir and then processes files as they appear until ctx is
// cancelled. Events for the same file are coalesced until the file has been
// quiet for Debounce.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.Dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.Dir, err)
	}

	if _, err := w.Drain(); err != nil {
		return err
	}

	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	tick := time.NewTicker(debounce / 2)
	defer tick.Stop()

	pending := make(map[string]time.Time)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !IsCandidate(event.Name) {
				continue
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) {
				pending[event.Name] = time.Now()
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.log().ErrorErr("Watch error", err, map[string]any{"path": w.Dir})

		case now := <-tick.C:
			for _, name := range due(pending, now, debounce) {
				delete(pending, name)
				w.HandleFile(name)
			}
		}
	}
}

// due returns the pending names that have been quiet for at least d, sorted.
func due(pending map[string]time.Time, now time.Time, d time.Duration) []string {
	var names []string
	for name, seen := range pending {
		if now.Sub(seen) >= d {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
