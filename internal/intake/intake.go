// Package intake watches a directory for takeoff documents and quotes each
// one as it arrives.
package intake

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/glmoss-collab/PROINSULATIONESTIMATION/internal/quote"
	"github.com/glmoss-collab/PROINSULATIONESTIMATION/internal/takeoff"
)

// ResultSuffix is appended to a takeoff's base name for its quote report.
const ResultSuffix = ".quote.txt"

// DefaultSettle is how long a file must stay quiet before it is read.
const DefaultSettle = 300 * time.Millisecond

// Saver persists finished quotes.
type Saver interface {
	Save(q quote.Quote) error
}

// Watcher quotes takeoff files dropped into Dir.
type Watcher struct {
	Dir       string
	Assembler *quote.Assembler
	Params    quote.Params
	// Saver is optional; nil only writes the report file.
	Saver  Saver
	Settle time.Duration

	mu      sync.Mutex
	pending map[string]*time.Timer
}

func New(dir string, a *quote.Assembler, p quote.Params, saver Saver) *Watcher {
	return &Watcher{Dir: dir, Assembler: a, Params: p, Saver: saver, Settle: DefaultSettle}
}

// IsTakeoff reports whether path names a takeoff document.
func IsTakeoff(path string) bool {
	if strings.HasSuffix(path, ResultSuffix) {
		return false
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

// ResultPath is the report written for a takeoff file.
func ResultPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ResultSuffix
}

// Start watches Dir until ctx is done. Files are processed once they have
// been quiet for Settle.
func (w *Watcher) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(w.Dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", w.Dir, err)
	}
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				w.stopPending()
				return
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if evt.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 && IsTakeoff(evt.Name) {
					w.schedule(evt.Name)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("intake: watcher error: %v", err)
			}
		}
	}()
	return nil
}

func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending == nil {
		w.pending = make(map[string]*time.Timer)
	}
	if t, ok := w.pending[path]; ok {
		t.Reset(w.Settle)
		return
	}
	w.pending[path] = time.AfterFunc(w.Settle, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		if _, err := os.Stat(path); err != nil {
			return
		}
		if _, err := w.Process(path); err != nil {
			log.Printf("intake: %s: %v", filepath.Base(path), err)
		}
	})
}

func (w *Watcher) stopPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
}

// Backfill processes takeoff files already in Dir that have no report yet.
func (w *Watcher) Backfill() (int, error) {
	entries, err := os.ReadDir(w.Dir)
	if err != nil {
		return 0, fmt.Errorf("read intake dir: %w", err)
	}
	n := 0
	for _, e := range entries {
		path := filepath.Join(w.Dir, e.Name())
		if e.IsDir() || !IsTakeoff(path) {
			continue
		}
		if _, err := os.Stat(ResultPath(path)); err == nil {
			continue
		}
		if _, err := w.Process(path); err != nil {
			log.Printf("intake: %s: %v", e.Name(), err)
			continue
		}
		n++
	}
	return n, nil
}

// Process quotes one takeoff file, stores the quote and writes the report
// next to the source.
func (w *Watcher) Process(path string) (quote.Quote, error) {
	doc, err := takeoff.LoadFile(path)
	if err != nil {
		return quote.Quote{}, err
	}
	p := w.Params
	if p.ProjectName == "" {
		p.ProjectName = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	q, err := w.Assembler.AssembleDocument(p, doc)
	if err != nil {
		return quote.Quote{}, fmt.Errorf("assemble quote: %w", err)
	}
	if w.Saver != nil {
		if err := w.Saver.Save(q); err != nil {
			return quote.Quote{}, fmt.Errorf("store quote: %w", err)
		}
	}
	if err := os.WriteFile(ResultPath(path), []byte(quote.Text(q)), 0o644); err != nil {
		return quote.Quote{}, fmt.Errorf("write quote report: %w", err)
	}
	log.Printf("intake: quoted %s as %s", filepath.Base(path), q.QuoteNumber)
	return q, nil
}
