package intake

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/glmoss-collab/PROINSULATIONESTIMATION/internal/pricebook"
	"github.com/glmoss-collab/PROINSULATIONESTIMATION/internal/quote"
)

const ductTakeoff = `{
  "project_name": "Clinic",
  "specifications": [
    {"system_type": "duct", "size_range": "all", "thickness": 1.5, "material": "fiberglass", "facing": "FSK", "location": "indoor"}
  ],
  "measurements": [
    {"item_id": "D-1", "system_type": "duct", "size": "12x18", "length": 100, "fittings": {"elbow": 2}}
  ]
}`

const pipeTakeoffYAML = `specifications:
  - system_type: pipe
    size_range: all
    thickness: "1.0"
    material: elastomeric
measurements:
  - item_id: P-1
    system_type: pipe
    size: 2"
    length: 40
`

type memorySaver struct {
	mu     sync.Mutex
	quotes []quote.Quote
}

func (m *memorySaver) Save(q quote.Quote) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quotes = append(m.quotes, q)
	return nil
}

func (m *memorySaver) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.quotes)
}

func newTestWatcher(t *testing.T, saver Saver) *Watcher {
	t.Helper()
	a := quote.NewAssembler(pricebook.Default(), quote.TimestampNumberer{})
	w := New(t.TempDir(), a, quote.DefaultParams(), saver)
	w.Settle = 20 * time.Millisecond
	return w
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestIsTakeoff(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"job.json", true},
		{"job.YAML", true},
		{"job.yml", true},
		{"job.quote.txt", false},
		{"job.pdf", false},
		{"job", false},
	}
	for _, tt := range tests {
		if got := IsTakeoff(tt.path); got != tt.want {
			t.Errorf("IsTakeoff(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
	if got := ResultPath("/in/job.yaml"); got != "/in/job.quote.txt" {
		t.Errorf("ResultPath = %q", got)
	}
}

func TestProcessWritesReportAndSaves(t *testing.T) {
	saver := &memorySaver{}
	w := newTestWatcher(t, saver)
	path := filepath.Join(w.Dir, "clinic.json")
	writeFile(t, path, ductTakeoff)

	q, err := w.Process(path)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if q.ProjectName != "Clinic" {
		t.Fatalf("ProjectName = %q", q.ProjectName)
	}
	if saver.count() != 1 {
		t.Fatalf("saved %d quotes, want 1", saver.count())
	}
	report, err := os.ReadFile(ResultPath(path))
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(string(report), "HVAC INSULATION QUOTE") || !strings.Contains(string(report), q.QuoteNumber) {
		t.Fatalf("unexpected report:\n%s", report)
	}
}

func TestProcessNamesProjectAfterFile(t *testing.T) {
	w := newTestWatcher(t, nil)
	path := filepath.Join(w.Dir, "boiler-room.yaml")
	writeFile(t, path, pipeTakeoffYAML)

	q, err := w.Process(path)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if q.ProjectName != "boiler-room" {
		t.Fatalf("ProjectName = %q, want boiler-room", q.ProjectName)
	}
	if len(q.Materials) == 0 {
		t.Fatal("expected priced materials")
	}
}

func TestProcessRejectsBadDocument(t *testing.T) {
	w := newTestWatcher(t, nil)
	path := filepath.Join(w.Dir, "broken.json")
	writeFile(t, path, "{not json")

	if _, err := w.Process(path); err == nil {
		t.Fatal("expected decode error")
	}
	if _, err := os.Stat(ResultPath(path)); !os.IsNotExist(err) {
		t.Fatalf("report should not exist, stat err = %v", err)
	}
}

func TestBackfillSkipsQuotedFiles(t *testing.T) {
	saver := &memorySaver{}
	w := newTestWatcher(t, saver)
	writeFile(t, filepath.Join(w.Dir, "a.json"), ductTakeoff)
	writeFile(t, filepath.Join(w.Dir, "b.json"), ductTakeoff)
	writeFile(t, filepath.Join(w.Dir, "b.quote.txt"), "done")
	writeFile(t, filepath.Join(w.Dir, "notes.txt"), "ignore me")

	n, err := w.Backfill()
	if err != nil {
		t.Fatalf("Backfill: %v", err)
	}
	if n != 1 || saver.count() != 1 {
		t.Fatalf("processed %d, saved %d; want 1 and 1", n, saver.count())
	}
}

func TestStartQuotesNewFiles(t *testing.T) {
	saver := &memorySaver{}
	w := newTestWatcher(t, saver)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	path := filepath.Join(w.Dir, "drop.json")
	writeFile(t, path, ductTakeoff)

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(ResultPath(path)); err == nil && saver.count() == 1 {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("no quote written for %s", path)
}
