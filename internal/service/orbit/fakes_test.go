package orbit

import (
	"context"
	"errors"
	"fmt"
	"sync"

	domain "github.com/oshokin/golden-orbit/internal/domain/orbit"
	"github.com/oshokin/golden-orbit/internal/repository/reference"
)

// displayCall is one call received by fakeDisplay.
type displayCall struct {
	op  string
	tag string
	xs  []float64
	ys  []float64
}

type fakeDisplay struct {
	mu    sync.Mutex
	calls []displayCall
}

func (d *fakeDisplay) AddCurve(_ context.Context, tag string) {
	d.record(displayCall{op: "add", tag: tag})
}

func (d *fakeDisplay) RemoveCurve(_ context.Context, tag string) {
	d.record(displayCall{op: "remove", tag: tag})
}

func (d *fakeDisplay) SetData(_ context.Context, tag string, xs, ys []float64) {
	d.record(displayCall{op: "set", tag: tag, xs: xs, ys: ys})
}

func (d *fakeDisplay) record(c displayCall) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.calls = append(d.calls, c)
}

func (d *fakeDisplay) drain() []displayCall {
	d.mu.Lock()
	defer d.mu.Unlock()

	calls := d.calls
	d.calls = nil

	return calls
}

type fakeRecorder struct {
	mu           sync.Mutex
	replacements map[string]int
	failures     map[string]int
	unknown      map[string]int
	entries      int
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{
		replacements: make(map[string]int),
		failures:     make(map[string]int),
		unknown:      make(map[string]int),
	}
}

func (r *fakeRecorder) TableReplaced(source string, entries int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.replacements[source]++
	r.entries = entries
}

func (r *fakeRecorder) TableFailed(source string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.failures[source]++
}

func (r *fakeRecorder) MonitorsUnknown(side string, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.unknown[side] += n
}

// memoryRepository keeps orbit files in memory.
type memoryRepository struct {
	mu      sync.Mutex
	files   map[string]domain.Table
	saveErr error
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		files: make(map[string]domain.Table),
	}
}

func (r *memoryRepository) Load(_ context.Context, path string) (domain.Table, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	table, ok := r.files[path]
	if !ok {
		return nil, fmt.Errorf("%w: %q not found", reference.ErrFileFormat, path)
	}

	return table.Clone(), nil
}

func (r *memoryRepository) Save(_ context.Context, path string, table domain.Table) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.saveErr != nil {
		return "", r.saveErr
	}

	path = reference.WithJSONExtension(path)
	r.files[path] = table.Clone()

	return path, nil
}

var errDiskFull = errors.New("disk full")

// newMonitors builds enabled monitors spaced one meter apart.
func newMonitors(ids ...string) []*domain.Monitor {
	monitors := make([]*domain.Monitor, len(ids))
	for i, id := range ids {
		monitors[i] = &domain.Monitor{ID: id, S: float64(i), Enabled: true}
	}

	return monitors
}

func references(monitors []*domain.Monitor) map[string]domain.Coordinates {
	refs := make(map[string]domain.Coordinates, len(monitors))
	for _, m := range monitors {
		refs[m.ID] = m.Reference()
	}

	return refs
}
