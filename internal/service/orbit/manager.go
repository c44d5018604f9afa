package orbit

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/oshokin/golden-orbit/internal/display"
	domain "github.com/oshokin/golden-orbit/internal/domain/orbit"
	"github.com/oshokin/golden-orbit/internal/logger"
	"github.com/oshokin/golden-orbit/internal/provider"
	"github.com/oshokin/golden-orbit/internal/repository/reference"
)

// Source names the origin of a table replacement.
type Source string

// Table sources.
const (
	// SourceReference is the live reference reading.
	SourceReference Source = "reference"
	// SourceGold is the live golden reading.
	SourceGold Source = "gold"
	// SourceCurrent is the current reading of every monitor.
	SourceCurrent Source = "current"
	// SourceZero resets every monitor to (0, 0).
	SourceZero Source = "zero"
	// SourceFile is an orbit file.
	SourceFile Source = "file"
	// SourceUpdate is a partial update merged into the table.
	SourceUpdate Source = "update"
)

// ErrUnknownSource is returned by Capture for a source that cannot be captured.
var ErrUnknownSource = errors.New("unknown capture source")

// Display receives the reference overlay.
type Display interface {
	AddCurve(ctx context.Context, tag string)
	RemoveCurve(ctx context.Context, tag string)
	SetData(ctx context.Context, tag string, xs, ys []float64)
}

// Collection is the monitor collection. The manager reads current readings
// from it and writes references only. beamline.Collection implements it.
type Collection interface {
	// Snapshot returns copies of the monitors in collection order.
	Snapshot() []*domain.Monitor
	// SetReferences writes the references of the monitors named in refs.
	SetReferences(refs domain.Table)
}

// UpdateResult describes one merge into the table.
type UpdateResult struct {
	// Updated lists the identifiers whose entries were overwritten, sorted.
	Updated []string
	// Ignored lists the identifiers missing from the table or carrying
	// non-finite coordinates, sorted.
	Ignored []string
	// Table is the table right after the merge.
	Table domain.Table
}

// Recorder observes table changes. observability.Collector implements it.
type Recorder interface {
	TableReplaced(source string, entries int)
	TableFailed(source string)
	MonitorsUnknown(side string, n int)
}

// Options configures a Manager. Zero values select harmless defaults.
type Options struct {
	// Provider serves live reference and gold readings. Without one, those
	// captures fail with provider.ErrSourceUnavailable.
	Provider provider.Provider
	// Repository reads and writes orbit files.
	Repository reference.Repository
	// Display receives the reference overlay.
	Display Display
	// Recorder observes table changes.
	Recorder Recorder
	// Offset is added to monitor positions on the display.
	Offset float64
}

// Manager is the reference orbit manager of one monitor collection.
type Manager struct {
	collection Collection
	// known holds the identifiers of the collection.
	known map[string]struct{}

	provider provider.Provider
	repo     reference.Repository
	display  Display
	recorder Recorder
	offset   float64

	store *Store

	// mu serialises table mutation, propagation and display changes.
	mu    sync.Mutex
	state DisplayState
}

// NewManager creates a manager over collection with an empty table.
// The set of monitors in collection must not change afterwards.
func NewManager(collection Collection, opts Options) *Manager {
	monitors := collection.Snapshot()

	m := &Manager{
		collection: collection,
		known:      make(map[string]struct{}, len(monitors)),
		provider:   opts.Provider,
		repo:       opts.Repository,
		display:    opts.Display,
		recorder:   opts.Recorder,
		offset:     opts.Offset,
		store:      NewStore(),
		state:      Hidden,
	}

	for _, monitor := range monitors {
		m.known[monitor.ID] = struct{}{}
	}

	if m.provider == nil {
		m.provider = provider.None{}
	}

	if m.repo == nil {
		m.repo = reference.NewFileRepository("")
	}

	if m.display == nil {
		m.display = display.Nop{}
	}

	if m.recorder == nil {
		m.recorder = nopRecorder{}
	}

	return m
}

// Reference returns a snapshot of the reference table.
func (m *Manager) Reference() domain.Table {
	return m.store.Export()
}

// Monitors returns copies of the monitors in collection order.
func (m *Manager) Monitors() []*domain.Monitor {
	return m.collection.Snapshot()
}

// Capture dispatches to the capture operation of source.
func (m *Manager) Capture(ctx context.Context, source Source) (domain.Table, error) {
	switch source {
	case SourceReference:
		return m.CaptureReference(ctx)
	case SourceGold:
		return m.CaptureGold(ctx)
	case SourceCurrent:
		return m.CaptureCurrent(ctx), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, source)
	}
}

// CaptureReference replaces the table with the valid live reference readings.
func (m *Manager) CaptureReference(ctx context.Context) (domain.Table, error) {
	return m.captureLive(ctx, SourceReference, m.provider.ReadReference)
}

// CaptureGold replaces the table with the valid live golden readings.
func (m *Manager) CaptureGold(ctx context.Context) (domain.Table, error) {
	return m.captureLive(ctx, SourceGold, m.provider.ReadGold)
}

// CaptureCurrent makes the current reading of every measured monitor its
// reference. Unmeasured monitors get no entry. It never fails: readings are
// refreshed by the owner of the collection, not here.
func (m *Manager) CaptureCurrent(ctx context.Context) domain.Table {
	m.mu.Lock()
	defer m.mu.Unlock()

	monitors := m.collection.Snapshot()
	b := domain.NewBuilder(len(monitors))

	for _, monitor := range monitors {
		if monitor.Measured {
			b.Set(monitor.ID, domain.Coordinates{X: monitor.X, Y: monitor.Y})
		}
	}

	warnNonFinite(ctx, SourceCurrent, b.NonFinite())

	return m.replaceLocked(ctx, SourceCurrent, b.Table())
}

// Zero sets the reference of every monitor to (0, 0).
func (m *Manager) Zero(ctx context.Context) domain.Table {
	m.mu.Lock()
	defer m.mu.Unlock()

	monitors := m.collection.Snapshot()

	b := domain.NewBuilder(len(monitors))
	for _, monitor := range monitors {
		b.Set(monitor.ID, domain.Zero)
	}

	return m.replaceLocked(ctx, SourceZero, b.Table())
}

// LoadFile replaces the table with the contents of an orbit file. On failure
// the table is untouched and the error wraps reference.ErrFileFormat.
func (m *Manager) LoadFile(ctx context.Context, path string) (domain.Table, error) {
	table, err := m.repo.Load(ctx, path)
	if err != nil {
		if !errors.Is(err, reference.ErrFileFormat) {
			err = fmt.Errorf("%w: %w", reference.ErrFileFormat, err)
		}

		return nil, m.fail(ctx, SourceFile, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	logger.InfoKV(ctx, "Orbit file loaded", "path", path)

	return m.replaceLocked(ctx, SourceFile, table), nil
}

// SaveFile writes the table as structured text and returns the path written.
func (m *Manager) SaveFile(ctx context.Context, path string) (string, error) {
	table := m.store.Export()

	written, err := m.repo.Save(ctx, path, table)
	if err != nil {
		logger.ErrorKV(ctx, "Failed to save orbit file", "path", path, "error", err)

		return "", fmt.Errorf("save orbit: %w", err)
	}

	logger.InfoKV(ctx, "Orbit file saved", "path", written, "entries", len(table))

	return written, nil
}

// Update merges partial into the table. Identifiers not already in the table
// and non-finite coordinates are ignored. Monitors are not touched: call
// Propagate to apply the result.
func (m *Manager) Update(ctx context.Context, partial domain.Table) UpdateResult {
	b := domain.NewBuilder(len(partial))
	for id, c := range partial {
		b.Set(id, c)
	}

	warnNonFinite(ctx, SourceUpdate, b.NonFinite())

	m.mu.Lock()
	defer m.mu.Unlock()

	updated, ignored := m.store.Merge(b.Table())

	if len(b.NonFinite()) > 0 {
		ignored = append(ignored, b.NonFinite()...)
		sort.Strings(ignored)
	}

	if len(ignored) > 0 {
		logger.DebugKV(ctx, "Update ignored identifiers", "monitors", ignored)
	}

	logger.InfoKV(ctx, "Reference table updated", "source", SourceUpdate, "updated", len(updated),
		"ignored", len(ignored))

	return UpdateResult{
		Updated: updated,
		Ignored: ignored,
		Table:   m.store.Export(),
	}
}

// Propagate writes the table onto the monitors.
func (m *Manager) Propagate(ctx context.Context) Propagation {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.propagateLocked(ctx)
}

// captureLive replaces the table with the valid readings returned by read.
func (m *Manager) captureLive(
	ctx context.Context,
	source Source,
	read func(context.Context) ([]domain.Reading, error),
) (domain.Table, error) {
	readings, err := read(ctx)
	if err != nil {
		return nil, m.fail(ctx, source, sourceUnavailable(err))
	}

	table, duplicates, nonFinite := domain.TableFromReadings(readings)
	for _, id := range duplicates {
		logger.WarnKV(ctx, "Duplicate monitor in live readings, later entry wins", "source", source, "monitor", id)
	}

	warnNonFinite(ctx, source, nonFinite)

	m.mu.Lock()
	defer m.mu.Unlock()

	return m.replaceLocked(ctx, source, table), nil
}

// replaceLocked swaps the table and propagates it. It returns a snapshot.
func (m *Manager) replaceLocked(ctx context.Context, source Source, table domain.Table) domain.Table {
	m.store.Replace(table)
	m.recorder.TableReplaced(string(source), len(table))

	logger.InfoKV(ctx, "Reference table replaced", "source", source, "entries", len(table))

	m.propagateLocked(ctx)

	return m.store.Export()
}

// warnNonFinite logs readings dropped for NaN or infinite coordinates.
func warnNonFinite(ctx context.Context, source Source, ids []string) {
	if len(ids) == 0 {
		return
	}

	logger.WarnKV(ctx, "Non-finite coordinates dropped", "source", source, "monitors", ids)
}

func (m *Manager) fail(ctx context.Context, source Source, err error) error {
	m.recorder.TableFailed(string(source))

	logger.ErrorKV(ctx, "Reference table left unchanged", "source", source, "error", err)

	return err
}

// sourceUnavailable makes sure a provider failure wraps provider.ErrSourceUnavailable.
func sourceUnavailable(err error) error {
	if errors.Is(err, provider.ErrSourceUnavailable) {
		return err
	}

	return fmt.Errorf("%w: %w", provider.ErrSourceUnavailable, err)
}

type nopRecorder struct{}

func (nopRecorder) TableReplaced(string, int) {}

func (nopRecorder) TableFailed(string) {}

func (nopRecorder) MonitorsUnknown(string, int) {}
