package reference

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/oshokin/golden-orbit/internal/config"
	domain "github.com/oshokin/golden-orbit/internal/domain/orbit"
	"github.com/oshokin/golden-orbit/internal/logger"
)

// Repository defines persistence operations for reference tables.
type Repository interface {
	// Load reads a table; the format follows the extension of path.
	Load(ctx context.Context, path string) (domain.Table, error)
	// Save writes a structured-text table and returns the path written.
	Save(ctx context.Context, path string, table domain.Table) (string, error)
}

// ErrPathOutsideDir is returned by a confined repository for a path that is
// absolute or leaves its directory.
var ErrPathOutsideDir = errors.New("path outside orbit directory")

// FileRepository reads and writes orbit files on disk.
// Relative paths are resolved against the orbit directory, and relative
// legacy matrix paths against the display directory when one is set.
type FileRepository struct {
	// dir is the default directory for relative paths.
	dir string
	// displayDir is the directory for relative .mat loads.
	displayDir string
	// confined rejects paths that are absolute or leave their directory.
	confined bool
	// mu serialises file access.
	mu sync.Mutex
}

// Option configures a FileRepository.
type Option func(*FileRepository)

// WithDisplayDir resolves relative .mat paths against dir.
func WithDisplayDir(dir string) Option {
	return func(r *FileRepository) {
		if dir != "" {
			r.displayDir = filepath.Clean(dir)
		}
	}
}

// Confined keeps every path inside the directory it resolves against.
// Absolute paths and paths escaping through ".." fail with ErrPathOutsideDir.
func Confined() Option {
	return func(r *FileRepository) {
		r.confined = true
	}
}

// NewFileRepository creates a repository rooted at dir. An empty dir keeps paths as given.
func NewFileRepository(dir string, opts ...Option) *FileRepository {
	if dir != "" {
		dir = filepath.Clean(dir)
	}

	r := &FileRepository{
		dir: dir,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Resolve returns the path the repository would use for path.
func (r *FileRepository) Resolve(path string) (string, error) {
	root := r.dir
	if r.displayDir != "" && strings.EqualFold(filepath.Ext(path), ExtMAT) {
		root = r.displayDir
	}

	if !r.confined {
		if root == "" || filepath.IsAbs(path) {
			return filepath.Clean(path), nil
		}

		return filepath.Join(root, path), nil
	}

	if filepath.IsAbs(path) || !filepath.IsLocal(path) {
		return "", fmt.Errorf("%w: %q", ErrPathOutsideDir, path)
	}

	if root == "" {
		return filepath.Clean(path), nil
	}

	return filepath.Join(root, path), nil
}

// Load reads a table from path. Any failure is reported as ErrFileFormat and
// yields no table at all.
func (r *FileRepository) Load(ctx context.Context, path string) (domain.Table, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrFileFormat)
	}

	path, err := r.Resolve(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFileFormat, err)
	}

	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	contents, err := os.ReadFile(path)
	r.mu.Unlock()

	if err != nil {
		return nil, fmt.Errorf("%w: read %q: %w", ErrFileFormat, path, err)
	}

	result, err := format.decode(contents)
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", path, err)
	}

	for _, id := range result.duplicates {
		logger.WarnKV(ctx, "Duplicate monitor in orbit file, later entry wins", "path", path, "monitor", id)
	}

	if len(result.nonFinite) > 0 {
		logger.WarnKV(ctx, "Non-finite coordinates dropped from orbit file", "path", path,
			"monitors", result.nonFinite)
	}

	logger.DebugKV(ctx, "Orbit file loaded", "path", path, "format", format.String(), "entries", len(result.table))

	return result.table, nil
}

// Save writes table as structured text. A path without the .json extension
// gets it, replacing any other extension. The file is replaced atomically.
func (r *FileRepository) Save(ctx context.Context, path string, table domain.Table) (string, error) {
	if path == "" {
		return "", errEmptyPath
	}

	resolved, err := r.Resolve(WithJSONExtension(path))
	if err != nil {
		return "", err
	}

	path = resolved

	data, err := encodeJSON(table)
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err = writeFileAtomic(path, data); err != nil {
		return "", err
	}

	logger.DebugKV(ctx, "Orbit file saved", "path", path, "entries", len(table))

	return path, nil
}

// errEmptyPath is returned by Save for an empty path.
var errEmptyPath = errors.New("orbit file path must be provided")

// WithJSONExtension forces the structured-text extension onto path.
func WithJSONExtension(path string) string {
	ext := filepath.Ext(path)
	if strings.EqualFold(ext, ExtJSON) {
		return path
	}

	return strings.TrimSuffix(path, ext) + ExtJSON
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)

	if err := os.MkdirAll(dir, config.DefaultDirPermissions); err != nil {
		return fmt.Errorf("create orbit directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temporary orbit file: %w", err)
	}

	// Removing after a successful rename fails harmlessly.
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()

		return fmt.Errorf("write orbit file: %w", err)
	}

	if err = tmp.Chmod(config.DefaultFilePermissions); err != nil {
		_ = tmp.Close()

		return fmt.Errorf("chmod orbit file: %w", err)
	}

	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close orbit file: %w", err)
	}

	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace orbit file: %w", err)
	}

	return nil
}

// Convert reads a legacy matrix file and writes its structured-text equivalent.
// It returns the path written.
func Convert(ctx context.Context, repo Repository, matPath, jsonPath string) (string, error) {
	if format, err := FormatFromPath(matPath); err != nil || format != FormatMAT {
		return "", fmt.Errorf("%w: %q is not a %s file", ErrFileFormat, matPath, ExtMAT)
	}

	table, err := repo.Load(ctx, matPath)
	if err != nil {
		return "", err
	}

	written, err := repo.Save(ctx, jsonPath, table)
	if err != nil {
		return "", err
	}

	logger.InfoKV(ctx, "Legacy orbit converted", "from", matPath, "to", written, "entries", len(table))

	return written, nil
}
