package catalog

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/jmylchreest/postersort/internal/colour"
)

// DefaultOutputPrefix prefixes every output file name.
const DefaultOutputPrefix = "watched"

// Sink persists one sorted table per strategy.
type Sink interface {
	Write(strategy colour.Strategy, t *Table) (string, error)
}

// DirSink writes "<prefix>_<strategy>.csv" files into a directory.
type DirSink struct {
	dir    string
	prefix string
	lock   *flock.Flock
}

// NewDirSink creates a DirSink. The directory is created on Lock or Write.
func NewDirSink(dir, prefix string) *DirSink {
	if prefix == "" {
		prefix = DefaultOutputPrefix
	}
	return &DirSink{
		dir:    dir,
		prefix: prefix,
		lock:   flock.New(filepath.Join(dir, ".postersort.lock")),
	}
}

// Dir returns the output directory.
func (s *DirSink) Dir() string {
	return s.dir
}

// Path returns the file a strategy's table is written to.
func (s *DirSink) Path(strategy colour.Strategy) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s_%s.csv", s.prefix, strategy))
}

// Lock takes an exclusive lock on the output directory so concurrent runs
// cannot interleave their tables. The returned function releases it.
func (s *DirSink) Lock() (func() error, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil { // #nosec G301 - Output directory needs standard permissions
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	locked, err := s.lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock output directory: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("output directory %s is in use by another run", s.dir)
	}
	return s.lock.Unlock, nil
}

// Write writes the table atomically (temp file + rename) and returns its path.
func (s *DirSink) Write(strategy colour.Strategy, t *Table) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil { // #nosec G301 - Output directory needs standard permissions
		return "", fmt.Errorf("create output directory: %w", err)
	}

	dest := s.Path(strategy)
	tmp, err := os.CreateTemp(s.dir, ".tmp-*.csv")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	writeErr := Write(tmp, t)
	closeErr := tmp.Close()
	if writeErr != nil {
		return "", fmt.Errorf("write %s: %w", dest, writeErr)
	}
	if closeErr != nil {
		return "", fmt.Errorf("close %s: %w", dest, closeErr)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil { // #nosec G302 - Output tables are meant to be shared
		return "", fmt.Errorf("chmod %s: %w", dest, err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		return "", fmt.Errorf("rename to %s: %w", dest, err)
	}
	return dest, nil
}
