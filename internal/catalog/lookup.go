package catalog

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"

	imgutil "github.com/jmylchreest/postersort/internal/image"
)

// ErrLookupMiss is returned when no image file matches a display name.
var ErrLookupMiss = errors.New("no matching image")

// Lookup resolves a display name to an image path.
type Lookup interface {
	Find(name string) (string, error)
}

// unsafeFilenameChars are removed from names before matching.
const unsafeFilenameChars = `\/:*?"<>|`

// Sanitize turns a display name into the filename stem posters are saved
// under: NFC-normalised, unsafe characters removed, trimmed, spaces to
// underscores.
func Sanitize(name string) string {
	name = norm.NFC.String(name)
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(unsafeFilenameChars, r) {
			return -1
		}
		return r
	}, name)
	return strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
}

// DirLookup matches names against the image files of one directory.
// The listing is read once at construction.
type DirLookup struct {
	dir   string
	files []string
	keys  []string // NFC forms of files, for matching
}

// NewDirLookup scans dir for image files.
func NewDirLookup(dir string) (*DirLookup, error) {
	files, err := imgutil.ScanDirectoryForImages(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan covers directory: %w", err)
	}
	keys := make([]string, len(files))
	for i, f := range files {
		keys[i] = norm.NFC.String(f)
	}
	return &DirLookup{dir: dir, files: files, keys: keys}, nil
}

// Find returns the first image file, by name, starting with the sanitised
// display name.
func (l *DirLookup) Find(name string) (string, error) {
	prefix := Sanitize(name)
	if prefix == "" {
		return "", fmt.Errorf("%w: empty name", ErrLookupMiss)
	}
	for i, key := range l.keys {
		if strings.HasPrefix(key, prefix) {
			return filepath.Join(l.dir, l.files[i]), nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrLookupMiss, prefix)
}
