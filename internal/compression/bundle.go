// Package compression bundles sorted catalog tables into a single archive.
package compression

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Format is an archive format.
type Format string

// Supported formats.
const (
	FormatZip   Format = "zip"
	FormatTarGz Format = "tar.gz"
	FormatTarXz Format = "tar.xz"
)

// ValidFormats returns all supported archive formats.
func ValidFormats() []Format {
	return []Format{FormatZip, FormatTarGz, FormatTarXz}
}

// ParseFormat converts a string to a Format.
func ParseFormat(s string) (Format, error) {
	for _, f := range ValidFormats() {
		if strings.EqualFold(s, string(f)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported archive format: %s (valid: %v)", s, ValidFormats())
}

// Extension returns the file extension including the leading dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// Bundle writes files into a new archive at dest. Entries are stored under
// their base names in the order given. The archive is written to a temp
// file and renamed into place.
func Bundle(format Format, dest string, files []string) error {
	if len(files) == 0 {
		return fmt.Errorf("no files to bundle")
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".bundle-*")
	if err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	var writeErr error
	switch format {
	case FormatZip:
		writeErr = writeZip(tmp, files)
	case FormatTarGz:
		writeErr = writeTarGz(tmp, files)
	case FormatTarXz:
		writeErr = writeTarXz(tmp, files)
	default:
		writeErr = fmt.Errorf("unsupported archive format: %s", format)
	}
	closeErr := tmp.Close()

	if writeErr != nil {
		return writeErr
	}
	if closeErr != nil {
		return fmt.Errorf("failed to close archive: %w", closeErr)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil { // #nosec G302 - Archives are meant to be shared
		return fmt.Errorf("failed to set archive permissions: %w", err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		return fmt.Errorf("failed to move archive into place: %w", err)
	}
	return nil
}
