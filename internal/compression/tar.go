package compression

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ulikunitz/xz"
)

// writeTarGz writes files into a gzip-compressed tar archive.
func writeTarGz(w io.Writer, files []string) error {
	gzw := gzip.NewWriter(w)
	if err := writeTar(gzw, files); err != nil {
		_ = gzw.Close()
		return err
	}
	if err := gzw.Close(); err != nil {
		return fmt.Errorf("failed to finalise gzip stream: %w", err)
	}
	return nil
}

// writeTarXz writes files into an xz-compressed tar archive.
func writeTarXz(w io.Writer, files []string) error {
	xzw, err := xz.NewWriter(w)
	if err != nil {
		return fmt.Errorf("failed to create xz writer: %w", err)
	}
	if err := writeTar(xzw, files); err != nil {
		_ = xzw.Close()
		return err
	}
	if err := xzw.Close(); err != nil {
		return fmt.Errorf("failed to finalise xz stream: %w", err)
	}
	return nil
}

func writeTar(w io.Writer, files []string) error {
	tw := tar.NewWriter(w)
	for _, path := range files {
		if err := addTarEntry(tw, path); err != nil {
			_ = tw.Close()
			return err
		}
	}
	if err := tw.Close(); err != nil {
		return fmt.Errorf("failed to finalise tar archive: %w", err)
	}
	return nil
}

func addTarEntry(tw *tar.Writer, path string) error {
	in, err := os.Open(path) // #nosec G304 - Files produced by this run
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return fmt.Errorf("failed to build tar header for %s: %w", path, err)
	}
	header.Name = filepath.Base(path)

	if err := tw.WriteHeader(header); err != nil {
		return fmt.Errorf("failed to add %s to archive: %w", path, err)
	}
	if _, err := io.Copy(tw, in); err != nil {
		return fmt.Errorf("failed to write %s to archive: %w", path, err)
	}
	return nil
}
