package compression

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/ulikunitz/xz"
)

// writeFiles creates the named files in dir, each containing its own name.
func writeFiles(t *testing.T, dir string, names ...string) []string {
	t.Helper()
	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(dir, name)
		if err := os.WriteFile(paths[i], []byte(name), 0o600); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
	return paths
}

// readTar returns name -> content for every entry of a tar stream.
func readTar(t *testing.T, r io.Reader) ([]string, map[string]string) {
	t.Helper()
	tr := tar.NewReader(r)
	var names []string
	contents := make(map[string]string)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("Failed to read tar: %v", err)
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			t.Fatal(err)
		}
		names = append(names, hdr.Name)
		contents[hdr.Name] = string(data)
	}
	return names, contents
}

func TestBundle(t *testing.T) {
	want := []string{"watched_median_cut.csv", "watched_average.csv"}

	tests := []struct {
		format Format
		read   func(t *testing.T, path string) ([]string, map[string]string)
	}{
		{
			format: FormatZip,
			read: func(t *testing.T, path string) ([]string, map[string]string) {
				zr, err := zip.OpenReader(path)
				if err != nil {
					t.Fatalf("Failed to open zip: %v", err)
				}
				defer zr.Close()
				var names []string
				contents := make(map[string]string)
				for _, f := range zr.File {
					rc, err := f.Open()
					if err != nil {
						t.Fatal(err)
					}
					data, _ := io.ReadAll(rc)
					rc.Close()
					names = append(names, f.Name)
					contents[f.Name] = string(data)
				}
				return names, contents
			},
		},
		{
			format: FormatTarGz,
			read: func(t *testing.T, path string) ([]string, map[string]string) {
				f, err := os.Open(path)
				if err != nil {
					t.Fatal(err)
				}
				defer f.Close()
				gz, err := gzip.NewReader(f)
				if err != nil {
					t.Fatalf("Failed to open gzip: %v", err)
				}
				return readTar(t, gz)
			},
		},
		{
			format: FormatTarXz,
			read: func(t *testing.T, path string) ([]string, map[string]string) {
				f, err := os.Open(path)
				if err != nil {
					t.Fatal(err)
				}
				defer f.Close()
				xr, err := xz.NewReader(f)
				if err != nil {
					t.Fatalf("Failed to open xz: %v", err)
				}
				return readTar(t, xr)
			},
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			dir := t.TempDir()
			files := writeFiles(t, dir, want...)
			dest := filepath.Join(dir, "watched_sorted"+tt.format.Extension())

			if err := Bundle(tt.format, dest, files); err != nil {
				t.Fatalf("Bundle() error: %v", err)
			}

			names, contents := tt.read(t, dest)
			if !slices.Equal(names, want) {
				t.Errorf("Expected entries %v, got %v", want, names)
			}
			for _, name := range want {
				if contents[name] != name {
					t.Errorf("Entry %s has content %q", name, contents[name])
				}
			}
		})
	}
}

func TestBundleErrors(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "out.zip")

	if err := Bundle(FormatZip, dest, nil); err == nil {
		t.Error("Expected error with no files")
	}
	if err := Bundle(FormatZip, dest, []string{filepath.Join(dir, "missing.csv")}); err == nil {
		t.Error("Expected error for a missing input file")
	}
	if err := Bundle("rar", dest, writeFiles(t, dir, "a.csv")); err == nil {
		t.Error("Expected error for unsupported format")
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Error("Failed bundles must not leave an archive behind")
	}
}

func TestParseFormat(t *testing.T) {
	for _, f := range ValidFormats() {
		got, err := ParseFormat(string(f))
		if err != nil || got != f {
			t.Errorf("ParseFormat(%q) = %q, %v", f, got, err)
		}
	}
	if got, err := ParseFormat("ZIP"); err != nil || got != FormatZip {
		t.Errorf("Expected case-insensitive parse, got %q, %v", got, err)
	}
	if _, err := ParseFormat("7z"); err == nil {
		t.Error("Expected error for unsupported format")
	}
	if got := FormatTarXz.Extension(); got != ".tar.xz" {
		t.Errorf("Expected .tar.xz, got %s", got)
	}
}
