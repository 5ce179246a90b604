// Package catalog reads a poster catalog, orders its rows by poster colour
// and writes one reordered table per extraction strategy.
package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
)

// DefaultNameColumn is the column holding each row's display name.
const DefaultNameColumn = "Name"

// Table is a row-oriented catalog. Cells are kept verbatim; column order and
// row identity (position) are preserved.
type Table struct {
	Header []string
	Rows   [][]string
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// ColumnIndex returns the index of the named column.
func (t *Table) ColumnIndex(name string) (int, error) {
	idx := slices.Index(t.Header, name)
	if idx < 0 {
		return -1, fmt.Errorf("column %q not found (columns: %v)", name, t.Header)
	}
	return idx, nil
}

// Reorder returns a new table whose i-th row is t.Rows[order[i]].
func (t *Table) Reorder(order []int) (*Table, error) {
	if len(order) != len(t.Rows) {
		return nil, fmt.Errorf("order has %d entries, table has %d rows", len(order), len(t.Rows))
	}
	rows := make([][]string, len(order))
	for i, idx := range order {
		if idx < 0 || idx >= len(t.Rows) {
			return nil, fmt.Errorf("row index %d out of range", idx)
		}
		rows[i] = t.Rows[idx]
	}
	return &Table{Header: slices.Clone(t.Header), Rows: rows}, nil
}

// Read parses a CSV catalog whose first record is the header.
func Read(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("catalog is empty")
		}
		return nil, fmt.Errorf("failed to read catalog header: %w", err)
	}

	t := &Table{Header: header}
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog row %d: %w", len(t.Rows)+1, err)
		}
		t.Rows = append(t.Rows, record)
	}
	return t, nil
}

// ReadFile reads a CSV catalog from disk.
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path) // #nosec G304 - User-specified catalog path, intended to be read
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Write encodes the table as CSV, header first.
func Write(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("failed to write rows: %w", err)
	}
	return nil
}
