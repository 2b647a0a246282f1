package taskdir

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/ahrav/mibench/internal/domain"
)

// SeedColumn is the label of the first column of every samples table.
const SeedColumn = "seed"

// Row is one sample point: the seed it was drawn with and its X and Y values
// concatenated in column order.
type Row struct {
	Seed   int64
	Values []float64
}

// Table is the flat tabular form of a task's samples. Columns are ordered
// seed, X1..X{dimX}, Y1..Y{dimY}; rows are grouped by seed.
type Table struct {
	Columns []string
	Rows    []Row
}

// ValueColumns returns the labels seed excluded, for dimX X and dimY Y columns.
func ValueColumns(dimX, dimY int) []string {
	cols := make([]string, 0, dimX+dimY)
	for i := range dimX {
		cols = append(cols, fmt.Sprintf("X%d", i+1))
	}
	for i := range dimY {
		cols = append(cols, fmt.Sprintf("Y%d", i+1))
	}
	return cols
}

// NewTable creates an empty table with the standard columns.
func NewTable(dimX, dimY int) *Table {
	return &Table{Columns: append([]string{SeedColumn}, ValueColumns(dimX, dimY)...)}
}

// Append adds a row. The caller keeps ownership of values; it is copied.
func (t *Table) Append(seed int64, values []float64) {
	t.Rows = append(t.Rows, Row{Seed: seed, Values: append([]float64(nil), values...)})
}

// WriteCSV writes the table with a header line. Floats use the shortest
// representation that parses back to the identical float64.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	record := make([]string, len(t.Columns))
	for i, row := range t.Rows {
		if len(row.Values)+1 != len(t.Columns) {
			return fmt.Errorf("row %d has %d values, want %d", i, len(row.Values), len(t.Columns)-1)
		}
		record[0] = strconv.FormatInt(row.Seed, 10)
		for j, v := range row.Values {
			record[j+1] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses a table written by WriteCSV.
// Returns an error wrapping domain.ErrCorruptData for ragged rows, a missing
// seed column, or unparsable cells.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: samples table is empty", domain.ErrCorruptData)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrCorruptData, err)
	}
	if len(header) == 0 || header[0] != SeedColumn {
		return nil, fmt.Errorf("%w: first column must be %q", domain.ErrCorruptData, SeedColumn)
	}

	t := &Table{Columns: append([]string(nil), header...)}
	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// csv reports field-count mismatches here.
			return nil, fmt.Errorf("%w: %w", domain.ErrCorruptData, err)
		}
		seed, err := strconv.ParseInt(record[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: bad seed %q", domain.ErrCorruptData, line, record[0])
		}
		values := make([]float64, len(record)-1)
		for j, cell := range record[1:] {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d column %s: bad value %q",
					domain.ErrCorruptData, line, t.Columns[j+1], cell)
			}
			values[j] = v
		}
		t.Rows = append(t.Rows, Row{Seed: seed, Values: values})
	}
	return t, nil
}
