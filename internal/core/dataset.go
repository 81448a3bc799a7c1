package core

import (
	"fmt"
	"strconv"
)

// NewDataset builds a typed dataset from a header and raw records.
//
// Every record must have exactly len(header) fields. Blank header names are
// replaced with "Unnamed: <index>" and repeated names get a ".1", ".2", ...
// suffix so column names are always unique.
func NewDataset(header []string, records [][]string) (*Dataset, error) {
	names := uniqueHeader(header)

	for i, rec := range records {
		if len(rec) != len(names) {
			return nil, fmt.Errorf("record %d: wrong number of fields (%d, expected %d)", i+1, len(rec), len(names))
		}
	}

	ds := &Dataset{
		Columns: make([]*Column, len(names)),
		rows:    len(records),
	}

	raw := make([]string, len(records))
	for c, name := range names {
		for r, rec := range records {
			raw[r] = rec[c]
		}

		kind := inferKind(raw)
		col := &Column{
			Name:  name,
			Kind:  kind,
			Cells: make([]Cell, len(records)),
		}
		for r, v := range raw {
			col.Cells[r] = makeCell(v, kind)
		}
		ds.Columns[c] = col
	}

	return ds, nil
}

// uniqueHeader fills blank names and suffixes duplicates.
func uniqueHeader(header []string) []string {
	names := make([]string, len(header))
	used := make(map[string]bool, len(header))
	suffix := make(map[string]int)

	for i, h := range header {
		if h == "" {
			h = "Unnamed: " + strconv.Itoa(i)
		}
		name := h
		for used[name] {
			suffix[h]++
			name = h + "." + strconv.Itoa(suffix[h])
		}
		used[name] = true
		names[i] = name
	}
	return names
}

// Rows returns the number of rows.
func (d *Dataset) Rows() int {
	if d == nil {
		return 0
	}
	return d.rows
}

// Width returns the number of columns.
func (d *Dataset) Width() int {
	if d == nil {
		return 0
	}
	return len(d.Columns)
}

// Shape returns rows and columns.
func (d *Dataset) Shape() (int, int) {
	return d.Rows(), d.Width()
}

// ColumnNames returns the column names in order.
func (d *Dataset) ColumnNames() []string {
	names := make([]string, d.Width())
	for i, c := range d.Columns {
		names[i] = c.Name
	}
	return names
}

// Column returns the column with the given name, or nil.
func (d *Dataset) Column(name string) *Column {
	for _, c := range d.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Record renders row r as CSV fields.
func (d *Dataset) Record(r int) []string {
	rec := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		rec[i] = FormatCell(c.Cells[r], c.Kind)
	}
	return rec
}

// Present returns the number of non-missing cells.
func (c *Column) Present() int {
	n := 0
	for _, cell := range c.Cells {
		if !cell.Missing {
			n++
		}
	}
	return n
}

// Mean returns the arithmetic mean of the present values of a numeric column.
// ok is false for text columns and for columns with no present values.
func (c *Column) Mean() (mean float64, ok bool) {
	if !c.Kind.Numeric() {
		return 0, false
	}

	var sum float64
	n := 0
	for _, cell := range c.Cells {
		if cell.Missing {
			continue
		}
		if c.Kind == KindInteger {
			sum += float64(cell.Int)
		} else {
			sum += cell.Float
		}
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// clone returns a copy of the column that shares nothing with c.
func (c *Column) clone() *Column {
	cells := make([]Cell, len(c.Cells))
	copy(cells, c.Cells)
	return &Column{Name: c.Name, Kind: c.Kind, Cells: cells}
}
