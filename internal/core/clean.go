package core

import (
	"strconv"
	"strings"
)

// RetentionThreshold is the fraction of rows a column must have values in
// to survive the sparse-column stage.
const RetentionThreshold = 0.5

// Rename records one column name change made by standardization.
type Rename struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Report summarizes what Clean changed.
type Report struct {
	RowsIn            int      `json:"rows_in"`
	ColumnsIn         int      `json:"columns_in"`
	Renamed           []Rename `json:"renamed,omitempty"`
	DuplicatesRemoved int      `json:"duplicates_removed"`
	CellsImputed      int      `json:"cells_imputed"`
	ImputedColumns    []string `json:"imputed_columns,omitempty"`
	DroppedColumns    []string `json:"dropped_columns,omitempty"`
	RowsOut           int      `json:"rows_out"`
	ColumnsOut        int      `json:"columns_out"`
}

// ColumnsDropped returns how many columns the sparse stage removed.
func (r Report) ColumnsDropped() int {
	return len(r.DroppedColumns)
}

// Clean applies the four cleaning stages to d and returns the result.
// d is not modified. Clean never fails: empty datasets pass through.
func Clean(d *Dataset) (*Dataset, Report) {
	if d == nil {
		d = &Dataset{}
	}

	rep := Report{RowsIn: d.Rows(), ColumnsIn: d.Width()}

	out, renamed := StandardizeNames(d)
	rep.Renamed = renamed

	out, rep.DuplicatesRemoved = DropDuplicateRows(out)

	out, rep.ImputedColumns, rep.CellsImputed = ImputeNumericMeans(out)

	out, rep.DroppedColumns = DropSparseColumns(out)

	rep.RowsOut, rep.ColumnsOut = out.Shape()
	return out, rep
}

// StandardizeName lowercases name and replaces spaces and hyphens with
// underscores.
func StandardizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, " ", "_")
	return strings.ReplaceAll(name, "-", "_")
}

// StandardizeNames returns a copy of d with standardized column names.
// Names that collide after standardization are left colliding.
func StandardizeNames(d *Dataset) (*Dataset, []Rename) {
	var renamed []Rename
	out := &Dataset{Columns: make([]*Column, len(d.Columns)), rows: d.rows}

	for i, c := range d.Columns {
		col := c.clone()
		col.Name = StandardizeName(c.Name)
		if col.Name != c.Name {
			renamed = append(renamed, Rename{From: c.Name, To: col.Name})
		}
		out.Columns[i] = col
	}
	return out, renamed
}

// DropDuplicateRows returns a copy of d without rows that repeat an earlier
// row value for value, and the number of rows removed.
func DropDuplicateRows(d *Dataset) (*Dataset, int) {
	keep := make([]int, 0, d.rows)
	seen := make(map[string]struct{}, d.rows)

	for r := 0; r < d.rows; r++ {
		key := rowKey(d, r)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keep = append(keep, r)
	}

	out := &Dataset{Columns: make([]*Column, len(d.Columns)), rows: len(keep)}
	for i, c := range d.Columns {
		col := &Column{Name: c.Name, Kind: c.Kind, Cells: make([]Cell, len(keep))}
		for j, r := range keep {
			col.Cells[j] = c.Cells[r]
		}
		out.Columns[i] = col
	}
	return out, d.rows - len(keep)
}

// rowKey joins the cell keys of row r. Each key is length-prefixed so that
// no two different rows share a key.
func rowKey(d *Dataset, r int) string {
	var b strings.Builder
	for _, c := range d.Columns {
		k := cellKey(c.Cells[r], c.Kind)
		b.WriteString(strconv.Itoa(len(k)))
		b.WriteByte(':')
		b.WriteString(k)
	}
	return b.String()
}

// ImputeNumericMeans returns a copy of d where missing cells of numeric
// columns hold the column mean. Columns without any value are left as they
// are. It also returns the names of the columns it filled and the number of
// cells filled.
//
// A filled integer column becomes a float column, since its mean need not be
// whole.
func ImputeNumericMeans(d *Dataset) (*Dataset, []string, int) {
	var filled []string
	cells := 0
	out := &Dataset{Columns: make([]*Column, len(d.Columns)), rows: d.rows}

	for i, c := range d.Columns {
		col := c.clone()
		out.Columns[i] = col

		mean, ok := c.Mean()
		if !ok {
			continue
		}
		missing := col.Present() < len(col.Cells)
		if !missing {
			continue
		}

		if col.Kind == KindInteger {
			for j, cell := range col.Cells {
				if !cell.Missing {
					col.Cells[j] = Cell{Float: float64(cell.Int)}
				}
			}
			col.Kind = KindFloat
		}

		for j, cell := range col.Cells {
			if cell.Missing {
				col.Cells[j] = Cell{Float: mean}
				cells++
			}
		}
		filled = append(filled, col.Name)
	}
	return out, filled, cells
}

// DropSparseColumns returns a copy of d without the columns whose present
// count is below RetentionThreshold of the row count, and the dropped names.
func DropSparseColumns(d *Dataset) (*Dataset, []string) {
	var dropped []string
	threshold := float64(d.rows) * RetentionThreshold
	out := &Dataset{Columns: make([]*Column, 0, len(d.Columns)), rows: d.rows}

	for _, c := range d.Columns {
		if float64(c.Present()) < threshold {
			dropped = append(dropped, c.Name)
			continue
		}
		out.Columns = append(out.Columns, c.clone())
	}
	return out, dropped
}
