package core

import (
	"reflect"
	"strings"
	"testing"
)

func mustRead(t *testing.T, input string) *Dataset {
	t.Helper()
	ds, err := ReadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadCSV(%q) error = %v", input, err)
	}
	return ds
}

func mustWrite(t *testing.T, ds *Dataset) string {
	t.Helper()
	var b strings.Builder
	if err := WriteCSV(&b, ds); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}
	return b.String()
}

func TestClean_Example(t *testing.T) {
	in := mustRead(t, "Name,Age,City\nAlice,30,NYC\nAlice,30,NYC\nBob,,LA\n")

	out, rep := Clean(in)

	want := "name,age,city\nAlice,30.0,NYC\nBob,30.0,LA\n"
	if got := mustWrite(t, out); got != want {
		t.Errorf("Clean() output =\n%s\nwant\n%s", got, want)
	}

	wantRep := Report{
		RowsIn:    3,
		ColumnsIn: 3,
		Renamed: []Rename{
			{From: "Name", To: "name"},
			{From: "Age", To: "age"},
			{From: "City", To: "city"},
		},
		DuplicatesRemoved: 1,
		CellsImputed:      1,
		ImputedColumns:    []string{"age"},
		RowsOut:           2,
		ColumnsOut:        3,
	}
	if !reflect.DeepEqual(rep, wantRep) {
		t.Errorf("Clean() report = %+v\nwant %+v", rep, wantRep)
	}
}

func TestClean_DoesNotModifyInput(t *testing.T) {
	in := mustRead(t, "A,B\n1,\n1,\n2,x\n")
	before := mustWrite(t, in)

	Clean(in)

	if after := mustWrite(t, in); after != before {
		t.Errorf("input changed:\n%s\nwant\n%s", after, before)
	}
}

func TestClean_Idempotent(t *testing.T) {
	inputs := []string{
		"Name,Age,City\nAlice,30,NYC\nAlice,30,NYC\nBob,,LA\n",
		"id,score,notes\n1,2.5,\n2,,\n3,4.5,ok\n4,,\n",
		"a b,c-d\nx,1\ny,2\nx,1\n",
		"only\n",
		"",
	}

	for _, input := range inputs {
		once, _ := Clean(mustRead(t, input))
		twice, rep := Clean(once)

		if rep.DuplicatesRemoved != 0 || rep.ColumnsDropped() != 0 {
			t.Errorf("second Clean(%q) removed %d rows and %d columns",
				input, rep.DuplicatesRemoved, rep.ColumnsDropped())
		}
		if a, b := mustWrite(t, once), mustWrite(t, twice); a != b {
			t.Errorf("second Clean(%q) changed output:\n%s\nwant\n%s", input, b, a)
		}
	}
}

func TestClean_EmptyInputs(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty file", input: "", want: ""},
		{name: "header only", input: "First Name,Last-Name\n", want: "first_name,last_name\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, rep := Clean(mustRead(t, tt.input))
			if got := mustWrite(t, out); got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
			if rep.RowsOut != 0 {
				t.Errorf("RowsOut = %d, want 0", rep.RowsOut)
			}
		})
	}

	out, rep := Clean(nil)
	if out.Width() != 0 || rep.RowsIn != 0 {
		t.Errorf("Clean(nil) = %d columns, report %+v", out.Width(), rep)
	}
}

func TestStandardizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"First Name", "first_name"},
		{"e-mail", "e_mail"},
		{"ALL CAPS-X", "all_caps_x"},
		{"already_ok", "already_ok"},
		{"  Two  Spaces", "__two__spaces"},
		{"Über", "über"},
		{"Tab\tKept", "tab\tkept"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := StandardizeName(tt.in)
			if got != tt.want {
				t.Errorf("StandardizeName(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if strings.ContainsAny(got, " -") {
				t.Errorf("StandardizeName(%q) = %q still has spaces or hyphens", tt.in, got)
			}
		})
	}
}

func TestStandardizeNames_Collisions(t *testing.T) {
	in := mustRead(t, "A b,a-b,c\n1,2,3\n")

	out, renamed := StandardizeNames(in)

	if got, want := out.ColumnNames(), []string{"a_b", "a_b", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("names = %v, want %v", got, want)
	}
	if len(renamed) != 2 {
		t.Errorf("renamed = %v, want 2 entries", renamed)
	}
}

func TestDropDuplicateRows(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantRemoved int
		wantOut     string
	}{
		{
			name:        "full duplicate keeps first",
			input:       "k,v\na,1\nb,2\na,1\n",
			wantRemoved: 1,
			wantOut:     "k,v\na,1\nb,2\n",
		},
		{
			name:        "partial match is not a duplicate",
			input:       "k,v\na,1\na,2\n",
			wantRemoved: 0,
			wantOut:     "k,v\na,1\na,2\n",
		},
		{
			name:        "numeric values compare parsed",
			input:       "k,v\na,30\na,30.0\na,1.5\n",
			wantRemoved: 1,
			wantOut:     "k,v\na,30.0\na,1.5\n",
		},
		{
			name:        "missing markers equal each other",
			input:       "k,v\na,\na,NA\nb,x\n",
			wantRemoved: 1,
			wantOut:     "k,v\na,\nb,x\n",
		},
		{
			name:        "field boundaries matter",
			input:       "p,q\nab,c\na,bc\n",
			wantRemoved: 0,
			wantOut:     "p,q\nab,c\na,bc\n",
		},
		{
			name:        "text case matters",
			input:       "k\nAlice\nalice\n",
			wantRemoved: 0,
			wantOut:     "k\nAlice\nalice\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, removed := DropDuplicateRows(mustRead(t, tt.input))
			if removed != tt.wantRemoved {
				t.Errorf("removed = %d, want %d", removed, tt.wantRemoved)
			}
			if got := mustWrite(t, out); got != tt.wantOut {
				t.Errorf("output = %q, want %q", got, tt.wantOut)
			}
		})
	}
}

func TestImputeNumericMeans(t *testing.T) {
	t.Run("missing value becomes the mean", func(t *testing.T) {
		out, cols, cells := ImputeNumericMeans(mustRead(t, "v,k\n1,a\n3,b\nNA,c\n"))
		if got, want := mustWrite(t, out), "v,k\n1.0,a\n3.0,b\n2.0,c\n"; got != want {
			t.Errorf("output = %q, want %q", got, want)
		}
		if !reflect.DeepEqual(cols, []string{"v"}) || cells != 1 {
			t.Errorf("imputed columns = %v, cells = %d", cols, cells)
		}
	})

	t.Run("complete integer column untouched", func(t *testing.T) {
		out, cols, _ := ImputeNumericMeans(mustRead(t, "n\n1\n2\n"))
		if got, want := mustWrite(t, out), "n\n1\n2\n"; got != want {
			t.Errorf("output = %q, want %q", got, want)
		}
		if len(cols) != 0 {
			t.Errorf("imputed columns = %v, want none", cols)
		}
	})

	t.Run("integer dataset column promoted when filled", func(t *testing.T) {
		ds := &Dataset{
			Columns: []*Column{{
				Name:  "n",
				Kind:  KindInteger,
				Cells: []Cell{{Int: 1}, {Int: 2}, {Missing: true}},
			}},
			rows: 3,
		}
		out, _, cells := ImputeNumericMeans(ds)
		if cells != 1 || out.Columns[0].Kind != KindFloat {
			t.Fatalf("cells = %d, kind = %v", cells, out.Columns[0].Kind)
		}
		if got, want := mustWrite(t, out), "n\n1.0\n2.0\n1.5\n"; got != want {
			t.Errorf("output = %q, want %q", got, want)
		}
	})

	t.Run("text column keeps missing", func(t *testing.T) {
		out, cols, _ := ImputeNumericMeans(mustRead(t, "t\nx\nNA\n"))
		if got, want := mustWrite(t, out), "t\nx\n\"\"\n"; got != want {
			t.Errorf("output = %q, want %q", got, want)
		}
		if len(cols) != 0 {
			t.Errorf("imputed columns = %v, want none", cols)
		}
	})

	t.Run("all missing column left as is", func(t *testing.T) {
		out, cols, cells := ImputeNumericMeans(mustRead(t, "a,b\n,x\n,y\n"))
		if out.Column("a").Present() != 0 || len(cols) != 0 || cells != 0 {
			t.Errorf("present = %d, cols = %v, cells = %d", out.Column("a").Present(), cols, cells)
		}
	})

	t.Run("no numeric column has gaps afterwards", func(t *testing.T) {
		out, _, _ := ImputeNumericMeans(mustRead(t, "a,b,c\n1,,x\n,2.5,\n3,4,z\n"))
		for _, c := range out.Columns {
			if c.Kind.Numeric() && c.Present() != out.Rows() {
				t.Errorf("column %s still has %d missing", c.Name, out.Rows()-c.Present())
			}
		}
	})
}

func TestDropSparseColumns(t *testing.T) {
	column := func(rows, missing int) string {
		var b strings.Builder
		b.WriteString("id,t\n")
		for i := 0; i < rows; i++ {
			v := "x"
			if i < missing {
				v = ""
			}
			b.WriteString(strings.Repeat("r", i+1) + "," + v + "\n")
		}
		return b.String()
	}

	tests := []struct {
		name        string
		input       string
		wantDropped []string
	}{
		{name: "6 of 10 missing dropped", input: column(10, 6), wantDropped: []string{"t"}},
		{name: "5 of 10 missing kept", input: column(10, 5)},
		{name: "3 of 5 missing dropped", input: column(5, 3), wantDropped: []string{"t"}},
		{name: "2 of 5 missing kept", input: column(5, 2)},
		{name: "no rows keeps everything", input: "id,t\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, dropped := DropSparseColumns(mustRead(t, tt.input))
			if !reflect.DeepEqual(dropped, tt.wantDropped) {
				t.Errorf("dropped = %v, want %v", dropped, tt.wantDropped)
			}
			for _, c := range out.Columns {
				if float64(c.Present()) < float64(out.Rows())*RetentionThreshold {
					t.Errorf("kept sparse column %s", c.Name)
				}
			}
		})
	}
}

func TestClean_DropUsesDedupedRowCount(t *testing.T) {
	// 4 rows in, 2 after dedup; "note" has 1 value so it survives at 1 >= 2*0.5.
	in := mustRead(t, "k,note\na,\na,\na,\nb,hi\n")

	out, rep := Clean(in)

	if rep.RowsOut != 2 || out.Column("note") == nil {
		t.Errorf("rows = %d, note kept = %v", rep.RowsOut, out.Column("note") != nil)
	}
}

func TestClean_AllMissingNumericDropped(t *testing.T) {
	out, rep := Clean(mustRead(t, "a,empty\n1,\n2,\n"))

	if out.Column("empty") != nil {
		t.Error("all-missing column should be dropped")
	}
	if !reflect.DeepEqual(rep.DroppedColumns, []string{"empty"}) {
		t.Errorf("DroppedColumns = %v", rep.DroppedColumns)
	}
	if rep.CellsImputed != 0 {
		t.Errorf("CellsImputed = %d, want 0", rep.CellsImputed)
	}
}
