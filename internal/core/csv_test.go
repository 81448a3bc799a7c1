package core

import (
	"encoding/csv"
	"errors"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestReadCSV_Errors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		target error
	}{
		{name: "ragged row", input: "a,b\n1,2\n3\n", target: csv.ErrFieldCount},
		{name: "long row", input: "a,b\n1,2,3\n", target: csv.ErrFieldCount},
		{name: "bare quote", input: "a,b\n1,x\"y\n", target: csv.ErrBareQuote},
		{name: "unterminated quote", input: "a,b\n1,\"open\n", target: csv.ErrQuote},
		{name: "invalid utf-8", input: "a,b\n1,caf\xe9\n", target: ErrInvalidEncoding},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.input))
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("error = %v, want *ParseError", err)
			}
			if !errors.Is(err, tt.target) {
				t.Errorf("error = %v, want wrapping %v", err, tt.target)
			}
		})
	}
}

func TestReadCSVFile_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.csv")

	_, err := ReadCSVFile(path)

	var pe *ParseError
	if !errors.As(err, &pe) || pe.Source != path {
		t.Fatalf("error = %v, want *ParseError for %s", err, path)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("error = %v, want fs.ErrNotExist", err)
	}
}

func TestReadCSV_Header(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "plain", input: "a,b\n", want: []string{"a", "b"}},
		{name: "bom", input: "\xef\xbb\xbfid,name\n1,x\n", want: []string{"id", "name"}},
		{name: "blank names", input: ",x,\n", want: []string{"Unnamed: 0", "x", "Unnamed: 2"}},
		{name: "duplicates", input: "x,x,x\n", want: []string{"x", "x.1", "x.2"}},
		{name: "suffix already taken", input: "x,x.1,x\n", want: []string{"x", "x.1", "x.2"}},
		{name: "quoted comma", input: "\"last, first\",age\n", want: []string{"last, first", "age"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := mustRead(t, tt.input)
			if got := ds.ColumnNames(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ColumnNames() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReadCSV_Kinds(t *testing.T) {
	ds := mustRead(t, "i,f,g,t,b,e,s\n1,1.5,1,x,true,,+2\n-2,2,,y,false,,3e2\n")

	want := map[string]Kind{
		"i": KindInteger,
		"f": KindFloat,
		"g": KindFloat, // integer values with a gap
		"t": KindText,
		"b": KindText,
		"e": KindFloat, // no values at all
		"s": KindFloat,
	}
	for name, kind := range want {
		if got := ds.Column(name).Kind; got != kind {
			t.Errorf("column %s kind = %v, want %v", name, got, kind)
		}
	}

	if rows, cols := ds.Shape(); rows != 2 || cols != 7 {
		t.Errorf("Shape() = %d, %d, want 2, 7", rows, cols)
	}
}

func TestReadCSV_Infinity(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Kind
	}{
		{name: "lowercase", input: "a,b\n1,inf\n2,3\n", want: KindFloat},
		{name: "signed", input: "a,b\n1,-inf\n2,+Inf\n", want: KindFloat},
		{name: "spelled out", input: "a,b\n1,Infinity\n2,-INFINITY\n", want: KindFloat},
		{name: "with gap", input: "a,b\n1,inf\n2,3\n3,\n", want: KindFloat},
		{name: "not a number", input: "a,b\n1,infinite\n2,3\n", want: KindText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := mustRead(t, tt.input)
			if got := ds.Column("b").Kind; got != tt.want {
				t.Errorf("column b kind = %v, want %v", got, tt.want)
			}
		})
	}

	ds := mustRead(t, "a,b\n1,inf\n2,3\n")
	if got := mustWrite(t, ds); got != "a,b\n1,inf\n2,3.0\n" {
		t.Errorf("WriteCSV() = %q", got)
	}
}

func TestReadCSV_SkipsBlankLines(t *testing.T) {
	ds := mustRead(t, "a,b\n\n1,2\n\n3,4\n")
	if ds.Rows() != 2 {
		t.Errorf("Rows() = %d, want 2", ds.Rows())
	}
}

func TestWriteCSV(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "quotes when needed", input: "a,b\n\"x,y\",\"say \"\"hi\"\"\"\n", want: "a,b\n\"x,y\",\"say \"\"hi\"\"\"\n"},
		{name: "missing renders empty", input: "a,b\nx,\ny,NA\n", want: "a,b\nx,\ny,\n"},
		{name: "single empty field quoted", input: "a\nx\nNA\n", want: "a\nx\n\"\"\n"},
		{name: "integers kept", input: "n\n007\n-3\n", want: "n\n7\n-3\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mustWrite(t, mustRead(t, tt.input)); got != tt.want {
				t.Errorf("WriteCSV() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	input := "a,b,c\n1,2.5,x\n2,,\"q,r\"\n3,1e-07,\n"

	first := mustWrite(t, mustRead(t, input))
	second := mustWrite(t, mustRead(t, first))

	if first != second {
		t.Errorf("round trip changed output:\n%s\nwant\n%s", second, first)
	}
}

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{30, "30.0"},
		{2.5, "2.5"},
		{0, "0.0"},
		{-0.5, "-0.5"},
		{1.0 / 3, "0.3333333333333333"},
		{0.0001, "0.0001"},
		{0.00001, "1e-05"},
		{1e15, "1000000000000000.0"},
		{1e16, "1e+16"},
		{math.Inf(1), "inf"},
		{math.Inf(-1), "-inf"},
	}

	for _, tt := range tests {
		if got := formatFloat(tt.in); got != tt.want {
			t.Errorf("formatFloat(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsMissing(t *testing.T) {
	for _, v := range []string{"", "NA", "N/A", "null", "NULL", "NaN", "nan", "None", "#N/A", "<NA>"} {
		if !IsMissing(v) {
			t.Errorf("IsMissing(%q) = false, want true", v)
		}
	}
	for _, v := range []string{" ", "na", "none", "0", "-", "Null "} {
		if IsMissing(v) {
			t.Errorf("IsMissing(%q) = true, want false", v)
		}
	}
}

func TestWriteCSVFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cleaned_data.csv")

	if err := WriteCSVFile(path, mustRead(t, "a\n1\n")); err != nil {
		t.Fatalf("WriteCSVFile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "a\n1\n" {
		t.Errorf("file = %q, want %q", data, "a\n1\n")
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want only the output file", len(entries))
	}
}

func TestWriteCSVFile_MissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent", "out.csv")

	err := WriteCSVFile(path, mustRead(t, "a\n1\n"))

	var we *WriteError
	if !errors.As(err, &we) || we.Path != path {
		t.Fatalf("error = %v, want *WriteError for %s", err, path)
	}
	if _, statErr := os.Stat(path); !errors.Is(statErr, fs.ErrNotExist) {
		t.Errorf("output exists after failed write")
	}
}
