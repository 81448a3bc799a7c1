package core

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"testing"
)

// ============================================================================
// Reader Benchmarks
// ============================================================================

// generateCSV builds a CSV with a mix of numeric, text and missing cells and
// roughly one duplicate per ten rows.
func generateCSV(rows int) []byte {
	var b bytes.Buffer
	b.WriteString("Id,Full Name,Sale-Amount,Region,Notes\n")
	for i := 0; i < rows; i++ {
		id := i
		if i%10 == 9 {
			id = i - 1
		}
		amount := fmt.Sprintf("%d.%02d", id*7%1000, id%100)
		if id%6 == 0 {
			amount = ""
		}
		notes := ""
		if id%3 == 0 {
			notes = "follow up"
		}
		fmt.Fprintf(&b, "%d,Customer %d,%s,R%d,%s\n", id, id, amount, id%5, notes)
	}
	return b.Bytes()
}

// BenchmarkReadCSV benchmarks parsing and kind inference.
func BenchmarkReadCSV(b *testing.B) {
	data := generateCSV(10000)
	b.SetBytes(int64(len(data)))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ReadCSV(bytes.NewReader(data)); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkWrapForParsing benchmarks the reader chain on its own.
func BenchmarkWrapForParsing(b *testing.B) {
	data := generateCSV(10000)
	b.SetBytes(int64(len(data)))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r, _ := WrapForParsing(bytes.NewReader(data))
		if _, err := io.Copy(io.Discard, r); err != nil {
			b.Fatal(err)
		}
	}
}

// ============================================================================
// Cleaning Benchmarks
// ============================================================================

// BenchmarkClean benchmarks the four cleaning stages on an in-memory dataset.
func BenchmarkClean(b *testing.B) {
	for _, rows := range []int{100, 10000} {
		ds, err := ReadCSV(bytes.NewReader(generateCSV(rows)))
		if err != nil {
			b.Fatal(err)
		}

		b.Run(fmt.Sprintf("rows=%d", rows), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				Clean(ds)
			}
		})
	}
}

// BenchmarkWriteCSV benchmarks output formatting.
func BenchmarkWriteCSV(b *testing.B) {
	ds, err := ReadCSV(bytes.NewReader(generateCSV(10000)))
	if err != nil {
		b.Fatal(err)
	}
	out, _ := Clean(ds)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := WriteCSV(io.Discard, out); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkFormatFloat benchmarks float rendering, the hot path of WriteCSV.
func BenchmarkFormatFloat(b *testing.B) {
	values := []float64{30, 2.5, 1.0 / 3, 1e-7, 123456.789}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, v := range values {
			formatFloat(v)
		}
	}
}

func TestGenerateCSV_Shape(t *testing.T) {
	ds, err := ReadCSV(strings.NewReader(string(generateCSV(20))))
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	if rows, cols := ds.Shape(); rows != 20 || cols != 5 {
		t.Errorf("Shape() = %d, %d, want 20, 5", rows, cols)
	}
}
