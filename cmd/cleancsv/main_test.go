package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRun(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "raw.csv")
	if err := os.WriteFile(input, []byte("Name,Age,City\nAlice,30,NYC\nAlice,30,NYC\nBob,,LA\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	outDir := filepath.Join(dir, "out", "nested")

	var stderr bytes.Buffer
	if code := run([]string{"-o", outDir, input}, &stderr); code != 0 {
		t.Fatalf("run() = %d, stderr:\n%s", code, stderr.String())
	}

	data, err := os.ReadFile(filepath.Join(outDir, "cleaned_dataset.csv"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if want := "name,age,city\nAlice,30.0,NYC\nBob,30.0,LA\n"; string(data) != want {
		t.Errorf("output = %q, want %q", data, want)
	}

	for _, want := range []string{"data loaded", "rows=3", "removed=1", "cleaned data saved"} {
		if !strings.Contains(stderr.String(), want) {
			t.Errorf("log missing %q", want)
		}
	}
}

func TestRun_Failures(t *testing.T) {
	dir := t.TempDir()
	ragged := filepath.Join(dir, "ragged.csv")
	if err := os.WriteFile(ragged, []byte("a,b\n1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
		want int
	}{
		{name: "no input", args: nil, want: 2},
		{name: "two inputs", args: []string{"a.csv", "b.csv"}, want: 2},
		{name: "unknown flag", args: []string{"-x", "a.csv"}, want: 2},
		{name: "missing file", args: []string{"-o", dir, filepath.Join(dir, "nope.csv")}, want: 1},
		{name: "ragged rows", args: []string{"-o", dir, ragged}, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stderr bytes.Buffer
			if got := run(tt.args, &stderr); got != tt.want {
				t.Errorf("run() = %d, want %d; stderr:\n%s", got, tt.want, stderr.String())
			}
		})
	}
}
