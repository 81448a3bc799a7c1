package core

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ReadCSV parses comma-separated input with a header row into a Dataset.
//
// A leading BOM is skipped and invalid UTF-8 is rejected. Every row must have
// as many fields as the header. Blank lines are ignored. Entirely empty input
// yields a dataset with no columns. All failures are *ParseError.
func ReadCSV(r io.Reader) (*Dataset, error) {
	ds, _, err := readCSV(r, "")
	return ds, err
}

// ReadCSVFile opens path and parses it with ReadCSV. A file that cannot be
// opened is reported as a *ParseError too.
func ReadCSVFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ParseError{Source: path, Err: err}
	}
	defer f.Close()

	ds, _, err := readCSV(f, path)
	return ds, err
}

// readCSV parses r and also returns the number of raw bytes consumed.
func readCSV(r io.Reader, source string) (*Dataset, int64, error) {
	wrapped, counter := WrapForParsing(r)

	reader := csv.NewReader(wrapped)

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return &Dataset{}, counter.BytesRead, nil
	}
	if err != nil {
		return nil, counter.BytesRead, &ParseError{Source: source, Err: err}
	}
	// FieldsPerRecord is fixed from the header by the first Read.

	records, err := reader.ReadAll()
	if err != nil {
		return nil, counter.BytesRead, &ParseError{Source: source, Err: err}
	}

	ds, err := NewDataset(header, records)
	if err != nil {
		return nil, counter.BytesRead, &ParseError{Source: source, Err: err}
	}
	return ds, counter.BytesRead, nil
}

// WriteCSV writes d as comma-separated text: a header row, then one line per
// row. A dataset with no columns writes nothing.
func WriteCSV(w io.Writer, d *Dataset) error {
	if d.Width() == 0 {
		return nil
	}

	bw := bufio.NewWriter(w)
	cw := csv.NewWriter(bw)

	write := func(rec []string) error {
		// encoding/csv writes a lone empty field as a blank line, which a
		// reader would skip. Quote it so the row survives a round trip.
		if len(rec) == 1 && rec[0] == "" {
			cw.Flush()
			if err := cw.Error(); err != nil {
				return err
			}
			_, err := bw.WriteString("\"\"\n")
			return err
		}
		return cw.Write(rec)
	}

	if err := write(d.ColumnNames()); err != nil {
		return &WriteError{Err: err}
	}
	for r := 0; r < d.Rows(); r++ {
		if err := write(d.Record(r)); err != nil {
			return &WriteError{Err: err}
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return &WriteError{Err: err}
	}
	if err := bw.Flush(); err != nil {
		return &WriteError{Err: err}
	}
	return nil
}

// WriteCSVFile writes d to path. The data goes to a temporary file in the
// same directory that is renamed over path only after a complete write, so a
// failed write never leaves a partial file at path.
func WriteCSVFile(path string, d *Dataset) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	tmpName := tmp.Name()

	fail := func(err error) error {
		tmp.Close()
		os.Remove(tmpName)
		var we *WriteError
		if errors.As(err, &we) {
			err = we.Err
		}
		return &WriteError{Path: path, Err: err}
	}

	if err := WriteCSV(tmp, d); err != nil {
		return fail(err)
	}
	if err := tmp.Sync(); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &WriteError{Path: path, Err: err}
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return &WriteError{Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &WriteError{Path: path, Err: fmt.Errorf("rename: %w", err)}
	}
	return nil
}
