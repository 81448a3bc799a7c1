package core

import (
	"errors"
	"fmt"
)

var (
	// ErrNoFile is returned when an upload carries no file or no file name.
	ErrNoFile = errors.New("no file provided")

	// ErrNotCSV is returned for uploads without a .csv extension.
	ErrNotCSV = errors.New("not a csv file")

	// ErrFileNotFound is returned when a requested download does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrJobNotFound is returned by a JobStore when no job matches.
	ErrJobNotFound = errors.New("job not found")

	// ErrInvalidEncoding is returned by the reader for bytes that are not UTF-8.
	ErrInvalidEncoding = errors.New("encoding error: input is not valid UTF-8")
)

// ParseError reports input that cannot be read as comma-separated text.
type ParseError struct {
	Source string // file path or upload name, may be empty
	Err    error
}

func (e *ParseError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("invalid csv: %v", e.Err)
	}
	return fmt.Sprintf("invalid csv %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// WriteError reports an output sink that could not be written.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("write failed: %v", e.Err)
	}
	return fmt.Sprintf("write failed %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
