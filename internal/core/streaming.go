package core

// streaming.go provides io.Reader wrappers applied to CSV input before
// parsing:
//
//   - BOMSkippingReader: Removes a UTF-8 BOM (0xEF 0xBB 0xBF) from Windows files
//   - UTF8Validator: Fails with ErrInvalidEncoding on bytes that are not UTF-8
//   - CountingReader: Tracks bytes read for job records
//
// Use WrapForParsing to apply all three in the correct order.

import (
	"bufio"
	"bytes"
	"io"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// BOMSkippingReader wraps an io.Reader and skips the UTF-8 BOM if present.
type BOMSkippingReader struct {
	reader  *bufio.Reader
	checked bool
}

// NewBOMSkippingReader creates a new BOM-skipping reader.
func NewBOMSkippingReader(r io.Reader) *BOMSkippingReader {
	return &BOMSkippingReader{reader: bufio.NewReader(r)}
}

// Read implements io.Reader. On the first read, it checks for and skips the BOM.
func (r *BOMSkippingReader) Read(p []byte) (int, error) {
	if !r.checked {
		r.checked = true
		head, err := r.reader.Peek(len(utf8BOM))
		if err != nil && err != io.EOF {
			return 0, err
		}
		if bytes.Equal(head, utf8BOM) {
			r.reader.Discard(len(utf8BOM))
		}
	}
	return r.reader.Read(p)
}

// UTF8Validator wraps an io.Reader and fails on invalid UTF-8.
//
// Multi-byte sequences split across reads are held back until the next read
// completes them, so validation never depends on the caller's buffer size.
type UTF8Validator struct {
	reader  io.Reader
	pending []byte // incomplete trailing sequence from the last read
	err     error
}

// NewUTF8Validator creates a new validating reader.
func NewUTF8Validator(r io.Reader) *UTF8Validator {
	return &UTF8Validator{
		reader:  r,
		pending: make([]byte, 0, utf8.UTFMax),
	}
}

// Read implements io.Reader.
func (v *UTF8Validator) Read(p []byte) (int, error) {
	if v.err != nil {
		return 0, v.err
	}
	if len(p) < utf8.UTFMax {
		return 0, io.ErrShortBuffer
	}

	n := copy(p, v.pending)
	v.pending = v.pending[:0]

	m, err := v.reader.Read(p[n:])
	n += m
	atEOF := err == io.EOF

	valid := n
	if !atEOF {
		valid = n - incompleteTrailingBytes(p[:n])
	}
	if !utf8.Valid(p[:valid]) {
		v.err = ErrInvalidEncoding
		return 0, v.err
	}

	v.pending = append(v.pending, p[valid:n]...)

	if valid == 0 && err == nil && len(v.pending) > 0 {
		// Only a partial rune so far; read more before returning.
		return v.Read(p)
	}
	return valid, err
}

// incompleteTrailingBytes returns the number of bytes at the end of data
// that could be the start of an incomplete multi-byte UTF-8 sequence.
func incompleteTrailingBytes(data []byte) int {
	for i := 1; i <= utf8.UTFMax-1 && i <= len(data); i++ {
		b := data[len(data)-i]
		if b >= 0xC0 {
			if i < runeLen(b) {
				return i
			}
			return 0
		}
		// Stop at anything that is not a continuation byte (10xxxxxx).
		if b&0xC0 != 0x80 {
			return 0
		}
	}
	return 0
}

// runeLen returns the expected length of a UTF-8 sequence starting with byte b.
func runeLen(b byte) int {
	switch {
	case b < 0x80:
		return 1
	case b < 0xC0:
		return 0 // continuation byte
	case b < 0xE0:
		return 2
	case b < 0xF0:
		return 3
	default:
		return 4
	}
}

// CountingReader wraps an io.Reader to track bytes read.
type CountingReader struct {
	reader    io.Reader
	BytesRead int64
}

// NewCountingReader creates a counting reader.
func NewCountingReader(r io.Reader) *CountingReader {
	return &CountingReader{reader: r}
}

// Read implements io.Reader.
func (r *CountingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.BytesRead += int64(n)
	return n, err
}

// WrapForParsing wraps a reader with byte counting, BOM skipping and UTF-8
// validation.
//
// The order matters:
// 1. Counting sees the raw bytes, so BytesRead matches the file size
// 2. The BOM is stripped before validation and parsing
// 3. Validation runs last, right before the CSV reader
func WrapForParsing(r io.Reader) (io.Reader, *CountingReader) {
	counter := NewCountingReader(r)
	return NewUTF8Validator(NewBOMSkippingReader(counter)), counter
}
