package core

// streaming.go provides memory-efficient readers that prepare a request body
// for incremental JSON decoding.
//
// These readers wrap io.Reader so the payload is never held in memory as a
// whole:
//
//   - CountingReader: Tracks bytes read and remembers transport read errors
//   - BOMSkippingReader: Removes a leading UTF-8 BOM (0xEF 0xBB 0xBF)
//   - TrailingCommaReader: Drops commas that directly precede ']' or '}'
//
// Use WrapForDecoding to apply all of them in the correct order.

import (
	"bufio"
	"bytes"
	"io"
)

// utf8BOM is the byte order mark some Windows tools prepend to JSON exports.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CountingReader wraps an io.Reader to track bytes read.
// It also records the first non-EOF error returned by the underlying reader so
// callers can tell transport failures apart from malformed content.
type CountingReader struct {
	reader    io.Reader
	BytesRead int64
	readErr   error
}

// NewCountingReader creates a counting reader.
func NewCountingReader(r io.Reader) *CountingReader {
	return &CountingReader{reader: r}
}

// Read implements io.Reader.
func (r *CountingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.BytesRead += int64(n)
	if err != nil && err != io.EOF && r.readErr == nil {
		r.readErr = err
	}
	return n, err
}

// ReadErr returns the first transport error seen, or nil.
func (r *CountingReader) ReadErr() error {
	return r.readErr
}

// BOMSkippingReader wraps an io.Reader and skips the UTF-8 BOM if present.
type BOMSkippingReader struct {
	reader  *bufio.Reader
	checked bool
}

// NewBOMSkippingReader creates a new BOM-skipping reader.
func NewBOMSkippingReader(r io.Reader) *BOMSkippingReader {
	return &BOMSkippingReader{reader: bufio.NewReader(r)}
}

// Read implements io.Reader. The first call discards a leading BOM.
func (r *BOMSkippingReader) Read(p []byte) (int, error) {
	if !r.checked {
		r.checked = true
		if head, err := r.reader.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
			// Peek succeeded, so Discard cannot fail.
			_, _ = r.reader.Discard(len(utf8BOM))
		}
	}
	return r.reader.Read(p)
}

// TrailingCommaReader removes trailing commas from JSON arrays and objects
// while streaming, so `[{"id":"1"},]` decodes like `[{"id":"1"}]`.
//
// A comma outside a string is held back together with any whitespace that
// follows it. The next significant byte decides: ']' or '}' drops the comma,
// anything else releases it unchanged. A comma directly after '[' or '{'
// is never held, so `[,]` stays malformed.
type TrailingCommaReader struct {
	src      *bufio.Reader
	out      []byte // processed bytes not yet returned
	pending  []byte // held comma plus trailing whitespace
	inString bool
	escaped  bool
	opened   bool // last significant byte was '[' or '{'
	err      error
}

// NewTrailingCommaReader creates a new trailing-comma stripping reader.
func NewTrailingCommaReader(r io.Reader) *TrailingCommaReader {
	return &TrailingCommaReader{src: bufio.NewReader(r)}
}

// Read implements io.Reader.
func (r *TrailingCommaReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	for len(r.out) == 0 && r.err == nil {
		r.fill(len(p))
	}

	if len(r.out) == 0 {
		return 0, r.err
	}

	n := copy(p, r.out)
	if n == len(r.out) {
		r.out = r.out[:0]
	} else {
		r.out = r.out[n:]
	}
	return n, nil
}

// fill processes up to limit source bytes into r.out.
func (r *TrailingCommaReader) fill(limit int) {
	for i := 0; i < limit; i++ {
		b, err := r.src.ReadByte()
		if err != nil {
			// Nothing more can follow, release whatever was held back.
			r.out = append(r.out, r.pending...)
			r.pending = r.pending[:0]
			r.err = err
			return
		}
		r.step(b)
	}
}

func (r *TrailingCommaReader) step(b byte) {
	if r.inString {
		r.out = append(r.out, b)
		switch {
		case r.escaped:
			r.escaped = false
		case b == '\\':
			r.escaped = true
		case b == '"':
			r.inString = false
		}
		return
	}

	if len(r.pending) > 0 {
		switch b {
		case ' ', '\t', '\r', '\n':
			r.pending = append(r.pending, b)
			return
		case ']', '}':
			r.out = append(r.out, r.pending[1:]...)
		default:
			r.out = append(r.out, r.pending...)
		}
		r.pending = r.pending[:0]
	}

	switch b {
	case ',':
		// A comma straight after an opening bracket has no value to trail.
		if !r.opened {
			r.pending = append(r.pending, b)
			return
		}
	case '"':
		r.inString = true
	}

	switch b {
	case '[', '{':
		r.opened = true
	case ' ', '\t', '\r', '\n':
	default:
		r.opened = false
	}
	r.out = append(r.out, b)
}

// WrapForDecoding wraps a request body with byte counting, BOM skipping and
// trailing-comma removal.
//
// The order matters:
// 1. Counting sits closest to the source so it sees transport errors as-is
// 2. The BOM must be stripped before any JSON is inspected
// 3. Comma removal runs last, on clean JSON text
//
// The returned CountingReader exposes BytesRead and ReadErr; the io.Reader is
// what the JSON decoder should consume.
func WrapForDecoding(r io.Reader) (*CountingReader, io.Reader) {
	counter := NewCountingReader(r)
	return counter, NewTrailingCommaReader(NewBOMSkippingReader(counter))
}
