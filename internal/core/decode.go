package core

// decode.go reads a JSON array of orders one element at a time.
//
// Only the element currently being decoded is held in memory, so memory use
// is bounded by the largest single order rather than the request size. The
// context is checked between elements; that is the only point where a batch
// can be cancelled.

import (
	"context"
	"encoding/json"
	"errors"
	"io"
)

// ErrNotArray is the reason reported when the body is valid JSON but not an array.
var ErrNotArray = errors.New("expected a JSON array of order records")

// ErrTrailingData is the reason reported when another value follows the array.
var ErrTrailingData = errors.New("unexpected data after the closing bracket")

// DecodeError reports malformed input. It aborts the whole batch.
type DecodeError struct {
	Index int   // zero-based array position being decoded, -1 before the array opened
	Err   error // underlying encoding/json error
}

func (e *DecodeError) Error() string {
	return "invalid json: " + e.Reason()
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Reason returns the client-facing description of the problem.
func (e *DecodeError) Reason() string {
	if errors.Is(e.Err, io.EOF) || errors.Is(e.Err, io.ErrUnexpectedEOF) {
		return "unexpected end of JSON input"
	}
	return e.Err.Error()
}

// RecordSource is a forward-only sequence of decoded orders.
//
// The typical usage pattern is:
//
//	for src.Next() {
//	    rec := src.Record() // nil for a JSON null element
//	}
//	if err := src.Err(); err != nil {
//	    // decode failure or cancellation
//	}
type RecordSource interface {
	Next() bool
	Record() *OrderRecord
	Err() error
}

// RecordDecoder is the RecordSource backed by a JSON request body.
type RecordDecoder struct {
	ctx     context.Context
	dec     *json.Decoder
	counter *CountingReader

	index   int
	current *OrderRecord
	opened  bool
	done    bool
	err     error
}

// NewRecordDecoder prepares r for streaming decoding. Nothing is read until
// the first call to Next.
func NewRecordDecoder(ctx context.Context, r io.Reader) *RecordDecoder {
	counter, body := WrapForDecoding(r)
	return &RecordDecoder{
		ctx:     ctx,
		dec:     json.NewDecoder(body),
		counter: counter,
		index:   -1,
	}
}

// Next advances to the next element. It returns false at the end of the array,
// on malformed input or when the context is cancelled; check Err afterwards.
func (d *RecordDecoder) Next() bool {
	if d.done {
		return false
	}
	d.current = nil

	if err := d.ctx.Err(); err != nil {
		return d.fail(err)
	}

	if !d.opened {
		tok, err := d.dec.Token()
		if err != nil {
			return d.fail(d.classify(err))
		}
		if delim, ok := tok.(json.Delim); !ok || delim != '[' {
			return d.fail(&DecodeError{Index: -1, Err: ErrNotArray})
		}
		d.opened = true
	}

	if !d.dec.More() {
		// Consume the closing bracket so truncated input is reported.
		if _, err := d.dec.Token(); err != nil {
			return d.fail(d.classify(err))
		}
		return d.finish()
	}

	d.index++
	var rec *OrderRecord
	if err := d.dec.Decode(&rec); err != nil {
		return d.fail(d.classify(err))
	}
	d.current = rec
	return true
}

// Record returns the current element, nil when it was a JSON null.
func (d *RecordDecoder) Record() *OrderRecord {
	return d.current
}

// Err returns the error that stopped iteration, or nil at a clean end.
func (d *RecordDecoder) Err() error {
	return d.err
}

// BytesRead reports how many body bytes have been consumed so far.
func (d *RecordDecoder) BytesRead() int64 {
	return d.counter.BytesRead
}

// finish ends iteration after the closing bracket. Only whitespace may follow.
func (d *RecordDecoder) finish() bool {
	_, err := d.dec.Token()
	switch {
	case err == io.EOF:
		d.done = true
		return false
	case err != nil:
		return d.fail(d.classify(err))
	default:
		return d.fail(&DecodeError{Index: d.index, Err: ErrTrailingData})
	}
}

func (d *RecordDecoder) fail(err error) bool {
	d.err = err
	d.done = true
	return false
}

// classify separates transport failures, which are returned untouched, from
// problems with the JSON itself, which become a DecodeError.
func (d *RecordDecoder) classify(err error) error {
	if readErr := d.counter.ReadErr(); readErr != nil && errors.Is(err, readErr) {
		return err
	}
	return &DecodeError{Index: d.index, Err: err}
}
