package core

import (
	"context"
	"io"
	"log/slog"
	"time"
)

// UnknownRecordIdentifier labels a failed order that had no id.
const UnknownRecordIdentifier = "Unknown"

// defaultFailureMessage is reported when a transformer fails without a message.
const defaultFailureMessage = "Transform failed"

// BatchObserver is notified once per processed stream, successful or not.
type BatchObserver interface {
	ObserveBatch(summary BatchSummary, duration time.Duration, err error)
}

// StreamProcessor drives a Transformer over a RecordSource and accumulates
// the batch result. Records are processed strictly in input order, one at a
// time.
type StreamProcessor struct {
	transformer Transformer
	observer    BatchObserver
	logger      *slog.Logger
}

// NewStreamProcessor creates a processor. observer may be nil.
func NewStreamProcessor(t Transformer, observer BatchObserver) *StreamProcessor {
	return &StreamProcessor{
		transformer: t,
		observer:    observer,
		logger:      slog.Default(),
	}
}

// WithLogger sets the logger used for batch-level events.
func (p *StreamProcessor) WithLogger(logger *slog.Logger) *StreamProcessor {
	p.logger = logger
	return p
}

// Process consumes src and returns the accumulated batch.
//
// Null elements are counted but otherwise skipped. Validation failures become
// entries in BatchResult.Errors and processing continues. If src stops with an
// error (malformed JSON, cancellation) the partial batch is returned together
// with that error; callers must not publish it.
func (p *StreamProcessor) Process(ctx context.Context, src RecordSource) (*BatchResult, error) {
	start := time.Now()
	batch := NewBatchResult()

	for src.Next() {
		batch.Summary.TotalInputRecords++

		rec := src.Record()
		if rec == nil {
			continue
		}

		outcome := p.transformer.Transform(rec)
		if outcome.Success {
			batch.Data = append(batch.Data, outcome.Records...)
			batch.Summary.TotalSalesRecords += len(outcome.Records)
			continue
		}

		batch.Errors = append(batch.Errors, TransformationError{
			RecordIdentifier: recordIdentifier(rec),
			Error:            failureMessage(outcome),
		})
		batch.Summary.TotalFailed++
	}

	err := src.Err()
	duration := time.Since(start)
	if p.observer != nil {
		p.observer.ObserveBatch(batch.Summary, duration, err)
	}

	if err != nil {
		p.logger.WarnContext(ctx, "batch aborted",
			"records_read", batch.Summary.TotalInputRecords,
			"error", err,
		)
		return batch, err
	}

	p.logger.InfoContext(ctx, "batch processed",
		"records_read", batch.Summary.TotalInputRecords,
		"failed", batch.Summary.TotalFailed,
		"sales_records", batch.Summary.TotalSalesRecords,
		"duration_ms", duration.Milliseconds(),
	)
	return batch, nil
}

// ProcessReader decodes r as a JSON array of orders and processes it.
func (p *StreamProcessor) ProcessReader(ctx context.Context, r io.Reader) (*BatchResult, error) {
	return p.Process(ctx, NewRecordDecoder(ctx, r))
}

func recordIdentifier(rec *OrderRecord) string {
	if isBlank(rec.ID) {
		return UnknownRecordIdentifier
	}
	return rec.ID
}

func failureMessage(o Outcome) string {
	if o.Error == "" {
		return defaultFailureMessage
	}
	return o.Error
}
