package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/salesprep/internal/core"
	"github.com/JonMunkholm/salesprep/internal/logging"
)

// handleTransform streams a JSON array of orders through the pipeline.
// Memory use is bounded by the largest single order, not the body size.
// The request deadline covers both waiting for a slot and streaming; when it
// passes the handler itself answers 503 REQ003.
func (s *Server) handleTransform(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Server.RequestTimeout)
	defer cancel()

	if err := s.limiter.Acquire(ctx); err != nil {
		if s.metrics != nil {
			s.metrics.ObserveRejected(err)
		}
		s.respondError(w, r, err, statusFor(err))
		return
	}
	defer s.limiter.Release()

	body := http.MaxBytesReader(w, r.Body, s.cfg.Transform.MaxBodySize)
	dec := core.NewRecordDecoder(ctx, body)

	batch, err := s.processor.Process(ctx, dec)
	if s.metrics != nil {
		s.metrics.ObserveBodyBytes(dec.BytesRead())
	}
	if err != nil {
		// The partial batch is discarded; a failed stream is all-or-nothing.
		s.respondError(w, r, err, statusFor(err))
		return
	}

	logging.WithFields(ctx, "bytes", dec.BytesRead()).Debug("transform complete",
		"sales_records", batch.Summary.TotalSalesRecords,
	)
	writeJSON(w, r, http.StatusOK, batch)
}

// handleHealth reports liveness together with limiter occupancy.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"status":  "ok",
		"batches": s.limiter.Status(),
	})
}
