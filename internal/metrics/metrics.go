// Package metrics exposes batch accounting in Prometheus format.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JonMunkholm/salesprep/internal/core"
)

// Batch results used as the "result" label.
const (
	ResultOK          = "ok"
	ResultInvalidJSON = "invalid_json"
	ResultCancelled   = "cancelled"
	ResultError       = "error"
	ResultBusy        = "busy"
)

// Registry holds the service's collectors on a private registry so tests
// can create as many as they like.
type Registry struct {
	reg *prometheus.Registry

	Batches       *prometheus.CounterVec
	RecordsRead   prometheus.Counter
	RecordsFailed prometheus.Counter
	SalesRecords  prometheus.Counter
	BatchDuration prometheus.Histogram
	BodyBytes     prometheus.Counter
	ActiveBatches prometheus.GaugeFunc
	MaxBatches    prometheus.GaugeFunc
}

// NewRegistry creates the collectors. limiter may be nil, in which case the
// concurrency gauges report zero.
func NewRegistry(limiter *core.BatchLimiter) *Registry {
	r := prometheus.NewRegistry()

	batches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "salesprep_batches_total",
		Help: "Transform requests by result.",
	}, []string{"result"})
	recordsRead := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "salesprep_records_read_total",
		Help: "Array elements read, nulls included.",
	})
	recordsFailed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "salesprep_records_failed_total",
		Help: "Orders rejected by validation.",
	})
	salesRecords := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "salesprep_sales_records_total",
		Help: "Sales rows produced.",
	})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "salesprep_batch_duration_seconds",
		Help:    "Time spent streaming and transforming one batch.",
		Buckets: prometheus.DefBuckets,
	})
	bodyBytes := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "salesprep_request_body_bytes_total",
		Help: "Request body bytes consumed by the decoder.",
	})
	active := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "salesprep_active_batches",
		Help: "Batches currently holding a limiter slot.",
	}, func() float64 {
		if limiter == nil {
			return 0
		}
		return float64(limiter.ActiveCount())
	})
	capacity := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "salesprep_max_concurrent_batches",
		Help: "Configured limiter capacity.",
	}, func() float64 {
		if limiter == nil {
			return 0
		}
		return float64(limiter.Status().MaxConcurrent)
	})

	r.MustRegister(batches, recordsRead, recordsFailed, salesRecords, duration, bodyBytes, active, capacity)
	return &Registry{
		reg:           r,
		Batches:       batches,
		RecordsRead:   recordsRead,
		RecordsFailed: recordsFailed,
		SalesRecords:  salesRecords,
		BatchDuration: duration,
		BodyBytes:     bodyBytes,
		ActiveBatches: active,
		MaxBatches:    capacity,
	}
}

// ObserveBatch implements core.BatchObserver.
func (r *Registry) ObserveBatch(summary core.BatchSummary, d time.Duration, err error) {
	r.Batches.WithLabelValues(Result(err)).Inc()
	r.RecordsRead.Add(float64(summary.TotalInputRecords))
	r.RecordsFailed.Add(float64(summary.TotalFailed))
	r.SalesRecords.Add(float64(summary.TotalSalesRecords))
	r.BatchDuration.Observe(d.Seconds())
}

// ObserveRejected counts a request turned away before streaming started.
func (r *Registry) ObserveRejected(err error) {
	r.Batches.WithLabelValues(Result(err)).Inc()
}

// ObserveBodyBytes adds the bytes a batch consumed from its request body.
func (r *Registry) ObserveBodyBytes(n int64) {
	r.BodyBytes.Add(float64(n))
}

// Handler serves the registry in the Prometheus text format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// Result classifies a batch error into a label value.
func Result(err error) string {
	var de *core.DecodeError
	switch {
	case err == nil:
		return ResultOK
	case errors.As(err, &de):
		return ResultInvalidJSON
	case errors.Is(err, core.ErrTooManyBatches):
		return ResultBusy
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ResultCancelled
	default:
		return ResultError
	}
}
