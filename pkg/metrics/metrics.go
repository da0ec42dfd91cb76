package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PostingMetrics records the outcome of stock document postings.
type PostingMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
}

// NewPostingMetrics registers the posting metrics on the provided registerer.
func NewPostingMetrics(reg prometheus.Registerer) *PostingMetrics {
	if reg == nil {
		return &PostingMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "posting_duration_seconds",
		Help:    "Duration of stock document postings in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"document"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "posting_success",
		Help: "Successful stock document postings.",
	}, []string{"document"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "posting_failure",
		Help: "Failed stock document postings.",
	}, []string{"document"})
	reg.MustRegister(duration, success, failure)
	return &PostingMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
	}
}

// ObserveDuration records the duration for the named document kind.
func (p *PostingMetrics) ObserveDuration(document string, duration time.Duration) {
	if p == nil || p.duration == nil {
		return
	}
	p.duration.WithLabelValues(normalizeLabel(document)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named document kind.
func (p *PostingMetrics) IncSuccess(document string) {
	if p == nil || p.success == nil {
		return
	}
	p.success.WithLabelValues(normalizeLabel(document)).Inc()
}

// IncFailure increments the failure counter for the named document kind.
func (p *PostingMetrics) IncFailure(document string) {
	if p == nil || p.failure == nil {
		return
	}
	p.failure.WithLabelValues(normalizeLabel(document)).Inc()
}

func normalizeLabel(document string) string {
	if document == "" {
		return "unknown"
	}
	return document
}
