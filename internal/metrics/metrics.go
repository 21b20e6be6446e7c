package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Submission outcomes, used as the "outcome" label.
const (
	OutcomeAccepted      = "accepted"
	OutcomeInvalid       = "invalid"
	OutcomeSaveFailed    = "save_failed"
	OutcomePublishFailed = "publish_failed"
	OutcomeError         = "error"
)

type Registry struct {
	reg                *prometheus.Registry
	Submissions        *prometheus.CounterVec
	SubmissionDuration prometheus.Histogram
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_submissions_total",
		Help: "Order submissions by outcome.",
	}, []string{"outcome"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "order_submission_duration_seconds",
		Help:    "Time spent handling an order submission.",
		Buckets: prometheus.DefBuckets,
	})

	r.MustRegister(submissions, duration)
	return &Registry{
		reg:                r,
		Submissions:        submissions,
		SubmissionDuration: duration,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
