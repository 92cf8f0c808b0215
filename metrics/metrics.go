package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"dropzone/widget"
)

const namespace = "dropzone"

// Metrics groups the service counters. Use New with a dedicated registry in
// tests to avoid duplicate registration on the default one.
type Metrics struct {
	Selections   *prometheus.CounterVec
	Submissions  *prometheus.CounterVec
	Uploads      *prometheus.CounterVec
	LiveSessions prometheus.Gauge
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Selections: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "selections_total",
			Help:      "File selections by outcome.",
		}, []string{"result"}),
		Submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Form submit attempts by outcome.",
		}, []string{"result"}),
		Uploads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Multipart uploads received by outcome.",
		}, []string{"result"}),
		LiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_sessions",
			Help:      "Open websocket page sessions.",
		}),
	}
}

// Result maps a selection or upload error to a low-cardinality label.
func Result(err error) string {
	switch {
	case err == nil:
		return "accepted"
	case errors.Is(err, widget.ErrInvalidFileType):
		return "invalid_type"
	case errors.Is(err, widget.ErrFileTooLarge):
		return "too_large"
	case errors.Is(err, widget.ErrNoFileSelected):
		return "no_file"
	case errors.Is(err, widget.ErrMalformedFile):
		return "malformed"
	default:
		return "error"
	}
}
