package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcomes of a dispatched command.
const (
	OutcomeOK             = "ok"
	OutcomeInvalidRequest = "invalid_request"
	OutcomeKeyNotFound    = "key_not_found"
	OutcomeError          = "error"
)

// Recorder counts and times dispatched commands on its own registry.
type Recorder struct {
	registry *prometheus.Registry

	commands *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "litecache",
			Name:      "commands_total",
			Help:      "Commands dispatched, by verb and outcome.",
		}, []string{"verb", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "litecache",
			Name:      "command_duration_seconds",
			Help:      "Time taken to parse and execute a command.",
			Buckets:   prometheus.ExponentialBuckets(0.000001, 4, 10),
		}, []string{"verb"}),
	}

	r.registry.MustRegister(r.commands, r.duration)
	r.registry.MustRegister(prometheus.NewGoCollector())

	return r
}

// Observe records one command. verb should already be normalised to a
// bounded set of values.
func (r *Recorder) Observe(verb, outcome string, took time.Duration) {
	if r == nil {
		return
	}

	r.commands.WithLabelValues(verb, outcome).Inc()
	r.duration.WithLabelValues(verb).Observe(took.Seconds())
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
