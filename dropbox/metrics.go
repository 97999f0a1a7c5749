package dropbox

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// instrumentTransport wraps next with request counters and latency histograms.
// Collectors already registered on reg by an earlier client are reused.
func instrumentTransport(reg prometheus.Registerer, next http.RoundTripper) (http.RoundTripper, error) {
	if next == nil {
		next = http.DefaultTransport
	}

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "paperbox",
		Subsystem: "client",
		Name:      "requests_total",
		Help:      "Dropbox API requests by HTTP status code.",
	}, []string{"code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "paperbox",
		Subsystem: "client",
		Name:      "request_duration_seconds",
		Help:      "Dropbox API request latency until response headers arrive.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"code"})
	inflight := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "paperbox",
		Subsystem: "client",
		Name:      "requests_in_flight",
		Help:      "Dropbox API requests currently in flight.",
	})

	var err error
	if requests, err = registerOrReuse(reg, requests); err != nil {
		return nil, err
	}
	if duration, err = registerOrReuse(reg, duration); err != nil {
		return nil, err
	}
	if inflight, err = registerOrReuse(reg, inflight); err != nil {
		return nil, err
	}

	return promhttp.InstrumentRoundTripperInFlight(inflight,
		promhttp.InstrumentRoundTripperCounter(requests,
			promhttp.InstrumentRoundTripperDuration(duration, next),
		),
	), nil
}

func registerOrReuse[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, fmt.Errorf("%w: register metrics: %v", ErrInvalidConfig, err)
	}
	return c, nil
}
