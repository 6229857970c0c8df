package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ClientRequests counts backend calls by operation and outcome (success, error).
	ClientRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "todo_client_requests_total",
			Help: "Total number of requests sent to the todo backend",
		},
		[]string{"op", "outcome"},
	)

	ClientRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "todo_client_request_duration_seconds",
			Help:    "Duration of requests sent to the todo backend",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"op"},
	)

	// StoreErrors counts failures recorded by the store, validation included.
	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "todo_store_errors_total",
			Help: "Total number of failed store operations",
		},
		[]string{"op"},
	)
)

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Serve starts the metrics endpoint in the background and returns the server
// so callers can shut it down.
func Serve(addr string, onErr func(error)) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed && onErr != nil {
			onErr(err)
		}
	}()
	return srv
}
