package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "shortestmaze"

// Metrics holds the Prometheus collectors exported on /metrics
type Metrics struct {
	httpDuration       *prometheus.HistogramVec
	responseStatusCode *prometheus.CounterVec
	moves              *prometheus.CounterVec
	pathQueries        *prometheus.CounterVec
	expandedNodes      prometheus.Histogram
	gamesFinished      *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "request_duration_seconds",
			Help:      "The duration of HTTP requests",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5},
		}, []string{"method", "path"}),
		responseStatusCode: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "response_status_code",
			Help:      "The status code of HTTP responses",
		}, []string{"status", "method", "path"}),
		moves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "moves_total",
			Help:      "Moves attempted by players",
		}, []string{"result"}),
		pathQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "shortestpath_query_count",
			Help:      "The total number of shortest path queries",
		}, []string{"found"}),
		expandedNodes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "shortestpath_expanded_nodes",
			Help:      "Nodes expanded per shortest path query",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		gamesFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "games_finished_total",
			Help:      "Games that reached the destination",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.httpDuration, m.responseStatusCode, m.moves, m.pathQueries, m.expandedNodes, m.gamesFinished)
	return m
}

func (m *Metrics) observeMove(success bool) {
	result := "blocked"
	if success {
		result = "ok"
	}
	m.moves.WithLabelValues(result).Inc()
}

func (m *Metrics) observeGameOver(victory bool) {
	outcome := "defeat"
	if victory {
		outcome = "victory"
	}
	m.gamesFinished.WithLabelValues(outcome).Inc()
}

func (m *Metrics) observePath(found bool, expanded int) {
	m.pathQueries.WithLabelValues(strconv.FormatBool(found)).Inc()
	m.expandedNodes.Observe(float64(expanded))
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{w, http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware records duration and status per route template, so session
// IDs in the URL do not create new label values.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tpl, err := route.GetPathTemplate(); err == nil {
				path = tpl
			}
		}

		rw := newResponseWriter(w)
		start := time.Now()

		next.ServeHTTP(rw, r)

		m.httpDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
		m.responseStatusCode.WithLabelValues(strconv.Itoa(rw.statusCode), r.Method, path).Inc()
	})
}
