package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Submission outcomes recorded by RecordSubmission.
const (
	OutcomeAccepted  = "accepted"
	OutcomeDuplicate = "duplicate"
	OutcomeInvalid   = "invalid"
	OutcomeFailed    = "failed"
)

// MetricsService encapsulates Prometheus instrumentation.
type MetricsService struct {
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	authEvents      *prometheus.CounterVec
	submissions     *prometheus.CounterVec
	slotBookings    *prometheus.CounterVec
	jobsProcessed   *prometheus.CounterVec
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	authEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_events_total",
		Help: "Sign-in, sign-up and sign-out attempts by actor and result",
	}, []string{"actor", "event", "result"})

	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "admission_submissions_total",
		Help: "Admission form submissions by outcome",
	}, []string{"outcome"})

	slotBookings := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "admission_slot_bookings_total",
		Help: "Exam slot bookings by result",
	}, []string{"result"})

	jobsProcessed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "background_jobs_total",
		Help: "Background jobs processed by type and result",
	}, []string{"type", "result"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, authEvents, submissions, slotBookings, jobsProcessed, goroutines)

	return &MetricsService{
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		authEvents:      authEvents,
		submissions:     submissions,
		slotBookings:    slotBookings,
		jobsProcessed:   jobsProcessed,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordAuthEvent counts an auth attempt. actor is parent or admin.
func (m *MetricsService) RecordAuthEvent(actor, event string, err error) {
	if m == nil {
		return
	}
	m.authEvents.WithLabelValues(actor, event, resultLabel(err)).Inc()
}

// RecordSubmission counts a form submission outcome.
func (m *MetricsService) RecordSubmission(outcome string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(outcome).Inc()
}

// RecordSlotBooking counts a slot booking attempt.
func (m *MetricsService) RecordSlotBooking(err error) {
	if m == nil {
		return
	}
	m.slotBookings.WithLabelValues(resultLabel(err)).Inc()
}

// RecordJob counts a processed background job.
func (m *MetricsService) RecordJob(jobType string, err error) {
	if m == nil {
		return
	}
	m.jobsProcessed.WithLabelValues(jobType, resultLabel(err)).Inc()
}

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
