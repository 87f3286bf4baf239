package observability

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics stores Prometheus collectors used by API and worker flows.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal        *prometheus.CounterVec
	httpRequestDuration      *prometheus.HistogramVec
	transitionsTotal         *prometheus.CounterVec
	interviewsScheduledTotal prometheus.Counter
	inboxAppendsTotal        *prometheus.CounterVec
	outboundSentTotal        *prometheus.CounterVec
	outboundFailedTotal      *prometheus.CounterVec
	outboundSendDuration     *prometheus.HistogramVec
	workerInflight           *prometheus.GaugeVec
	remindersScheduledTotal  prometheus.Counter
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pipeline_tracker",
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests processed by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "pipeline_tracker",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds by method and path.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		transitionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pipeline_tracker",
				Name:      "status_transitions_total",
				Help:      "Total number of committed application status transitions by target status.",
			},
			[]string{"to"},
		),
		interviewsScheduledTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "pipeline_tracker",
				Name:      "interviews_scheduled_total",
				Help:      "Total number of interviews scheduled.",
			},
		),
		inboxAppendsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pipeline_tracker",
				Name:      "inbox_appends_total",
				Help:      "Total number of notifications appended to candidate inboxes by type.",
			},
			[]string{"type"},
		),
		outboundSentTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pipeline_tracker",
				Name:      "outbound_sent_total",
				Help:      "Total number of outbound emails sent successfully by kind.",
			},
			[]string{"kind"},
		),
		outboundFailedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pipeline_tracker",
				Name:      "outbound_failed_total",
				Help:      "Total number of outbound emails that ended in failed state.",
			},
			[]string{"kind", "reason"},
		),
		outboundSendDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "pipeline_tracker",
				Name:      "outbound_send_duration_seconds",
				Help:      "Email gateway send duration in seconds grouped by kind.",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
			},
			[]string{"kind"},
		),
		workerInflight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "pipeline_tracker",
				Name:      "worker_inflight",
				Help:      "Current number of in-flight delivery operations grouped by kind.",
			},
			[]string{"kind"},
		),
		remindersScheduledTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "pipeline_tracker",
				Name:      "reminders_scheduled_total",
				Help:      "Total number of interview reminders claimed and queued for delivery.",
			},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.transitionsTotal,
		m.interviewsScheduledTotal,
		m.inboxAppendsTotal,
		m.outboundSentTotal,
		m.outboundFailedTotal,
		m.outboundSendDuration,
		m.workerInflight,
		m.remindersScheduledTotal,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) HTTPMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		path := routePath(c)
		// Avoid self-scrape noise for request counters.
		if path == "/metrics" {
			return err
		}

		m.recordHTTPRequest(c.Method(), path, statusFromResult(c, err), time.Since(start))
		return err
	}
}

func (m *Metrics) IncTransition(to string) {
	if m == nil {
		return
	}
	m.transitionsTotal.WithLabelValues(normalizeLabel(to)).Inc()
}

func (m *Metrics) IncInterviewScheduled() {
	if m == nil {
		return
	}
	m.interviewsScheduledTotal.Inc()
}

func (m *Metrics) IncInboxAppend(notificationType string) {
	if m == nil {
		return
	}
	m.inboxAppendsTotal.WithLabelValues(normalizeLabel(notificationType)).Inc()
}

func (m *Metrics) IncOutboundSent(kind string) {
	if m == nil {
		return
	}
	m.outboundSentTotal.WithLabelValues(normalizeLabel(kind)).Inc()
}

func (m *Metrics) IncOutboundFailed(kind string, reason string) {
	if m == nil {
		return
	}
	reasonLabel := strings.TrimSpace(strings.ToLower(reason))
	if reasonLabel == "" {
		reasonLabel = "unknown"
	}
	m.outboundFailedTotal.WithLabelValues(normalizeLabel(kind), reasonLabel).Inc()
}

func (m *Metrics) ObserveOutboundSendDuration(kind string, duration time.Duration) {
	if m == nil {
		return
	}
	seconds := duration.Seconds()
	if seconds < 0 {
		seconds = 0
	}
	m.outboundSendDuration.WithLabelValues(normalizeLabel(kind)).Observe(seconds)
}

func (m *Metrics) IncWorkerInFlight(kind string) {
	if m == nil {
		return
	}
	m.workerInflight.WithLabelValues(normalizeLabel(kind)).Inc()
}

func (m *Metrics) DecWorkerInFlight(kind string) {
	if m == nil {
		return
	}
	m.workerInflight.WithLabelValues(normalizeLabel(kind)).Dec()
}

func (m *Metrics) IncReminderScheduled() {
	if m == nil {
		return
	}
	m.remindersScheduledTotal.Inc()
}

func (m *Metrics) recordHTTPRequest(method string, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}

	methodLabel := strings.ToUpper(strings.TrimSpace(method))
	if methodLabel == "" {
		methodLabel = "UNKNOWN"
	}
	pathLabel := strings.TrimSpace(path)
	if pathLabel == "" {
		pathLabel = "unmatched"
	}

	m.httpRequestsTotal.WithLabelValues(methodLabel, pathLabel, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(methodLabel, pathLabel).Observe(duration.Seconds())
}

func routePath(c *fiber.Ctx) string {
	if c == nil {
		return "unmatched"
	}

	if route := c.Route(); route != nil {
		if path := strings.TrimSpace(route.Path); path != "" {
			return path
		}
	}
	return "unmatched"
}

func statusFromResult(c *fiber.Ctx, err error) int {
	if err != nil {
		if fiberErr, ok := err.(*fiber.Error); ok {
			return fiberErr.Code
		}
		return fiber.StatusInternalServerError
	}

	if c == nil {
		return fiber.StatusOK
	}

	status := c.Response().StatusCode()
	if status == 0 {
		return fiber.StatusOK
	}
	return status
}

func normalizeLabel(value string) string {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return "unknown"
	}
	return normalized
}
