package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trade_http_requests_total",
			Help: "Total number of HTTP requests processed by the trade service.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trade_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	matchesReturned = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "trade_matches_returned",
			Help:    "Number of candidates returned per match search.",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
		},
	)
	sessionTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trade_session_transitions_total",
			Help: "Total number of trade sessions entering each status.",
		},
		[]string{"to"},
	)
	tradeMessagesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "trade_messages_total",
			Help: "Total number of trade session messages stored.",
		},
	)
	reviewPromptErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "trade_review_prompt_errors_total",
			Help: "Total number of review prompts that could not be enqueued.",
		},
	)
	wsActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "trade_ws_active_connections",
			Help: "Number of active trade session websocket connections.",
		},
	)
	wsEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trade_ws_events_total",
			Help: "Total number of websocket events.",
		},
		[]string{"event"},
	)
	amqpPublishErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "trade_amqp_publish_errors_total",
			Help: "Total number of AMQP publish errors.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		matchesReturned,
		sessionTransitionsTotal,
		tradeMessagesTotal,
		reviewPromptErrorsTotal,
		wsActiveConnections,
		wsEventsTotal,
		amqpPublishErrorsTotal,
	)
}

func HTTPMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()

		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

// MetricsHandler serves the default Prometheus registry.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

func ObserveMatchesReturned(n int) {
	matchesReturned.Observe(float64(n))
}

func IncSessionTransition(to string) {
	sessionTransitionsTotal.WithLabelValues(to).Inc()
}

func IncTradeMessage() {
	tradeMessagesTotal.Inc()
}

func IncReviewPromptError() {
	reviewPromptErrorsTotal.Inc()
}

func IncWSActive() {
	wsActiveConnections.Inc()
}

func DecWSActive() {
	wsActiveConnections.Dec()
}

func IncWSEvent(event string) {
	wsEventsTotal.WithLabelValues(event).Inc()
}

func IncAMQPPublishError() {
	amqpPublishErrorsTotal.Inc()
}
