package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestDuration records request latency by route and status.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "salons_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	// MessagesPosted counts messages created, by scope (room or channel) and kind.
	MessagesPosted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "salons_messages_posted_total",
		Help: "Total number of messages posted",
	}, []string{"scope", "kind"})

	// ModerationActions counts successful moderation actions by type.
	ModerationActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "salons_moderation_actions_total",
		Help: "Total number of moderation actions",
	}, []string{"action"})

	// StreamSubscribers is the number of open SSE and WebSocket streams.
	StreamSubscribers = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "salons_stream_subscribers",
		Help: "Number of open event streams",
	}, []string{"transport"})
)

// Middleware observes request latency. The route label is the matched pattern,
// so slugs and IDs do not explode cardinality.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
