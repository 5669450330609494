package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	// VideoTokens 按结果统计视频令牌的签发与校验，reason 仅在拒绝时非空
	VideoTokens = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_tokens_total",
			Help: "Video access token issue/verify outcomes",
		},
		[]string{"op", "result", "reason"},
	)

	EnrollmentTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enrollment_transitions_total",
			Help: "Enrollment state transitions",
		},
		[]string{"to"},
	)

	SyncItems = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_items_total",
			Help: "Offline sync items processed",
		},
		[]string{"action", "result"},
	)
)

var registerOnce sync.Once

func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(RequestCounter)
		prometheus.MustRegister(RequestDuration)
		prometheus.MustRegister(VideoTokens)
		prometheus.MustRegister(EnrollmentTransitions)
		prometheus.MustRegister(SyncItems)
	})
}

func ObserveVideoToken(op, reason string) {
	result := "ok"
	if reason != "" {
		result = "denied"
	}
	VideoTokens.WithLabelValues(op, result, reason).Inc()
}

func ObserveSyncItem(action string, ok bool) {
	result := "ok"
	if !ok {
		result = "failed"
	}
	SyncItems.WithLabelValues(action, result).Inc()
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		// 未匹配路由统一归为 unmatched，避免路径基数爆炸
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		RequestCounter.WithLabelValues(
			c.Request.Method,
			endpoint,
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			endpoint,
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
