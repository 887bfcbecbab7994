package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNS = "orientation"

var (
	httpReqTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNS, Subsystem: "http",
			Name: "requests_total", Help: "HTTP requests by route, method and status class",
		},
		[]string{"route", "method", "class"},
	)
	httpLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: metricsNS, Subsystem: "http",
			Name:    "request_duration_seconds",
			Help:    "HTTP latency by route",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"route", "method"},
	)
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNS, Subsystem: "http",
		Name: "in_flight", Help: "Requests currently being served",
	})
	// 被限流/超时/窗口等中间件拒绝的请求
	httpRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNS, Subsystem: "http",
			Name: "rejected_total", Help: "Requests rejected before reaching a handler",
		},
		[]string{"reason"},
	)
)

func init() { prometheus.MustRegister(httpReqTotal, httpLatency, httpInFlight, httpRejected) }

func reject(reason string) { httpRejected.WithLabelValues(reason).Inc() }

// statusClass 2xx/4xx/5xx，避免 status 标签基数过高
func statusClass(code int) string {
	return strconv.Itoa(code/100) + "xx"
}

func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		c.Next()

		// 未匹配路由统一记为 unmatched，防止扫描路径撑爆标签
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpReqTotal.WithLabelValues(route, c.Request.Method, statusClass(c.Writer.Status())).Inc()
		httpLatency.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}
