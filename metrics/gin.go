package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// 常见的标签
const (
	LabelMethod      = "method"
	LabelRoute       = "route"
	LabelStatusClass = "status_class"
)

// UnknownRoute 未命中路由时的统一标签值
const UnknownRoute = "unknown"

// HTTPServerMetrics HTTP 服务端 RED 指标集合
type HTTPServerMetrics struct {
	requests Counter
	duration Histogram
}

// NewHTTPServerMetrics 创建 HTTP 服务端指标集合
func NewHTTPServerMetrics(meter Meter) (*HTTPServerMetrics, error) {
	requests, err := meter.Counter("http_server_requests_total", "Total HTTP requests")
	if err != nil {
		return nil, err
	}
	duration, err := meter.Histogram("http_server_request_duration_seconds", "HTTP request duration")
	if err != nil {
		return nil, err
	}
	return &HTTPServerMetrics{requests: requests, duration: duration}, nil
}

// Observe 记录一次请求
func (h *HTTPServerMetrics) Observe(method, route string, status int, elapsed time.Duration) {
	labels := []Label{
		L(LabelMethod, method),
		L(LabelRoute, route),
		L(LabelStatusClass, HTTPStatusClass(status)),
	}
	h.requests.Inc(labels...)
	h.duration.Observe(elapsed.Seconds(), labels...)
}

// HTTPStatusClass 返回 HTTP 状态类标签值：1xx/2xx/3xx/4xx/5xx/unknown
func HTTPStatusClass(status int) string {
	if status < 100 || status > 599 {
		return "unknown"
	}
	return strconv.Itoa(status/100) + "xx"
}

// GinHTTPMiddleware 返回一个可重用的 Gin 中间件，用于记录 HTTP RED 指标
func GinHTTPMiddleware(httpMetrics *HTTPServerMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if httpMetrics == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			// 未命中路由时统一收敛，避免将原始 URL Path 作为标签导致高基数
			route = UnknownRoute
		}

		httpMetrics.Observe(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
