package httpmiddleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"campus-attendance/internal/logging"
	"campus-attendance/internal/metrics"
)

const RequestIDHeader = "X-Request-ID"

// RequestID reuses the caller's X-Request-ID or generates one, and echoes it back.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(logging.RequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// Metrics records request counts and latency by route template.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// InvalidateOnWrite calls inv after every successful request that is not a read.
// Routes in readOnly are POST queries and never invalidate.
func InvalidateOnWrite(inv Invalidator, log *zap.Logger, readOnly ...string) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(readOnly))
	for _, r := range readOnly {
		skip[r] = struct{}{}
	}
	return func(c *gin.Context) {
		c.Next()

		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			return
		}
		if c.Writer.Status() >= http.StatusBadRequest {
			return
		}
		if _, ok := skip[c.FullPath()]; ok {
			return
		}
		if err := inv.Invalidate(c.Request.Context()); err != nil {
			log.Warn("invalidate cached stats", zap.Error(err), zap.String("route", c.FullPath()))
		}
	}
}

// SecurityHeaders sets conservative browser security headers; HSTS only in release mode.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		c.Next()
	}
}
