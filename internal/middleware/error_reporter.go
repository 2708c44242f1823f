package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-api/pkg/middleware/requestid"
)

type errorCapturer interface {
	Capture(err error, tags map[string]string)
}

// ErrorReporter forwards errors attached to 5xx responses.
func ErrorReporter(capturer errorCapturer, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Status() < http.StatusInternalServerError || len(c.Errors) == 0 {
			return
		}
		tags := map[string]string{
			"method":     c.Request.Method,
			"route":      c.FullPath(),
			"request_id": requestid.Value(c),
		}
		for _, ginErr := range c.Errors {
			logger.Error("request failed", zap.Error(ginErr.Err), zap.String("route", tags["route"]), zap.String("request_id", tags["request_id"]))
			if capturer != nil {
				capturer.Capture(ginErr.Err, tags)
			}
		}
	}
}
