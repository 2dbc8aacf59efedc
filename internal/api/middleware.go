package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	// SessionCookie names the cookie carrying the shopper's session id.
	SessionCookie = "grocery_session-id"

	ctxSessionID = "session_id"
	ctxLogger    = "logger"
)

// SessionMiddleware makes sure every request has a session id, issuing a new
// cookie when the request has none or an invalid one.
func SessionMiddleware(maxAge int, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(SessionCookie)
		if err != nil || uuid.Validate(id) != nil {
			id = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(SessionCookie, id, maxAge, "/", "", secure, true)
		}
		c.Set(ctxSessionID, id)
		c.Next()
	}
}

// LogMiddleware attaches a request scoped logger and logs each response.
func LogMiddleware(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqLog := log.WithFields(logrus.Fields{
			"http.req.path":   c.Request.URL.Path,
			"http.req.method": c.Request.Method,
			"http.req.id":     uuid.NewString(),
			"session":         c.GetString(ctxSessionID),
		})
		c.Set(ctxLogger, reqLog)

		c.Next()

		entry := reqLog.WithFields(logrus.Fields{
			"http.resp.status":  c.Writer.Status(),
			"http.resp.took_ms": time.Since(start).Milliseconds(),
			"http.resp.bytes":   c.Writer.Size(),
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Error("request failed")
			return
		}
		entry.Debug("request complete")
	}
}

func requestLogger(c *gin.Context) logrus.FieldLogger {
	if v, ok := c.Get(ctxLogger); ok {
		if l, ok := v.(logrus.FieldLogger); ok {
			return l
		}
	}
	return logrus.StandardLogger()
}
