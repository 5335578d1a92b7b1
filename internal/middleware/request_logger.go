package middleware

import (
  "time"
  "github.com/gin-gonic/gin"
  "github.com/yungbote/mindmentor-backend/internal/logger"
)

type RequestLogger struct {
  log *logger.Logger
}

func NewRequestLogger(log *logger.Logger) *RequestLogger {
  return &RequestLogger{log: log.With("Middleware", "RequestLogger")}
}

// Log emits one structured line per request after the handler chain
// has run, including any errors gin collected along the way.
func (rl *RequestLogger) Log() gin.HandlerFunc {
  return func(c *gin.Context) {
    start := time.Now()
    c.Next()
    kvs := []interface{}{
      "method", c.Request.Method,
      "path", c.FullPath(),
      "status", c.Writer.Status(),
      "duration_ms", time.Since(start).Milliseconds(),
      "client_ip", c.ClientIP(),
    }
    if len(c.Errors) > 0 {
      kvs = append(kvs, "errors", c.Errors.String())
      rl.log.Warn("request completed with errors", kvs...)
      return
    }
    if c.Writer.Status() >= 500 {
      rl.log.Error("request failed", kvs...)
      return
    }
    rl.log.Info("request completed", kvs...)
  }
}
