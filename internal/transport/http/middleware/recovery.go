package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	resp "orientation-api/internal/transport/http/response"
)

// Recovery panic 统一记日志并返回 500 信封
func Recovery(l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				l.Error("panic recovered",
					zap.Any("panic", rec),
					zap.String("rid", c.GetString(KeyRequestID)),
					zap.String("uid", c.GetString(KeyUserID)),
					zap.String("method", c.Request.Method),
					zap.String("route", c.FullPath()),
					zap.Stack("stack"),
				)
				reject("panic")
				// 已经写出部分响应时只能断开
				if c.Writer.Written() {
					c.Abort()
					return
				}
				resp.Abort(c, resp.CodeServerError, "")
			}
		}()
		c.Next()
	}
}
