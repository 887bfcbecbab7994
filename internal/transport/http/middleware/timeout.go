package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	resp "orientation-api/internal/transport/http/response"
)

// Timeout 给下游 DB 调用一个截止时间；handler 没写出响应时补 504
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
		if c.Writer.Written() {
			return
		}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			reject("timeout")
			resp.Abort(c, resp.CodeTimeout, "Request timed out")
		}
	}
}
