package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	resp "orientation-api/internal/transport/http/response"
)

// MaxBodyBytes 声明长度超限直接 413；分块上传的由 MaxBytesReader 截断，绑定时报 400
func MaxBodyBytes(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > n {
			reject("body_size")
			resp.Abort(c, resp.CodeTooLarge, "Request body too large")
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		}
		c.Next()
	}
}
