package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	resp "orientation-api/internal/transport/http/response"
)

// EventWindow 组队相关写操作只在开放时间内放行
func EventWindow(open func(time.Time) bool, now func() time.Time) gin.HandlerFunc {
	if now == nil {
		now = time.Now
	}
	return func(c *gin.Context) {
		if !open(now()) {
			reject("window")
			resp.Abort(c, resp.CodeForbidden, "Group registration is closed")
			return
		}
		c.Next()
	}
}
