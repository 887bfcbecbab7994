package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"

	resp "orientation-api/internal/transport/http/response"
)

// 排队等待名额的上限，超过直接 503
const maxQueueWait = 2 * time.Second

// ConcurrencyLimit 限制同时在处理的请求数，保护 DB 连接池
func ConcurrencyLimit(max int64) gin.HandlerFunc {
	sem := semaphore.NewWeighted(max)
	return func(c *gin.Context) {
		if !sem.TryAcquire(1) {
			ctx, cancel := context.WithTimeout(c.Request.Context(), maxQueueWait)
			err := sem.Acquire(ctx, 1)
			cancel()
			if err != nil {
				reject("busy")
				resp.Abort(c, resp.CodeUnavailable, "Server busy")
				return
			}
		}
		defer sem.Release(1)
		c.Next()
	}
}
