package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	resp "orientation-api/internal/transport/http/response"
)

// RateLimit 全局令牌桶
func RateLimit(rps rate.Limit, burst int) gin.HandlerFunc {
	lim := rate.NewLimiter(rps, burst)
	return func(c *gin.Context) {
		if lim.Allow() {
			c.Next()
			return
		}
		reject("rate")
		resp.Abort(c, resp.CodeTooMany, "")
	}
}

type ipBucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// 闲置超过该时长的 IP 桶会被清掉
const ipIdleTTL = 10 * time.Minute

// RateLimitPerIP 每 IP 一个令牌桶；报名开放瞬间同一宿舍 NAT 后会共用一个桶
func RateLimitPerIP(rps rate.Limit, burst int) gin.HandlerFunc {
	var (
		mu        sync.Mutex
		buckets   = make(map[string]*ipBucket)
		lastSweep = time.Now()
	)
	return func(c *gin.Context) {
		now := time.Now()
		ip := c.ClientIP()

		mu.Lock()
		if now.Sub(lastSweep) > ipIdleTTL {
			for k, b := range buckets {
				if now.Sub(b.seen) > ipIdleTTL {
					delete(buckets, k)
				}
			}
			lastSweep = now
		}
		b, ok := buckets[ip]
		if !ok {
			b = &ipBucket{lim: rate.NewLimiter(rps, burst)}
			buckets[ip] = b
		}
		b.seen = now
		mu.Unlock()

		if b.lim.AllowN(now, 1) {
			c.Next()
			return
		}
		reject("rate_ip")
		resp.Abort(c, resp.CodeTooMany, "")
	}
}
