package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"orientation-api/internal/core/config"
	"orientation-api/internal/core/server"
	mdw "orientation-api/internal/transport/http/middleware"
	resp "orientation-api/internal/transport/http/response"
)

// HealthCheck 通常是 DB ping；为空则只回 ok
type HealthCheck func(ctx context.Context) error

// baseEngine 两个进程共用的中间件链 + /health + /metrics
func baseEngine(l *zap.Logger, lim config.Limits, health HealthCheck) *gin.Engine {
	r := server.NewRouter(l)

	r.Use(mdw.RequestID(), mdw.Recovery(l))
	// 零值表示不启用该限制
	if lim.RPS > 0 {
		r.Use(mdw.RateLimit(rate.Limit(lim.RPS), lim.Burst))
	}
	if lim.PerIPRPS > 0 {
		r.Use(mdw.RateLimitPerIP(rate.Limit(lim.PerIPRPS), lim.PerIPBurst))
	}
	if lim.MaxConcurrent > 0 {
		r.Use(mdw.ConcurrencyLimit(lim.MaxConcurrent))
	}
	if lim.MaxBodyBytes > 0 {
		r.Use(mdw.MaxBodyBytes(lim.MaxBodyBytes))
	}
	if lim.TimeoutSec > 0 {
		r.Use(mdw.Timeout(time.Duration(lim.TimeoutSec) * time.Second))
	}
	r.Use(mdw.Metrics(), mdw.AccessLog(l))

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		if health != nil {
			if err := health(c.Request.Context()); err != nil {
				l.Warn("health check failed", zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, resp.Error(resp.CodeUnavailable, ""))
				return
			}
		}
		c.JSON(http.StatusOK, resp.OK(gin.H{"status": "ok"}))
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}
