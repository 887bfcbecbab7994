package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"orientation-api/internal/core/config"
)

// NewAPIEngine 用户端：/api/v1 下挂载所有 API 模块（鉴权由各模块自己挂）
func NewAPIEngine(l *zap.Logger, lim config.Limits, health HealthCheck, reg *Registry) *gin.Engine {
	r := baseEngine(l, lim, health)

	// 前缀
	api := r.Group("/api/v1")
	reg.MountAPI(api)

	return r
}
