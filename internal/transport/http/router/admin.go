package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"orientation-api/internal/core/auth"
	"orientation-api/internal/core/config"
	"orientation-api/internal/domain"
	mdw "orientation-api/internal/transport/http/middleware"
)

// NewAdminEngine 管理端 v1（统一要求 STAFF 角色）
func NewAdminEngine(l *zap.Logger, lim config.Limits, health HealthCheck, jwter *auth.JWTer, reg *Registry) *gin.Engine {
	r := baseEngine(l, lim, health)

	admin := r.Group("/admin/v1")
	admin.Use(mdw.AuthJWT(jwter, string(domain.RoleStaff)))
	reg.MountAdmin(admin)

	return r
}
