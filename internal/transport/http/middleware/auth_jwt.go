package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"orientation-api/internal/core/auth"
	resp "orientation-api/internal/transport/http/response"
)

const (
	KeyIdentity = "identity"
	KeyUserID   = "userId"
	KeyRole     = "role"
)

// AuthJWT 校验 Bearer token；requireRole 非空时同时校验角色
func AuthJWT(j *auth.JWTer, requireRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if !strings.HasPrefix(ah, "Bearer ") {
			resp.Abort(c, resp.CodeUnauthorized, "Missing token")
			return
		}
		claims, err := j.Parse(strings.TrimPrefix(ah, "Bearer "))
		if errors.Is(err, auth.ErrTokenExpired) {
			resp.Abort(c, resp.CodeUnauthorized, "Token expired")
			return
		}
		if err != nil {
			resp.Abort(c, resp.CodeUnauthorized, "Invalid token")
			return
		}
		if requireRole != "" && claims.Role != requireRole {
			resp.Abort(c, resp.CodeForbidden, "")
			return
		}
		c.Set(KeyIdentity, claims.Identity())
		c.Set(KeyUserID, claims.UID)
		c.Set(KeyRole, claims.Role)
		c.Next()
	}
}

// CurrentIdentity 取 AuthJWT 放进来的身份
func CurrentIdentity(c *gin.Context) (auth.Identity, bool) {
	v, ok := c.Get(KeyIdentity)
	if !ok {
		return auth.Identity{}, false
	}
	id, ok := v.(auth.Identity)
	return id, ok
}
