package handler

import (
	"github.com/gin-gonic/gin"

	mdw "orientation-api/internal/transport/http/middleware"
)

// callerID AuthJWT 之后才可用
func callerID(c *gin.Context) string { return c.GetString(mdw.KeyUserID) }

// Message 只有提示没有数据的响应
type Message struct {
	Message string `json:"message"`
}
