package response

import (
	"time"

	"github.com/gin-gonic/gin"
)

// Resp 统一响应体，HTTP 状态码与 success 保持一致
type Resp struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	Data      any    `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
	Timestamp string `json:"timestamp"`
}

func now() string { return time.Now().UTC().Format(time.RFC3339) }

// OK 成功响应
func OK(data any) Resp {
	return Resp{Success: true, Data: data, Timestamp: now()}
}

// Msg 成功且只带提示
func Msg(msg string, data any) Resp {
	return Resp{Success: true, Message: msg, Data: data, Timestamp: now()}
}

// Error 失败响应（可以传自定义 msg 覆盖默认）
func Error(code int, customMsg string) Resp {
	msg := CodeMsgMap[code]
	if customMsg != "" {
		msg = customMsg
	}
	return Resp{Success: false, Error: msg, Timestamp: now()}
}

// JSON 按真实状态码写出
func JSON(c *gin.Context, code int, data any) {
	c.JSON(code, OK(data))
}

// Abort 中间件里提前结束
func Abort(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(code, Error(code, msg))
}
