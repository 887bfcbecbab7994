package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 只记录不超过该长度的 JSON 请求体
const maxLoggedBody = 2 << 10

// 请求体与 query 中需要打码的 key（小写比较）
var sensitiveKeys = map[string]struct{}{
	"password": {}, "citizenid": {}, "invitecode": {}, "phone": {},
	"token": {}, "authorization": {}, "secret": {},
}

func sensitive(k string) bool {
	_, ok := sensitiveKeys[strings.ToLower(k)]
	return ok
}

func maskQuery(q map[string][]string) map[string][]string {
	if len(q) == 0 {
		return nil
	}
	out := make(map[string][]string, len(q))
	for k, v := range q {
		if sensitive(k) {
			v = []string{"****"}
		}
		out[k] = v
	}
	return out
}

func maskJSON(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, inner := range t {
			if sensitive(k) {
				t[k] = "****"
				continue
			}
			t[k] = maskJSON(inner)
		}
	case []any:
		for i := range t {
			t[i] = maskJSON(t[i])
		}
	}
	return v
}

// peekBody 读出请求体的副本给日志用，原始 body 原样还给 handler
func peekBody(r *http.Request) any {
	if r.Body == nil || r.ContentLength <= 0 || r.ContentLength > maxLoggedBody {
		return nil
	}
	if !strings.HasPrefix(r.Header.Get("Content-Type"), gin.MIMEJSON) {
		return nil
	}
	buf, err := io.ReadAll(io.LimitReader(r.Body, maxLoggedBody))
	r.Body = readCloser{Reader: io.MultiReader(bytes.NewReader(buf), r.Body), Closer: r.Body}
	if err != nil {
		return nil
	}
	var v any
	if json.Unmarshal(buf, &v) != nil {
		return nil
	}
	return maskJSON(v)
}

type readCloser struct {
	io.Reader
	io.Closer
}

// AccessLog 每个请求一行摘要；请求体中的密码、身份证号、邀请码等打码后记录
func AccessLog(l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		body := peekBody(c.Request)

		c.Next()

		fields := []zap.Field{
			zap.String("rid", c.GetString(KeyRequestID)),
			zap.String("uid", c.GetString(KeyUserID)),
			zap.String("method", c.Request.Method),
			zap.String("route", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Int("size", c.Writer.Size()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		}
		if q := maskQuery(c.Request.URL.Query()); q != nil {
			fields = append(fields, zap.Any("query", q))
		}
		if body != nil {
			fields = append(fields, zap.Any("body", body))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			l.Error("HTTP", fields...)
		case status >= http.StatusBadRequest:
			l.Warn("HTTP", fields...)
		default:
			l.Info("HTTP", fields...)
		}
	}
}
