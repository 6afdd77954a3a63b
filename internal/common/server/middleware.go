package server

import (
	"context"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/YogeshJat8965/SwastikMotorsUjjain-sub001/internal/common/auth"
	"github.com/YogeshJat8965/SwastikMotorsUjjain-sub001/internal/common/config"
	"github.com/YogeshJat8965/SwastikMotorsUjjain-sub001/internal/common/logger"
	"github.com/YogeshJat8965/SwastikMotorsUjjain-sub001/internal/common/middleware"
	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
)

const authContextKey = "auth_info"

// AuthInfo 从 JWT 中解析出的最小用户信息（放入请求上下文，供业务侧使用）。
type AuthInfo struct {
	Subject string   // 管理员 ID
	Roles   []string // 角色列表（RBAC）
}

// AuthFromContext 从请求上下文中取出鉴权信息。
func AuthFromContext(c *gin.Context) (AuthInfo, bool) {
	v, ok := c.Get(authContextKey)
	if !ok {
		return AuthInfo{}, false
	}
	ai, ok := v.(AuthInfo)
	return ai, ok
}

// RecoveryMiddleware 防止 panic 直接把进程打崩，并记录栈信息。
func RecoveryMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				if log != nil {
					log.Errorf("panic in http method=%s path=%s err=%v stack=%s",
						c.Request.Method, c.Request.URL.Path, r, string(debug.Stack()))
				}
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			}
		}()
		c.Next()
	}
}

// AccessLogMiddleware 记录每个 HTTP 请求的耗时/状态码。
func AccessLogMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		cost := time.Since(start)

		if log != nil {
			fields := map[string]interface{}{
				"method": c.Request.Method,
				"path":   c.Request.URL.Path,
				"status": c.Writer.Status(),
				"cost":   cost.String(),
			}
			if len(c.Errors) > 0 {
				fields["error"] = c.Errors.String()
				log.WithFields(fields).Warn("http request failed")
			} else if c.Writer.Status() >= http.StatusInternalServerError {
				log.WithFields(fields).Warn("http request failed")
			} else {
				log.WithFields(fields).Info("http request ok")
			}
		}
	}
}

// TracingMiddleware 基于 OpenTracing 的最小 server middleware：
// - 从请求头里提取 span context（uber-trace-id / traceparent 等，取决于上游注入格式）
// - 创建 server span 并注入 request ctx，方便业务侧 opentracing.StartSpanFromContext 使用
func TracingMiddleware(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tracer := opentracing.GlobalTracer()

		var parent opentracing.SpanContext
		if sc, err := tracer.Extract(opentracing.HTTPHeaders,
			opentracing.HTTPHeadersCarrier(c.Request.Header)); err == nil {
			parent = sc
		}

		operation := c.Request.Method + " " + c.FullPath()

		var span opentracing.Span
		if parent != nil {
			span = tracer.StartSpan(operation, ext.RPCServerOption(parent))
		} else {
			span = tracer.StartSpan(operation)
		}
		defer span.Finish()

		ext.SpanKindRPCServer.Set(span)
		ext.Component.Set(span, "http")
		ext.HTTPMethod.Set(span, c.Request.Method)
		ext.HTTPUrl.Set(span, c.Request.URL.Path)
		if serviceName != "" {
			span.SetTag("service", serviceName)
		}

		c.Request = c.Request.WithContext(opentracing.ContextWithSpan(c.Request.Context(), span))
		c.Next()

		ext.HTTPStatusCode.Set(span, uint16(c.Writer.Status()))
	}
}

// JWTAuthMiddleware 后台鉴权：
// - 从 `Authorization: Bearer <token>` 读取 token
// - 校验签名与标准字段，校验结果写入请求上下文
// - cfg.Enabled 为 false 时直接放行（开发环境）
func JWTAuthMiddleware(cfg config.AuthConfig, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.Next()
			return
		}
		if strings.TrimSpace(cfg.JWTSecret) == "" {
			if log != nil {
				log.Warn("auth enabled but jwt_secret is empty")
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "auth not configured"})
			return
		}

		raw := strings.TrimSpace(c.GetHeader("Authorization"))
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization"})
			return
		}
		tokenStr := raw
		if strings.HasPrefix(strings.ToLower(tokenStr), "bearer ") {
			tokenStr = strings.TrimSpace(tokenStr[len("bearer "):])
		}
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization"})
			return
		}

		claims, err := auth.ParseAccessToken(cfg, tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(authContextKey, AuthInfo{
			Subject: claims.Subject,
			Roles:   claims.Roles,
		})
		c.Next()
	}
}

// RequireRoles 简单 RBAC：要求 token roles 与 required 有交集。
// required 为空时默认放行（即“只鉴权，不限权”）。
func RequireRoles(cfg config.AuthConfig, required ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.Enabled || len(required) == 0 {
			c.Next()
			return
		}
		ai, ok := AuthFromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
			return
		}
		if hasAnyRole(ai.Roles, required) {
			c.Next()
			return
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "permission denied"})
	}
}

// RateLimitMiddleware 对公开接口做整体限流；超限返回 429。
func RateLimitMiddleware(limiter middleware.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter != nil && !limiter.Allow(context.Background()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}

func hasAnyRole(got, required []string) bool {
	if len(got) == 0 || len(required) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(got))
	for _, r := range got {
		r = strings.TrimSpace(strings.ToLower(r))
		if r == "" {
			continue
		}
		set[r] = struct{}{}
	}
	for _, r := range required {
		r = strings.TrimSpace(strings.ToLower(r))
		if r == "" {
			continue
		}
		if _, ok := set[r]; ok {
			return true
		}
	}
	return false
}
