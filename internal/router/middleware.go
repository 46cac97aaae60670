package router

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/cellar-next/internal/config"
	handlershared "github.com/cellar-next/internal/http/handlers/shared"
	"github.com/cellar-next/internal/http/response"
	"github.com/cellar-next/internal/logger"
	"github.com/cellar-next/internal/metrics"
	"github.com/cellar-next/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDKey = "request_id"
const requestIDHeader = "X-Request-ID"

// UserAuthenticator 解析 Bearer Token 得到用户
type UserAuthenticator interface {
	Authenticate(tokenString string) (*models.User, error)
}

// AdminChecker 判断用户是否具备管理员权限
type AdminChecker interface {
	IsAdmin(ctx context.Context, userID uint) (bool, error)
}

// CORSMiddleware 跨域中间件
func CORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	allowedMethods := cfg.AllowedMethods
	if len(allowedMethods) == 0 {
		allowedMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	}
	allowedHeaders := cfg.AllowedHeaders
	if len(allowedHeaders) == 0 {
		allowedHeaders = []string{
			"Content-Type",
			"Content-Length",
			"Accept-Encoding",
			"Authorization",
			"Cache-Control",
			"X-Requested-With",
			requestIDHeader,
		}
	}
	methodsHeader := strings.Join(allowedMethods, ", ")
	headersHeader := strings.Join(allowedHeaders, ", ")

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		allowedOrigin := resolveAllowedOrigin(origin, allowedOrigins, cfg.AllowCredentials)
		if allowedOrigin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
			if allowedOrigin != "*" {
				c.Writer.Header().Add("Vary", "Origin")
			}
		}
		if cfg.AllowCredentials {
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", headersHeader)
		c.Writer.Header().Set("Access-Control-Allow-Methods", methodsHeader)
		if cfg.MaxAge > 0 {
			c.Writer.Header().Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func resolveAllowedOrigin(origin string, allowedOrigins []string, allowCredentials bool) string {
	if len(allowedOrigins) == 0 {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if allowed == "*" {
			if allowCredentials && origin != "" {
				return origin
			}
			return "*"
		}
	}
	if origin == "" {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if strings.EqualFold(allowed, origin) {
			return origin
		}
	}
	return ""
}

// RequestIDMiddleware 请求 ID 中间件
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)
		c.Next()
	}
}

// LoggerMiddleware 结构化请求日志中间件
func LoggerMiddleware(log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.L()
	}
	sugar := log.Sugar()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := sugar.With(
			"request_id", getRequestID(c),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
		if len(c.Errors) > 0 {
			entry.Errorw("request", "errors", c.Errors.String())
			return
		}
		entry.Infow("request")
	}
}

// MetricsMiddleware 记录接口耗时，按路由模板聚合
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordHTTPRequest(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start).Seconds())
	}
}

func getRequestID(c *gin.Context) string {
	value, ok := c.Get(requestIDKey)
	if !ok {
		return ""
	}
	if requestID, ok := value.(string); ok {
		return requestID
	}
	return ""
}

// UserAuthMiddleware 用户 JWT 鉴权中间件，required 为 false 时允许匿名访问
func UserAuthMiddleware(auth UserAuthenticator, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			if required {
				abortWithError(c, response.CodeUnauthorized, "error.unauthorized")
				return
			}
			c.Next()
			return
		}
		if auth == nil {
			abortWithError(c, response.CodeUnauthorized, "error.unauthorized")
			return
		}
		user, err := auth.Authenticate(tokenString)
		if err != nil || user == nil {
			handlershared.RequestLog(c).Debugw("user_auth_rejected", "error", err)
			abortWithError(c, response.CodeUnauthorized, "error.unauthorized")
			return
		}
		c.Set(handlershared.ContextKeyUserID, user.ID)
		c.Set("user_email", user.Email)
		c.Next()
	}
}

// AdminGuard 管理端守卫：未登录 401，非管理员 403
func AdminGuard(checker AdminChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		rc := handlershared.RequestContextFrom(c)
		if !rc.Authenticated() {
			abortWithError(c, response.CodeUnauthorized, "error.unauthorized")
			return
		}
		if checker == nil {
			logger.Errorw("admin_guard_checker_unavailable")
			abortWithError(c, response.CodeForbidden, "error.forbidden")
			return
		}
		isAdmin, err := checker.IsAdmin(c.Request.Context(), rc.UserID)
		if err != nil {
			handlershared.RequestLog(c).Errorw("admin_guard_check_failed", "user_id", rc.UserID, "error", err)
			abortWithError(c, response.CodeInternal, "error.admin_check_failed")
			return
		}
		if !isAdmin {
			handlershared.RequestLog(c).Warnw("admin_guard_denied",
				"user_id", rc.UserID,
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
			)
			abortWithError(c, response.CodeForbidden, "error.forbidden")
			return
		}
		c.Set(handlershared.ContextKeyIsAdmin, true)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

func abortWithError(c *gin.Context, code int, key string) {
	handlershared.RespondError(c, code, key, nil)
	c.Abort()
}
