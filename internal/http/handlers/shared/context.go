package shared

import (
	"github.com/cellar-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// 上下文键
const (
	ContextKeyUserID  = "user_id"
	ContextKeyIsAdmin = "is_admin"
)

// RequestContext 单次请求的身份信息，按值传递
type RequestContext struct {
	UserID  uint
	IsAdmin bool
}

// Authenticated 是否已登录
func (r RequestContext) Authenticated() bool {
	return r.UserID > 0
}

// RequestContextFrom 从 gin 上下文组装请求身份
func RequestContextFrom(c *gin.Context) RequestContext {
	var rc RequestContext
	if c == nil {
		return rc
	}
	if value, ok := c.Get(ContextKeyUserID); ok {
		if id, ok := value.(uint); ok {
			rc.UserID = id
		}
	}
	if value, ok := c.Get(ContextKeyIsAdmin); ok {
		if admin, ok := value.(bool); ok {
			rc.IsAdmin = admin
		}
	}
	return rc
}

// GetContextUintWithKeys 从上下文读取 uint 值并统一处理错误响应。
func GetContextUintWithKeys(c *gin.Context, key, invalidKey, typeInvalidKey string) (uint, bool) {
	value, exists := c.Get(key)
	if !exists {
		RespondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		if v == 0 {
			RespondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
			return 0, false
		}
		return v, true
	case int:
		if v <= 0 {
			RespondError(c, response.CodeBadRequest, invalidKey, nil)
			return 0, false
		}
		return uint(v), true
	case float64:
		if v <= 0 {
			RespondError(c, response.CodeBadRequest, invalidKey, nil)
			return 0, false
		}
		return uint(v), true
	default:
		RespondError(c, response.CodeInternal, typeInvalidKey, nil)
		return 0, false
	}
}

// GetUserID 读取当前登录用户
func GetUserID(c *gin.Context) (uint, bool) {
	return GetContextUintWithKeys(c, ContextKeyUserID, "error.user_id_invalid", "error.user_id_type_invalid")
}
