package admin

import (
	"strings"

	handlershared "github.com/cellar-next/internal/http/handlers/shared"
	"github.com/cellar-next/internal/http/response"
	"github.com/cellar-next/internal/repository"
	"github.com/cellar-next/internal/service"

	"github.com/gin-gonic/gin"
)

var userAdminErrorRules = []handlershared.MappedError{
	{Target: service.ErrUserNotFound, Code: response.CodeNotFound, Key: "error.user_not_found"},
	{Target: service.ErrCannotRevokeSelf, Code: response.CodeBadRequest, Key: "error.cannot_revoke_self"},
}

// ListUsers 用户列表（附带管理员标记）
func (h *Handler) ListUsers(c *gin.Context) {
	page, pageSize := handlershared.PaginationFromQuery(c)
	users, total, err := h.AdminUserService.List(c.Request.Context(), repository.UserListFilter{
		Page:     page,
		PageSize: pageSize,
		Search:   strings.TrimSpace(c.Query("search")),
		Status:   strings.TrimSpace(c.Query("status")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.user_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, users, response.NewPagination(page, pageSize, total))
}

// MakeAdmin 授予管理员角色
func (h *Handler) MakeAdmin(c *gin.Context) {
	userID, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.AdminUserService.MakeAdmin(c.Request.Context(), userID); err != nil {
		handlershared.RespondMappedError(c, err, userAdminErrorRules, response.CodeInternal, "error.make_admin_failed")
		return
	}
	response.SuccessWithMsg(c, "User successfully made admin")
}

// RemoveAdmin 撤销管理员角色
func (h *Handler) RemoveAdmin(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	userID, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.AdminUserService.RemoveAdmin(c.Request.Context(), adminID, userID); err != nil {
		handlershared.RespondMappedError(c, err, userAdminErrorRules, response.CodeInternal, "error.remove_admin_failed")
		return
	}
	response.SuccessWithMsg(c, "Admin role removed successfully")
}

// DeleteUser 删除用户（先移除角色）
func (h *Handler) DeleteUser(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	userID, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.AdminUserService.Delete(c.Request.Context(), adminID, userID); err != nil {
		handlershared.RespondMappedError(c, err, userAdminErrorRules, response.CodeInternal, "error.user_delete_failed")
		return
	}
	response.SuccessWithMsg(c, "User deleted successfully")
}
