package admin

import (
	"strings"

	handlershared "github.com/cellar-next/internal/http/handlers/shared"
	"github.com/cellar-next/internal/http/response"
	"github.com/cellar-next/internal/repository"
	"github.com/cellar-next/internal/service"

	"github.com/gin-gonic/gin"
)

// UpdateOrderStatusRequest 修改订单状态请求
type UpdateOrderStatusRequest struct {
	OrderStatus string `json:"order_status" binding:"required"`
}

var orderAdminErrorRules = []handlershared.MappedError{
	{Target: service.ErrOrderNotFound, Code: response.CodeNotFound, Key: "error.order_not_found"},
	{Target: service.ErrOrderStatusInvalid, Code: response.CodeBadRequest, Key: "error.order_status_invalid"},
	{Target: service.ErrOrderStatusTransition, Code: response.CodeBadRequest, Key: "error.order_transition"},
}

// ListOrders 后台订单列表
func (h *Handler) ListOrders(c *gin.Context) {
	page, pageSize := handlershared.PaginationFromQuery(c)
	filter := repository.OrderListFilter{
		Page:          page,
		PageSize:      pageSize,
		CustomerEmail: strings.TrimSpace(c.Query("email")),
		Reference:     strings.TrimSpace(c.Query("reference")),
	}
	if status := strings.TrimSpace(c.Query("status")); status != "" && status != "all" {
		filter.Status = status
	}
	orders, total, err := h.OrderService.ListAdmin(filter)
	if err != nil {
		handlershared.RespondMappedError(c, err, orderAdminErrorRules, response.CodeInternal, "error.order_fetch_failed")
		return
	}
	response.SuccessWithPage(c, orders, response.NewPagination(page, pageSize, total))
}

// GetOrder 后台订单详情（含订单项）
func (h *Handler) GetOrder(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	detail, err := h.OrderService.GetAdmin(id)
	if err != nil {
		handlershared.RespondMappedError(c, err, orderAdminErrorRules, response.CodeInternal, "error.order_fetch_failed")
		return
	}
	response.Success(c, gin.H{"order": detail})
}

// UpdateOrderStatus 修改履约状态，不影响支付状态
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.order_status_invalid", nil)
		return
	}
	detail, err := h.OrderService.UpdateStatus(id, req.OrderStatus)
	if err != nil {
		handlershared.RespondMappedError(c, err, orderAdminErrorRules, response.CodeInternal, "error.order_update_failed")
		return
	}
	if adminID, ok := c.Get(handlershared.ContextKeyUserID); ok {
		requestLog(c).Infow("admin_order_status_updated", "admin_id", adminID, "order_id", id, "status", detail.OrderStatus)
	}
	response.Success(c, gin.H{"order": detail})
}
