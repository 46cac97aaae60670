package public

import (
	"errors"

	"github.com/cellar-next/internal/http/response"
	"github.com/cellar-next/internal/service"

	"github.com/gin-gonic/gin"
)

// GetOrderDetails 按支付参考号查询订单
func (h *Handler) GetOrderDetails(c *gin.Context) {
	detail, err := h.OrderService.GetByReference(c.Query("reference"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPaymentReferenceRequired):
			respondError(c, response.CodeBadRequest, "error.order_reference", nil)
		case errors.Is(err, service.ErrOrderNotFound):
			respondError(c, response.CodeNotFound, "error.order_not_found", nil)
		default:
			respondError(c, response.CodeInternal, "error.internal", err)
		}
		return
	}
	response.Success(c, gin.H{"order": detail})
}
