package admin

import (
	handlershared "github.com/cellar-next/internal/http/handlers/shared"
	"github.com/cellar-next/internal/http/response"
	"github.com/cellar-next/internal/models"
	"github.com/cellar-next/internal/service"

	"github.com/gin-gonic/gin"
)

// UpsertDeliveryFeeRequest 配送费请求
type UpsertDeliveryFeeRequest struct {
	City string        `json:"city" binding:"required"`
	Fee  *models.Money `json:"fee" binding:"omitempty,gte=0"`
}

var deliveryFeeErrorRules = []handlershared.MappedError{
	{Target: service.ErrDeliveryFeeCityEmpty, Code: response.CodeBadRequest, Key: "error.delivery_city"},
	{Target: service.ErrDeliveryFeeInvalid, Code: response.CodeBadRequest, Key: "error.delivery_fee_invalid"},
}

// ListDeliveryFees 配送费列表
func (h *Handler) ListDeliveryFees(c *gin.Context) {
	rows, err := h.DeliveryFeeService.List()
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, gin.H{"deliveryFees": rows})
}

// UpsertDeliveryFee 新增或更新城市配送费
func (h *Handler) UpsertDeliveryFee(c *gin.Context) {
	var req UpsertDeliveryFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	if req.Fee == nil {
		respondError(c, response.CodeBadRequest, "error.delivery_fee", nil)
		return
	}
	row, err := h.DeliveryFeeService.Upsert(req.City, *req.Fee)
	if err != nil {
		handlershared.RespondMappedError(c, err, deliveryFeeErrorRules, response.CodeInternal, "error.delivery_fee_failed")
		return
	}
	response.Success(c, row)
}

// DeleteDeliveryFee 删除配送费
func (h *Handler) DeleteDeliveryFee(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.DeliveryFeeService.Delete(id); err != nil {
		respondError(c, response.CodeInternal, "error.delivery_fee_failed", err)
		return
	}
	response.SuccessWithMsg(c, "Delivery fee deleted successfully")
}
