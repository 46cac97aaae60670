package public

import (
	"strings"
	"time"

	"github.com/cellar-next/internal/http/response"
	"github.com/cellar-next/internal/metrics"
	"github.com/cellar-next/internal/models"
	"github.com/cellar-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ValidatePromoRequest 优惠码校验请求
type ValidatePromoRequest struct {
	Code        string           `json:"code"`
	OrderAmount *decimal.Decimal `json:"orderAmount"`
}

// ValidatePromoResponse 优惠码校验结果
type ValidatePromoResponse struct {
	Valid          bool            `json:"valid"`
	Code           string          `json:"code"`
	DiscountType   string          `json:"discountType"`
	DiscountValue  decimal.Decimal `json:"discountValue"`
	DiscountAmount models.Money    `json:"discountAmount"`
	Message        string          `json:"message"`
}

// PublicPromoCode 公开展示的优惠码
type PublicPromoCode struct {
	Code              string          `json:"code"`
	Description       string          `json:"description"`
	DiscountType      string          `json:"discount_type"`
	DiscountValue     decimal.Decimal `json:"discount_value"`
	MinOrderAmount    models.Money    `json:"min_order_amount"`
	MaxDiscountAmount *models.Money   `json:"max_discount_amount"`
	ValidUntil        *time.Time      `json:"valid_until"`
}

// ValidatePromo 校验优惠码（只读，不占用次数）
func (h *Handler) ValidatePromo(c *gin.Context) {
	var req ValidatePromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.RecordPromoValidation("bad_request")
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	if strings.TrimSpace(req.Code) == "" {
		metrics.RecordPromoValidation("bad_request")
		respondError(c, response.CodeBadRequest, "error.promo_code_required", nil)
		return
	}
	if req.OrderAmount == nil || !req.OrderAmount.IsPositive() {
		metrics.RecordPromoValidation("bad_request")
		respondError(c, response.CodeBadRequest, "error.promo_amount_invalid", nil)
		return
	}

	outcome, err := h.PromoCodeService.Validate(req.Code, *req.OrderAmount)
	if err != nil {
		if service.IsPromoRejection(err) {
			metrics.RecordPromoValidation("rejected")
		} else {
			metrics.RecordPromoValidation("error")
		}
		respondPromoError(c, err, promoErrorRules, "error.internal")
		return
	}
	metrics.RecordPromoValidation("valid")

	response.Success(c, ValidatePromoResponse{
		Valid:          true,
		Code:           outcome.Code,
		DiscountType:   outcome.DiscountType,
		DiscountValue:  outcome.DiscountValue,
		DiscountAmount: outcome.DiscountAmount,
		Message:        outcome.Message,
	})
}

// ListPromoCodes 当前可用的优惠码
func (h *Handler) ListPromoCodes(c *gin.Context) {
	rows, err := h.PromoCodeService.ListAvailable(c.Request.Context())
	if err != nil {
		respondError(c, response.CodeInternal, "error.promo_fetch_failed", err)
		return
	}
	items := make([]PublicPromoCode, 0, len(rows))
	for _, row := range rows {
		items = append(items, PublicPromoCode{
			Code:              row.Code,
			Description:       row.Description,
			DiscountType:      row.DiscountType,
			DiscountValue:     row.DiscountValue,
			MinOrderAmount:    row.MinOrderAmount,
			MaxDiscountAmount: row.MaxDiscountAmount,
			ValidUntil:        row.ValidUntil,
		})
	}
	response.Success(c, gin.H{"promoCodes": items})
}
