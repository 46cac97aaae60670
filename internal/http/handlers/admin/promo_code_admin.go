package admin

import (
	"strings"
	"time"

	handlershared "github.com/cellar-next/internal/http/handlers/shared"
	"github.com/cellar-next/internal/http/response"
	"github.com/cellar-next/internal/models"
	"github.com/cellar-next/internal/repository"
	"github.com/cellar-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// PromoCodeRequest 创建/更新优惠码请求
type PromoCodeRequest struct {
	Code              string           `json:"code" binding:"omitempty,promo_code"`
	Description       string           `json:"description"`
	DiscountType      string           `json:"discount_type"`
	DiscountValue     *decimal.Decimal `json:"discount_value"`
	MinOrderAmount    *models.Money    `json:"min_order_amount"`
	MaxDiscountAmount *models.Money    `json:"max_discount_amount"`
	UsageLimit        *int             `json:"usage_limit"`
	ValidFrom         string           `json:"valid_from"`
	ValidUntil        string           `json:"valid_until"`
	IsActive          *bool            `json:"is_active"`
}

// PatchActiveRequest 启停请求
type PatchActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

var promoAdminErrorRules = []handlershared.MappedError{
	{Target: service.ErrPromoCodeNotFound, Code: response.CodeNotFound, Key: "error.promo_not_found"},
	{Target: service.ErrPromoCodeExists, Code: response.CodeConflict, Key: "error.promo_exists"},
	{Target: service.ErrPromoCodeRequired, Code: response.CodeBadRequest, Key: "error.promo_input_invalid"},
	{Target: service.ErrPromoDiscountInvalid, Code: response.CodeBadRequest, Key: "error.promo_input_invalid"},
	{Target: service.ErrInvalidAmount, Code: response.CodeBadRequest, Key: "error.promo_input_invalid"},
	{Target: service.ErrPromoDiscountType, Code: response.CodeBadRequest, Key: "error.promo_discount_type"},
	{Target: service.ErrPromoValidityInvalid, Code: response.CodeBadRequest, Key: "error.promo_validity"},
	{Target: service.ErrPromoUsageLimitInvalid, Code: response.CodeBadRequest, Key: "error.promo_usage_limit"},
}

func (req PromoCodeRequest) toInput() (service.PromoCodeInput, error) {
	if strings.TrimSpace(req.Code) == "" || req.DiscountValue == nil || req.MinOrderAmount == nil {
		return service.PromoCodeInput{}, service.ErrPromoCodeRequired
	}
	validFrom, err := parseTimeNullable(req.ValidFrom)
	if err != nil {
		return service.PromoCodeInput{}, service.ErrPromoValidityInvalid
	}
	validUntil, err := parseTimeNullable(req.ValidUntil)
	if err != nil {
		return service.PromoCodeInput{}, service.ErrPromoValidityInvalid
	}
	return service.PromoCodeInput{
		Code:              req.Code,
		Description:       req.Description,
		DiscountType:      req.DiscountType,
		DiscountValue:     *req.DiscountValue,
		MinOrderAmount:    *req.MinOrderAmount,
		MaxDiscountAmount: req.MaxDiscountAmount,
		UsageLimit:        req.UsageLimit,
		ValidFrom:         validFrom,
		ValidUntil:        validUntil,
		IsActive:          req.IsActive,
	}, nil
}

// ListPromoCodes 优惠码列表
func (h *Handler) ListPromoCodes(c *gin.Context) {
	page, pageSize := handlershared.PaginationFromQuery(c)
	filter := repository.PromoCodeListFilter{
		Page:     page,
		PageSize: pageSize,
		Code:     c.Query("code"),
	}
	if raw := c.Query("is_active"); raw != "" {
		active := raw == "true" || raw == "1"
		filter.IsActive = &active
	}
	rows, total, err := h.PromoCodeAdminService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.promo_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, rows, response.NewPagination(page, pageSize, total))
}

// GetPromoCode 优惠码详情
func (h *Handler) GetPromoCode(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	promo, err := h.PromoCodeAdminService.Get(id)
	if err != nil {
		handlershared.RespondMappedError(c, err, promoAdminErrorRules, response.CodeInternal, "error.promo_fetch_failed")
		return
	}
	response.Success(c, promo)
}

// CreatePromoCode 创建优惠码
func (h *Handler) CreatePromoCode(c *gin.Context) {
	var req PromoCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	input, err := req.toInput()
	if err != nil {
		handlershared.RespondMappedError(c, err, promoAdminErrorRules, response.CodeBadRequest, "error.promo_input_invalid")
		return
	}
	promo, err := h.PromoCodeAdminService.Create(c.Request.Context(), input)
	if err != nil {
		handlershared.RespondMappedError(c, err, promoAdminErrorRules, response.CodeInternal, "error.promo_create_failed")
		return
	}
	response.Created(c, promo)
}

// UpdatePromoCode 全量更新优惠码
func (h *Handler) UpdatePromoCode(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req PromoCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	input, err := req.toInput()
	if err != nil {
		handlershared.RespondMappedError(c, err, promoAdminErrorRules, response.CodeBadRequest, "error.promo_input_invalid")
		return
	}
	promo, err := h.PromoCodeAdminService.Update(c.Request.Context(), id, input)
	if err != nil {
		handlershared.RespondMappedError(c, err, promoAdminErrorRules, response.CodeInternal, "error.promo_update_failed")
		return
	}
	response.Success(c, promo)
}

// PatchPromoCode 启用/停用优惠码
func (h *Handler) PatchPromoCode(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req PatchActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	promo, err := h.PromoCodeAdminService.SetActive(c.Request.Context(), id, *req.IsActive)
	if err != nil {
		handlershared.RespondMappedError(c, err, promoAdminErrorRules, response.CodeInternal, "error.promo_update_failed")
		return
	}
	response.Success(c, promo)
}

// DeletePromoCode 删除优惠码
func (h *Handler) DeletePromoCode(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.PromoCodeAdminService.Delete(c.Request.Context(), id); err != nil {
		handlershared.RespondMappedError(c, err, promoAdminErrorRules, response.CodeInternal, "error.promo_delete_failed")
		return
	}
	response.SuccessWithMsg(c, "Promo code deleted successfully")
}

func parseTimeNullable(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
