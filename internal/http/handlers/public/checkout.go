package public

import (
	"github.com/cellar-next/internal/http/response"
	"github.com/cellar-next/internal/models"
	"github.com/cellar-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CheckoutCartItem 购物车行
type CheckoutCartItem struct {
	ID         uint         `json:"id"`
	Name       string       `json:"name"`
	Price      models.Money `json:"price"`
	Quantity   int          `json:"quantity"`
	BottleSize string       `json:"bottle_size"`
}

// CheckoutPromoData 客户端已校验的优惠码
type CheckoutPromoData struct {
	Code string `json:"code"`
}

// CheckoutRequest 结算请求
type CheckoutRequest struct {
	CartItems     []CheckoutCartItem `json:"cartItems"`
	CustomerEmail string             `json:"customerEmail"`
	DeliveryCity  string             `json:"deliveryCity"`
	PromoCodeData *CheckoutPromoData `json:"promoCodeData"`
	DeliveryFee   *models.Money      `json:"deliveryFee" binding:"omitempty,gte=0"`
	CallbackURL   string             `json:"callbackUrl"`
}

// CheckoutResponse 结算初始化结果
type CheckoutResponse struct {
	AuthorizationURL string                    `json:"authorization_url"`
	Reference        string                    `json:"reference"`
	AccessCode       string                    `json:"access_code"`
	Breakdown        service.CheckoutBreakdown `json:"breakdown"`
}

// Checkout 初始化 Paystack 交易
func (h *Handler) Checkout(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	input := service.CheckoutInput{
		CartItems:     make([]service.CheckoutItemInput, 0, len(req.CartItems)),
		CustomerEmail: req.CustomerEmail,
		DeliveryCity:  req.DeliveryCity,
		DeliveryFee:   req.DeliveryFee,
		CallbackURL:   req.CallbackURL,
	}
	for _, item := range req.CartItems {
		input.CartItems = append(input.CartItems, service.CheckoutItemInput{
			ID:         item.ID,
			Name:       item.Name,
			Price:      item.Price,
			Quantity:   item.Quantity,
			BottleSize: item.BottleSize,
		})
	}
	if req.PromoCodeData != nil {
		input.PromoCode = req.PromoCodeData.Code
	}

	result, err := h.CheckoutService.Initialize(c.Request.Context(), input)
	if err != nil {
		respondCheckoutError(c, err)
		return
	}
	requestLog(c).Infow("checkout_initialized",
		"reference", result.Reference,
		"amount_minor", result.Breakdown.AmountMinor,
	)
	response.Success(c, CheckoutResponse{
		AuthorizationURL: result.AuthorizationURL,
		Reference:        result.Reference,
		AccessCode:       result.AccessCode,
		Breakdown:        result.Breakdown,
	})
}
