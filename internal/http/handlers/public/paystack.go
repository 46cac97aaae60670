package public

import (
	"errors"
	"io"

	"github.com/cellar-next/internal/http/response"
	"github.com/cellar-next/internal/payment/paystack"
	"github.com/cellar-next/internal/service"

	"github.com/gin-gonic/gin"
)

const maxWebhookBodyBytes = 1 << 20

// VerifyPaymentRequest 支付校验请求
type VerifyPaymentRequest struct {
	Reference string `json:"reference"`
}

// VerifyPaymentResponse 支付校验结果
type VerifyPaymentResponse struct {
	Status         string `json:"status"`
	Message        string `json:"message"`
	OrderReference string `json:"orderReference,omitempty"`
}

// VerifyPayment 校验交易并幂等落库
func (h *Handler) VerifyPayment(c *gin.Context) {
	var req VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondVerifyError(c, "", service.ErrPaymentReferenceRequired)
		return
	}

	result, err := h.PaymentService.Verify(c.Request.Context(), req.Reference)
	if err != nil {
		respondVerifyError(c, req.Reference, err)
		return
	}
	response.Success(c, VerifyPaymentResponse{
		Status:         result.Status,
		Message:        result.Message,
		OrderReference: result.OrderReference,
	})
}

// PaystackWebhook 处理 Paystack 事件推送
func (h *Handler) PaystackWebhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	result, err := h.PaymentService.HandleWebhook(c.Request.Context(), body, c.GetHeader(paystack.SignatureHeader))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWebhookSignatureInvalid):
			respondError(c, response.CodeUnauthorized, "error.signature_invalid", nil)
		case errors.Is(err, service.ErrPaymentGatewayNotConfigured):
			respondError(c, response.CodeInternal, "error.server_config", err)
		default:
			// 非 2xx 让 Paystack 稍后重推，落库幂等
			respondError(c, response.CodeInternal, "error.verify_internal", err)
		}
		return
	}
	requestLog(c).Infow("paystack_webhook_processed",
		"event", result.Event,
		"handled", result.Handled,
	)
	response.Success(c, gin.H{"received": true})
}
