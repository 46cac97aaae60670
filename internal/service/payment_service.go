package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cellar-next/internal/constants"
	"github.com/cellar-next/internal/logger"
	"github.com/cellar-next/internal/payment/paystack"
)

// 支付校验结果状态
const (
	PaymentResultSuccess = "success"
	PaymentResultFailed  = "failed"
)

// PaymentVerifyResult 支付校验结果
type PaymentVerifyResult struct {
	Status         string
	Message        string
	OrderReference string
	OrderID        uint
	Duplicate      bool
}

// WebhookResult webhook 处理结果
type WebhookResult struct {
	Event   string
	Handled bool
	Verify  *PaymentVerifyResult
}

// PaymentService 支付校验服务
type PaymentService struct {
	gateway      PaymentGateway
	confirmation *OrderConfirmationService
}

// NewPaymentService 创建支付校验服务
func NewPaymentService(gateway PaymentGateway, confirmation *OrderConfirmationService) *PaymentService {
	return &PaymentService{
		gateway:      gateway,
		confirmation: confirmation,
	}
}

// Verify 向网关校验交易并按快照确认订单
func (s *PaymentService) Verify(ctx context.Context, reference string) (*PaymentVerifyResult, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, ErrPaymentReferenceRequired
	}
	if s.gateway == nil || !s.gateway.Configured() {
		return nil, ErrPaymentGatewayNotConfigured
	}

	tx, err := s.gateway.Verify(ctx, reference)
	if err != nil {
		logger.Warnw("payment_verify_failed", "reference", reference, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrPaymentVerifyFailed, err)
	}
	status := strings.ToLower(strings.TrimSpace(tx.Status))
	if status != constants.PaystackStatusSuccess {
		logger.Infow("payment_not_successful",
			"reference", reference,
			"status", status,
			"gateway_response", tx.GatewayResponse,
		)
		return nil, fmt.Errorf("%w: %s", ErrPaymentNotSuccessful, status)
	}

	var snapshot CheckoutSnapshot
	if len(tx.Metadata) > 0 {
		if err := json.Unmarshal(tx.Metadata, &snapshot); err != nil {
			logger.Errorw("payment_metadata_decode_failed",
				"reference", reference,
				"metadata", string(tx.Metadata),
				"error", err,
			)
		}
	}

	result, err := s.confirmation.ConfirmOrder(ctx, ConfirmInput{
		Reference:           reference,
		PaystackStatus:      status,
		VerifiedAmountMinor: tx.AmountMinor,
		PaidAt:              tx.PaidAt,
		Snapshot:            snapshot,
	})
	if err != nil {
		return nil, err
	}

	message := "Payment verified and order saved!"
	if result.Duplicate {
		message = "Order already processed."
	}
	return &PaymentVerifyResult{
		Status:         PaymentResultSuccess,
		Message:        message,
		OrderReference: result.Reference,
		OrderID:        result.OrderID,
		Duplicate:      result.Duplicate,
	}, nil
}

// HandleWebhook 校验签名后处理 charge.success，与跳转校验走同一幂等路径
func (s *PaymentService) HandleWebhook(ctx context.Context, body []byte, signature string) (*WebhookResult, error) {
	if s.gateway == nil || !s.gateway.Configured() {
		return nil, ErrPaymentGatewayNotConfigured
	}
	if err := s.gateway.VerifySignature(body, signature); err != nil {
		logger.Warnw("paystack_webhook_signature_invalid", "error", err)
		return nil, ErrWebhookSignatureInvalid
	}
	event, err := paystack.ParseWebhookEvent(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaymentVerifyFailed, err)
	}
	if event.Event != constants.PaystackEventChargeSuccess {
		logger.Infow("paystack_webhook_ignored", "event", event.Event, "reference", event.Reference)
		return &WebhookResult{Event: event.Event}, nil
	}
	verify, err := s.Verify(ctx, event.Reference)
	if err != nil {
		return nil, err
	}
	return &WebhookResult{Event: event.Event, Handled: true, Verify: verify}, nil
}
