package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/cellar-next/internal/constants"
	"github.com/cellar-next/internal/logger"
	"github.com/cellar-next/internal/models"
	"github.com/cellar-next/internal/provider"
	"github.com/cellar-next/internal/queue"
	"github.com/cellar-next/internal/service"

	"github.com/hibiken/asynq"
)

// OrderReader 订单读取
type OrderReader interface {
	GetByID(id uint) (*models.Order, error)
}

// OrderMailer 订单邮件发送
type OrderMailer interface {
	Enabled() bool
	SendOrderConfirmedEmail(order *models.Order) error
	SendOrderStatusEmail(order *models.Order) error
}

// OrderConfirmer 订单确认（补偿重放）
type OrderConfirmer interface {
	ConfirmOrder(ctx context.Context, input service.ConfirmInput) (*service.ConfirmResult, error)
}

// Consumer 异步任务消费者
type Consumer struct {
	orders    OrderReader
	mailer    OrderMailer
	confirmer OrderConfirmer
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	if c == nil {
		return &Consumer{}
	}
	consumer := &Consumer{}
	if c.OrderConfirmationService != nil {
		consumer.confirmer = c.OrderConfirmationService
	}
	if c.OrderRepo != nil {
		consumer.orders = c.OrderRepo
	}
	if c.EmailService != nil {
		consumer.mailer = c.EmailService
	}
	return consumer
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOrderConfirmedEmail, c.handleOrderConfirmedEmail)
	mux.HandleFunc(queue.TaskOrderStatusEmail, c.handleOrderStatusEmail)
	mux.HandleFunc(queue.TaskOrderPersistenceFailed, c.handleOrderPersistenceFailed)
}

func (c *Consumer) handleOrderConfirmedEmail(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		return nil
	}
	var payload queue.OrderConfirmedEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_confirmed_email_unmarshal_failed", "error", err)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	order, err := c.loadOrderForEmail("worker_order_confirmed_email", payload.OrderID)
	if err != nil || order == nil {
		return err
	}
	if err := c.mailer.SendOrderConfirmedEmail(order); err != nil {
		logger.Warnw("worker_order_confirmed_email_send_failed",
			"order_id", order.ID,
			"reference", order.PaystackReference,
			"error", err,
		)
		return classifyEmailError(err)
	}
	logger.Infow("worker_order_confirmed_email_sent", "order_id", order.ID, "reference", order.PaystackReference)
	return nil
}

func (c *Consumer) handleOrderStatusEmail(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		return nil
	}
	var payload queue.OrderStatusEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_status_email_unmarshal_failed", "error", err)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	order, err := c.loadOrderForEmail("worker_order_status_email", payload.OrderID)
	if err != nil || order == nil {
		return err
	}
	if status := strings.TrimSpace(payload.Status); status != "" {
		order.OrderStatus = status
	}
	if err := c.mailer.SendOrderStatusEmail(order); err != nil {
		logger.Warnw("worker_order_status_email_send_failed",
			"order_id", order.ID,
			"reference", order.PaystackReference,
			"status", order.OrderStatus,
			"error", err,
		)
		return classifyEmailError(err)
	}
	return nil
}

// loadOrderForEmail 返回 nil 订单表示跳过
func (c *Consumer) loadOrderForEmail(event string, orderID uint) (*models.Order, error) {
	if orderID == 0 {
		logger.Debugw(event+"_skip_invalid_payload", "order_id", orderID)
		return nil, nil
	}
	if c.mailer == nil || !c.mailer.Enabled() {
		logger.Debugw(event+"_skip_email_disabled", "order_id", orderID)
		return nil, nil
	}
	if c.orders == nil {
		logger.Warnw(event+"_skip_order_repo_nil", "order_id", orderID)
		return nil, nil
	}
	order, err := c.orders.GetByID(orderID)
	if err != nil {
		logger.Warnw(event+"_fetch_order_failed", "order_id", orderID, "error", err)
		return nil, err
	}
	if order == nil {
		logger.Debugw(event+"_skip_order_not_found", "order_id", orderID)
		return nil, nil
	}
	if strings.TrimSpace(order.CustomerEmail) == "" {
		logger.Debugw(event+"_skip_empty_receiver", "order_id", order.ID)
		return nil, nil
	}
	return order, nil
}

func (c *Consumer) handleOrderPersistenceFailed(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		return nil
	}
	var payload queue.OrderPersistenceFailedPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Errorw("worker_order_replay_unmarshal_failed", "payload", string(task.Payload()), "error", err)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	reference := strings.TrimSpace(payload.Reference)
	if reference == "" {
		logger.Errorw("worker_order_replay_skip_empty_reference", "payload", string(task.Payload()))
		return nil
	}
	if c.confirmer == nil {
		return errors.New("order confirmation service unavailable")
	}
	var snapshot service.CheckoutSnapshot
	if err := json.Unmarshal(payload.Snapshot, &snapshot); err != nil {
		logger.Errorw("worker_order_replay_snapshot_invalid", "reference", reference, "snapshot", string(payload.Snapshot), "error", err)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	result, err := c.confirmer.ConfirmOrder(ctx, service.ConfirmInput{
		Reference:           reference,
		PaystackStatus:      payload.PaystackStatus,
		VerifiedAmountMinor: payload.AmountMinor,
		PaidAt:              payload.PaidAt,
		Snapshot:            snapshot,
		Replay:              true,
	})
	if err != nil {
		var confirmErr *service.ConfirmError
		if errors.As(err, &confirmErr) && confirmErr.Reason == constants.ConfirmFailurePromoExhausted {
			logger.Errorw("worker_order_replay_promo_exhausted", "reference", reference, "snapshot", string(payload.Snapshot))
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		if errors.Is(err, service.ErrPaymentMetadataInvalid) {
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		logger.Warnw("worker_order_replay_failed", "reference", reference, "error", err)
		return err
	}
	logger.Infow("worker_order_replayed",
		"reference", reference,
		"order_id", result.OrderID,
		"duplicate", result.Duplicate,
	)
	return nil
}

// classifyEmailError 收件人被拒绝与配置缺失不再重试
func classifyEmailError(err error) error {
	switch {
	case errors.Is(err, service.ErrEmailRecipientRejected),
		errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrEmailServiceNotConfigured),
		errors.Is(err, service.ErrEmailServiceDisabled):
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	default:
		return err
	}
}
