package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cellar-next/internal/constants"
	"github.com/cellar-next/internal/logger"
	"github.com/cellar-next/internal/metrics"
	"github.com/cellar-next/internal/models"
	"github.com/cellar-next/internal/queue"
	"github.com/cellar-next/internal/repository"

	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

// OrderTaskQueue 订单相关异步任务
type OrderTaskQueue interface {
	EnqueueOrderConfirmedEmail(payload queue.OrderConfirmedEmailPayload, opts ...asynq.Option) error
	EnqueueOrderStatusEmail(payload queue.OrderStatusEmailPayload, opts ...asynq.Option) error
	EnqueueOrderPersistenceFailed(payload queue.OrderPersistenceFailedPayload) error
}

// SnapshotItem 购物车行快照
type SnapshotItem struct {
	ID         uint         `json:"id"`
	Name       string       `json:"name"`
	Price      models.Money `json:"price"`
	Quantity   int          `json:"quantity"`
	BottleSize string       `json:"bottle_size"`
}

// CheckoutSnapshot 结算时随交易写入网关的快照，订单在支付校验后据此落库
type CheckoutSnapshot struct {
	CartItems      []SnapshotItem `json:"cartItems"`
	CustomerEmail  string         `json:"customerEmail"`
	DeliveryCity   string         `json:"deliveryCity"`
	Subtotal       models.Money   `json:"subtotal"`
	DeliveryFee    models.Money   `json:"deliveryFee"`
	DiscountAmount models.Money   `json:"discountAmount"`
	PromoCode      *string        `json:"promoCode"`
}

// promoCode 快照中的优惠码（已规范化）
func (s CheckoutSnapshot) promoCode() string {
	if s.PromoCode == nil {
		return ""
	}
	return NormalizePromoCode(*s.PromoCode)
}

func (s CheckoutSnapshot) validate() error {
	if len(s.CartItems) == 0 {
		return ErrCartEmpty
	}
	if strings.TrimSpace(s.CustomerEmail) == "" {
		return ErrCustomerEmailInvalid
	}
	if strings.TrimSpace(s.DeliveryCity) == "" {
		return ErrDeliveryCityRequired
	}
	for _, item := range s.CartItems {
		if strings.TrimSpace(item.Name) == "" || item.Quantity < 1 || item.Price.IsNegative() {
			return ErrCartItemInvalid
		}
	}
	if s.Subtotal.IsNegative() || s.DeliveryFee.IsNegative() || s.DiscountAmount.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}

// ConfirmInput 订单确认输入
type ConfirmInput struct {
	Reference           string
	PaystackStatus      string
	VerifiedAmountMinor int64
	PaidAt              *time.Time
	Snapshot            CheckoutSnapshot
	// Replay 为补偿任务重放，失败时不再重复入队
	Replay bool
}

// ConfirmResult 订单确认结果
type ConfirmResult struct {
	OrderID   uint
	Reference string
	Duplicate bool
}

// ConfirmError 支付已成功但订单未能落库
type ConfirmError struct {
	Reason    string
	Reference string
	Err       error
}

func (e *ConfirmError) Error() string {
	return fmt.Sprintf("confirm order %s (%s): %v", e.Reference, e.Reason, e.Err)
}

// Unwrap 返回底层错误
func (e *ConfirmError) Unwrap() error {
	return e.Err
}

var errPromoSlotTaken = errors.New("promo slot taken")

// OrderConfirmationService 支付校验成功后的幂等落库
type OrderConfirmationService struct {
	orderRepo repository.OrderRepository
	promoRepo repository.PromoCodeRepository
	queue     OrderTaskQueue
}

// NewOrderConfirmationService 创建订单确认服务
func NewOrderConfirmationService(orderRepo repository.OrderRepository, promoRepo repository.PromoCodeRepository, queueClient OrderTaskQueue) *OrderConfirmationService {
	return &OrderConfirmationService{
		orderRepo: orderRepo,
		promoRepo: promoRepo,
		queue:     queueClient,
	}
}

// ConfirmOrder 以支付参考号为幂等键写入订单、订单项并占用优惠码次数
func (s *OrderConfirmationService) ConfirmOrder(ctx context.Context, input ConfirmInput) (*ConfirmResult, error) {
	reference := strings.TrimSpace(input.Reference)
	if reference == "" {
		return nil, ErrPaymentReferenceRequired
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	existing, err := s.orderRepo.GetByReference(reference)
	if err != nil {
		return nil, s.persistenceFailure(input, err)
	}
	if existing != nil {
		metrics.RecordOrderConfirmation(metrics.ConfirmResultDuplicate)
		logger.Infow("order_confirm_duplicate", "reference", reference, "order_id", existing.ID)
		return &ConfirmResult{OrderID: existing.ID, Reference: reference, Duplicate: true}, nil
	}

	if err := input.Snapshot.validate(); err != nil {
		logger.Errorw("order_confirm_snapshot_invalid",
			"reference", reference,
			"amount_minor", input.VerifiedAmountMinor,
			"snapshot", input.Snapshot,
			"error", err,
		)
		metrics.RecordOrderConfirmation(metrics.ConfirmResultPersistFailed)
		return nil, &ConfirmError{
			Reason:    constants.ConfirmFailurePersistence,
			Reference: reference,
			Err:       fmt.Errorf("%w: %v", ErrOrderPersistenceFailed, ErrPaymentMetadataInvalid),
		}
	}

	order, items := buildOrderFromSnapshot(reference, input)
	promoCode := input.Snapshot.promoCode()

	err = s.orderRepo.Transaction(func(tx *gorm.DB) error {
		if err := s.orderRepo.WithTx(tx).Create(order, items); err != nil {
			return err
		}
		if promoCode == "" {
			return nil
		}
		promoRepo := s.promoRepo.WithTx(tx)
		promo, err := promoRepo.GetByCode(promoCode)
		if err != nil {
			return err
		}
		if promo == nil {
			logger.Warnw("order_confirm_promo_missing", "reference", reference, "promo_code", promoCode)
			return nil
		}
		ok, err := promoRepo.IncrementUsedCountWithinLimit(promo.ID)
		if err != nil {
			return err
		}
		if !ok {
			return errPromoSlotTaken
		}
		return nil
	})
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return s.resolveDuplicate(input, err)
		}
		if errors.Is(err, errPromoSlotTaken) {
			logger.Errorw("order_confirm_promo_exhausted",
				"reference", reference,
				"promo_code", promoCode,
				"amount_minor", input.VerifiedAmountMinor,
				"snapshot", input.Snapshot,
			)
			metrics.RecordOrderConfirmation(metrics.ConfirmResultPromoExhaust)
			return nil, &ConfirmError{
				Reason:    constants.ConfirmFailurePromoExhausted,
				Reference: reference,
				Err:       ErrPromoLimitExceeded,
			}
		}
		return nil, s.persistenceFailure(input, err)
	}

	metrics.RecordOrderConfirmation(metrics.ConfirmResultCreated)
	logger.Infow("order_confirmed",
		"reference", reference,
		"order_id", order.ID,
		"total_amount", order.TotalAmount.String(),
		"promo_code", promoCode,
	)
	s.enqueueConfirmedEmail(order)
	return &ConfirmResult{OrderID: order.ID, Reference: reference}, nil
}

// resolveDuplicate 并发写入命中唯一约束时返回已存在的订单
func (s *OrderConfirmationService) resolveDuplicate(input ConfirmInput, cause error) (*ConfirmResult, error) {
	reference := strings.TrimSpace(input.Reference)
	existing, err := s.orderRepo.GetByReference(reference)
	if err != nil {
		return nil, s.persistenceFailure(input, err)
	}
	if existing == nil {
		return nil, s.persistenceFailure(input, cause)
	}
	metrics.RecordOrderConfirmation(metrics.ConfirmResultDuplicate)
	logger.Infow("order_confirm_duplicate", "reference", reference, "order_id", existing.ID, "race", true)
	return &ConfirmResult{OrderID: existing.ID, Reference: reference, Duplicate: true}, nil
}

// persistenceFailure 记录支付快照并投递补偿任务
func (s *OrderConfirmationService) persistenceFailure(input ConfirmInput, cause error) error {
	reference := strings.TrimSpace(input.Reference)
	metrics.RecordOrderConfirmation(metrics.ConfirmResultPersistFailed)
	logger.Errorw("order_persistence_failed",
		"reference", reference,
		"paystack_status", input.PaystackStatus,
		"amount_minor", input.VerifiedAmountMinor,
		"snapshot", input.Snapshot,
		"replay", input.Replay,
		"error", cause,
	)
	if !input.Replay && s.queue != nil {
		snapshot, err := json.Marshal(input.Snapshot)
		if err == nil {
			err = s.queue.EnqueueOrderPersistenceFailed(queue.OrderPersistenceFailedPayload{
				Reference:      reference,
				PaystackStatus: input.PaystackStatus,
				AmountMinor:    input.VerifiedAmountMinor,
				PaidAt:         input.PaidAt,
				Snapshot:       snapshot,
				Reason:         constants.ConfirmFailurePersistence,
				Error:          cause.Error(),
			})
		}
		if err != nil {
			logger.Errorw("order_persistence_replay_enqueue_failed", "reference", reference, "error", err)
		}
	}
	return &ConfirmError{
		Reason:    constants.ConfirmFailurePersistence,
		Reference: reference,
		Err:       fmt.Errorf("%w: %v", ErrOrderPersistenceFailed, cause),
	}
}

func (s *OrderConfirmationService) enqueueConfirmedEmail(order *models.Order) {
	if s.queue == nil || order == nil {
		return
	}
	if err := s.queue.EnqueueOrderConfirmedEmail(queue.OrderConfirmedEmailPayload{
		OrderID:   order.ID,
		Reference: order.PaystackReference,
	}); err != nil {
		logger.Warnw("order_confirmed_email_enqueue_failed", "order_id", order.ID, "error", err)
	}
}

func buildOrderFromSnapshot(reference string, input ConfirmInput) (*models.Order, []models.OrderItem) {
	snapshot := input.Snapshot
	items := make([]models.OrderItem, 0, len(snapshot.CartItems))
	for _, line := range snapshot.CartItems {
		items = append(items, models.OrderItem{
			ProductID:    line.ID,
			ProductName:  strings.TrimSpace(line.Name),
			ProductPrice: line.Price,
			Quantity:     line.Quantity,
			BottleSize:   strings.TrimSpace(line.BottleSize),
		})
	}

	computed, err := ComputeTotal(snapshot.Subtotal, snapshot.DeliveryFee, snapshot.DiscountAmount)
	if err != nil {
		computed = models.Money{}
	}
	total := computed
	if input.VerifiedAmountMinor > 0 {
		total = models.MoneyFromMinorUnits(input.VerifiedAmountMinor)
		if !total.Decimal.Equal(computed.Decimal) {
			logger.Warnw("payment_amount_mismatch",
				"reference", reference,
				"paid_amount", total.String(),
				"expected_amount", computed.String(),
			)
		}
	}

	paystackStatus := strings.TrimSpace(input.PaystackStatus)
	if paystackStatus == "" {
		paystackStatus = constants.PaystackStatusSuccess
	}

	var promoCode *string
	if code := snapshot.promoCode(); code != "" {
		promoCode = &code
	}

	order := &models.Order{
		PaystackReference: reference,
		CustomerEmail:     strings.ToLower(strings.TrimSpace(snapshot.CustomerEmail)),
		DeliveryCity:      strings.TrimSpace(snapshot.DeliveryCity),
		Subtotal:          snapshot.Subtotal,
		DeliveryFee:       snapshot.DeliveryFee,
		DiscountAmount:    snapshot.DiscountAmount,
		PromoCode:         promoCode,
		TotalAmount:       total,
		OrderStatus:       constants.OrderStatusPending,
		PaystackStatus:    paystackStatus,
		PaidAt:            input.PaidAt,
	}
	return order, items
}
