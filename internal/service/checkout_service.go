package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cellar-next/internal/constants"
	"github.com/cellar-next/internal/logger"
	"github.com/cellar-next/internal/models"
	"github.com/cellar-next/internal/payment/paystack"
	"github.com/cellar-next/internal/repository"

	"github.com/google/uuid"
)

// PaymentGateway 支付网关能力
type PaymentGateway interface {
	Configured() bool
	Initialize(ctx context.Context, input paystack.InitializeInput) (*paystack.InitializeResult, error)
	Verify(ctx context.Context, reference string) (*paystack.Transaction, error)
	VerifySignature(body []byte, signature string) error
}

// CheckoutItemInput 购物车行
type CheckoutItemInput struct {
	ID         uint
	Name       string
	Price      models.Money
	Quantity   int
	BottleSize string
}

// CheckoutInput 结算输入
type CheckoutInput struct {
	CartItems     []CheckoutItemInput
	CustomerEmail string
	DeliveryCity  string
	PromoCode     string
	DeliveryFee   *models.Money
	CallbackURL   string
}

// CheckoutBreakdown 金额明细
type CheckoutBreakdown struct {
	Subtotal       models.Money `json:"subtotal"`
	DeliveryFee    models.Money `json:"delivery_fee"`
	DiscountAmount models.Money `json:"discount_amount"`
	Total          models.Money `json:"total"`
	AmountMinor    int64        `json:"amount_minor"`
	PromoCode      string       `json:"promo_code,omitempty"`
}

// CheckoutResult 结算初始化结果
type CheckoutResult struct {
	AuthorizationURL string
	AccessCode       string
	Reference        string
	Breakdown        CheckoutBreakdown
}

// CheckoutService 结算服务
type CheckoutService struct {
	gateway         PaymentGateway
	productRepo     repository.ProductRepository
	deliveryFeeRepo repository.DeliveryFeeRepository
	promoService    *PromoCodeService
	callbackURL     string
}

// NewCheckoutService 创建结算服务
func NewCheckoutService(gateway PaymentGateway, productRepo repository.ProductRepository, deliveryFeeRepo repository.DeliveryFeeRepository, promoService *PromoCodeService, callbackURL string) *CheckoutService {
	return &CheckoutService{
		gateway:         gateway,
		productRepo:     productRepo,
		deliveryFeeRepo: deliveryFeeRepo,
		promoService:    promoService,
		callbackURL:     strings.TrimSpace(callbackURL),
	}
}

// Initialize 计算金额并向网关初始化交易，订单在支付校验成功后才写入
func (s *CheckoutService) Initialize(ctx context.Context, input CheckoutInput) (*CheckoutResult, error) {
	if len(input.CartItems) == 0 {
		return nil, ErrCartEmpty
	}
	email, err := normalizeEmail(input.CustomerEmail)
	if err != nil {
		return nil, ErrCustomerEmailInvalid
	}
	city := strings.TrimSpace(input.DeliveryCity)
	if city == "" {
		return nil, ErrDeliveryCityRequired
	}
	if input.DeliveryFee == nil {
		return nil, ErrDeliveryFeeRequired
	}
	if input.DeliveryFee.IsNegative() {
		return nil, ErrInvalidAmount
	}
	if s.gateway == nil || !s.gateway.Configured() {
		return nil, ErrPaymentGatewayNotConfigured
	}

	items, err := s.priceItems(input.CartItems)
	if err != nil {
		return nil, err
	}
	lines := make([]OrderLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, OrderLine{UnitPrice: item.Price, Quantity: item.Quantity})
	}
	subtotal, err := ComputeSubtotal(lines)
	if err != nil {
		return nil, err
	}

	deliveryFee, err := s.resolveDeliveryFee(city, *input.DeliveryFee)
	if err != nil {
		return nil, err
	}

	discount := models.Money{}
	var promoCode *string
	if code := NormalizePromoCode(input.PromoCode); code != "" {
		outcome, err := s.promoService.Validate(code, subtotal.Decimal)
		if err != nil {
			return nil, err
		}
		discount = outcome.DiscountAmount
		promoCode = &outcome.Code
	}

	total, err := ComputeTotal(subtotal, deliveryFee, discount)
	if err != nil {
		return nil, err
	}
	amountMinor := total.MinorUnits()
	if amountMinor <= 0 {
		return nil, ErrInvalidAmount
	}

	snapshot := CheckoutSnapshot{
		CartItems:      items,
		CustomerEmail:  email,
		DeliveryCity:   city,
		Subtotal:       subtotal,
		DeliveryFee:    deliveryFee,
		DiscountAmount: discount,
		PromoCode:      promoCode,
	}
	reference := newPaymentReference()
	callbackURL := strings.TrimSpace(input.CallbackURL)
	if callbackURL == "" {
		callbackURL = s.callbackURL
	}

	result, err := s.gateway.Initialize(ctx, paystack.InitializeInput{
		Email:       email,
		AmountMinor: amountMinor,
		Reference:   reference,
		CallbackURL: callbackURL,
		Metadata:    snapshot,
	})
	if err != nil {
		logger.Warnw("checkout_initialize_failed", "reference", reference, "amount_minor", amountMinor, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrPaymentInitFailed, err)
	}
	if strings.TrimSpace(result.Reference) != "" {
		reference = result.Reference
	}
	logger.Infow("checkout_initialized",
		"reference", reference,
		"amount_minor", amountMinor,
		"promo_code", input.PromoCode,
		"delivery_city", city,
	)

	breakdown := CheckoutBreakdown{
		Subtotal:       subtotal,
		DeliveryFee:    deliveryFee,
		DiscountAmount: discount,
		Total:          total,
		AmountMinor:    amountMinor,
	}
	if promoCode != nil {
		breakdown.PromoCode = *promoCode
	}
	return &CheckoutResult{
		AuthorizationURL: result.AuthorizationURL,
		AccessCode:       result.AccessCode,
		Reference:        reference,
		Breakdown:        breakdown,
	}, nil
}

// priceItems 以商品库的名称与价格为准生成快照
func (s *CheckoutService) priceItems(inputs []CheckoutItemInput) ([]SnapshotItem, error) {
	ids := make([]uint, 0, len(inputs))
	for _, item := range inputs {
		if item.ID == 0 {
			return nil, ErrCartItemInvalid
		}
		if item.Quantity < constants.CartMinQuantity || item.Quantity > constants.CartMaxQuantity {
			return nil, ErrCartQuantityInvalid
		}
		ids = append(ids, item.ID)
	}
	products, err := s.productRepo.ListByIDs(ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Product, len(products))
	for _, product := range products {
		byID[product.ID] = product
	}

	items := make([]SnapshotItem, 0, len(inputs))
	for _, input := range inputs {
		product, ok := byID[input.ID]
		if !ok || !product.InStock {
			return nil, ErrCartItemInvalid
		}
		if !product.Price.Decimal.Equal(input.Price.Decimal) {
			logger.Infow("checkout_item_repriced", "product_id", product.ID, "client_price", input.Price.String(), "price", product.Price.String())
		}
		bottleSize := strings.TrimSpace(product.BottleSize)
		if bottleSize == "" {
			bottleSize = strings.TrimSpace(input.BottleSize)
		}
		items = append(items, SnapshotItem{
			ID:         product.ID,
			Name:       product.Name,
			Price:      product.Price,
			Quantity:   input.Quantity,
			BottleSize: bottleSize,
		})
	}
	return items, nil
}

// resolveDeliveryFee 城市已配置运费时优先使用
func (s *CheckoutService) resolveDeliveryFee(city string, requested models.Money) (models.Money, error) {
	if s.deliveryFeeRepo == nil {
		return requested, nil
	}
	row, err := s.deliveryFeeRepo.GetByCity(city)
	if err != nil {
		return models.Money{}, err
	}
	if row == nil {
		return requested, nil
	}
	return row.Fee, nil
}

func newPaymentReference() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "CN" + strings.ToUpper(raw[:20])
}

// IsPromoRejection 判断是否为优惠码校验失败
func IsPromoRejection(err error) bool {
	for _, target := range []error{
		ErrPromoCodeRequired,
		ErrPromoInvalidCode,
		ErrPromoNotYetActive,
		ErrPromoExpired,
		ErrPromoLimitExceeded,
		ErrPromoBelowMinimum,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
