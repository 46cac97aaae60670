package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cellar-next/internal/cache"
	"github.com/cellar-next/internal/constants"
	"github.com/cellar-next/internal/logger"
	"github.com/cellar-next/internal/models"
	"github.com/cellar-next/internal/repository"

	"github.com/shopspring/decimal"
)

// PromoCodeService 优惠码校验服务
type PromoCodeService struct {
	promoRepo repository.PromoCodeRepository
	now       func() time.Time
}

// NewPromoCodeService 创建优惠码校验服务
func NewPromoCodeService(promoRepo repository.PromoCodeRepository) *PromoCodeService {
	return &PromoCodeService{
		promoRepo: promoRepo,
		now:       time.Now,
	}
}

// DiscountOutcome 优惠码校验结果
type DiscountOutcome struct {
	Code           string          `json:"code"`
	DiscountType   string          `json:"discountType"`
	DiscountValue  decimal.Decimal `json:"discountValue"`
	DiscountAmount models.Money    `json:"discountAmount"`
	Message        string          `json:"message"`
}

// PromoRejection 携带展示参数的校验失败
type PromoRejection struct {
	Err            error
	MinOrderAmount models.Money
}

func (e *PromoRejection) Error() string {
	if e == nil || e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

// Unwrap 返回底层哨兵错误
func (e *PromoRejection) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NormalizePromoCode 统一优惠码格式
func NormalizePromoCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Validate 校验优惠码并计算折扣，仅读取不修改使用次数
// orderAmount 按原值比较门槛与计算比例，只有最终折扣取整到奈拉
func (s *PromoCodeService) Validate(code string, orderAmount decimal.Decimal) (*DiscountOutcome, error) {
	normalized := NormalizePromoCode(code)
	if normalized == "" {
		return nil, ErrPromoCodeRequired
	}
	if !orderAmount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	promo, err := s.promoRepo.GetActiveByCode(normalized)
	if err != nil {
		return nil, err
	}
	if promo == nil {
		return nil, ErrPromoInvalidCode
	}
	if err := checkPromoUsable(promo, orderAmount, s.now()); err != nil {
		return nil, err
	}

	discount := CalculatePromoDiscount(promo, orderAmount)
	return &DiscountOutcome{
		Code:           promo.Code,
		DiscountType:   promo.DiscountType,
		DiscountValue:  promo.DiscountValue,
		DiscountAmount: discount,
		Message:        fmt.Sprintf("Promo code applied! You saved %s", discount.Naira()),
	}, nil
}

func checkPromoUsable(promo *models.PromoCode, orderAmount decimal.Decimal, now time.Time) error {
	if now.Before(promo.ValidFrom) {
		return ErrPromoNotYetActive
	}
	if promo.ValidUntil != nil && now.After(*promo.ValidUntil) {
		return ErrPromoExpired
	}
	if promo.UsageExhausted() {
		return ErrPromoLimitExceeded
	}
	if orderAmount.LessThan(promo.MinOrderAmount.Decimal) {
		return &PromoRejection{Err: ErrPromoBelowMinimum, MinOrderAmount: promo.MinOrderAmount}
	}
	return nil
}

// CalculatePromoDiscount 计算折扣金额，结果取整到奈拉且不超过订单金额
func CalculatePromoDiscount(promo *models.PromoCode, orderAmount decimal.Decimal) models.Money {
	if promo == nil || !orderAmount.IsPositive() {
		return models.Money{}
	}
	amount := orderAmount
	var discount decimal.Decimal
	switch promo.DiscountType {
	case constants.DiscountTypePercentage:
		discount = amount.Mul(promo.DiscountValue).Div(decimal.NewFromInt(100))
		if promo.MaxDiscountAmount != nil && discount.GreaterThan(promo.MaxDiscountAmount.Decimal) {
			discount = promo.MaxDiscountAmount.Decimal
		}
	case constants.DiscountTypeFixed:
		discount = promo.DiscountValue
	default:
		return models.Money{}
	}
	if discount.GreaterThan(amount) {
		discount = amount
	}
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	return models.NewMoneyFromDecimal(discount)
}

// ListAvailable 公开的可用优惠码列表，优先读取缓存
func (s *PromoCodeService) ListAvailable(ctx context.Context) ([]models.PromoCode, error) {
	if rows, hit, err := cache.GetAvailablePromoCodes(ctx); err != nil {
		logger.Warnw("promo_cache_get_failed", "error", err)
	} else if hit {
		return rows, nil
	}
	rows, err := s.promoRepo.ListAvailable(s.now())
	if err != nil {
		return nil, err
	}
	if err := cache.SetAvailablePromoCodes(ctx, rows); err != nil {
		logger.Warnw("promo_cache_set_failed", "error", err)
	}
	return rows, nil
}
