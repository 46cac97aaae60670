package service

import (
	"context"
	"strings"
	"time"

	"github.com/cellar-next/internal/cache"
	"github.com/cellar-next/internal/constants"
	"github.com/cellar-next/internal/logger"
	"github.com/cellar-next/internal/models"
	"github.com/cellar-next/internal/repository"

	"github.com/shopspring/decimal"
)

// discountValuePlaces 优惠数值保留的小数位，与 discount_value 列精度一致
const discountValuePlaces = 2

// PromoCodeAdminService 优惠码管理服务
type PromoCodeAdminService struct {
	repo repository.PromoCodeRepository
}

// NewPromoCodeAdminService 创建优惠码管理服务
func NewPromoCodeAdminService(repo repository.PromoCodeRepository) *PromoCodeAdminService {
	return &PromoCodeAdminService{repo: repo}
}

// PromoCodeInput 创建或更新优惠码输入
type PromoCodeInput struct {
	Code              string
	Description       string
	DiscountType      string
	DiscountValue     decimal.Decimal
	MinOrderAmount    models.Money
	MaxDiscountAmount *models.Money
	UsageLimit        *int
	ValidFrom         *time.Time
	ValidUntil        *time.Time
	IsActive          *bool
}

// List 获取优惠码列表
func (s *PromoCodeAdminService) List(filter repository.PromoCodeListFilter) ([]models.PromoCode, int64, error) {
	return s.repo.List(filter)
}

// Get 获取单个优惠码
func (s *PromoCodeAdminService) Get(id uint) (*models.PromoCode, error) {
	promo, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if promo == nil {
		return nil, ErrPromoCodeNotFound
	}
	return promo, nil
}

// Create 创建优惠码
func (s *PromoCodeAdminService) Create(ctx context.Context, input PromoCodeInput) (*models.PromoCode, error) {
	code, discountType, err := validatePromoInput(input)
	if err != nil {
		return nil, err
	}
	exist, err := s.repo.GetByCode(code)
	if err != nil {
		return nil, err
	}
	if exist != nil {
		return nil, ErrPromoCodeExists
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}
	validFrom := time.Now()
	if input.ValidFrom != nil {
		validFrom = *input.ValidFrom
	}

	promo := &models.PromoCode{
		Code:              code,
		Description:       strings.TrimSpace(input.Description),
		DiscountType:      discountType,
		DiscountValue:     input.DiscountValue.Round(discountValuePlaces),
		MinOrderAmount:    input.MinOrderAmount,
		MaxDiscountAmount: normalizeMaxDiscount(discountType, input.MaxDiscountAmount),
		UsageLimit:        input.UsageLimit,
		ValidFrom:         validFrom,
		ValidUntil:        input.ValidUntil,
		IsActive:          isActive,
	}
	if err := s.repo.Create(promo); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrPromoCodeExists
		}
		return nil, err
	}
	s.invalidateCache(ctx)
	return promo, nil
}

// Update 更新优惠码配置，已使用次数保持不变
func (s *PromoCodeAdminService) Update(ctx context.Context, id uint, input PromoCodeInput) (*models.PromoCode, error) {
	existing, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	code, discountType, err := validatePromoInput(input)
	if err != nil {
		return nil, err
	}
	if code != existing.Code {
		dup, err := s.repo.GetByCode(code)
		if err != nil {
			return nil, err
		}
		if dup != nil {
			return nil, ErrPromoCodeExists
		}
	}

	existing.Code = code
	existing.Description = strings.TrimSpace(input.Description)
	existing.DiscountType = discountType
	existing.DiscountValue = input.DiscountValue.Round(discountValuePlaces)
	existing.MinOrderAmount = input.MinOrderAmount
	existing.MaxDiscountAmount = normalizeMaxDiscount(discountType, input.MaxDiscountAmount)
	existing.UsageLimit = input.UsageLimit
	if input.ValidFrom != nil {
		existing.ValidFrom = *input.ValidFrom
	}
	existing.ValidUntil = input.ValidUntil
	if input.IsActive != nil {
		existing.IsActive = *input.IsActive
	}

	if err := s.repo.Update(existing); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrPromoCodeExists
		}
		return nil, err
	}
	s.invalidateCache(ctx)
	return existing, nil
}

// SetActive 启用或停用优惠码
func (s *PromoCodeAdminService) SetActive(ctx context.Context, id uint, active bool) (*models.PromoCode, error) {
	existing, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateFields(id, map[string]interface{}{
		"is_active":  active,
		"updated_at": time.Now(),
	}); err != nil {
		return nil, err
	}
	existing.IsActive = active
	s.invalidateCache(ctx)
	return existing, nil
}

// Delete 删除优惠码
func (s *PromoCodeAdminService) Delete(ctx context.Context, id uint) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	s.invalidateCache(ctx)
	return nil
}

func (s *PromoCodeAdminService) invalidateCache(ctx context.Context) {
	if err := cache.InvalidateAvailablePromoCodes(ctx); err != nil {
		logger.Warnw("promo_cache_invalidate_failed", "error", err)
	}
}

func validatePromoInput(input PromoCodeInput) (string, string, error) {
	code := NormalizePromoCode(input.Code)
	if code == "" {
		return "", "", ErrPromoCodeRequired
	}
	discountType := strings.ToLower(strings.TrimSpace(input.DiscountType))
	if discountType != constants.DiscountTypePercentage && discountType != constants.DiscountTypeFixed {
		return "", "", ErrPromoDiscountType
	}
	value := input.DiscountValue.Round(discountValuePlaces)
	if !value.IsPositive() {
		return "", "", ErrPromoDiscountInvalid
	}
	if discountType == constants.DiscountTypePercentage && value.GreaterThan(decimal.NewFromInt(100)) {
		return "", "", ErrPromoDiscountInvalid
	}
	if input.MinOrderAmount.IsNegative() {
		return "", "", ErrInvalidAmount
	}
	if input.MaxDiscountAmount != nil && !input.MaxDiscountAmount.IsPositive() {
		return "", "", ErrPromoDiscountInvalid
	}
	if input.UsageLimit != nil && *input.UsageLimit < 0 {
		return "", "", ErrPromoUsageLimitInvalid
	}
	if input.ValidFrom != nil && input.ValidUntil != nil && input.ValidUntil.Before(*input.ValidFrom) {
		return "", "", ErrPromoValidityInvalid
	}
	return code, discountType, nil
}

// normalizeMaxDiscount 封顶仅对百分比类型生效
func normalizeMaxDiscount(discountType string, limit *models.Money) *models.Money {
	if discountType != constants.DiscountTypePercentage || limit == nil {
		return nil
	}
	value := *limit
	return &value
}
