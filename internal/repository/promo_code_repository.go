package repository

import (
	"errors"
	"time"

	"github.com/cellar-next/internal/models"

	"gorm.io/gorm"
)

// PromoCodeRepository 优惠码数据访问接口
type PromoCodeRepository interface {
	GetByID(id uint) (*models.PromoCode, error)
	GetByCode(code string) (*models.PromoCode, error)
	GetActiveByCode(code string) (*models.PromoCode, error)
	ListAvailable(now time.Time) ([]models.PromoCode, error)
	List(filter PromoCodeListFilter) ([]models.PromoCode, int64, error)
	Create(promo *models.PromoCode) error
	Update(promo *models.PromoCode) error
	UpdateFields(id uint, fields map[string]interface{}) error
	Delete(id uint) error
	IncrementUsedCountWithinLimit(id uint) (bool, error)
	WithTx(tx *gorm.DB) *GormPromoCodeRepository
}

// GormPromoCodeRepository GORM 实现
type GormPromoCodeRepository struct {
	db *gorm.DB
}

// NewPromoCodeRepository 创建优惠码仓库
func NewPromoCodeRepository(db *gorm.DB) *GormPromoCodeRepository {
	return &GormPromoCodeRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPromoCodeRepository) WithTx(tx *gorm.DB) *GormPromoCodeRepository {
	if tx == nil {
		return r
	}
	return &GormPromoCodeRepository{db: tx}
}

// GetByID 根据ID获取优惠码
func (r *GormPromoCodeRepository) GetByID(id uint) (*models.PromoCode, error) {
	var promo models.PromoCode
	if err := r.db.First(&promo, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &promo, nil
}

// GetByCode 根据优惠码获取（不区分启用状态）
func (r *GormPromoCodeRepository) GetByCode(code string) (*models.PromoCode, error) {
	var promo models.PromoCode
	if err := r.db.Where("code = ?", code).First(&promo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &promo, nil
}

// GetActiveByCode 获取启用中的优惠码
func (r *GormPromoCodeRepository) GetActiveByCode(code string) (*models.PromoCode, error) {
	var promo models.PromoCode
	if err := r.db.Where("code = ? AND is_active = ?", code, true).First(&promo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &promo, nil
}

// ListAvailable 前台可展示的优惠码：启用且未过期
func (r *GormPromoCodeRepository) ListAvailable(now time.Time) ([]models.PromoCode, error) {
	var promos []models.PromoCode
	err := r.db.Where("is_active = ?", true).
		Where("valid_until IS NULL OR valid_until >= ?", now).
		Order("created_at desc").
		Find(&promos).Error
	if err != nil {
		return nil, err
	}
	return promos, nil
}

// List 管理端优惠码列表
func (r *GormPromoCodeRepository) List(filter PromoCodeListFilter) ([]models.PromoCode, int64, error) {
	var promos []models.PromoCode
	query := r.db.Model(&models.PromoCode{})

	if filter.Code != "" {
		query = query.Where("code = ?", filter.Code)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	if err := query.Order("created_at desc").Order("id desc").Find(&promos).Error; err != nil {
		return nil, 0, err
	}
	return promos, total, nil
}

// Create 创建优惠码
func (r *GormPromoCodeRepository) Create(promo *models.PromoCode) error {
	return r.db.Create(promo).Error
}

// promoEditableColumns 后台可编辑的列，used_count 只通过 IncrementUsedCountWithinLimit 变更
var promoEditableColumns = []string{
	"code",
	"description",
	"discount_type",
	"discount_value",
	"min_order_amount",
	"max_discount_amount",
	"usage_limit",
	"valid_from",
	"valid_until",
	"is_active",
}

// Update 更新优惠码的可编辑字段
func (r *GormPromoCodeRepository) Update(promo *models.PromoCode) error {
	return r.db.Model(promo).Select(promoEditableColumns).Updates(promo).Error
}

// UpdateFields 局部更新
func (r *GormPromoCodeRepository) UpdateFields(id uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.Model(&models.PromoCode{}).Where("id = ?", id).Updates(fields).Error
}

// Delete 删除优惠码
func (r *GormPromoCodeRepository) Delete(id uint) error {
	return r.db.Delete(&models.PromoCode{}, id).Error
}

// IncrementUsedCountWithinLimit 在未达上限时原子递增使用次数，返回是否递增成功
func (r *GormPromoCodeRepository) IncrementUsedCountWithinLimit(id uint) (bool, error) {
	result := r.db.Model(&models.PromoCode{}).
		Where("id = ?", id).
		Where("usage_limit IS NULL OR used_count < usage_limit").
		UpdateColumn("used_count", gorm.Expr("used_count + ?", 1))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
