package repository

import (
	"github.com/cellar-next/internal/models"

	"gorm.io/gorm"
)

// ReviewRepository 商品评价数据访问接口
type ReviewRepository interface {
	Create(review *models.ProductReview) error
	Exists(productID, userID uint) (bool, error)
	ListByProduct(productID uint) ([]models.ProductReview, error)
}

// GormReviewRepository GORM 实现
type GormReviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository 创建评价仓库
func NewReviewRepository(db *gorm.DB) *GormReviewRepository {
	return &GormReviewRepository{db: db}
}

// Create 创建评价
func (r *GormReviewRepository) Create(review *models.ProductReview) error {
	return r.db.Omit("User").Create(review).Error
}

// Exists 用户是否已评价该商品
func (r *GormReviewRepository) Exists(productID, userID uint) (bool, error) {
	var count int64
	if err := r.db.Model(&models.ProductReview{}).
		Where("product_id = ? AND user_id = ?", productID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListByProduct 商品评价列表（含评价人）
func (r *GormReviewRepository) ListByProduct(productID uint) ([]models.ProductReview, error) {
	var reviews []models.ProductReview
	if err := r.db.Preload("User").
		Where("product_id = ?", productID).
		Order("created_at desc").
		Order("id desc").
		Find(&reviews).Error; err != nil {
		return nil, err
	}
	return reviews, nil
}
