package repository

import (
	"errors"
	"strings"

	"github.com/cellar-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DeliveryFeeRepository 配送费数据访问接口
type DeliveryFeeRepository interface {
	GetByCity(city string) (*models.DeliveryFee, error)
	List() ([]models.DeliveryFee, error)
	Upsert(fee *models.DeliveryFee) error
	Delete(id uint) error
}

// GormDeliveryFeeRepository GORM 实现
type GormDeliveryFeeRepository struct {
	db *gorm.DB
}

// NewDeliveryFeeRepository 创建配送费仓库
func NewDeliveryFeeRepository(db *gorm.DB) *GormDeliveryFeeRepository {
	return &GormDeliveryFeeRepository{db: db}
}

// GetByCity 按城市查询（忽略大小写）
func (r *GormDeliveryFeeRepository) GetByCity(city string) (*models.DeliveryFee, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, nil
	}
	var fee models.DeliveryFee
	if err := r.db.Where("LOWER(city) = LOWER(?)", city).First(&fee).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &fee, nil
}

// List 全部城市配送费
func (r *GormDeliveryFeeRepository) List() ([]models.DeliveryFee, error) {
	var fees []models.DeliveryFee
	if err := r.db.Order("city asc").Find(&fees).Error; err != nil {
		return nil, err
	}
	return fees, nil
}

// Upsert 按城市新增或更新
func (r *GormDeliveryFeeRepository) Upsert(fee *models.DeliveryFee) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "city"}},
		DoUpdates: clause.AssignmentColumns([]string{"fee", "updated_at"}),
	}).Create(fee).Error
}

// Delete 删除配送费
func (r *GormDeliveryFeeRepository) Delete(id uint) error {
	return r.db.Delete(&models.DeliveryFee{}, id).Error
}
