package service

import (
	"strings"

	"github.com/cellar-next/internal/models"
	"github.com/cellar-next/internal/repository"
)

// DeliveryFeeService 城市配送费服务
type DeliveryFeeService struct {
	repo repository.DeliveryFeeRepository
}

// NewDeliveryFeeService 创建配送费服务
func NewDeliveryFeeService(repo repository.DeliveryFeeRepository) *DeliveryFeeService {
	return &DeliveryFeeService{repo: repo}
}

// Lookup 查询城市配送费，未配置时为 0
func (s *DeliveryFeeService) Lookup(city string) (models.Money, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return models.Money{}, nil
	}
	row, err := s.repo.GetByCity(city)
	if err != nil {
		return models.Money{}, err
	}
	if row == nil {
		return models.Money{}, nil
	}
	return row.Fee, nil
}

// List 全部配送费
func (s *DeliveryFeeService) List() ([]models.DeliveryFee, error) {
	return s.repo.List()
}

// Upsert 新增或更新城市配送费
func (s *DeliveryFeeService) Upsert(city string, fee models.Money) (*models.DeliveryFee, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, ErrDeliveryFeeCityEmpty
	}
	if fee.IsNegative() {
		return nil, ErrDeliveryFeeInvalid
	}
	row := &models.DeliveryFee{City: city, Fee: fee}
	if err := s.repo.Upsert(row); err != nil {
		return nil, err
	}
	return row, nil
}

// Delete 删除城市配送费
func (s *DeliveryFeeService) Delete(id uint) error {
	return s.repo.Delete(id)
}
