package repository

import (
	"time"

	"github.com/cellar-next/internal/constants"
	"github.com/cellar-next/internal/models"

	"gorm.io/gorm"
)

// DashboardRepository 仪表盘聚合查询接口
// 说明：仅聚合统计数据，不承载业务规则。
type DashboardRepository interface {
	GetStats() (DashboardStatsRow, error)
	GetTopProducts(since time.Time, limit int) ([]DashboardProductRankingRow, error)
	GetOrdersByStatus(since time.Time) ([]DashboardStatusCountRow, error)
	GetRevenueByCity(since time.Time) ([]DashboardCityRevenueRow, error)
	GetPromoCodeUsage(since time.Time) ([]DashboardPromoUsageRow, error)
}

// DashboardStatsRow 后台总览
type DashboardStatsRow struct {
	TotalProducts int64
	TotalOrders   int64
	TotalRevenue  float64
	PendingOrders int64
}

// DashboardProductRankingRow 商品销售排行
type DashboardProductRankingRow struct {
	ProductName   string
	TotalQuantity int64
	TotalRevenue  float64
}

// DashboardStatusCountRow 订单状态分布
type DashboardStatusCountRow struct {
	OrderStatus string
	Count       int64
}

// DashboardCityRevenueRow 城市营收
type DashboardCityRevenueRow struct {
	DeliveryCity string
	TotalRevenue float64
	OrderCount   int64
}

// DashboardPromoUsageRow 优惠码使用情况
type DashboardPromoUsageRow struct {
	PromoCode     string
	UsageCount    int64
	TotalDiscount float64
}

// GormDashboardRepository GORM 仪表盘聚合实现
type GormDashboardRepository struct {
	db *gorm.DB
}

// NewDashboardRepository 创建仪表盘仓库
func NewDashboardRepository(db *gorm.DB) *GormDashboardRepository {
	return &GormDashboardRepository{db: db}
}

func (r *GormDashboardRepository) paidOrders(since time.Time) *gorm.DB {
	return r.db.Model(&models.Order{}).
		Where("orders.created_at >= ? AND orders.paystack_status = ?", since, constants.PaystackStatusSuccess)
}

// GetStats 获取总览统计
func (r *GormDashboardRepository) GetStats() (DashboardStatsRow, error) {
	result := DashboardStatsRow{}

	if err := r.db.Model(&models.Product{}).Count(&result.TotalProducts).Error; err != nil {
		return result, err
	}
	if err := r.db.Model(&models.Order{}).Count(&result.TotalOrders).Error; err != nil {
		return result, err
	}
	if err := r.db.Model(&models.Order{}).
		Where("paystack_status = ?", constants.PaystackStatusSuccess).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&result.TotalRevenue).Error; err != nil {
		return result, err
	}
	if err := r.db.Model(&models.Order{}).
		Where("order_status = ?", constants.OrderStatusPending).
		Count(&result.PendingOrders).Error; err != nil {
		return result, err
	}
	return result, nil
}

// GetTopProducts 按营收排序的商品排行（仅支付成功订单）
func (r *GormDashboardRepository) GetTopProducts(since time.Time, limit int) ([]DashboardProductRankingRow, error) {
	if limit <= 0 {
		limit = 10
	}
	var rows []DashboardProductRankingRow
	err := r.db.Model(&models.OrderItem{}).
		Select("order_items.product_name AS product_name, "+
			"COALESCE(SUM(order_items.quantity), 0) AS total_quantity, "+
			"COALESCE(SUM(order_items.product_price * order_items.quantity), 0) AS total_revenue").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.created_at >= ? AND orders.paystack_status = ?", since, constants.PaystackStatusSuccess).
		Group("order_items.product_name").
		Order("total_revenue desc").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// GetOrdersByStatus 订单状态分布
func (r *GormDashboardRepository) GetOrdersByStatus(since time.Time) ([]DashboardStatusCountRow, error) {
	var rows []DashboardStatusCountRow
	err := r.db.Model(&models.Order{}).
		Select("order_status, COUNT(*) AS count").
		Where("created_at >= ?", since).
		Group("order_status").
		Order("order_status asc").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// GetRevenueByCity 城市营收排行
func (r *GormDashboardRepository) GetRevenueByCity(since time.Time) ([]DashboardCityRevenueRow, error) {
	var rows []DashboardCityRevenueRow
	err := r.paidOrders(since).
		Select("delivery_city, COALESCE(SUM(total_amount), 0) AS total_revenue, COUNT(*) AS order_count").
		Group("delivery_city").
		Order("total_revenue desc").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// GetPromoCodeUsage 优惠码使用统计
func (r *GormDashboardRepository) GetPromoCodeUsage(since time.Time) ([]DashboardPromoUsageRow, error) {
	var rows []DashboardPromoUsageRow
	err := r.paidOrders(since).
		Select("promo_code, COUNT(*) AS usage_count, COALESCE(SUM(discount_amount), 0) AS total_discount").
		Where("promo_code IS NOT NULL AND promo_code <> ''").
		Group("promo_code").
		Order("total_discount desc").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
