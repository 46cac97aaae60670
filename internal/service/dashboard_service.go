package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/cellar-next/internal/cache"
	"github.com/cellar-next/internal/logger"
	"github.com/cellar-next/internal/repository"
)

const (
	dashboardCacheTTL         = 45 * time.Second
	dashboardDefaultDays      = 30
	dashboardMaxDays          = 365
	dashboardTopProductsLimit = 10
)

// DashboardService 后台仪表盘服务
type DashboardService struct {
	repo repository.DashboardRepository
	now  func() time.Time
}

// NewDashboardService 创建仪表盘服务
func NewDashboardService(repo repository.DashboardRepository) *DashboardService {
	return &DashboardService{repo: repo, now: time.Now}
}

// DashboardStats 总览
type DashboardStats struct {
	TotalProducts int64   `json:"totalProducts"`
	TotalOrders   int64   `json:"totalOrders"`
	TotalRevenue  float64 `json:"totalRevenue"`
	PendingOrders int64   `json:"pendingOrders"`
}

// TopProductRow 商品排行
type TopProductRow struct {
	ProductName   string  `json:"product_name"`
	TotalQuantity int64   `json:"total_quantity"`
	TotalRevenue  float64 `json:"total_revenue"`
}

// OrderStatusCount 状态分布
type OrderStatusCount struct {
	OrderStatus string `json:"order_status"`
	Count       int64  `json:"count"`
}

// CityRevenueRow 城市营收
type CityRevenueRow struct {
	DeliveryCity string  `json:"delivery_city"`
	TotalRevenue float64 `json:"total_revenue"`
	OrderCount   int64   `json:"order_count"`
}

// PromoUsageRow 优惠码使用
type PromoUsageRow struct {
	PromoCode     string  `json:"promo_code"`
	UsageCount    int64   `json:"usage_count"`
	TotalDiscount float64 `json:"total_discount"`
}

// DashboardAnalytics 分析数据
type DashboardAnalytics struct {
	Days           int                `json:"days"`
	TopProducts    []TopProductRow    `json:"topProducts"`
	OrdersByStatus []OrderStatusCount `json:"ordersByStatus"`
	RevenueByCity  []CityRevenueRow   `json:"revenueByCity"`
	PromoCodeUsage []PromoUsageRow    `json:"promoCodeUsage"`
}

// GetStats 获取总览统计
func (s *DashboardService) GetStats(ctx context.Context) (*DashboardStats, error) {
	cacheKey := "dashboard:stats"
	var cached DashboardStats
	hit, cacheErr := cache.GetJSON(ctx, cacheKey, &cached)
	if cacheErr != nil {
		logger.Warnw("dashboard_stats_cache_read_failed", "error", cacheErr)
	}
	if hit {
		return &cached, nil
	}

	row, err := s.repo.GetStats()
	if err != nil {
		return nil, err
	}
	stats := &DashboardStats{
		TotalProducts: row.TotalProducts,
		TotalOrders:   row.TotalOrders,
		TotalRevenue:  roundNaira(row.TotalRevenue),
		PendingOrders: row.PendingOrders,
	}
	_ = cache.SetJSON(ctx, cacheKey, stats, dashboardCacheTTL)
	return stats, nil
}

// NormalizeDashboardDays 规范统计窗口天数
func NormalizeDashboardDays(days int) int {
	if days <= 0 {
		return dashboardDefaultDays
	}
	if days > dashboardMaxDays {
		return dashboardMaxDays
	}
	return days
}

// Analytics 获取最近 N 天的分析数据
func (s *DashboardService) Analytics(ctx context.Context, days int) (*DashboardAnalytics, error) {
	days = NormalizeDashboardDays(days)
	cacheKey := fmt.Sprintf("dashboard:analytics:%d", days)
	var cached DashboardAnalytics
	hit, cacheErr := cache.GetJSON(ctx, cacheKey, &cached)
	if cacheErr != nil {
		logger.Warnw("dashboard_analytics_cache_read_failed", "days", days, "error", cacheErr)
	}
	if hit {
		return &cached, nil
	}

	since := s.now().AddDate(0, 0, -days)

	products, err := s.repo.GetTopProducts(since, dashboardTopProductsLimit)
	if err != nil {
		return nil, err
	}
	statuses, err := s.repo.GetOrdersByStatus(since)
	if err != nil {
		return nil, err
	}
	cities, err := s.repo.GetRevenueByCity(since)
	if err != nil {
		return nil, err
	}
	promos, err := s.repo.GetPromoCodeUsage(since)
	if err != nil {
		return nil, err
	}

	result := &DashboardAnalytics{
		Days:           days,
		TopProducts:    make([]TopProductRow, 0, len(products)),
		OrdersByStatus: make([]OrderStatusCount, 0, len(statuses)),
		RevenueByCity:  make([]CityRevenueRow, 0, len(cities)),
		PromoCodeUsage: make([]PromoUsageRow, 0, len(promos)),
	}
	for _, row := range products {
		result.TopProducts = append(result.TopProducts, TopProductRow{
			ProductName:   row.ProductName,
			TotalQuantity: row.TotalQuantity,
			TotalRevenue:  roundNaira(row.TotalRevenue),
		})
	}
	for _, row := range statuses {
		result.OrdersByStatus = append(result.OrdersByStatus, OrderStatusCount{
			OrderStatus: row.OrderStatus,
			Count:       row.Count,
		})
	}
	for _, row := range cities {
		result.RevenueByCity = append(result.RevenueByCity, CityRevenueRow{
			DeliveryCity: row.DeliveryCity,
			TotalRevenue: roundNaira(row.TotalRevenue),
			OrderCount:   row.OrderCount,
		})
	}
	for _, row := range promos {
		result.PromoCodeUsage = append(result.PromoCodeUsage, PromoUsageRow{
			PromoCode:     row.PromoCode,
			UsageCount:    row.UsageCount,
			TotalDiscount: roundNaira(row.TotalDiscount),
		})
	}

	_ = cache.SetJSON(ctx, cacheKey, result, dashboardCacheTTL)
	return result, nil
}

func roundNaira(v float64) float64 {
	return math.Round(v)
}
