package service

import (
	"context"
	"testing"

	"github.com/cellar-next/internal/constants"
	"github.com/cellar-next/internal/models"
	"github.com/cellar-next/internal/repository"

	"github.com/shopspring/decimal"
)

func TestDashboardStatsAndAnalytics(t *testing.T) {
	confirmation, db, _ := newConfirmationForTest(t)
	seedPromo(t, db, models.PromoCode{Code: "SAVE20", DiscountType: constants.DiscountTypePercentage, DiscountValue: decimal.NewFromInt(20), IsActive: true})
	seedProduct(t, db, "Jameson", "jameson", 15000, true)
	code := "SAVE20"
	if _, err := confirmation.ConfirmOrder(context.Background(), ConfirmInput{Reference: "CNREF-D1", Snapshot: sampleSnapshot(&code)}); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if _, err := confirmation.ConfirmOrder(context.Background(), ConfirmInput{Reference: "CNREF-D2", Snapshot: sampleSnapshot(nil)}); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}

	svc := NewDashboardService(repository.NewDashboardRepository(db))
	stats, err := svc.GetStats(context.Background())
	if err != nil {
		t.Fatalf("get stats failed: %v", err)
	}
	if stats.TotalProducts != 1 || stats.TotalOrders != 2 || stats.PendingOrders != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.TotalRevenue != 74000 {
		t.Fatalf("revenue want 74000 got %v", stats.TotalRevenue)
	}

	analytics, err := svc.Analytics(context.Background(), 0)
	if err != nil {
		t.Fatalf("analytics failed: %v", err)
	}
	if analytics.Days != 30 {
		t.Fatalf("default window want 30 got %d", analytics.Days)
	}
	if len(analytics.TopProducts) != 1 || analytics.TopProducts[0].TotalQuantity != 6 {
		t.Fatalf("unexpected top products: %+v", analytics.TopProducts)
	}
	if len(analytics.RevenueByCity) != 1 || analytics.RevenueByCity[0].DeliveryCity != "Lagos" || analytics.RevenueByCity[0].OrderCount != 2 {
		t.Fatalf("unexpected city revenue: %+v", analytics.RevenueByCity)
	}
	if len(analytics.PromoCodeUsage) != 1 || analytics.PromoCodeUsage[0].UsageCount != 1 {
		t.Fatalf("unexpected promo usage: %+v", analytics.PromoCodeUsage)
	}
	if len(analytics.OrdersByStatus) != 1 || analytics.OrdersByStatus[0].Count != 2 {
		t.Fatalf("unexpected status breakdown: %+v", analytics.OrdersByStatus)
	}
}

func TestNormalizeDashboardDays(t *testing.T) {
	if NormalizeDashboardDays(-3) != 30 || NormalizeDashboardDays(7) != 7 || NormalizeDashboardDays(5000) != 365 {
		t.Fatalf("unexpected normalization")
	}
}
