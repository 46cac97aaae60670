package repository

import (
	"testing"
	"time"

	"github.com/cellar-next/internal/constants"
)

func TestDashboardAggregates(t *testing.T) {
	db := setupRepositoryTestDB(t)
	orders := NewOrderRepository(db)
	products := NewProductRepository(db)
	seedCatalog(t, products)

	promo := "SAVE20"
	fixtures := []struct {
		ref      string
		city     string
		status   string
		paystack string
		promo    *string
	}{
		{ref: "CN1", city: "Lagos", status: constants.OrderStatusPending, paystack: constants.PaystackStatusSuccess, promo: &promo},
		{ref: "CN2", city: "Lagos", status: constants.OrderStatusDelivered, paystack: constants.PaystackStatusSuccess},
		{ref: "CN3", city: "Abuja", status: constants.OrderStatusPending, paystack: constants.PaystackStatusSuccess, promo: &promo},
		{ref: "CN4", city: "Abuja", status: constants.OrderStatusCancelled, paystack: constants.PaystackStatusFailed},
	}
	for _, f := range fixtures {
		order, items := newTestOrder(f.ref)
		order.DeliveryCity = f.city
		order.OrderStatus = f.status
		order.PaystackStatus = f.paystack
		order.PromoCode = f.promo
		if err := orders.Create(order, items); err != nil {
			t.Fatalf("create order %s failed: %v", f.ref, err)
		}
	}

	repo := NewDashboardRepository(db)
	stats, err := repo.GetStats()
	if err != nil {
		t.Fatalf("get stats failed: %v", err)
	}
	if stats.TotalProducts != 4 || stats.TotalOrders != 4 || stats.PendingOrders != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.TotalRevenue != 3*37000 {
		t.Fatalf("revenue want %d got %v", 3*37000, stats.TotalRevenue)
	}

	since := time.Now().Add(-24 * time.Hour)
	top, err := repo.GetTopProducts(since, 10)
	if err != nil {
		t.Fatalf("top products failed: %v", err)
	}
	if len(top) != 2 || top[0].ProductName != "Hennessy VS" || top[0].TotalRevenue != 90000 {
		t.Fatalf("unexpected top products: %+v", top)
	}
	if top[1].TotalQuantity != 6 {
		t.Fatalf("baileys quantity want 6 got %d", top[1].TotalQuantity)
	}

	byStatus, err := repo.GetOrdersByStatus(since)
	if err != nil {
		t.Fatalf("orders by status failed: %v", err)
	}
	counts := map[string]int64{}
	for _, row := range byStatus {
		counts[row.OrderStatus] = row.Count
	}
	if counts[constants.OrderStatusPending] != 2 || counts[constants.OrderStatusCancelled] != 1 {
		t.Fatalf("unexpected status distribution: %+v", counts)
	}

	cities, err := repo.GetRevenueByCity(since)
	if err != nil {
		t.Fatalf("revenue by city failed: %v", err)
	}
	if len(cities) != 2 || cities[0].DeliveryCity != "Lagos" || cities[0].OrderCount != 2 {
		t.Fatalf("unexpected city revenue: %+v", cities)
	}

	usage, err := repo.GetPromoCodeUsage(since)
	if err != nil {
		t.Fatalf("promo usage failed: %v", err)
	}
	if len(usage) != 1 || usage[0].UsageCount != 2 || usage[0].TotalDiscount != 20000 {
		t.Fatalf("unexpected promo usage: %+v", usage)
	}
}
