package repository

import (
	"testing"
	"time"

	"github.com/cellar-next/internal/constants"
	"github.com/cellar-next/internal/models"
)

func newTestOrder(reference string) (*models.Order, []models.OrderItem) {
	paidAt := time.Now()
	order := &models.Order{
		PaystackReference: reference,
		CustomerEmail:     "buyer@example.com",
		DeliveryCity:      "Lagos",
		Subtotal:          models.NewMoney(45000),
		DeliveryFee:       models.NewMoney(2000),
		DiscountAmount:    models.NewMoney(10000),
		TotalAmount:       models.NewMoney(37000),
		OrderStatus:       constants.OrderStatusPending,
		PaystackStatus:    constants.PaystackStatusSuccess,
		PaidAt:            &paidAt,
	}
	items := []models.OrderItem{
		{ProductID: 1, ProductName: "Hennessy VS", ProductPrice: models.NewMoney(30000), Quantity: 1, BottleSize: "70cl"},
		{ProductID: 2, ProductName: "Baileys", ProductPrice: models.NewMoney(7500), Quantity: 2, BottleSize: "1L"},
	}
	return order, items
}

func TestOrderCreateAndGetByReference(t *testing.T) {
	repo := NewOrderRepository(setupRepositoryTestDB(t))
	order, items := newTestOrder("CNREF001")
	if err := repo.Create(order, items); err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if order.ID == 0 {
		t.Fatalf("order id should be assigned")
	}

	got, err := repo.GetByReference("CNREF001")
	if err != nil || got == nil {
		t.Fatalf("get by reference failed: %v", err)
	}
	if len(got.Items) != 2 {
		t.Fatalf("items want 2 got %d", len(got.Items))
	}
	if got.Items[1].LineTotal().Int64() != 15000 {
		t.Fatalf("line total want 15000 got %s", got.Items[1].LineTotal())
	}
	if got.TotalAmount.MinorUnits() != 3700000 {
		t.Fatalf("total minor want 3700000 got %d", got.TotalAmount.MinorUnits())
	}

	missing, err := repo.GetByReference("CNMISSING")
	if err != nil || missing != nil {
		t.Fatalf("missing reference should return nil,nil got %+v %v", missing, err)
	}
}

func TestOrderDuplicateReferenceIsUniqueViolation(t *testing.T) {
	repo := NewOrderRepository(setupRepositoryTestDB(t))
	first, items := newTestOrder("CNDUP")
	if err := repo.Create(first, items); err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	second, items := newTestOrder("CNDUP")
	err := repo.Create(second, items)
	if err == nil {
		t.Fatalf("duplicate reference should fail")
	}
	if !IsUniqueViolation(err) {
		t.Fatalf("expected unique violation, got %v", err)
	}
}

func TestOrderListAdminAndUpdateStatus(t *testing.T) {
	repo := NewOrderRepository(setupRepositoryTestDB(t))
	for _, ref := range []string{"CNA", "CNB", "CNC"} {
		order, items := newTestOrder(ref)
		if err := repo.Create(order, items); err != nil {
			t.Fatalf("create order %s failed: %v", ref, err)
		}
	}
	target, _ := repo.GetByReference("CNB")
	if err := repo.UpdateStatus(target.ID, constants.OrderStatusShipped); err != nil {
		t.Fatalf("update status failed: %v", err)
	}

	shipped, total, err := repo.ListAdmin(OrderListFilter{Status: constants.OrderStatusShipped})
	if err != nil {
		t.Fatalf("list admin failed: %v", err)
	}
	if total != 1 || len(shipped) != 1 || shipped[0].PaystackReference != "CNB" {
		t.Fatalf("unexpected shipped orders: total=%d %+v", total, shipped)
	}
	if len(shipped[0].Items) != 2 {
		t.Fatalf("listed order should preload items")
	}

	page, total, err := repo.ListAdmin(OrderListFilter{Page: 2, PageSize: 2})
	if err != nil {
		t.Fatalf("list page failed: %v", err)
	}
	if total != 3 || len(page) != 1 {
		t.Fatalf("pagination mismatch total=%d len=%d", total, len(page))
	}
}
