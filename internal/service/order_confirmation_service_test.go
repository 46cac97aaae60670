package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/cellar-next/internal/constants"
	"github.com/cellar-next/internal/models"
	"github.com/cellar-next/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func newConfirmationForTest(t *testing.T) (*OrderConfirmationService, *gorm.DB, *fakeTaskQueue) {
	t.Helper()
	db := setupServiceTestDB(t)
	q := &fakeTaskQueue{}
	svc := NewOrderConfirmationService(repository.NewOrderRepository(db), repository.NewPromoCodeRepository(db), q)
	return svc, db, q
}

func sampleSnapshot(promo *string) CheckoutSnapshot {
	return CheckoutSnapshot{
		CartItems: []SnapshotItem{
			{ID: 1, Name: "Jameson", Price: models.NewMoney(15000), Quantity: 3, BottleSize: "75cl"},
		},
		CustomerEmail:  "Buyer@Example.com",
		DeliveryCity:   "Lagos",
		Subtotal:       models.NewMoney(45000),
		DeliveryFee:    models.NewMoney(2000),
		DiscountAmount: models.NewMoney(10000),
		PromoCode:      promo,
	}
}

func countOrders(t *testing.T, db *gorm.DB, reference string) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&models.Order{}).Where("paystack_reference = ?", reference).Count(&n).Error; err != nil {
		t.Fatalf("count orders failed: %v", err)
	}
	return n
}

func TestConfirmOrderCreatesOrderWithItems(t *testing.T) {
	svc, db, q := newConfirmationForTest(t)

	result, err := svc.ConfirmOrder(context.Background(), ConfirmInput{
		Reference:           "CNREF-1",
		PaystackStatus:      constants.PaystackStatusSuccess,
		VerifiedAmountMinor: 3700000,
		Snapshot:            sampleSnapshot(nil),
	})
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if result.Duplicate || result.OrderID == 0 {
		t.Fatalf("unexpected result: %+v", result)
	}

	var order models.Order
	if err := db.Preload("Items").First(&order, result.OrderID).Error; err != nil {
		t.Fatalf("load order failed: %v", err)
	}
	if order.TotalAmount.Int64() != 37000 {
		t.Fatalf("total want 37000 got %s", order.TotalAmount.String())
	}
	if order.CustomerEmail != "buyer@example.com" {
		t.Fatalf("email should be normalized, got %s", order.CustomerEmail)
	}
	if order.OrderStatus != constants.OrderStatusPending {
		t.Fatalf("status want pending got %s", order.OrderStatus)
	}
	if len(order.Items) != 1 || order.Items[0].ProductName != "Jameson" || order.Items[0].Quantity != 3 {
		t.Fatalf("unexpected items: %+v", order.Items)
	}
	if confirmed, _, _ := q.counts(); confirmed != 1 {
		t.Fatalf("want 1 confirmed email task got %d", confirmed)
	}
}

func TestConfirmOrderIsIdempotent(t *testing.T) {
	svc, db, q := newConfirmationForTest(t)
	input := ConfirmInput{Reference: "CNREF-IDEM", VerifiedAmountMinor: 3700000, Snapshot: sampleSnapshot(nil)}

	first, err := svc.ConfirmOrder(context.Background(), input)
	if err != nil {
		t.Fatalf("first confirm failed: %v", err)
	}
	second, err := svc.ConfirmOrder(context.Background(), input)
	if err != nil {
		t.Fatalf("second confirm failed: %v", err)
	}
	if !second.Duplicate || second.OrderID != first.OrderID {
		t.Fatalf("second confirm should return the same order: first=%+v second=%+v", first, second)
	}
	if n := countOrders(t, db, "CNREF-IDEM"); n != 1 {
		t.Fatalf("want 1 order row got %d", n)
	}
	if confirmed, _, _ := q.counts(); confirmed != 1 {
		t.Fatalf("duplicate confirm must not enqueue email again, got %d", confirmed)
	}
}

func TestConfirmOrderConcurrentSameReference(t *testing.T) {
	svc, db, _ := newConfirmationForTest(t)
	input := ConfirmInput{Reference: "CNREF-RACE", VerifiedAmountMinor: 3700000, Snapshot: sampleSnapshot(nil)}

	const workers = 8
	var wg sync.WaitGroup
	ids := make([]uint, workers)
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			result, err := svc.ConfirmOrder(context.Background(), input)
			errs[idx] = err
			if result != nil {
				ids[idx] = result.OrderID
			}
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("worker %d failed: %v", i, err)
		}
		if ids[i] != ids[0] {
			t.Fatalf("worker %d got order %d want %d", i, ids[i], ids[0])
		}
	}
	if n := countOrders(t, db, "CNREF-RACE"); n != 1 {
		t.Fatalf("want 1 order row got %d", n)
	}
}

func TestConfirmOrderIncrementsPromoUsage(t *testing.T) {
	svc, db, _ := newConfirmationForTest(t)
	promo := seedPromo(t, db, models.PromoCode{
		Code:          "SAVE20",
		DiscountType:  constants.DiscountTypePercentage,
		DiscountValue: decimal.NewFromInt(20),
		UsageLimit:    intPtr(5),
		IsActive:      true,
	})
	code := "save20"

	if _, err := svc.ConfirmOrder(context.Background(), ConfirmInput{Reference: "CNREF-P1", Snapshot: sampleSnapshot(&code)}); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if _, err := svc.ConfirmOrder(context.Background(), ConfirmInput{Reference: "CNREF-P1", Snapshot: sampleSnapshot(&code)}); err != nil {
		t.Fatalf("duplicate confirm failed: %v", err)
	}

	var reloaded models.PromoCode
	if err := db.First(&reloaded, promo.ID).Error; err != nil {
		t.Fatalf("reload promo failed: %v", err)
	}
	if reloaded.UsedCount != 1 {
		t.Fatalf("duplicate confirmation must not double count, used_count=%d", reloaded.UsedCount)
	}
}

func TestConfirmOrderPromoRaceAtLastSlot(t *testing.T) {
	svc, db, _ := newConfirmationForTest(t)
	promo := seedPromo(t, db, models.PromoCode{
		Code:          "LASTONE",
		DiscountType:  constants.DiscountTypeFixed,
		DiscountValue: decimal.NewFromInt(1000),
		UsageLimit:    intPtr(3),
		UsedCount:     2,
		IsActive:      true,
	})
	code := "LASTONE"

	const workers = 4
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			_, errs[idx] = svc.ConfirmOrder(context.Background(), ConfirmInput{
				Reference: fmt.Sprintf("CNREF-LAST-%d", idx),
				Snapshot:  sampleSnapshot(&code),
			})
		}(i)
	}
	wg.Wait()

	success := 0
	for _, err := range errs {
		if err == nil {
			success++
			continue
		}
		var confirmErr *ConfirmError
		if !errors.As(err, &confirmErr) || confirmErr.Reason != constants.ConfirmFailurePromoExhausted {
			t.Fatalf("loser should fail with promo exhausted, got %v", err)
		}
		if !errors.Is(err, ErrPromoLimitExceeded) {
			t.Fatalf("loser error should wrap ErrPromoLimitExceeded, got %v", err)
		}
	}
	if success != 1 {
		t.Fatalf("want exactly 1 success got %d", success)
	}

	var reloaded models.PromoCode
	if err := db.First(&reloaded, promo.ID).Error; err != nil {
		t.Fatalf("reload promo failed: %v", err)
	}
	if reloaded.UsedCount != 3 {
		t.Fatalf("used_count want 3 got %d", reloaded.UsedCount)
	}
	var orders int64
	if err := db.Model(&models.Order{}).Count(&orders).Error; err != nil {
		t.Fatalf("count orders failed: %v", err)
	}
	if orders != 1 {
		t.Fatalf("rolled back confirmations must leave no order, got %d", orders)
	}
}

func TestConfirmOrderInvalidSnapshot(t *testing.T) {
	svc, db, _ := newConfirmationForTest(t)
	_, err := svc.ConfirmOrder(context.Background(), ConfirmInput{Reference: "CNREF-EMPTY"})
	var confirmErr *ConfirmError
	if !errors.As(err, &confirmErr) || confirmErr.Reason != constants.ConfirmFailurePersistence {
		t.Fatalf("want persistence ConfirmError got %v", err)
	}
	if !errors.Is(err, ErrOrderPersistenceFailed) {
		t.Fatalf("error should wrap ErrOrderPersistenceFailed, got %v", err)
	}
	if n := countOrders(t, db, "CNREF-EMPTY"); n != 0 {
		t.Fatalf("invalid snapshot must not create order, got %d", n)
	}
}

func TestConfirmOrderPersistenceFailureEnqueuesReplay(t *testing.T) {
	svc, db, q := newConfirmationForTest(t)
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	_ = sqlDB.Close()

	_, err = svc.ConfirmOrder(context.Background(), ConfirmInput{
		Reference:           "CNREF-DOWN",
		PaystackStatus:      constants.PaystackStatusSuccess,
		VerifiedAmountMinor: 3700000,
		Snapshot:            sampleSnapshot(nil),
	})
	if !errors.Is(err, ErrOrderPersistenceFailed) {
		t.Fatalf("want ErrOrderPersistenceFailed got %v", err)
	}
	_, _, failed := q.counts()
	if failed != 1 {
		t.Fatalf("want 1 replay task got %d", failed)
	}
	if q.persistenceFailed[0].Reference != "CNREF-DOWN" || q.persistenceFailed[0].AmountMinor != 3700000 {
		t.Fatalf("unexpected replay payload: %+v", q.persistenceFailed[0])
	}

	_, err = svc.ConfirmOrder(context.Background(), ConfirmInput{
		Reference: "CNREF-DOWN",
		Snapshot:  sampleSnapshot(nil),
		Replay:    true,
	})
	if !errors.Is(err, ErrOrderPersistenceFailed) {
		t.Fatalf("replay want ErrOrderPersistenceFailed got %v", err)
	}
	if _, _, failed := q.counts(); failed != 1 {
		t.Fatalf("replay must not enqueue again, got %d", failed)
	}
}
