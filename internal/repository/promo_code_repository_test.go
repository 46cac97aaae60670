package repository

import (
	"sync"
	"testing"
	"time"

	"github.com/cellar-next/internal/constants"
	"github.com/cellar-next/internal/models"

	"github.com/shopspring/decimal"
)

func createTestPromo(t *testing.T, repo *GormPromoCodeRepository, code string, limit *int, used int) *models.PromoCode {
	t.Helper()
	promo := &models.PromoCode{
		Code:           code,
		DiscountType:   constants.DiscountTypePercentage,
		DiscountValue:  decimal.NewFromInt(20),
		MinOrderAmount: models.NewMoney(0),
		UsageLimit:     limit,
		UsedCount:      used,
		ValidFrom:      time.Now().Add(-time.Hour),
		IsActive:       true,
	}
	if err := repo.Create(promo); err != nil {
		t.Fatalf("create promo failed: %v", err)
	}
	return promo
}

func TestIncrementUsedCountWithinLimit(t *testing.T) {
	repo := NewPromoCodeRepository(setupRepositoryTestDB(t))
	promo := createTestPromo(t, repo, "SAVE20", intPtr(2), 1)

	ok, err := repo.IncrementUsedCountWithinLimit(promo.ID)
	if err != nil || !ok {
		t.Fatalf("first increment want ok got ok=%v err=%v", ok, err)
	}
	ok, err = repo.IncrementUsedCountWithinLimit(promo.ID)
	if err != nil {
		t.Fatalf("second increment failed: %v", err)
	}
	if ok {
		t.Fatalf("increment beyond usage limit must be rejected")
	}

	reloaded, err := repo.GetByID(promo.ID)
	if err != nil || reloaded == nil {
		t.Fatalf("reload promo failed: %v", err)
	}
	if reloaded.UsedCount != 2 {
		t.Fatalf("used count want 2 got %d", reloaded.UsedCount)
	}
}

func TestIncrementUsedCountUnlimited(t *testing.T) {
	repo := NewPromoCodeRepository(setupRepositoryTestDB(t))
	promo := createTestPromo(t, repo, "FLAT5000", nil, 0)

	for i := 0; i < 5; i++ {
		ok, err := repo.IncrementUsedCountWithinLimit(promo.ID)
		if err != nil || !ok {
			t.Fatalf("increment %d want ok got ok=%v err=%v", i, ok, err)
		}
	}
	reloaded, _ := repo.GetByID(promo.ID)
	if reloaded.UsedCount != 5 {
		t.Fatalf("used count want 5 got %d", reloaded.UsedCount)
	}
}

func TestIncrementUsedCountConcurrentAtLastSlot(t *testing.T) {
	repo := NewPromoCodeRepository(setupRepositoryTestDB(t))
	promo := createTestPromo(t, repo, "LASTONE", intPtr(3), 2)

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.IncrementUsedCountWithinLimit(promo.ID)
			if err != nil {
				t.Errorf("increment failed: %v", err)
				return
			}
			if ok {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if successes != 1 {
		t.Fatalf("exactly one redemption should win, got %d", successes)
	}
	reloaded, _ := repo.GetByID(promo.ID)
	if reloaded.UsedCount != 3 {
		t.Fatalf("used count want 3 got %d", reloaded.UsedCount)
	}
}

func TestGetActiveByCodeAndListAvailable(t *testing.T) {
	repo := NewPromoCodeRepository(setupRepositoryTestDB(t))
	active := createTestPromo(t, repo, "ACTIVE", nil, 0)
	inactive := createTestPromo(t, repo, "INACTIVE", nil, 0)
	if err := repo.UpdateFields(inactive.ID, map[string]interface{}{"is_active": false}); err != nil {
		t.Fatalf("deactivate promo failed: %v", err)
	}
	expired := createTestPromo(t, repo, "EXPIRED", nil, 0)
	past := time.Now().Add(-time.Minute)
	expired.ValidUntil = &past
	if err := repo.Update(expired); err != nil {
		t.Fatalf("expire promo failed: %v", err)
	}

	got, err := repo.GetActiveByCode("INACTIVE")
	if err != nil {
		t.Fatalf("get inactive failed: %v", err)
	}
	if got != nil {
		t.Fatalf("inactive promo must not be returned")
	}
	got, err = repo.GetActiveByCode("ACTIVE")
	if err != nil || got == nil || got.ID != active.ID {
		t.Fatalf("active promo lookup failed: %+v err=%v", got, err)
	}

	available, err := repo.ListAvailable(time.Now())
	if err != nil {
		t.Fatalf("list available failed: %v", err)
	}
	if len(available) != 1 || available[0].Code != "ACTIVE" {
		t.Fatalf("unexpected available promos: %+v", available)
	}
}

func TestUpdateKeepsUsedCountFromStaleCopy(t *testing.T) {
	repo := NewPromoCodeRepository(setupRepositoryTestDB(t))
	promo := createTestPromo(t, repo, "ONEOFF", intPtr(1), 0)

	stale, err := repo.GetByID(promo.ID)
	if err != nil || stale == nil {
		t.Fatalf("load promo failed: %v", err)
	}
	ok, err := repo.IncrementUsedCountWithinLimit(promo.ID)
	if err != nil || !ok {
		t.Fatalf("redeem want ok got ok=%v err=%v", ok, err)
	}

	stale.Description = "edited after redemption"
	stale.DiscountValue = decimal.RequireFromString("12.5")
	if err := repo.Update(stale); err != nil {
		t.Fatalf("update promo failed: %v", err)
	}

	reloaded, err := repo.GetByID(promo.ID)
	if err != nil || reloaded == nil {
		t.Fatalf("reload promo failed: %v", err)
	}
	if reloaded.UsedCount != 1 {
		t.Fatalf("used count want 1 after edit got %d", reloaded.UsedCount)
	}
	if reloaded.Description != "edited after redemption" || !reloaded.DiscountValue.Equal(decimal.RequireFromString("12.5")) {
		t.Fatalf("edit not persisted: %+v", reloaded)
	}
	ok, err = repo.IncrementUsedCountWithinLimit(promo.ID)
	if err != nil {
		t.Fatalf("second redeem failed: %v", err)
	}
	if ok {
		t.Fatalf("second redemption must be rejected at limit 1")
	}
}
