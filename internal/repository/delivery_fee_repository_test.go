package repository

import (
	"testing"

	"github.com/cellar-next/internal/models"
)

func TestDeliveryFeeUpsertAndLookup(t *testing.T) {
	repo := NewDeliveryFeeRepository(setupRepositoryTestDB(t))

	if err := repo.Upsert(&models.DeliveryFee{City: "Lagos", Fee: models.NewMoney(2000)}); err != nil {
		t.Fatalf("insert fee failed: %v", err)
	}
	if err := repo.Upsert(&models.DeliveryFee{City: "Lagos", Fee: models.NewMoney(2500)}); err != nil {
		t.Fatalf("update fee failed: %v", err)
	}

	fee, err := repo.GetByCity("lagos")
	if err != nil || fee == nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if fee.Fee.Int64() != 2500 {
		t.Fatalf("fee want 2500 got %s", fee.Fee)
	}

	all, err := repo.List()
	if err != nil || len(all) != 1 {
		t.Fatalf("upsert should keep one row, got %d err=%v", len(all), err)
	}

	missing, err := repo.GetByCity("Kano")
	if err != nil || missing != nil {
		t.Fatalf("unknown city should be nil,nil got %+v %v", missing, err)
	}
}
