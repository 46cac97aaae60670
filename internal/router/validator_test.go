package router

import (
	"testing"

	"github.com/cellar-next/internal/models"

	"github.com/gin-gonic/gin/binding"
)

type validatorProbe struct {
	Code string        `binding:"omitempty,promo_code"`
	Fee  *models.Money `binding:"omitempty,gte=0"`
}

func TestRegisterValidators(t *testing.T) {
	RegisterValidators()

	ok := validatorProbe{Code: "SAVE20", Fee: moneyRef(2000)}
	if err := binding.Validator.ValidateStruct(&ok); err != nil {
		t.Fatalf("expected valid probe, got %v", err)
	}
	zero := validatorProbe{Fee: moneyRef(0)}
	if err := binding.Validator.ValidateStruct(&zero); err != nil {
		t.Fatalf("zero fee should be valid, got %v", err)
	}

	badCode := validatorProbe{Code: "no spaces!"}
	if err := binding.Validator.ValidateStruct(&badCode); err == nil {
		t.Fatalf("expected promo_code failure")
	}
	negative := validatorProbe{Fee: moneyRef(-1)}
	if err := binding.Validator.ValidateStruct(&negative); err == nil {
		t.Fatalf("expected negative fee failure")
	}
}

func moneyRef(naira int64) *models.Money {
	m := models.NewMoney(naira)
	return &m
}
