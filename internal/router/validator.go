package router

import (
	"reflect"
	"regexp"
	"sync"

	"github.com/cellar-next/internal/models"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	registerValidatorsOnce sync.Once
	promoCodePattern       = regexp.MustCompile(`^[A-Za-z0-9_-]{3,32}$`)
)

// RegisterValidators 注册 gin 绑定使用的自定义校验规则
func RegisterValidators() {
	registerValidatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		// Money 按数值参与 gte/lte 等比较
		v.RegisterCustomTypeFunc(moneyValue, models.Money{})
		v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
		_ = v.RegisterValidation("promo_code", validatePromoCodeFormat)
	})
}

func moneyValue(field reflect.Value) interface{} {
	if m, ok := field.Interface().(models.Money); ok {
		return m.InexactFloat64()
	}
	return nil
}

func decimalValue(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		return d.InexactFloat64()
	}
	return nil
}

func validatePromoCodeFormat(fl validator.FieldLevel) bool {
	return promoCodePattern.MatchString(fl.Field().String())
}
