package service

import (
	"github.com/cellar-next/internal/models"

	"github.com/shopspring/decimal"
)

// OrderLine 参与金额计算的购物车行
type OrderLine struct {
	UnitPrice models.Money
	Quantity  int
}

// ComputeSubtotal 汇总商品小计，全程使用十进制整数运算
func ComputeSubtotal(lines []OrderLine) (models.Money, error) {
	sum := decimal.Zero
	for _, line := range lines {
		if line.UnitPrice.IsNegative() || line.Quantity < 1 {
			return models.Money{}, ErrInvalidAmount
		}
		sum = sum.Add(line.UnitPrice.Decimal.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return models.NewMoneyFromDecimal(sum), nil
}

// ComputeTotal 计算应付金额 max(0, subtotal + deliveryFee - discount)
func ComputeTotal(subtotal, deliveryFee, discount models.Money) (models.Money, error) {
	if subtotal.IsNegative() || deliveryFee.IsNegative() || discount.IsNegative() {
		return models.Money{}, ErrInvalidAmount
	}
	total := subtotal.Decimal.Add(deliveryFee.Decimal).Sub(discount.Decimal)
	if total.IsNegative() {
		total = decimal.Zero
	}
	return models.NewMoneyFromDecimal(total), nil
}
