package models

import (
	"database/sql/driver"
	"encoding/json"
	"strconv"

	"github.com/shopspring/decimal"
)

// moneyPlaces 奈拉按整数存储，kobo 仅出现在网关边界
const moneyPlaces = 0

// minorUnitShift 主单位到最小货币单位（kobo）的十进制位移
const minorUnitShift = 2

func init() {
	// 优惠比例等 decimal 字段与 Money 一致输出为 JSON 数字
	decimal.MarshalJSONWithoutQuotes = true
}

// Money 统一金额类型（整数奈拉）
type Money struct {
	decimal.Decimal
}

// NewMoneyFromDecimal 从 decimal 创建金额
func NewMoneyFromDecimal(amount decimal.Decimal) Money {
	return Money{Decimal: amount.Round(moneyPlaces)}
}

// NewMoney 从整数奈拉创建金额
func NewMoney(naira int64) Money {
	return Money{Decimal: decimal.NewFromInt(naira)}
}

// MoneyFromMinorUnits 将 kobo 还原为奈拉
func MoneyFromMinorUnits(minor int64) Money {
	return NewMoneyFromDecimal(decimal.New(minor, -minorUnitShift))
}

// MinorUnits 转换为网关使用的最小货币单位，整数奈拉时精确无漂移
func (m Money) MinorUnits() int64 {
	return m.Decimal.Shift(minorUnitShift).Round(0).IntPart()
}

// Int64 返回整数奈拉
func (m Money) Int64() int64 {
	return m.Decimal.Round(moneyPlaces).IntPart()
}

// MarshalJSON 输出为 JSON 数字
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal.Round(moneyPlaces).String()), nil
}

// UnmarshalJSON 解析金额（字符串或数字）
func (m *Money) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	raw := string(b)
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		raw = s
	}
	if _, err := strconv.ParseFloat(raw, 64); err != nil {
		return err
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return err
	}
	m.Decimal = d.Round(moneyPlaces)
	return nil
}

// Value 用于数据库写入
func (m Money) Value() (driver.Value, error) {
	return m.Decimal.Round(moneyPlaces).Value()
}

// Scan 用于数据库读取
func (m *Money) Scan(value interface{}) error {
	if err := m.Decimal.Scan(value); err != nil {
		return err
	}
	m.Decimal = m.Decimal.Round(moneyPlaces)
	return nil
}

// String 返回整数奈拉
func (m Money) String() string {
	return m.Decimal.Round(moneyPlaces).String()
}

// Naira 带货币符号的千分位格式，例如 ₦10,000
func (m Money) Naira() string {
	return "₦" + groupThousands(m.Int64())
}

func groupThousands(v int64) string {
	negative := v < 0
	if negative {
		v = -v
	}
	digits := strconv.FormatInt(v, 10)
	out := make([]byte, 0, len(digits)+len(digits)/3)
	for i := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, digits[i])
	}
	if negative {
		return "-" + string(out)
	}
	return string(out)
}
