package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PromoCode 优惠码
type PromoCode struct {
	ID                uint            `gorm:"primarykey" json:"id"`                                          // 主键
	Code              string          `gorm:"uniqueIndex;not null" json:"code"`                              // 优惠码（大写）
	Description       string          `gorm:"type:text" json:"description"`                                  // 描述
	DiscountType      string          `gorm:"not null" json:"discount_type"`                                 // 类型（percentage/fixed）
	DiscountValue     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"discount_value"`             // 数值（百分比或固定金额，保留两位小数）
	MinOrderAmount    Money           `gorm:"type:decimal(20,0);not null;default:0" json:"min_order_amount"` // 使用门槛
	MaxDiscountAmount *Money          `gorm:"type:decimal(20,0)" json:"max_discount_amount"`                 // 百分比最大优惠金额（空表示不限制）
	UsageLimit        *int            `json:"usage_limit"`                                                   // 总使用上限（空表示不限制）
	UsedCount         int             `gorm:"not null;default:0" json:"used_count"`                          // 已使用次数
	ValidFrom         time.Time       `gorm:"index;not null" json:"valid_from"`                              // 生效时间
	ValidUntil        *time.Time      `gorm:"index" json:"valid_until"`                                      // 失效时间
	IsActive          bool            `gorm:"not null" json:"is_active"`                                     // 是否启用
	CreatedAt         time.Time       `gorm:"index" json:"created_at"`                                       // 创建时间
	UpdatedAt         time.Time       `gorm:"index" json:"updated_at"`                                       // 更新时间
}

// TableName 指定表名
func (PromoCode) TableName() string {
	return "promo_codes"
}

// UsageExhausted 是否已达使用上限
func (p *PromoCode) UsageExhausted() bool {
	return p.UsageLimit != nil && p.UsedCount >= *p.UsageLimit
}
