package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItem 订单项快照，不随商品变化
type OrderItem struct {
	ID           uint      `gorm:"primarykey" json:"id"`                                       // 主键
	OrderID      uint      `gorm:"index;not null" json:"order_id"`                             // 订单ID
	ProductID    uint      `gorm:"index" json:"product_id"`                                    // 商品ID
	ProductName  string    `gorm:"not null" json:"product_name"`                               // 商品名称快照
	ProductPrice Money     `gorm:"type:decimal(20,0);not null;default:0" json:"product_price"` // 单价快照
	Quantity     int       `gorm:"not null" json:"quantity"`                                   // 数量
	BottleSize   string    `gorm:"type:varchar(50)" json:"bottle_size"`                        // 规格
	CreatedAt    time.Time `gorm:"index" json:"created_at"`                                    // 创建时间
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}

// LineTotal 行小计
func (i OrderItem) LineTotal() Money {
	return NewMoneyFromDecimal(i.ProductPrice.Decimal.Mul(decimal.NewFromInt(int64(i.Quantity))))
}
