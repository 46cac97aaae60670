package models

import (
	"time"
)

// Order 订单表，仅在支付校验成功后写入
type Order struct {
	ID                uint       `gorm:"primarykey" json:"id"`                                         // 主键
	PaystackReference string     `gorm:"uniqueIndex;not null" json:"paystack_reference"`               // 支付参考号（幂等键）
	CustomerEmail     string     `gorm:"index;not null" json:"customer_email"`                         // 客户邮箱
	DeliveryCity      string     `gorm:"index;not null" json:"delivery_city"`                          // 配送城市
	Subtotal          Money      `gorm:"type:decimal(20,0);not null;default:0" json:"subtotal"`        // 商品小计
	DeliveryFee       Money      `gorm:"type:decimal(20,0);not null;default:0" json:"delivery_fee"`    // 配送费
	DiscountAmount    Money      `gorm:"type:decimal(20,0);not null;default:0" json:"discount_amount"` // 优惠金额
	PromoCode         *string    `gorm:"index" json:"promo_code"`                                      // 使用的优惠码
	TotalAmount       Money      `gorm:"type:decimal(20,0);not null;default:0" json:"total_amount"`    // 实付金额
	OrderStatus       string     `gorm:"index;not null" json:"order_status"`                           // 订单状态（后台可改）
	PaystackStatus    string     `gorm:"index;not null" json:"paystack_status"`                        // 网关支付状态（只写一次）
	PaidAt            *time.Time `gorm:"index" json:"paid_at"`                                         // 支付时间
	CreatedAt         time.Time  `gorm:"index" json:"created_at"`                                      // 创建时间
	UpdatedAt         time.Time  `gorm:"index" json:"updated_at"`                                      // 更新时间

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"` // 订单项快照
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
