package models

import "time"

// DeliveryFee 城市配送费
type DeliveryFee struct {
	ID        uint      `gorm:"primarykey" json:"id"`                             // 主键
	City      string    `gorm:"uniqueIndex;not null" json:"city"`                 // 城市
	Fee       Money     `gorm:"type:decimal(20,0);not null;default:0" json:"fee"` // 配送费
	CreatedAt time.Time `json:"created_at"`                                       // 创建时间
	UpdatedAt time.Time `json:"updated_at"`                                       // 更新时间
}

// TableName 指定表名
func (DeliveryFee) TableName() string {
	return "delivery_fees"
}
