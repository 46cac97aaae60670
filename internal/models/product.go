package models

import (
	"time"
)

// Product 商品表
type Product struct {
	ID          uint      `gorm:"primarykey" json:"id"`                               // 主键
	Name        string    `gorm:"not null" json:"name"`                               // 名称
	Slug        string    `gorm:"uniqueIndex;not null" json:"slug"`                   // 唯一标识
	Description string    `gorm:"type:text" json:"description"`                       // 描述
	Price       Money     `gorm:"type:decimal(20,0);not null;default:0" json:"price"` // 单价
	Category    string    `gorm:"index;not null" json:"category"`                     // 分类
	BottleSize  string    `gorm:"type:varchar(50)" json:"bottle_size"`                // 规格
	ImageURL    string    `gorm:"type:text" json:"image_url"`                         // 图片
	InStock     bool      `gorm:"index;not null" json:"in_stock"`                     // 是否有货
	CreatedAt   time.Time `gorm:"index" json:"created_at"`                            // 创建时间
	UpdatedAt   time.Time `gorm:"index" json:"updated_at"`                            // 更新时间
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}
