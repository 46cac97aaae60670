package models

import "time"

// ProductReview 商品评价，每个用户对同一商品只能评价一次
type ProductReview struct {
	ID         uint      `gorm:"primarykey" json:"id"`                                              // 主键
	ProductID  uint      `gorm:"uniqueIndex:idx_review_product_user;not null" json:"product_id"`    // 商品ID
	UserID     uint      `gorm:"uniqueIndex:idx_review_product_user;index;not null" json:"user_id"` // 用户ID
	Rating     int       `gorm:"not null" json:"rating"`                                            // 评分 1-5
	ReviewText *string   `gorm:"type:text" json:"review_text"`                                      // 评价内容
	CreatedAt  time.Time `gorm:"index" json:"created_at"`                                           // 创建时间
	UpdatedAt  time.Time `json:"updated_at"`                                                        // 更新时间

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

// TableName 指定表名
func (ProductReview) TableName() string {
	return "product_reviews"
}
