package constants

// 订单状态常量
const (
	OrderStatusPending    = "pending"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// OrderStatuses 全部合法订单状态
var OrderStatuses = []string{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// 优惠码类型常量
const (
	DiscountTypePercentage = "percentage"
	DiscountTypeFixed      = "fixed"
)

// Paystack 交易状态
const (
	PaystackStatusSuccess   = "success"
	PaystackStatusFailed    = "failed"
	PaystackStatusAbandoned = "abandoned"
	PaystackStatusReversed  = "reversed"
)

// Paystack webhook 事件
const (
	PaystackEventChargeSuccess = "charge.success"
)

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 角色常量
const (
	RoleAdmin = "admin"
)

// 商品排序
const (
	ProductSortNewest    = "newest"
	ProductSortOldest    = "oldest"
	ProductSortPriceLow  = "price-low"
	ProductSortPriceHigh = "price-high"
	ProductSortName      = "name"
)

// 异步队列与任务
const (
	QueueDefault               = "default"
	QueueCritical              = "critical"
	TaskOrderConfirmedEmail    = "order:confirmed_email"
	TaskOrderStatusEmail       = "order:status_email"
	TaskOrderPersistenceFailed = "order:persistence_failed"
)

// 订单确认失败原因
const (
	ConfirmFailurePersistence    = "persistence_failure"
	ConfirmFailurePromoExhausted = "promo_exhausted"
)

// 购物车数量限制
const (
	CartMinQuantity = 1
	CartMaxQuantity = 10
)

// ReviewAnonymousEmail 无法解析评论用户邮箱时的占位
const ReviewAnonymousEmail = "Anonymous"
