package service

import "errors"

// 优惠码校验
var (
	ErrPromoCodeRequired  = errors.New("promo code is required")
	ErrPromoInvalidCode   = errors.New("invalid promo code")
	ErrPromoNotYetActive  = errors.New("promo code is not yet active")
	ErrPromoExpired       = errors.New("promo code has expired")
	ErrPromoLimitExceeded = errors.New("promo code usage limit reached")
	ErrPromoBelowMinimum  = errors.New("order amount below promo minimum")
	ErrInvalidAmount      = errors.New("invalid amount")
)

// 优惠码管理
var (
	ErrPromoCodeExists        = errors.New("promo code already exists")
	ErrPromoCodeNotFound      = errors.New("promo code not found")
	ErrPromoDiscountInvalid   = errors.New("promo discount value invalid")
	ErrPromoDiscountType      = errors.New("promo discount type invalid")
	ErrPromoValidityInvalid   = errors.New("promo validity window invalid")
	ErrPromoUsageLimitInvalid = errors.New("promo usage limit invalid")
)

// 结算
var (
	ErrCartEmpty            = errors.New("cart is empty")
	ErrCartItemInvalid      = errors.New("cart item invalid")
	ErrCartQuantityInvalid  = errors.New("cart quantity out of range")
	ErrCustomerEmailInvalid = errors.New("customer email invalid")
	ErrDeliveryCityRequired = errors.New("delivery city is required")
	ErrDeliveryFeeRequired  = errors.New("delivery fee is required")
)

// 支付
var (
	ErrPaymentGatewayNotConfigured = errors.New("payment gateway not configured")
	ErrPaymentInitFailed           = errors.New("payment initialization failed")
	ErrPaymentVerifyFailed         = errors.New("payment verification failed")
	ErrPaymentNotSuccessful        = errors.New("payment not successful")
	ErrPaymentReferenceRequired    = errors.New("payment reference is required")
	ErrPaymentMetadataInvalid      = errors.New("payment metadata invalid")
	ErrWebhookSignatureInvalid     = errors.New("webhook signature invalid")
)

// 订单
var (
	ErrOrderNotFound          = errors.New("order not found")
	ErrOrderPersistenceFailed = errors.New("order persistence failed")
	ErrOrderStatusInvalid     = errors.New("order status invalid")
	ErrOrderStatusTransition  = errors.New("order status transition not allowed")
)

// 商品与评论
var (
	ErrProductNotFound      = errors.New("product not found")
	ErrProductNameRequired  = errors.New("product name is required")
	ErrProductPriceInvalid  = errors.New("product price invalid")
	ErrProductSlugInvalid   = errors.New("product slug invalid")
	ErrReviewDuplicate      = errors.New("review already submitted")
	ErrReviewRatingInvalid  = errors.New("review rating invalid")
	ErrDeliveryFeeInvalid   = errors.New("delivery fee invalid")
	ErrDeliveryFeeCityEmpty = errors.New("delivery fee city is required")
)

// 用户与认证
var (
	ErrInvalidEmail       = errors.New("invalid email")
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserDisabled       = errors.New("user disabled")
	ErrUserNotFound       = errors.New("user not found")
	ErrPasswordTooShort   = errors.New("password too short")
	ErrInvalidToken       = errors.New("invalid token")
	ErrCannotRevokeSelf   = errors.New("cannot revoke own admin role")
)

// 邮件
var (
	ErrEmailServiceDisabled      = errors.New("email service disabled")
	ErrEmailServiceNotConfigured = errors.New("email service not configured")
	ErrEmailRecipientRejected    = errors.New("email recipient rejected")
)
