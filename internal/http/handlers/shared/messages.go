package shared

// messages 接口错误消息表
var messages = map[string]string{
	"error.bad_request":           "Invalid request",
	"error.unauthorized":          "Unauthorized",
	"error.forbidden":             "Forbidden",
	"error.too_many_requests":     "Too many requests, please try again later",
	"error.internal":              "Internal server error",
	"error.user_id_invalid":       "Invalid user id",
	"error.user_id_type_invalid":  "Invalid user id type",
	"error.server_config":         "Server configuration error",
	"error.admin_check_failed":    "Failed to verify admin privileges",
	"error.not_found":             "Not found",
	"error.promo_code_required":   "Promo code is required",
	"error.promo_invalid":         "Invalid promo code",
	"error.promo_not_yet_active":  "Promo code is not yet active",
	"error.promo_expired":         "Promo code has expired",
	"error.promo_limit_exceeded":  "Promo code usage limit exceeded",
	"error.promo_amount_invalid":  "Valid order amount is required",
	"error.promo_exists":          "Promo code already exists",
	"error.promo_not_found":       "Promo code not found",
	"error.promo_input_invalid":   "Code, discount value, and minimum order amount are required",
	"error.promo_discount_type":   "Discount type must be percentage or fixed",
	"error.promo_validity":        "Valid until must be after valid from",
	"error.promo_usage_limit":     "Usage limit must be positive",
	"error.promo_fetch_failed":    "Failed to fetch promo codes",
	"error.promo_create_failed":   "Failed to create promo code",
	"error.promo_update_failed":   "Failed to update promo code",
	"error.promo_delete_failed":   "Failed to delete promo code",
	"error.cart_empty":            "Cart is empty",
	"error.cart_item_invalid":     "One or more cart items are unavailable",
	"error.cart_quantity_invalid": "Item quantity must be between 1 and 10",
	"error.customer_email":        "Customer email is required",
	"error.delivery_city":         "Delivery city is required",
	"error.delivery_fee":          "Delivery fee is required",
	"error.total_invalid":         "Total amount must be greater than zero",
	"error.checkout_failed":       "Failed to initialize payment",
	"error.payment_failed":        "Payment failed, please try again",
	"error.reference_required":    "No transaction reference provided.",
	"error.verify_failed":         "Payment verification failed with Paystack.",
	"error.payment_not_success":   "Payment was not successful.",
	"error.metadata_invalid":      "Payment metadata is incomplete, please contact support.",
	"error.persistence_failed":    "Your payment was received but we could not save your order. Please contact support with your payment reference.",
	"error.promo_exhausted":       "Your payment was received but the promo code ran out. Please contact support with your payment reference.",
	"error.verify_internal":       "Internal server error during verification.",
	"error.signature_invalid":     "Invalid signature",
	"error.order_reference":       "Order reference is required",
	"error.order_not_found":       "Order not found",
	"error.order_fetch_failed":    "Failed to fetch orders",
	"error.order_status_invalid":  "Invalid order status",
	"error.order_transition":      "Order status change not allowed",
	"error.order_update_failed":   "Failed to update order",
	"error.product_not_found":     "Product not found",
	"error.product_input":         "Name, price, and category are required",
	"error.product_price":         "Price must be greater than zero",
	"error.product_slug":          "Invalid product slug",
	"error.product_fetch_failed":  "Failed to fetch products",
	"error.product_create_failed": "Failed to create product",
	"error.product_update_failed": "Failed to update product",
	"error.product_delete_failed": "Failed to delete product",
	"error.product_id_required":   "Product ID is required.",
	"error.review_rating":         "Rating must be between 1 and 5.",
	"error.review_duplicate":      "You have already reviewed this product.",
	"error.review_fetch_failed":   "Failed to fetch reviews.",
	"error.review_submit_failed":  "Failed to submit review.",
	"error.delivery_fee_invalid":  "Delivery fee must not be negative",
	"error.delivery_fee_failed":   "Failed to save delivery fee",
	"error.email_invalid":         "Invalid email address",
	"error.email_exists":          "Email already registered",
	"error.credentials_invalid":   "Invalid email or password",
	"error.user_disabled":         "Account disabled",
	"error.password_too_short":    "Password is too short",
	"error.register_failed":       "Registration failed",
	"error.login_failed":          "Login failed",
	"error.user_not_found":        "User not found",
	"error.user_fetch_failed":     "Failed to fetch users",
	"error.user_delete_failed":    "Failed to delete user",
	"error.make_admin_failed":     "Failed to make user admin",
	"error.remove_admin_failed":   "Failed to remove admin role",
	"error.cannot_revoke_self":    "You cannot remove your own admin role",
	"error.stats_failed":          "Failed to fetch dashboard stats",
	"error.analytics_failed":      "Failed to fetch analytics",
	"error.email_not_configured":  "Email service is not configured",
	"error.email_send_failed":     "Failed to send email",
	"error.email_recipient":       "Email recipient was rejected",
}

// Message 按键取消息，未登记的键原样返回
func Message(key string) string {
	if msg, ok := messages[key]; ok {
		return msg
	}
	return key
}
