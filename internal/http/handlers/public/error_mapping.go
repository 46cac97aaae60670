package public

import (
	"errors"
	"fmt"

	handlershared "github.com/cellar-next/internal/http/handlers/shared"
	"github.com/cellar-next/internal/http/response"
	"github.com/cellar-next/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	key    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackKey string) {
	mapped := make([]handlershared.MappedError, 0, len(rules))
	for _, rule := range rules {
		mapped = append(mapped, handlershared.MappedError{Target: rule.target, Code: rule.code, Key: rule.key})
	}
	handlershared.RespondMappedError(c, err, mapped, fallbackCode, fallbackKey)
}

func concatMappedHandlerErrors(groups ...[]mappedHandlerError) []mappedHandlerError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]mappedHandlerError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

var promoErrorRules = []mappedHandlerError{
	{target: service.ErrPromoCodeRequired, code: response.CodeBadRequest, key: "error.promo_code_required"},
	{target: service.ErrPromoInvalidCode, code: response.CodeNotFound, key: "error.promo_invalid"},
	{target: service.ErrPromoNotYetActive, code: response.CodeBadRequest, key: "error.promo_not_yet_active"},
	{target: service.ErrPromoExpired, code: response.CodeBadRequest, key: "error.promo_expired"},
	{target: service.ErrPromoLimitExceeded, code: response.CodeBadRequest, key: "error.promo_limit_exceeded"},
	{target: service.ErrInvalidAmount, code: response.CodeBadRequest, key: "error.promo_amount_invalid"},
}

var checkoutErrorRules = []mappedHandlerError{
	{target: service.ErrCartEmpty, code: response.CodeBadRequest, key: "error.cart_empty"},
	{target: service.ErrCartItemInvalid, code: response.CodeBadRequest, key: "error.cart_item_invalid"},
	{target: service.ErrCartQuantityInvalid, code: response.CodeBadRequest, key: "error.cart_quantity_invalid"},
	{target: service.ErrCustomerEmailInvalid, code: response.CodeBadRequest, key: "error.customer_email"},
	{target: service.ErrDeliveryCityRequired, code: response.CodeBadRequest, key: "error.delivery_city"},
	{target: service.ErrDeliveryFeeRequired, code: response.CodeBadRequest, key: "error.delivery_fee"},
	{target: service.ErrInvalidAmount, code: response.CodeBadRequest, key: "error.total_invalid"},
	{target: service.ErrPaymentGatewayNotConfigured, code: response.CodeInternal, key: "error.server_config"},
	{target: service.ErrPaymentInitFailed, code: response.CodeBadRequest, key: "error.payment_failed"},
}

var verifyErrorRules = []mappedHandlerError{
	{target: service.ErrPaymentReferenceRequired, code: response.CodeBadRequest, key: "error.reference_required"},
	{target: service.ErrPaymentGatewayNotConfigured, code: response.CodeInternal, key: "error.server_config"},
	{target: service.ErrPaymentVerifyFailed, code: response.CodeBadRequest, key: "error.verify_failed"},
	{target: service.ErrPaymentNotSuccessful, code: response.CodeBadRequest, key: "error.payment_not_success"},
	{target: service.ErrPaymentMetadataInvalid, code: response.CodeBadRequest, key: "error.metadata_invalid"},
}

var reviewErrorRules = []mappedHandlerError{
	{target: service.ErrReviewRatingInvalid, code: response.CodeBadRequest, key: "error.review_rating"},
	{target: service.ErrReviewDuplicate, code: response.CodeConflict, key: "error.review_duplicate"},
	{target: service.ErrProductNotFound, code: response.CodeNotFound, key: "error.product_not_found"},
}

var authErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidEmail, code: response.CodeBadRequest, key: "error.email_invalid"},
	{target: service.ErrEmailExists, code: response.CodeConflict, key: "error.email_exists"},
	{target: service.ErrPasswordTooShort, code: response.CodeBadRequest, key: "error.password_too_short"},
	{target: service.ErrInvalidCredentials, code: response.CodeUnauthorized, key: "error.credentials_invalid"},
	{target: service.ErrUserDisabled, code: response.CodeUnauthorized, key: "error.user_disabled"},
}

// respondPromoError 门槛不足时消息带上最低金额
func respondPromoError(c *gin.Context, err error, rules []mappedHandlerError, fallbackKey string) {
	var rejection *service.PromoRejection
	if errors.As(err, &rejection) && errors.Is(err, service.ErrPromoBelowMinimum) {
		msg := fmt.Sprintf("Minimum order amount of %s required for this promo code", rejection.MinOrderAmount.Naira())
		respondErrorWithMsg(c, response.CodeBadRequest, msg, nil)
		return
	}
	respondWithMappedError(c, err, rules, response.CodeInternal, fallbackKey)
}

func respondCheckoutError(c *gin.Context, err error) {
	respondPromoError(c, err, concatMappedHandlerErrors(promoErrorRules, checkoutErrorRules), "error.checkout_failed")
}

// respondVerifyError 校验失败统一输出 {status:"failed", message}
func respondVerifyError(c *gin.Context, reference string, err error) {
	var confirmErr *service.ConfirmError
	if errors.As(err, &confirmErr) {
		key := "error.persistence_failed"
		switch {
		case errors.Is(err, service.ErrPromoLimitExceeded):
			key = "error.promo_exhausted"
		case errors.Is(err, service.ErrPaymentMetadataInvalid):
			key = "error.metadata_invalid"
		}
		requestLog(c).Errorw("paystack_verify_confirm_failed",
			"reference", reference,
			"reason", confirmErr.Reason,
			"error", err,
		)
		c.JSON(response.CodeInternal, gin.H{
			"status":     service.PaymentResultFailed,
			"message":    handlershared.Message(key),
			"reference":  reference,
			"request_id": response.RequestID(c),
		})
		return
	}
	code := response.CodeInternal
	key := "error.verify_internal"
	for _, rule := range verifyErrorRules {
		if errors.Is(err, rule.target) {
			code = rule.code
			key = rule.key
			break
		}
	}
	if code == response.CodeInternal {
		requestLog(c).Errorw("paystack_verify_failed", "reference", reference, "error", err)
	}
	c.JSON(code, gin.H{
		"status":     service.PaymentResultFailed,
		"message":    handlershared.Message(key),
		"request_id": response.RequestID(c),
	})
}
