package public

import (
	"strconv"

	"github.com/cellar-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// CreateReviewRequest 提交评价请求
type CreateReviewRequest struct {
	ProductID  uint   `json:"productId" binding:"required"`
	Rating     int    `json:"rating" binding:"required"`
	ReviewText string `json:"reviewText"`
}

// ListReviews 商品评价列表
func (h *Handler) ListReviews(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Query("productId"), 10, 64)
	if err != nil || productID == 0 {
		respondError(c, response.CodeBadRequest, "error.product_id_required", nil)
		return
	}
	result, err := h.ReviewService.ListByProduct(uint(productID))
	if err != nil {
		respondWithMappedError(c, err, reviewErrorRules, response.CodeInternal, "error.review_fetch_failed")
		return
	}
	response.Success(c, result)
}

// CreateReview 提交评价，每个用户每个商品一次
func (h *Handler) CreateReview(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	review, err := h.ReviewService.Create(userID, req.ProductID, req.Rating, req.ReviewText)
	if err != nil {
		respondWithMappedError(c, err, reviewErrorRules, response.CodeInternal, "error.review_submit_failed")
		return
	}
	response.Created(c, gin.H{"message": "Review submitted successfully!", "review": review})
}
