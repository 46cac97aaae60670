package service

import (
	"strings"
	"time"

	"github.com/cellar-next/internal/constants"
	"github.com/cellar-next/internal/models"
	"github.com/cellar-next/internal/repository"

	"github.com/shopspring/decimal"
)

// ReviewService 商品评价服务
type ReviewService struct {
	reviewRepo  repository.ReviewRepository
	productRepo repository.ProductRepository
}

// NewReviewService 创建评价服务
func NewReviewService(reviewRepo repository.ReviewRepository, productRepo repository.ProductRepository) *ReviewService {
	return &ReviewService{
		reviewRepo:  reviewRepo,
		productRepo: productRepo,
	}
}

// ReviewView 评价展示
type ReviewView struct {
	ID         uint      `json:"id"`
	ProductID  uint      `json:"product_id"`
	UserID     uint      `json:"user_id"`
	Rating     int       `json:"rating"`
	ReviewText *string   `json:"review_text"`
	UserEmail  string    `json:"user_email"`
	CreatedAt  time.Time `json:"created_at"`
}

// ProductReviews 商品评价汇总
type ProductReviews struct {
	Reviews       []ReviewView `json:"reviews"`
	AverageRating float64      `json:"averageRating"`
	TotalReviews  int          `json:"totalReviews"`
}

// Create 提交评价，同一用户对同一商品仅限一次
func (s *ReviewService) Create(userID, productID uint, rating int, text string) (*models.ProductReview, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrReviewRatingInvalid
	}
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	exists, err := s.reviewRepo.Exists(productID, userID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrReviewDuplicate
	}

	review := &models.ProductReview{
		ProductID: productID,
		UserID:    userID,
		Rating:    rating,
	}
	if trimmed := strings.TrimSpace(text); trimmed != "" {
		review.ReviewText = &trimmed
	}
	if err := s.reviewRepo.Create(review); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrReviewDuplicate
		}
		return nil, err
	}
	return review, nil
}

// ListByProduct 商品评价列表与平均分（保留一位小数）
func (s *ReviewService) ListByProduct(productID uint) (*ProductReviews, error) {
	rows, err := s.reviewRepo.ListByProduct(productID)
	if err != nil {
		return nil, err
	}
	result := &ProductReviews{
		Reviews:      make([]ReviewView, 0, len(rows)),
		TotalReviews: len(rows),
	}
	total := 0
	for _, row := range rows {
		total += row.Rating
		email := constants.ReviewAnonymousEmail
		if row.User != nil && strings.TrimSpace(row.User.Email) != "" {
			email = row.User.Email
		}
		result.Reviews = append(result.Reviews, ReviewView{
			ID:         row.ID,
			ProductID:  row.ProductID,
			UserID:     row.UserID,
			Rating:     row.Rating,
			ReviewText: row.ReviewText,
			UserEmail:  email,
			CreatedAt:  row.CreatedAt,
		})
	}
	if len(rows) > 0 {
		avg, _ := decimal.NewFromInt(int64(total)).
			Div(decimal.NewFromInt(int64(len(rows)))).
			Round(1).
			Float64()
		result.AverageRating = avg
	}
	return result, nil
}
