package cache

import (
	"context"
	"time"

	"github.com/cellar-next/internal/models"
)

const (
	promoListCacheKey = "promo:available"
	promoListCacheTTL = 60 * time.Second
)

// GetAvailablePromoCodes 读取可用优惠码列表缓存
func GetAvailablePromoCodes(ctx context.Context) ([]models.PromoCode, bool, error) {
	var rows []models.PromoCode
	hit, err := GetJSON(ctx, promoListCacheKey, &rows)
	if err != nil || !hit {
		return nil, hit, err
	}
	return rows, true, nil
}

// SetAvailablePromoCodes 写入可用优惠码列表缓存
func SetAvailablePromoCodes(ctx context.Context, rows []models.PromoCode) error {
	if rows == nil {
		rows = []models.PromoCode{}
	}
	return SetJSON(ctx, promoListCacheKey, rows, promoListCacheTTL)
}

// InvalidateAvailablePromoCodes 优惠码变更后清除列表缓存
func InvalidateAvailablePromoCodes(ctx context.Context) error {
	return Del(ctx, promoListCacheKey)
}
