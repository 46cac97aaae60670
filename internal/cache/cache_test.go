package cache

import (
	"context"
	"testing"
	"time"

	"github.com/cellar-next/internal/config"
	"github.com/cellar-next/internal/models"
)

func TestDisabledCacheIsNoop(t *testing.T) {
	if err := InitRedis(&config.RedisConfig{Enabled: false}); err != nil {
		t.Fatalf("init redis failed: %v", err)
	}
	if Enabled() {
		t.Fatalf("cache should be disabled")
	}
	ctx := context.Background()

	if err := SetAvailablePromoCodes(ctx, []models.PromoCode{{Code: "SAVE20"}}); err != nil {
		t.Fatalf("set promo cache failed: %v", err)
	}
	rows, hit, err := GetAvailablePromoCodes(ctx)
	if err != nil || hit || rows != nil {
		t.Fatalf("disabled cache must miss: rows=%v hit=%v err=%v", rows, hit, err)
	}

	if err := SetAdminFlag(ctx, 7, true, time.Minute); err != nil {
		t.Fatalf("set admin flag failed: %v", err)
	}
	if _, hit, _ := GetAdminFlag(ctx, 7); hit {
		t.Fatalf("disabled cache must miss admin flag")
	}
}

func TestBuildKeyUsesPrefix(t *testing.T) {
	redisPrefix = "cellar"
	if got := buildKey(" promo:available "); got != "cellar:promo:available" {
		t.Fatalf("unexpected key: %s", got)
	}
	if got := adminFlagKey(9); got != "authz:admin:9" {
		t.Fatalf("unexpected admin flag key: %s", got)
	}
}
