package cache

import (
	"context"
	"fmt"
	"time"
)

// AdminFlag 管理员身份缓存快照
type AdminFlag struct {
	UserID    uint  `json:"user_id"`
	IsAdmin   bool  `json:"is_admin"`
	UpdatedAt int64 `json:"updated_at"`
}

func adminFlagKey(userID uint) string {
	return fmt.Sprintf("authz:admin:%d", userID)
}

// GetAdminFlag 获取管理员身份缓存
func GetAdminFlag(ctx context.Context, userID uint) (*AdminFlag, bool, error) {
	if userID == 0 {
		return nil, false, nil
	}
	var flag AdminFlag
	hit, err := GetJSON(ctx, adminFlagKey(userID), &flag)
	if err != nil || !hit {
		return nil, hit, err
	}
	return &flag, true, nil
}

// SetAdminFlag 写入管理员身份缓存
func SetAdminFlag(ctx context.Context, userID uint, isAdmin bool, ttl time.Duration) error {
	if userID == 0 || ttl <= 0 {
		return nil
	}
	flag := AdminFlag{
		UserID:    userID,
		IsAdmin:   isAdmin,
		UpdatedAt: time.Now().Unix(),
	}
	return SetJSON(ctx, adminFlagKey(userID), flag, ttl)
}

// DelAdminFlag 删除管理员身份缓存
func DelAdminFlag(ctx context.Context, userID uint) error {
	if userID == 0 {
		return nil
	}
	return Del(ctx, adminFlagKey(userID))
}
