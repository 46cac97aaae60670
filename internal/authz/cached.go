package authz

import (
	"context"
	"time"

	"github.com/cellar-next/internal/cache"
	"github.com/cellar-next/internal/logger"
)

// RoleStore 管理员角色存取
type RoleStore interface {
	IsAdmin(ctx context.Context, userID uint) (bool, error)
	GrantAdmin(ctx context.Context, userID uint) error
	RevokeAdmin(ctx context.Context, userID uint) error
	RemoveUser(ctx context.Context, userID uint) error
	ListAdminUserIDs(ctx context.Context) ([]uint, error)
}

// CachedRoleStore 带 Redis 缓存的管理员身份查询
type CachedRoleStore struct {
	inner RoleStore
	ttl   time.Duration
}

// NewCachedRoleStore 创建缓存装饰器，ttl<=0 时不缓存
func NewCachedRoleStore(inner RoleStore, ttl time.Duration) *CachedRoleStore {
	return &CachedRoleStore{inner: inner, ttl: ttl}
}

// IsAdmin 优先读取缓存
func (c *CachedRoleStore) IsAdmin(ctx context.Context, userID uint) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	if c.ttl > 0 {
		flag, hit, err := cache.GetAdminFlag(ctx, userID)
		if err != nil {
			logger.Warnw("admin_flag_cache_get_failed", "user_id", userID, "error", err)
		} else if hit {
			return flag.IsAdmin, nil
		}
	}
	ok, err := c.inner.IsAdmin(ctx, userID)
	if err != nil {
		return false, err
	}
	if c.ttl > 0 {
		if err := cache.SetAdminFlag(ctx, userID, ok, c.ttl); err != nil {
			logger.Warnw("admin_flag_cache_set_failed", "user_id", userID, "error", err)
		}
	}
	return ok, nil
}

// GrantAdmin 授予后清除缓存
func (c *CachedRoleStore) GrantAdmin(ctx context.Context, userID uint) error {
	if err := c.inner.GrantAdmin(ctx, userID); err != nil {
		return err
	}
	c.invalidate(ctx, userID)
	return nil
}

// RevokeAdmin 撤销后清除缓存
func (c *CachedRoleStore) RevokeAdmin(ctx context.Context, userID uint) error {
	if err := c.inner.RevokeAdmin(ctx, userID); err != nil {
		return err
	}
	c.invalidate(ctx, userID)
	return nil
}

// RemoveUser 删除角色后清除缓存
func (c *CachedRoleStore) RemoveUser(ctx context.Context, userID uint) error {
	if err := c.inner.RemoveUser(ctx, userID); err != nil {
		return err
	}
	c.invalidate(ctx, userID)
	return nil
}

// ListAdminUserIDs 直接读取授权表
func (c *CachedRoleStore) ListAdminUserIDs(ctx context.Context) ([]uint, error) {
	return c.inner.ListAdminUserIDs(ctx)
}

func (c *CachedRoleStore) invalidate(ctx context.Context, userID uint) {
	if err := cache.DelAdminFlag(ctx, userID); err != nil {
		logger.Warnw("admin_flag_cache_del_failed", "user_id", userID, "error", err)
	}
}
