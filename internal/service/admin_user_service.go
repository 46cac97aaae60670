package service

import (
	"context"
	"time"

	"github.com/cellar-next/internal/constants"
	"github.com/cellar-next/internal/logger"
	"github.com/cellar-next/internal/repository"
)

// AdminRoleStore 管理员角色存取
type AdminRoleStore interface {
	IsAdmin(ctx context.Context, userID uint) (bool, error)
	GrantAdmin(ctx context.Context, userID uint) error
	RevokeAdmin(ctx context.Context, userID uint) error
	RemoveUser(ctx context.Context, userID uint) error
	ListAdminUserIDs(ctx context.Context) ([]uint, error)
}

// AdminUserService 后台用户管理
type AdminUserService struct {
	userRepo repository.UserRepository
	roles    AdminRoleStore
}

// NewAdminUserService 创建后台用户管理服务
func NewAdminUserService(userRepo repository.UserRepository, roles AdminRoleStore) *AdminUserService {
	return &AdminUserService{
		userRepo: userRepo,
		roles:    roles,
	}
}

// AdminUserView 后台用户展示
type AdminUserView struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Status    string    `json:"status"`
	Role      *string   `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// List 用户列表，附带管理员标记
func (s *AdminUserService) List(ctx context.Context, filter repository.UserListFilter) ([]AdminUserView, int64, error) {
	users, total, err := s.userRepo.List(filter)
	if err != nil {
		return nil, 0, err
	}
	adminIDs, err := s.roles.ListAdminUserIDs(ctx)
	if err != nil {
		return nil, 0, err
	}
	adminSet := make(map[uint]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		adminSet[id] = struct{}{}
	}
	role := constants.RoleAdmin
	views := make([]AdminUserView, 0, len(users))
	for _, user := range users {
		view := AdminUserView{
			ID:        user.ID,
			Email:     user.Email,
			FullName:  user.FullName,
			Status:    user.Status,
			CreatedAt: user.CreatedAt,
		}
		if _, ok := adminSet[user.ID]; ok {
			view.Role = &role
		}
		views = append(views, view)
	}
	return views, total, nil
}

// MakeAdmin 授予管理员角色
func (s *AdminUserService) MakeAdmin(ctx context.Context, userID uint) error {
	if err := s.ensureUser(userID); err != nil {
		return err
	}
	if err := s.roles.GrantAdmin(ctx, userID); err != nil {
		return err
	}
	logger.Infow("admin_role_granted", "user_id", userID)
	return nil
}

// RemoveAdmin 撤销管理员角色，不允许撤销自己
func (s *AdminUserService) RemoveAdmin(ctx context.Context, operatorID, userID uint) error {
	if operatorID != 0 && operatorID == userID {
		return ErrCannotRevokeSelf
	}
	if err := s.ensureUser(userID); err != nil {
		return err
	}
	if err := s.roles.RevokeAdmin(ctx, userID); err != nil {
		return err
	}
	logger.Infow("admin_role_revoked", "user_id", userID, "operator_id", operatorID)
	return nil
}

// Delete 删除用户，先清理角色
func (s *AdminUserService) Delete(ctx context.Context, operatorID, userID uint) error {
	if operatorID != 0 && operatorID == userID {
		return ErrCannotRevokeSelf
	}
	if err := s.ensureUser(userID); err != nil {
		return err
	}
	if err := s.roles.RemoveUser(ctx, userID); err != nil {
		return err
	}
	if err := s.userRepo.Delete(userID); err != nil {
		return err
	}
	logger.Infow("user_deleted", "user_id", userID, "operator_id", operatorID)
	return nil
}

func (s *AdminUserService) ensureUser(userID uint) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	return nil
}
