package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/ashwinyue/shop-assistant/internal/model"
)

// AuthRepository 用户与令牌数据访问
type AuthRepository struct {
	db *gorm.DB
}

// NewAuthRepository 创建认证仓库
func NewAuthRepository(db *gorm.DB) *AuthRepository {
	return &AuthRepository{db: db}
}

// CreateUser 创建用户
func (r *AuthRepository) CreateUser(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// GetUserByID 按 ID 获取用户
func (r *AuthRepository) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return r.firstUser(ctx, "id = ?", id)
}

// GetUserByLogin 按邮箱或用户名获取用户
func (r *AuthRepository) GetUserByLogin(ctx context.Context, login string) (*model.User, error) {
	return r.firstUser(ctx, "email = ? OR username = ?", login, login)
}

func (r *AuthRepository) firstUser(ctx context.Context, query string, args ...interface{}) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where(query, args...).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// CreateToken 记录签发的令牌
func (r *AuthRepository) CreateToken(ctx context.Context, token *model.AuthToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

// IsTokenActive 令牌未吊销且未过期
func (r *AuthRepository) IsTokenActive(ctx context.Context, tokenValue string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.AuthToken{}).
		Where("token = ? AND is_revoked = ? AND expires_at > ?", tokenValue, false, time.Now()).
		Count(&n).Error
	return n > 0, err
}

// RevokeTokensByUserID 吊销用户的全部令牌
func (r *AuthRepository) RevokeTokensByUserID(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Model(&model.AuthToken{}).
		Where("user_id = ?", userID).
		Update("is_revoked", true).Error
}
