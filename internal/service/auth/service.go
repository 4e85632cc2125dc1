// Package auth 用户注册、登录与令牌校验
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/ashwinyue/shop-assistant/internal/model"
	"github.com/ashwinyue/shop-assistant/internal/repository"
)

var (
	// ErrUserExists 邮箱或用户名已被注册
	ErrUserExists = errors.New("user with this email or username already exists")
	// ErrInvalidCredentials 账号或密码错误
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInactiveUser 账号已停用
	ErrInactiveUser = errors.New("user account is inactive")
	// ErrInvalidToken 令牌无效、过期或已吊销
	ErrInvalidToken = errors.New("invalid token")
)

// Service 认证服务
type Service struct {
	repo   *repository.AuthRepository
	secret []byte
	ttl    time.Duration
}

// New 创建认证服务
// secret 为空时生成随机密钥，进程重启后旧令牌失效
func New(repo *repository.AuthRepository, secret string, ttl time.Duration) (*Service, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return nil, fmt.Errorf("failed to generate JWT secret: %w", err)
		}
		secret = base64.StdEncoding.EncodeToString(buf)
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Service{repo: repo, secret: []byte(secret), ttl: ttl}, nil
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Phone    string `json:"phone"`
}

// LoginRequest 登录请求，Login 可以是邮箱或用户名
type LoginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse 注册或登录成功后的令牌
type TokenResponse struct {
	AccessToken string         `json:"access_token"`
	TokenType   string         `json:"token_type"`
	ExpiresAt   time.Time      `json:"expires_at"`
	User        *model.Profile `json:"user"`
}

// Register 注册用户并签发令牌
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*TokenResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)

	for _, login := range []string{email, username} {
		_, err := s.repo.GetUserByLogin(ctx, login)
		if err == nil {
			return nil, ErrUserExists
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("failed to check user: %w", err)
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hashed),
		Phone:        strings.TrimSpace(req.Phone),
		IsActive:     true,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.issue(ctx, user)
}

// Login 校验密码并签发令牌
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*TokenResponse, error) {
	login := strings.TrimSpace(req.Login)
	if strings.Contains(login, "@") {
		login = strings.ToLower(login)
	}

	user, err := s.repo.GetUserByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrInactiveUser
	}

	return s.issue(ctx, user)
}

// ValidateToken 校验签名、有效期与吊销状态，返回令牌所属用户
func (s *Service) ValidateToken(ctx context.Context, tokenString string) (*model.User, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return nil, ErrInvalidToken
	}

	active, err := s.repo.IsTokenActive(ctx, tokenString)
	if err != nil {
		return nil, fmt.Errorf("failed to check token: %w", err)
	}
	if !active {
		return nil, ErrInvalidToken
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrInactiveUser
	}
	return user, nil
}

// Logout 吊销用户的全部令牌
func (s *Service) Logout(ctx context.Context, userID string) error {
	return s.repo.RevokeTokensByUserID(ctx, userID)
}

// issue 签发令牌并落库，便于后续吊销
func (s *Service) issue(ctx context.Context, user *model.User) (*TokenResponse, error) {
	now := time.Now()
	expiresAt := now.Add(s.ttl)

	claims := jwt.MapClaims{
		"jti":     uuid.New().String(),
		"user_id": user.ID,
		"email":   user.Email,
		"iat":     now.Unix(),
		"exp":     expiresAt.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	record := &model.AuthToken{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		Token:     signed,
		ExpiresAt: expiresAt,
	}
	if err := s.repo.CreateToken(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to store token: %w", err)
	}

	return &TokenResponse{
		AccessToken: signed,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt,
		User:        user.Profile(),
	}, nil
}
