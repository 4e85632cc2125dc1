package repository

import "gorm.io/gorm"

// Repositories 仓库集合，用于统一管理所有仓库
type Repositories struct {
	DB      *gorm.DB
	Product ProductRepository
	Cart    CartRepository
	Order   OrderRepository
	Auth    *AuthRepository
}

// NewRepositories 创建所有仓库
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		DB:      db,
		Product: NewProductRepository(db),
		Cart:    NewCartRepository(db),
		Order:   NewOrderRepository(db),
		Auth:    NewAuthRepository(db),
	}
}
