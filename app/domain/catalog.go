package domain

import (
	"context"
	"database/sql"
	"time"
)

type ProductStatus string

const (
	ProductStatusActive       ProductStatus = "active"
	ProductStatusInactive     ProductStatus = "inactive"
	ProductStatusDiscontinued ProductStatus = "discontinued"
)

type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Product struct {
	ID          int64         `json:"id"`
	CategoryID  int64         `json:"category_id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Status      ProductStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

type ProductCreateRequest struct {
	CategoryID  int64  `json:"category_id" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

type CategoryCreateRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

type CategoryRepository interface {
	Create(ctx context.Context, category *Category) error
	GetByID(ctx context.Context, id int64) (Category, error)
	List(ctx context.Context) ([]Category, error)
}

type ProductRepository interface {
	Create(ctx context.Context, product *Product) error
	GetByID(ctx context.Context, id int64) (Product, error)
	List(ctx context.Context) ([]Product, error)
	UpdateStatus(ctx context.Context, id int64, status ProductStatus, tx *sql.Tx) error
	Delete(ctx context.Context, id int64, tx *sql.Tx) error
}

type CatalogUsecase interface {
	CreateCategory(ctx context.Context, req CategoryCreateRequest) (*Category, error)
	ListCategories(ctx context.Context) ([]Category, error)
	CreateProduct(ctx context.Context, req ProductCreateRequest) (*Product, error)
	GetProduct(ctx context.Context, id int64) (Product, error)
	ListProducts(ctx context.Context) ([]Product, error)
	// DeleteProduct discontinues the product instead of removing it when any
	// order line still references one of its SKUs.
	DeleteProduct(ctx context.Context, id int64, actor string) error
}
