package domain

import (
	"context"
	"time"
)

type ProductName struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Product struct {
	ID            int64     `json:"id"`
	ProductNameID int64     `json:"product_name_id"`
	Name          string    `json:"name"`
	Price         float64   `json:"price"`
	CreatedAt     time.Time `json:"created_at"`
}

type ProductReview struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"product_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type NewProduct struct {
	ProductNameID int64
	Name          string
	Price         float64
}

type NewReview struct {
	ProductID int64
	Content   string
}

// ProductRepository abstracts product persistence.
type ProductRepository interface {
	Create(ctx context.Context, product NewProduct) (*Product, error)
	GetByID(ctx context.Context, productID int64) (*Product, error)
	Exists(ctx context.Context, productID int64) (bool, error)
	List(ctx context.Context) ([]Product, error)
	ListByName(ctx context.Context, productNameID int64) ([]Product, error)
}

// ProductNameRepository abstracts product name persistence.
type ProductNameRepository interface {
	Create(ctx context.Context, name string) (*ProductName, error)
}

// ReviewRepository abstracts review persistence.
type ReviewRepository interface {
	Create(ctx context.Context, review NewReview) (*ProductReview, error)
	ListByProduct(ctx context.Context, productID int64) ([]ProductReview, error)
}
