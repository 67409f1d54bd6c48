package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pscheid92/reviewpulse/internal/domain"
)

const productColumns = `id, product_name_id, name, price::float8 AS price, created_at`

type productRow struct {
	ID            int64     `db:"id"`
	ProductNameID int64     `db:"product_name_id"`
	Name          string    `db:"name"`
	Price         float64   `db:"price"`
	CreatedAt     time.Time `db:"created_at"`
}

func (r productRow) toDomain() domain.Product {
	return domain.Product{
		ID:            r.ID,
		ProductNameID: r.ProductNameID,
		Name:          r.Name,
		Price:         r.Price,
		CreatedAt:     r.CreatedAt.UTC(),
	}
}

type ProductRepo struct {
	pool *pgxpool.Pool
}

var _ domain.ProductRepository = (*ProductRepo)(nil)

func NewProductRepo(pool *pgxpool.Pool) *ProductRepo {
	return &ProductRepo{pool: pool}
}

func (r *ProductRepo) Create(ctx context.Context, p domain.NewProduct) (*domain.Product, error) {
	rows, _ := r.pool.Query(ctx,
		`INSERT INTO products (product_name_id, name, price) VALUES ($1, $2, $3) RETURNING `+productColumns,
		p.ProductNameID, p.Name, p.Price)
	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[productRow])
	if err != nil {
		return nil, translateWriteError("create product", err)
	}

	product := row.toDomain()
	return &product, nil
}

func (r *ProductRepo) GetByID(ctx context.Context, productID int64) (*domain.Product, error) {
	rows, _ := r.pool.Query(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, productID)
	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[productRow])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product by ID: %w", err)
	}

	product := row.toDomain()
	return &product, nil
}

func (r *ProductRepo) Exists(ctx context.Context, productID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)`, productID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check product existence: %w", err)
	}
	return exists, nil
}

func (r *ProductRepo) List(ctx context.Context) ([]domain.Product, error) {
	rows, _ := r.pool.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY id`)
	return collectProducts(rows, "list products")
}

func (r *ProductRepo) ListByName(ctx context.Context, productNameID int64) ([]domain.Product, error) {
	rows, _ := r.pool.Query(ctx, `SELECT `+productColumns+` FROM products WHERE product_name_id = $1 ORDER BY id`, productNameID)
	return collectProducts(rows, "list products by name")
}

func collectProducts(rows pgx.Rows, op string) ([]domain.Product, error) {
	collected, err := pgx.CollectRows(rows, pgx.RowToStructByName[productRow])
	if err != nil {
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}

	products := make([]domain.Product, len(collected))
	for i, row := range collected {
		products[i] = row.toDomain()
	}
	return products, nil
}

type ProductNameRepo struct {
	pool *pgxpool.Pool
}

var _ domain.ProductNameRepository = (*ProductNameRepo)(nil)

func NewProductNameRepo(pool *pgxpool.Pool) *ProductNameRepo {
	return &ProductNameRepo{pool: pool}
}

func (r *ProductNameRepo) Create(ctx context.Context, name string) (*domain.ProductName, error) {
	var pn domain.ProductName
	err := r.pool.QueryRow(ctx,
		`INSERT INTO product_names (name) VALUES ($1) RETURNING id, name`, name,
	).Scan(&pn.ID, &pn.Name)
	if err != nil {
		return nil, translateWriteError("create product name", err)
	}
	return &pn, nil
}
