package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pscheid92/reviewpulse/internal/domain"
)

type reviewRow struct {
	ID        int64     `db:"id"`
	ProductID int64     `db:"product_id"`
	Content   string    `db:"content"`
	CreatedAt time.Time `db:"created_at"`
}

func (r reviewRow) toDomain() domain.ProductReview {
	return domain.ProductReview{
		ID:        r.ID,
		ProductID: r.ProductID,
		Content:   r.Content,
		CreatedAt: r.CreatedAt.UTC(),
	}
}

type ReviewRepo struct {
	pool *pgxpool.Pool
}

var _ domain.ReviewRepository = (*ReviewRepo)(nil)

func NewReviewRepo(pool *pgxpool.Pool) *ReviewRepo {
	return &ReviewRepo{pool: pool}
}

func (r *ReviewRepo) Create(ctx context.Context, review domain.NewReview) (*domain.ProductReview, error) {
	rows, _ := r.pool.Query(ctx,
		`INSERT INTO product_reviews (product_id, content) VALUES ($1, $2)
		 RETURNING id, product_id, content, created_at`,
		review.ProductID, review.Content)
	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[reviewRow])
	if err != nil {
		return nil, translateWriteError("create review", err)
	}

	created := row.toDomain()
	return &created, nil
}

func (r *ReviewRepo) ListByProduct(ctx context.Context, productID int64) ([]domain.ProductReview, error) {
	rows, _ := r.pool.Query(ctx,
		`SELECT id, product_id, content, created_at FROM product_reviews WHERE product_id = $1 ORDER BY id`,
		productID)
	collected, err := pgx.CollectRows(rows, pgx.RowToStructByName[reviewRow])
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews by product: %w", err)
	}

	reviews := make([]domain.ProductReview, len(collected))
	for i, row := range collected {
		reviews[i] = row.toDomain()
	}
	return reviews, nil
}
