package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pscheid92/reviewpulse/internal/domain"
)

const ratingColumns = `id, product_id, review_id, category, polarity, created_at`

type ratingRow struct {
	ID        int64     `db:"id"`
	ProductID int64     `db:"product_id"`
	ReviewID  int64     `db:"review_id"`
	Category  string    `db:"category"`
	Polarity  string    `db:"polarity"`
	CreatedAt time.Time `db:"created_at"`
}

func (r ratingRow) toDomain() domain.RatingRecord {
	return domain.RatingRecord{
		ID:        r.ID,
		ProductID: r.ProductID,
		ReviewID:  r.ReviewID,
		Category:  domain.Aspect(r.Category),
		Polarity:  domain.Polarity(r.Polarity),
		CreatedAt: r.CreatedAt.UTC(),
	}
}

type RatingRepo struct {
	pool *pgxpool.Pool
}

var _ domain.RatingRepository = (*RatingRepo)(nil)

func NewRatingRepo(pool *pgxpool.Pool) *RatingRepo {
	return &RatingRepo{pool: pool}
}

func (r *RatingRepo) Create(ctx context.Context, rating domain.NewRating) (*domain.RatingRecord, error) {
	rows, _ := r.pool.Query(ctx,
		`INSERT INTO rates (product_id, review_id, category, polarity) VALUES ($1, $2, $3, $4)
		 RETURNING `+ratingColumns,
		rating.ProductID, rating.ReviewID, string(rating.Category), string(rating.Polarity))
	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[ratingRow])
	if err != nil {
		return nil, translateWriteError("create rating", err)
	}

	created := row.toDomain()
	return &created, nil
}

func (r *RatingRepo) ListByProduct(ctx context.Context, productID int64) ([]domain.RatingRecord, error) {
	rows, _ := r.pool.Query(ctx, `SELECT `+ratingColumns+` FROM rates WHERE product_id = $1 ORDER BY id`, productID)
	return collectRatings(rows, "list ratings by product")
}

func (r *RatingRepo) ListByReview(ctx context.Context, reviewID int64) ([]domain.RatingRecord, error) {
	rows, _ := r.pool.Query(ctx, `SELECT `+ratingColumns+` FROM rates WHERE review_id = $1 ORDER BY id`, reviewID)
	return collectRatings(rows, "list ratings by review")
}

// CountByCategoryPolarity groups a product's ratings. Groups come back in the
// order their first rating was stored.
func (r *RatingRepo) CountByCategoryPolarity(ctx context.Context, productID int64) ([]domain.CategoryCount, error) {
	rows, _ := r.pool.Query(ctx,
		`SELECT category, polarity, count(*)
		 FROM rates
		 WHERE product_id = $1
		 GROUP BY category, polarity
		 ORDER BY min(id)`,
		productID)

	counts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.CategoryCount, error) {
		var category, polarity string
		var count int64
		if err := row.Scan(&category, &polarity, &count); err != nil {
			return domain.CategoryCount{}, err
		}
		return domain.CategoryCount{
			Category: domain.Aspect(category),
			Polarity: domain.Polarity(polarity),
			Count:    count,
		}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to count ratings by category and polarity: %w", err)
	}
	return counts, nil
}

func collectRatings(rows pgx.Rows, op string) ([]domain.RatingRecord, error) {
	collected, err := pgx.CollectRows(rows, pgx.RowToStructByName[ratingRow])
	if err != nil {
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}

	ratings := make([]domain.RatingRecord, len(collected))
	for i, row := range collected {
		ratings[i] = row.toDomain()
	}
	return ratings, nil
}
