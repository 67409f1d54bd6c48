package domain

import (
	"context"
	"time"
)

// RatingRecord is one persisted per-aspect sentiment for a review.
type RatingRecord struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"product_id"`
	ReviewID  int64     `json:"review_id"`
	Category  Aspect    `json:"category"`
	Polarity  Polarity  `json:"polarity"`
	CreatedAt time.Time `json:"created_at"`
}

// CategoryCount is one row of a rating group-by: how many ratings a product
// has for a (category, polarity) pair.
type CategoryCount struct {
	Category Aspect
	Polarity Polarity
	Count    int64
}

type NewRating struct {
	ProductID int64
	ReviewID  int64
	Category  Aspect
	Polarity  Polarity
}

// RatingRepository abstracts rating persistence. Rows are written by the
// ingestion path; the aggregator only reads.
type RatingRepository interface {
	Create(ctx context.Context, rating NewRating) (*RatingRecord, error)
	ListByProduct(ctx context.Context, productID int64) ([]RatingRecord, error)
	ListByReview(ctx context.Context, reviewID int64) ([]RatingRecord, error)
	CountByCategoryPolarity(ctx context.Context, productID int64) ([]CategoryCount, error)
}
