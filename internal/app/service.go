package app

import (
	"context"
	"fmt"

	"github.com/pscheid92/reviewpulse/internal/adapter/metrics"
	"github.com/pscheid92/reviewpulse/internal/aspect"
	"github.com/pscheid92/reviewpulse/internal/domain"
	"github.com/pscheid92/reviewpulse/internal/ratings"
)

// Analyzer decodes review text into per-aspect sentiment.
type Analyzer interface {
	Decode(ctx context.Context, text string) (aspect.Result, error)
}

// Service is the application layer. It is the only component that references multiple
// domain components. It orchestrates all use cases.
type Service struct {
	analyzer Analyzer
	names    domain.ProductNameRepository
	products domain.ProductRepository
	reviews  domain.ReviewRepository
	ratings  domain.RatingRepository
	metrics  *metrics.AnalysisMetrics
}

// NewService creates the application layer service.
// m may be nil, in which case analysis outcomes are not counted.
func NewService(
	analyzer Analyzer,
	names domain.ProductNameRepository,
	products domain.ProductRepository,
	reviews domain.ReviewRepository,
	ratingRepo domain.RatingRepository,
	m *metrics.AnalysisMetrics,
) *Service {
	return &Service{
		analyzer: analyzer,
		names:    names,
		products: products,
		reviews:  reviews,
		ratings:  ratingRepo,
		metrics:  m,
	}
}

// ProductRates is a product together with all of its ratings.
type ProductRates struct {
	Product domain.Product        `json:"product"`
	Rates   []domain.RatingRecord `json:"rates"`
}

// ProductReviews is a product together with all of its reviews.
type ProductReviews struct {
	Product domain.Product         `json:"product"`
	Reviews []domain.ProductReview `json:"reviews"`
}

// RateStats is the per-category, per-polarity rating breakdown of one product.
type RateStats struct {
	ProductID int64         `json:"product_id"`
	Stats     ratings.Stats `json:"rate_stats"`
}

// Analyze decodes one review. Failures are never partial: either every
// aspect is decoded or an error is returned.
func (s *Service) Analyze(ctx context.Context, text string) (aspect.Result, error) {
	result, err := s.analyzer.Decode(ctx, text)
	if err != nil {
		s.countAnalysis(outcome(err))
		return aspect.Result{}, err
	}

	s.countAnalysis("ok")
	if s.metrics != nil {
		for _, p := range result.Predictions() {
			if polarity, ok := p.Sentiment.Polarity(); ok {
				s.metrics.Predictions.WithLabelValues(string(p.Aspect), string(polarity)).Inc()
			}
		}
	}
	return result, nil
}

func (s *Service) countAnalysis(result string) {
	if s.metrics != nil {
		s.metrics.Analyses.WithLabelValues(result).Inc()
	}
}

func (s *Service) CreateProductName(ctx context.Context, name string) (*domain.ProductName, error) {
	return s.names.Create(ctx, name)
}

func (s *Service) CreateProduct(ctx context.Context, p domain.NewProduct) (*domain.Product, error) {
	return s.products.Create(ctx, p)
}

func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.products.List(ctx)
}

// ListProductsByName returns an empty list, not an error, when no product carries the name.
func (s *Service) ListProductsByName(ctx context.Context, productNameID int64) ([]domain.Product, error) {
	return s.products.ListByName(ctx, productNameID)
}

func (s *Service) CreateRating(ctx context.Context, r domain.NewRating) (*domain.RatingRecord, error) {
	return s.ratings.Create(ctx, r)
}

func (s *Service) ListRatingsByProduct(ctx context.Context, productID int64) ([]domain.RatingRecord, error) {
	return s.ratings.ListByProduct(ctx, productID)
}

func (s *Service) ListRatingsByReview(ctx context.Context, reviewID int64) ([]domain.RatingRecord, error) {
	return s.ratings.ListByReview(ctx, reviewID)
}

func (s *Service) CreateReview(ctx context.Context, r domain.NewReview) (*domain.ProductReview, error) {
	return s.reviews.Create(ctx, r)
}

func (s *Service) ListReviewsByProduct(ctx context.Context, productID int64) ([]domain.ProductReview, error) {
	return s.reviews.ListByProduct(ctx, productID)
}

// GetProductRates returns domain.ErrProductNotFound only when the product
// itself is missing; a product without ratings has an empty list.
func (s *Service) GetProductRates(ctx context.Context, productID int64) (*ProductRates, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	rates, err := s.ratings.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return &ProductRates{Product: *product, Rates: rates}, nil
}

// GetProductReviews returns domain.ErrProductNotFound only when the product
// itself is missing; a product without reviews has an empty list.
func (s *Service) GetProductReviews(ctx context.Context, productID int64) (*ProductReviews, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	reviews, err := s.reviews.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return &ProductReviews{Product: *product, Reviews: reviews}, nil
}

// RateStats aggregates a product's ratings by category and polarity.
// A product with no ratings yields empty stats; an unknown product yields
// domain.ErrProductNotFound.
func (s *Service) RateStats(ctx context.Context, productID int64) (*RateStats, error) {
	exists, err := s.products.Exists(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("product %d: %w", productID, domain.ErrProductNotFound)
	}

	counts, err := s.ratings.CountByCategoryPolarity(ctx, productID)
	if err != nil {
		return nil, err
	}
	return &RateStats{ProductID: productID, Stats: ratings.FromCounts(counts)}, nil
}
