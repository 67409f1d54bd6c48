package app

import (
	"context"
	"errors"

	"github.com/pscheid92/reviewpulse/internal/aspect"
	"github.com/pscheid92/reviewpulse/internal/domain"
)

// --- Mock implementations ---

type mockAnalyzer struct {
	decodeFn func(ctx context.Context, text string) (aspect.Result, error)
}

func (m *mockAnalyzer) Decode(ctx context.Context, text string) (aspect.Result, error) {
	if m.decodeFn != nil {
		return m.decodeFn(ctx, text)
	}
	return aspect.Result{}, errors.New("not implemented")
}

type mockProductRepo struct {
	products []domain.Product
	existsFn func(ctx context.Context, productID int64) (bool, error)
}

func (m *mockProductRepo) Create(_ context.Context, p domain.NewProduct) (*domain.Product, error) {
	created := domain.Product{ID: int64(len(m.products) + 1), ProductNameID: p.ProductNameID, Name: p.Name, Price: p.Price}
	m.products = append(m.products, created)
	return &created, nil
}

func (m *mockProductRepo) GetByID(_ context.Context, productID int64) (*domain.Product, error) {
	for _, p := range m.products {
		if p.ID == productID {
			return &p, nil
		}
	}
	return nil, domain.ErrProductNotFound
}

func (m *mockProductRepo) Exists(ctx context.Context, productID int64) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, productID)
	}
	_, err := m.GetByID(ctx, productID)
	return err == nil, nil
}

func (m *mockProductRepo) List(context.Context) ([]domain.Product, error) {
	return append([]domain.Product{}, m.products...), nil
}

func (m *mockProductRepo) ListByName(_ context.Context, productNameID int64) ([]domain.Product, error) {
	out := []domain.Product{}
	for _, p := range m.products {
		if p.ProductNameID == productNameID {
			out = append(out, p)
		}
	}
	return out, nil
}

type mockProductNameRepo struct {
	createFn func(ctx context.Context, name string) (*domain.ProductName, error)
}

func (m *mockProductNameRepo) Create(ctx context.Context, name string) (*domain.ProductName, error) {
	if m.createFn != nil {
		return m.createFn(ctx, name)
	}
	return &domain.ProductName{ID: 1, Name: name}, nil
}

type mockReviewRepo struct {
	reviews []domain.ProductReview
}

func (m *mockReviewRepo) Create(_ context.Context, r domain.NewReview) (*domain.ProductReview, error) {
	created := domain.ProductReview{ID: int64(len(m.reviews) + 1), ProductID: r.ProductID, Content: r.Content}
	m.reviews = append(m.reviews, created)
	return &created, nil
}

func (m *mockReviewRepo) ListByProduct(_ context.Context, productID int64) ([]domain.ProductReview, error) {
	out := []domain.ProductReview{}
	for _, r := range m.reviews {
		if r.ProductID == productID {
			out = append(out, r)
		}
	}
	return out, nil
}

type mockRatingRepo struct {
	rows    []domain.RatingRecord
	countFn func(ctx context.Context, productID int64) ([]domain.CategoryCount, error)
	calls   int
}

func (m *mockRatingRepo) Create(_ context.Context, r domain.NewRating) (*domain.RatingRecord, error) {
	created := domain.RatingRecord{ID: int64(len(m.rows) + 1), ProductID: r.ProductID, ReviewID: r.ReviewID, Category: r.Category, Polarity: r.Polarity}
	m.rows = append(m.rows, created)
	return &created, nil
}

func (m *mockRatingRepo) ListByProduct(_ context.Context, productID int64) ([]domain.RatingRecord, error) {
	out := []domain.RatingRecord{}
	for _, r := range m.rows {
		if r.ProductID == productID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockRatingRepo) ListByReview(_ context.Context, reviewID int64) ([]domain.RatingRecord, error) {
	out := []domain.RatingRecord{}
	for _, r := range m.rows {
		if r.ReviewID == reviewID {
			out = append(out, r)
		}
	}
	return out, nil
}

// CountByCategoryPolarity mimics the SQL group-by: groups in first-row order.
func (m *mockRatingRepo) CountByCategoryPolarity(ctx context.Context, productID int64) ([]domain.CategoryCount, error) {
	m.calls++
	if m.countFn != nil {
		return m.countFn(ctx, productID)
	}

	var out []domain.CategoryCount
	index := map[[2]string]int{}
	for _, r := range m.rows {
		if r.ProductID != productID {
			continue
		}
		key := [2]string{string(r.Category), string(r.Polarity)}
		if i, ok := index[key]; ok {
			out[i].Count++
			continue
		}
		index[key] = len(out)
		out = append(out, domain.CategoryCount{Category: r.Category, Polarity: r.Polarity, Count: 1})
	}
	return out, nil
}
