package httpserver

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/pscheid92/reviewpulse/internal/app"
	"github.com/pscheid92/reviewpulse/internal/aspect"
	"github.com/pscheid92/reviewpulse/internal/domain"
	"github.com/pscheid92/reviewpulse/internal/platform/config"
)

// --- Mock implementations ---

type mockAppService struct {
	analyzeFn              func(ctx context.Context, text string) (aspect.Result, error)
	createProductNameFn    func(ctx context.Context, name string) (*domain.ProductName, error)
	createProductFn        func(ctx context.Context, p domain.NewProduct) (*domain.Product, error)
	listProductsFn         func(ctx context.Context) ([]domain.Product, error)
	listProductsByNameFn   func(ctx context.Context, productNameID int64) ([]domain.Product, error)
	createRatingFn         func(ctx context.Context, r domain.NewRating) (*domain.RatingRecord, error)
	listRatingsByProductFn func(ctx context.Context, productID int64) ([]domain.RatingRecord, error)
	listRatingsByReviewFn  func(ctx context.Context, reviewID int64) ([]domain.RatingRecord, error)
	createReviewFn         func(ctx context.Context, r domain.NewReview) (*domain.ProductReview, error)
	listReviewsByProductFn func(ctx context.Context, productID int64) ([]domain.ProductReview, error)
	getProductRatesFn      func(ctx context.Context, productID int64) (*app.ProductRates, error)
	getProductReviewsFn    func(ctx context.Context, productID int64) (*app.ProductReviews, error)
	rateStatsFn            func(ctx context.Context, productID int64) (*app.RateStats, error)
}

var errNotImplemented = errors.New("not implemented")

func (m *mockAppService) Analyze(ctx context.Context, text string) (aspect.Result, error) {
	if m.analyzeFn != nil {
		return m.analyzeFn(ctx, text)
	}
	return aspect.Result{}, errNotImplemented
}

func (m *mockAppService) CreateProductName(ctx context.Context, name string) (*domain.ProductName, error) {
	if m.createProductNameFn != nil {
		return m.createProductNameFn(ctx, name)
	}
	return nil, errNotImplemented
}

func (m *mockAppService) CreateProduct(ctx context.Context, p domain.NewProduct) (*domain.Product, error) {
	if m.createProductFn != nil {
		return m.createProductFn(ctx, p)
	}
	return nil, errNotImplemented
}

func (m *mockAppService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	if m.listProductsFn != nil {
		return m.listProductsFn(ctx)
	}
	return nil, nil
}

func (m *mockAppService) ListProductsByName(ctx context.Context, productNameID int64) ([]domain.Product, error) {
	if m.listProductsByNameFn != nil {
		return m.listProductsByNameFn(ctx, productNameID)
	}
	return nil, nil
}

func (m *mockAppService) CreateRating(ctx context.Context, r domain.NewRating) (*domain.RatingRecord, error) {
	if m.createRatingFn != nil {
		return m.createRatingFn(ctx, r)
	}
	return nil, errNotImplemented
}

func (m *mockAppService) ListRatingsByProduct(ctx context.Context, productID int64) ([]domain.RatingRecord, error) {
	if m.listRatingsByProductFn != nil {
		return m.listRatingsByProductFn(ctx, productID)
	}
	return nil, nil
}

func (m *mockAppService) ListRatingsByReview(ctx context.Context, reviewID int64) ([]domain.RatingRecord, error) {
	if m.listRatingsByReviewFn != nil {
		return m.listRatingsByReviewFn(ctx, reviewID)
	}
	return nil, nil
}

func (m *mockAppService) CreateReview(ctx context.Context, r domain.NewReview) (*domain.ProductReview, error) {
	if m.createReviewFn != nil {
		return m.createReviewFn(ctx, r)
	}
	return nil, errNotImplemented
}

func (m *mockAppService) ListReviewsByProduct(ctx context.Context, productID int64) ([]domain.ProductReview, error) {
	if m.listReviewsByProductFn != nil {
		return m.listReviewsByProductFn(ctx, productID)
	}
	return nil, nil
}

func (m *mockAppService) GetProductRates(ctx context.Context, productID int64) (*app.ProductRates, error) {
	if m.getProductRatesFn != nil {
		return m.getProductRatesFn(ctx, productID)
	}
	return nil, domain.ErrProductNotFound
}

func (m *mockAppService) GetProductReviews(ctx context.Context, productID int64) (*app.ProductReviews, error) {
	if m.getProductReviewsFn != nil {
		return m.getProductReviewsFn(ctx, productID)
	}
	return nil, domain.ErrProductNotFound
}

func (m *mockAppService) RateStats(ctx context.Context, productID int64) (*app.RateStats, error) {
	if m.rateStatsFn != nil {
		return m.rateStatsFn(ctx, productID)
	}
	return nil, domain.ErrProductNotFound
}

// --- Test helpers ---

var testStartTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T, app appService, opts ...func(*Server)) *Server {
	t.Helper()

	clock := clockwork.NewFakeClockAt(testStartTime)
	srv := &Server{
		echo:      newEcho(),
		config:    testConfig(),
		app:       app,
		schema:    domain.DefaultSchema,
		clock:     clock,
		startTime: clock.Now(),
	}

	for _, opt := range opts {
		opt(srv)
	}

	// Register routes so endpoints are available for testing
	srv.registerRoutes()

	return srv
}

func testConfig() *config.Config {
	return &config.Config{
		Port:             "0",
		AnalyzeRateLimit: 100,
		AnalyzeRateBurst: 100,
	}
}

func withHealthChecks(checks ...HealthCheck) func(*Server) {
	return func(s *Server) {
		s.healthChecks = checks
	}
}

func withClock(clock clockwork.Clock) func(*Server) {
	return func(s *Server) {
		s.clock = clock
		s.startTime = clock.Now()
	}
}

func withConfig(cfg *config.Config) func(*Server) {
	return func(s *Server) {
		s.config = cfg
	}
}

// callHandler wraps a handler with error middleware, matching production behavior
func callHandler(handler echo.HandlerFunc, c echo.Context) error {
	return ErrorHandlingMiddleware()(handler)(c)
}

func newJSONContext(srv *Server, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return srv.echo.NewContext(req, rec), rec
}

// serve runs a request through the full router and middleware chain.
func serve(t *testing.T, srv *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, bytes.NewBufferString(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	req.RemoteAddr = testRemoteAddr
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	require.NotZero(t, rec.Code)
	return rec
}

func mustDecode(t *testing.T, text string, indices ...int) aspect.Result {
	t.Helper()
	result, err := aspect.Decode(domain.DefaultSchema, text, indices)
	require.NoError(t, err)
	return result
}
