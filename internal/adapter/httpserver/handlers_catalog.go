package httpserver

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pscheid92/reviewpulse/internal/domain"
)

type createProductNameRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

type createProductRequest struct {
	ProductNameID int64   `json:"product_name_id" validate:"required,gt=0"`
	Name          string  `json:"name" validate:"required,max=255"`
	Price         float64 `json:"price" validate:"gte=0"`
}

type createReviewRequest struct {
	ProductID int64  `json:"product_id" validate:"required,gt=0"`
	Content   string `json:"content" validate:"required"`
}

func (s *Server) registerCatalogRoutes() {
	s.echo.POST("/product-names", s.handleCreateProductName)

	s.echo.POST("/products", s.handleCreateProduct)
	s.echo.GET("/products", s.handleListProducts)
	s.echo.GET("/products/by-name/:product_name_id", s.handleListProductsByName)
	s.echo.GET("/products/:product_id/rates", s.handleGetProductRates)
	s.echo.GET("/products/:product_id/reviews", s.handleGetProductReviews)
	s.echo.GET("/products/:product_id/rate-stats", s.handleRateStats)

	s.echo.POST("/reviews", s.handleCreateReview)
	s.echo.GET("/reviews/by-product/:product_id", s.handleListReviewsByProduct)
}

func (s *Server) handleCreateProductName(c echo.Context) error {
	var req createProductNameRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	name, err := s.app.CreateProductName(c.Request().Context(), req.Name)
	if err != nil {
		return translateError(err)
	}
	return writeJSON(c, name)
}

func (s *Server) handleCreateProduct(c echo.Context) error {
	var req createProductRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	product, err := s.app.CreateProduct(c.Request().Context(), domain.NewProduct{
		ProductNameID: req.ProductNameID,
		Name:          req.Name,
		Price:         req.Price,
	})
	if err != nil {
		return translateError(err)
	}
	return writeJSON(c, product)
}

func (s *Server) handleListProducts(c echo.Context) error {
	products, err := s.app.ListProducts(c.Request().Context())
	if err != nil {
		return translateError(err)
	}
	return writeJSON(c, nonNil(products))
}

func (s *Server) handleListProductsByName(c echo.Context) error {
	nameID, err := parseIDParam(c, "product_name_id")
	if err != nil {
		return err
	}

	products, err := s.app.ListProductsByName(c.Request().Context(), nameID)
	if err != nil {
		return translateError(err)
	}
	return writeJSON(c, nonNil(products))
}

func (s *Server) handleGetProductRates(c echo.Context) error {
	productID, err := parseIDParam(c, "product_id")
	if err != nil {
		return err
	}

	rates, err := s.app.GetProductRates(c.Request().Context(), productID)
	if err != nil {
		return translateError(err)
	}
	rates.Rates = nonNil(rates.Rates)
	return writeJSON(c, rates)
}

func (s *Server) handleGetProductReviews(c echo.Context) error {
	productID, err := parseIDParam(c, "product_id")
	if err != nil {
		return err
	}

	reviews, err := s.app.GetProductReviews(c.Request().Context(), productID)
	if err != nil {
		return translateError(err)
	}
	reviews.Reviews = nonNil(reviews.Reviews)
	return writeJSON(c, reviews)
}

func (s *Server) handleRateStats(c echo.Context) error {
	productID, err := parseIDParam(c, "product_id")
	if err != nil {
		return err
	}

	stats, err := s.app.RateStats(c.Request().Context(), productID)
	if err != nil {
		return translateError(err)
	}
	return writeJSON(c, stats)
}

func (s *Server) handleCreateReview(c echo.Context) error {
	var req createReviewRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	review, err := s.app.CreateReview(c.Request().Context(), domain.NewReview{
		ProductID: req.ProductID,
		Content:   req.Content,
	})
	if err != nil {
		return translateError(err)
	}
	return writeJSON(c, review)
}

func (s *Server) handleListReviewsByProduct(c echo.Context) error {
	productID, err := parseIDParam(c, "product_id")
	if err != nil {
		return err
	}

	reviews, err := s.app.ListReviewsByProduct(c.Request().Context(), productID)
	if err != nil {
		return translateError(err)
	}
	return writeJSON(c, nonNil(reviews))
}

func writeJSON(c echo.Context, body any) error {
	if err := c.JSON(http.StatusOK, body); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}

// nonNil makes empty lists encode as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
