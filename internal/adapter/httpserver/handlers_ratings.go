package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/pscheid92/reviewpulse/internal/domain"
)

type createRatingRequest struct {
	ProductID int64  `json:"product_id" validate:"required,gt=0"`
	ReviewID  int64  `json:"review_id" validate:"required,gt=0"`
	Category  string `json:"category" validate:"required,aspect"`
	Polarity  string `json:"polarity" validate:"required,polarity"`
}

func (s *Server) registerRatingRoutes() {
	s.echo.POST("/rates", s.handleCreateRating)
	s.echo.GET("/rates/by-product/:product_id", s.handleListRatingsByProduct)
	s.echo.GET("/rates/by-review/:review_id", s.handleListRatingsByReview)
}

func (s *Server) handleCreateRating(c echo.Context) error {
	var req createRatingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	rating, err := s.app.CreateRating(c.Request().Context(), domain.NewRating{
		ProductID: req.ProductID,
		ReviewID:  req.ReviewID,
		Category:  domain.Aspect(req.Category),
		Polarity:  domain.Polarity(req.Polarity),
	})
	if err != nil {
		return translateError(err)
	}
	return writeJSON(c, rating)
}

func (s *Server) handleListRatingsByProduct(c echo.Context) error {
	productID, err := parseIDParam(c, "product_id")
	if err != nil {
		return err
	}

	ratings, err := s.app.ListRatingsByProduct(c.Request().Context(), productID)
	if err != nil {
		return translateError(err)
	}
	return writeJSON(c, nonNil(ratings))
}

func (s *Server) handleListRatingsByReview(c echo.Context) error {
	reviewID, err := parseIDParam(c, "review_id")
	if err != nil {
		return err
	}

	ratings, err := s.app.ListRatingsByReview(c.Request().Context(), reviewID)
	if err != nil {
		return translateError(err)
	}
	return writeJSON(c, nonNil(ratings))
}
