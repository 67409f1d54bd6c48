package httpserver

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/samber/lo"

	"github.com/pscheid92/reviewpulse/internal/domain"
	apperrors "github.com/pscheid92/reviewpulse/internal/platform/errors"
)

type requestValidator struct {
	validate *validator.Validate
}

var _ echo.Validator = (*requestValidator)(nil)

func newRequestValidator() *requestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("aspect", func(fl validator.FieldLevel) bool {
		return domain.DefaultSchema.Contains(domain.Aspect(fl.Field().String()))
	})
	_ = v.RegisterValidation("polarity", func(fl validator.FieldLevel) bool {
		_, ok := domain.ParsePolarity(fl.Field().String())
		return ok
	})
	return &requestValidator{validate: v}
}

func (v *requestValidator) Validate(i any) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.ValidationError("invalid request body")
	}

	fields := lo.Map(fieldErrs, func(fe validator.FieldError, _ int) string {
		if fe.Param() != "" {
			return fmt.Sprintf("%s: %s=%s", fe.Field(), fe.Tag(), fe.Param())
		}
		return fmt.Sprintf("%s: %s", fe.Field(), fe.Tag())
	})
	return apperrors.ValidationError("invalid request body").WithField("fields", fields)
}

// bindAndValidate decodes the JSON body into req and runs struct validation.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return apperrors.ValidationError("malformed JSON body")
	}
	return c.Validate(req)
}

func parseIDParam(c echo.Context, name string) (int64, error) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.ValidationError("invalid "+name).WithField(name, raw)
	}
	return id, nil
}
