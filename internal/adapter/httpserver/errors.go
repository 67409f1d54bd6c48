package httpserver

import (
	"errors"

	"github.com/pscheid92/reviewpulse/internal/aspect"
	"github.com/pscheid92/reviewpulse/internal/domain"
	apperrors "github.com/pscheid92/reviewpulse/internal/platform/errors"
)

// translateError maps domain sentinels onto structured errors. The order
// matters: an open breaker is also an inference failure.
func translateError(err error) error {
	var structuredErr *apperrors.Error
	switch {
	case errors.As(err, &structuredErr):
		return err
	case errors.Is(err, aspect.ErrEmptyText):
		return apperrors.ValidationError(aspect.ErrEmptyText.Error())
	case errors.Is(err, domain.ErrMalformedModelOutput):
		return apperrors.ExternalError("model returned malformed output", err)
	case errors.Is(err, domain.ErrInferenceUnavailable):
		return apperrors.UnavailableError("model server unavailable", err)
	case errors.Is(err, domain.ErrInferenceFailure):
		return apperrors.ExternalError("model server request failed", err)
	case errors.Is(err, domain.ErrProductNotFound):
		return apperrors.NotFoundError("product not found")
	case errors.Is(err, domain.ErrUnknownReference):
		return apperrors.ValidationError("referenced entity does not exist")
	case errors.Is(err, domain.ErrAlreadyExists):
		return apperrors.ConflictError("entity already exists", err)
	default:
		return apperrors.InternalError("internal server error", err)
	}
}
