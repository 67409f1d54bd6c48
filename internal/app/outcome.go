package app

import (
	"errors"

	"github.com/pscheid92/reviewpulse/internal/aspect"
	"github.com/pscheid92/reviewpulse/internal/domain"
)

// outcome labels a failed analysis for metrics.
func outcome(err error) string {
	switch {
	case errors.Is(err, aspect.ErrEmptyText):
		return "invalid_input"
	case errors.Is(err, domain.ErrMalformedModelOutput):
		return "malformed_output"
	case errors.Is(err, domain.ErrInferenceUnavailable):
		return "unavailable"
	case errors.Is(err, domain.ErrInferenceFailure):
		return "inference_failure"
	default:
		return "error"
	}
}
