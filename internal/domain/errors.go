package domain

import "errors"

var (
	ErrProductNotFound     = errors.New("product not found")
	ErrProductNameNotFound = errors.New("product name not found")
	ErrReviewNotFound      = errors.New("review not found")

	// ErrUnknownReference is returned when a write points at a parent row that does not exist.
	ErrUnknownReference = errors.New("referenced entity does not exist")
	ErrAlreadyExists    = errors.New("entity already exists")

	ErrMalformedModelOutput = errors.New("malformed model output")
	ErrInferenceFailure     = errors.New("inference failure")
	ErrInferenceUnavailable = errors.New("inference unavailable")

	ErrCacheMiss = errors.New("cache miss")
)
