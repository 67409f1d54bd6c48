package aspect

import (
	"errors"
	"fmt"

	"github.com/pscheid92/reviewpulse/internal/domain"
)

var ErrEmptyText = errors.New("text must not be empty")

// MalformedOutputError reports classifier output that breaks the contract
// with the aspect schema. It is never transient.
type MalformedOutputError struct {
	SchemaID string
	Reason   string
}

func (e *MalformedOutputError) Error() string {
	if e.SchemaID == "" {
		return fmt.Sprintf("malformed model output: %s", e.Reason)
	}
	return fmt.Sprintf("malformed model output for schema %s: %s", e.SchemaID, e.Reason)
}

func (e *MalformedOutputError) Unwrap() error { return domain.ErrMalformedModelOutput }

// InferenceError wraps a failure of the tokenizer or model call.
// Both domain.ErrInferenceFailure and the original cause are reachable
// through errors.Is / errors.As.
type InferenceError struct {
	Cause error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("inference failure: %v", e.Cause)
}

func (e *InferenceError) Unwrap() []error {
	return []error{domain.ErrInferenceFailure, e.Cause}
}
