package aspect

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pscheid92/reviewpulse/internal/domain"
)

// Decoder turns review text into per-aspect sentiment using an injected classifier.
// It holds no per-request state and is safe for concurrent use as long as the
// classifier is.
type Decoder struct {
	schema     domain.AspectSchema
	classifier domain.Classifier
}

func NewDecoder(schema domain.AspectSchema, classifier domain.Classifier) *Decoder {
	return &Decoder{schema: schema, classifier: classifier}
}

func (d *Decoder) Schema() domain.AspectSchema { return d.schema }

func (d *Decoder) Decode(ctx context.Context, text string) (Result, error) {
	if strings.TrimSpace(text) == "" {
		return Result{}, ErrEmptyText
	}

	indices, err := d.classifier.Classify(ctx, text)
	if err != nil {
		if errors.Is(err, domain.ErrMalformedModelOutput) {
			return Result{}, err
		}
		return Result{}, &InferenceError{Cause: err}
	}

	return Decode(d.schema, text, indices)
}

// ValidateIndices checks that indices has exactly one in-range label index per aspect.
func ValidateIndices(schema domain.AspectSchema, indices []int) error {
	if len(indices) != schema.Width() {
		return &MalformedOutputError{
			SchemaID: schema.ID,
			Reason:   fmt.Sprintf("expected %d outputs, got %d", schema.Width(), len(indices)),
		}
	}
	for i, idx := range indices {
		if idx < 0 || idx >= len(domain.Labels) {
			return &MalformedOutputError{
				SchemaID: schema.ID,
				Reason:   fmt.Sprintf("label index %d for %s out of range [0,%d]", idx, schema.Aspects[i], len(domain.Labels)-1),
			}
		}
	}
	return nil
}

// Decode maps classifier indices onto the schema. Index 0 becomes Absent
// before the shortcut check; if every aspect is Absent the result collapses
// to the "0" scalar.
func Decode(schema domain.AspectSchema, text string, indices []int) (Result, error) {
	if err := ValidateIndices(schema, indices); err != nil {
		return Result{}, err
	}

	predictions := make([]AspectSentiment, len(indices))
	mentioned := false
	for i, idx := range indices {
		sentiment := Absent
		if label := domain.Labels[idx]; label != domain.LabelNone {
			sentiment = Mentioned(domain.Polarity(label))
			mentioned = true
		}
		predictions[i] = AspectSentiment{Aspect: schema.Aspects[i], Sentiment: sentiment}
	}

	if !mentioned {
		return Result{InputText: text}, nil
	}
	return Result{InputText: text, predictions: predictions}, nil
}
