package aspect

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"github.com/pscheid92/reviewpulse/internal/domain"
)

// DefaultMaxLength is the tokenizer truncation length the classifier head was trained with.
const DefaultMaxLength = 512

// LogitClassifier composes a tokenizer and a model into a domain.Classifier
// by argmaxing each aspect's logit vector.
type LogitClassifier struct {
	tokenizer domain.Tokenizer
	model     domain.Model
	opts      domain.TokenizeOptions
}

var _ domain.Classifier = (*LogitClassifier)(nil)

func NewLogitClassifier(tokenizer domain.Tokenizer, model domain.Model, maxLength int) *LogitClassifier {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	return &LogitClassifier{
		tokenizer: tokenizer,
		model:     model,
		opts: domain.TokenizeOptions{
			MaxLength:  maxLength,
			Truncation: true,
			Padding:    true,
		},
	}
}

func (c *LogitClassifier) Classify(ctx context.Context, text string) ([]int, error) {
	enc, err := c.tokenizer.Tokenize(ctx, text, c.opts)
	if err != nil {
		return nil, fmt.Errorf("tokenize: %w", err)
	}

	logits, err := c.model.Infer(ctx, enc)
	if err != nil {
		return nil, fmt.Errorf("infer: %w", err)
	}

	return Argmax(logits)
}

// Argmax returns the index of the largest logit of each vector. Ties resolve
// to the lowest index. Every vector must have one logit per label.
func Argmax(logits [][]float32) ([]int, error) {
	for i, vec := range logits {
		if len(vec) != len(domain.Labels) {
			return nil, &MalformedOutputError{
				Reason: fmt.Sprintf("logit vector %d has width %d, want %d", i, len(vec), len(domain.Labels)),
			}
		}
	}

	return lo.Map(logits, func(vec []float32, _ int) int {
		best := 0
		for j := 1; j < len(vec); j++ {
			if vec[j] > vec[best] {
				best = j
			}
		}
		return best
	}), nil
}
