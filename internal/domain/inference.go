package domain

import (
	"context"
	"time"
)

// Classifier returns one already-argmaxed label index per schema aspect.
type Classifier interface {
	Classify(ctx context.Context, text string) ([]int, error)
}

// TokenizeOptions mirrors the tokenizer call the classifier head was trained with.
type TokenizeOptions struct {
	MaxLength  int
	Truncation bool
	Padding    bool
}

// Encoding is a model-ready tokenization of one text.
type Encoding struct {
	InputIDs      [][]int64 `json:"input_ids"`
	AttentionMask [][]int64 `json:"attention_mask"`
}

type Tokenizer interface {
	Tokenize(ctx context.Context, text string, opts TokenizeOptions) (Encoding, error)
}

// Model runs the classification head and returns one logit vector per aspect.
type Model interface {
	Infer(ctx context.Context, enc Encoding) ([][]float32, error)
}

// PredictionCache stores classifier output keyed by an opaque string.
// Get returns ErrCacheMiss when the key is absent or expired.
type PredictionCache interface {
	Get(ctx context.Context, key string) ([]int, error)
	Set(ctx context.Context, key string, indices []int, ttl time.Duration) error
}
