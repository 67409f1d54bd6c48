package aspect

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"slices"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/pscheid92/reviewpulse/internal/domain"
)

// flightTimeout bounds a shared upstream call once no single caller owns it.
const flightTimeout = 30 * time.Second

// CachedClassifier serves repeated texts from a PredictionCache and collapses
// concurrent classifications of the same text into one upstream call. A caller
// that gives up stops waiting; the shared call keeps running for the others.
// Cache failures degrade to a miss; only well-formed output is stored.
type CachedClassifier struct {
	next   domain.Classifier
	cache  domain.PredictionCache
	schema domain.AspectSchema
	ttl    time.Duration
	group  singleflight.Group
}

var _ domain.Classifier = (*CachedClassifier)(nil)

func NewCachedClassifier(next domain.Classifier, cache domain.PredictionCache, schema domain.AspectSchema, ttl time.Duration) *CachedClassifier {
	return &CachedClassifier{
		next:   next,
		cache:  cache,
		schema: schema,
		ttl:    ttl,
	}
}

func (c *CachedClassifier) Classify(ctx context.Context, text string) ([]int, error) {
	key := CacheKey(c.schema, text)

	indices, err := c.cache.Get(ctx, key)
	if err == nil {
		return slices.Clone(indices), nil
	}
	if !errors.Is(err, domain.ErrCacheMiss) {
		slog.WarnContext(ctx, "Prediction cache lookup failed", "schema", c.schema.ID, "error", err)
	}

	ch := c.group.DoChan(key, func() (any, error) {
		// Detached from the first caller: waiters sharing this key must not
		// inherit its cancellation.
		flightCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), flightTimeout)
		defer cancel()

		indices, err := c.next.Classify(flightCtx, text)
		if err != nil {
			return nil, err
		}

		if ValidateIndices(c.schema, indices) == nil {
			if err := c.cache.Set(flightCtx, key, indices, c.ttl); err != nil {
				slog.WarnContext(ctx, "Failed to populate prediction cache", "schema", c.schema.ID, "error", err)
			}
		}
		return indices, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return slices.Clone(res.Val.([]int)), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// CacheKey scopes a text digest by schema, so a schema change never reads
// output produced for another aspect set.
func CacheKey(schema domain.AspectSchema, text string) string {
	sum := sha256.Sum256([]byte(text))
	return schema.ID + ":" + hex.EncodeToString(sum[:])
}
