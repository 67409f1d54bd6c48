package ratings

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/samber/lo"

	"github.com/pscheid92/reviewpulse/internal/domain"
)

// Stats holds rating counts grouped by category, then polarity. Only pairs
// that occurred are present. Keys keep first-occurrence order when
// serialized; callers should rely on presence, not order.
//
// A Stats value is never modified after construction.
type Stats struct {
	categories []categoryStats
}

type categoryStats struct {
	category   domain.Aspect
	polarities []polarityCount
}

type polarityCount struct {
	polarity domain.Polarity
	count    int64
}

// Aggregate counts the rows belonging to productID. Rows for other products are ignored.
func Aggregate(productID int64, rows []domain.RatingRecord) Stats {
	owned := lo.Filter(rows, func(r domain.RatingRecord, _ int) bool {
		return r.ProductID == productID
	})

	b := lo.Reduce(owned, func(b *builder, r domain.RatingRecord, _ int) *builder {
		b.add(r.Category, r.Polarity, 1)
		return b
	}, newBuilder())

	return b.build()
}

// FromCounts folds pre-grouped (category, polarity, count) rows, as returned by
// a GROUP BY query, into Stats.
func FromCounts(counts []domain.CategoryCount) Stats {
	b := lo.Reduce(counts, func(b *builder, c domain.CategoryCount, _ int) *builder {
		if c.Count > 0 {
			b.add(c.Category, c.Polarity, c.Count)
		}
		return b
	}, newBuilder())

	return b.build()
}

func (s Stats) IsEmpty() bool { return len(s.categories) == 0 }

func (s Stats) Categories() []domain.Aspect {
	return lo.Map(s.categories, func(c categoryStats, _ int) domain.Aspect { return c.category })
}

func (s Stats) Polarities(category domain.Aspect) []domain.Polarity {
	for _, c := range s.categories {
		if c.category == category {
			return lo.Map(c.polarities, func(p polarityCount, _ int) domain.Polarity { return p.polarity })
		}
	}
	return nil
}

// Count returns the number of ratings for the pair, and whether the pair occurred.
func (s Stats) Count(category domain.Aspect, polarity domain.Polarity) (int64, bool) {
	for _, c := range s.categories {
		if c.category != category {
			continue
		}
		for _, p := range c.polarities {
			if p.polarity == polarity {
				return p.count, true
			}
		}
	}
	return 0, false
}

// Total is the sum of all counts.
func (s Stats) Total() int64 {
	var total int64
	for _, c := range s.categories {
		for _, p := range c.polarities {
			total += p.count
		}
	}
	return total
}

// Map returns a freshly allocated nested map of the counts.
func (s Stats) Map() map[domain.Aspect]map[domain.Polarity]int64 {
	out := make(map[domain.Aspect]map[domain.Polarity]int64, len(s.categories))
	for _, c := range s.categories {
		inner := make(map[domain.Polarity]int64, len(c.polarities))
		for _, p := range c.polarities {
			inner[p.polarity] = p.count
		}
		out[c.category] = inner
	}
	return out
}

func (s Stats) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range s.categories {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeKey(&buf, string(c.category)); err != nil {
			return nil, err
		}
		buf.WriteByte('{')
		for j, p := range c.polarities {
			if j > 0 {
				buf.WriteByte(',')
			}
			if err := writeKey(&buf, string(p.polarity)); err != nil {
				return nil, err
			}
			buf.WriteString(strconv.FormatInt(p.count, 10))
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeKey(buf *bytes.Buffer, key string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(key); err != nil {
		return fmt.Errorf("failed to encode stats key: %w", err)
	}
	buf.Truncate(buf.Len() - 1)
	buf.WriteByte(':')
	return nil
}

// builder is the per-call accumulator behind Aggregate and FromCounts.
type builder struct {
	index      map[domain.Aspect]int
	categories []categoryStats
}

func newBuilder() *builder {
	return &builder{index: make(map[domain.Aspect]int)}
}

func (b *builder) add(category domain.Aspect, polarity domain.Polarity, n int64) {
	ci, ok := b.index[category]
	if !ok {
		ci = len(b.categories)
		b.index[category] = ci
		b.categories = append(b.categories, categoryStats{category: category})
	}

	cat := &b.categories[ci]
	for i := range cat.polarities {
		if cat.polarities[i].polarity == polarity {
			cat.polarities[i].count += n
			return
		}
	}
	cat.polarities = append(cat.polarities, polarityCount{polarity: polarity, count: n})
}

func (b *builder) build() Stats {
	return Stats{categories: b.categories}
}
