package aspect

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/pscheid92/reviewpulse/internal/domain"
)

const (
	absentText   = "null"
	shortcutText = "0"
)

// Sentiment is a decoded per-aspect label. The zero value is Absent.
type Sentiment struct {
	polarity domain.Polarity
}

// Absent means the aspect was not mentioned.
var Absent = Sentiment{}

func Mentioned(p domain.Polarity) Sentiment {
	return Sentiment{polarity: p}
}

func (s Sentiment) IsAbsent() bool { return s.polarity == "" }

func (s Sentiment) Polarity() (domain.Polarity, bool) {
	return s.polarity, s.polarity != ""
}

func (s Sentiment) String() string {
	if s.IsAbsent() {
		return absentText
	}
	return string(s.polarity)
}

func (s Sentiment) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// AspectSentiment is one entry of a decoded result.
type AspectSentiment struct {
	Aspect    domain.Aspect
	Sentiment Sentiment
}

// Result is the decoded output for one input text. When no aspect is
// mentioned it carries no per-aspect entries and renders as the scalar "0".
type Result struct {
	InputText   string
	predictions []AspectSentiment
}

// NoneMentioned reports whether the result collapsed to the shortcut scalar.
func (r Result) NoneMentioned() bool { return len(r.predictions) == 0 }

// Predictions returns the per-aspect entries in schema order, or nil for the shortcut.
func (r Result) Predictions() []AspectSentiment {
	if r.NoneMentioned() {
		return nil
	}
	out := make([]AspectSentiment, len(r.predictions))
	copy(out, r.predictions)
	return out
}

func (r Result) Get(a domain.Aspect) (Sentiment, bool) {
	for _, p := range r.predictions {
		if p.Aspect == a {
			return p.Sentiment, true
		}
	}
	return Absent, false
}

// MarshalJSON renders {"input_text": ..., "predictions": {...} | "0"} with
// aspects in schema order.
func (r Result) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"input_text":`)
	if err := writeJSONString(&buf, r.InputText); err != nil {
		return nil, fmt.Errorf("failed to encode input text: %w", err)
	}
	buf.WriteString(`,"predictions":`)

	if r.NoneMentioned() {
		buf.WriteString(`"` + shortcutText + `"`)
		buf.WriteByte('}')
		return buf.Bytes(), nil
	}

	buf.WriteByte('{')
	for i, p := range r.predictions {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSONString(&buf, string(p.Aspect)); err != nil {
			return nil, fmt.Errorf("failed to encode aspect: %w", err)
		}
		buf.WriteByte(':')
		buf.WriteString(`"` + p.Sentiment.String() + `"`)
	}
	buf.WriteString("}}")
	return buf.Bytes(), nil
}

// writeJSONString appends s as a JSON string without HTML escaping, so
// "SER&ACC" stays readable.
func writeJSONString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	buf.Truncate(buf.Len() - 1) // Encode appends a newline
	return nil
}
