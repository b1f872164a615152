package dataset

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/synmed/synviz/pkg/counter"
	"github.com/synmed/synviz/pkg/geometry"
)

// Percent is a segment percentage read from a dataset. Values that are not
// finite non-negative numbers decode to 0 instead of failing the load: a
// malformed slice renders with zero width.
type Percent float64

// UnmarshalTOML implements toml.Unmarshaler.
func (p *Percent) UnmarshalTOML(v any) error {
	*p = Percent(geometry.Sanitize(toFloat(v)))
	return nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Percent) UnmarshalJSON(data []byte) error {
	*p = Percent(geometry.Sanitize(jsonFloat(data)))
	return nil
}

// Count is a counter target. Negative and non-numeric values decode to 0,
// fractions are rounded and "50,000" is accepted.
type Count int

// UnmarshalTOML implements toml.Unmarshaler.
func (c *Count) UnmarshalTOML(v any) error {
	if s, ok := v.(string); ok {
		*c = Count(counter.ParseTarget(s))
		return nil
	}
	*c = Count(counter.SanitizeTarget(toFloat(v)))
	return nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Count) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = Count(counter.ParseTarget(s))
		return nil
	}
	*c = Count(counter.SanitizeTarget(jsonFloat(data)))
	return nil
}

// Duration is a time.Duration written as "2s" or "1500ms".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case int64:
		return float64(n)
	case float64:
		return n
	case string:
		f, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(n), "%"), 64)
		if err != nil {
			return 0
		}
		return f
	}
	return math.NaN()
}

func jsonFloat(data []byte) float64 {
	data = bytes.TrimSpace(data)
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return toFloat(s)
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return math.NaN()
	}
	return f
}
