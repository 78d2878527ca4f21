package fields

import (
	"encoding/json"
	"strconv"
	"strings"
)

// DefaultRatingMax applies when a rating column has no max or a max of 0.
const DefaultRatingMax = 5

// Bounds is an optional inclusive range. A nil end is unbounded.
type Bounds struct {
	Min *float64
	Max *float64
}

// Clamp forces v into b. The lower bound is applied first, so a
// misconfigured range with Min > Max yields Max.
func (b Bounds) Clamp(v float64) float64 {
	if b.Min != nil && v < *b.Min {
		v = *b.Min
	}
	if b.Max != nil && v > *b.Max {
		v = *b.Max
	}
	return v
}

// Clamp saturates v to [min, max]; nil bounds are open.
func Clamp(v float64, min, max *float64) float64 {
	return Bounds{Min: min, Max: max}.Clamp(v)
}

// SliderBounds reads config.min and config.max. Either may be absent.
func SliderBounds(col ColumnConfig) Bounds {
	var b Bounds
	if lo, ok := configFloat(col.Config, "min"); ok {
		b.Min = &lo
	}
	if hi, ok := configFloat(col.Config, "max"); ok {
		b.Max = &hi
	}
	return b
}

// RatingBounds is [0, config.max], with DefaultRatingMax when max is
// absent or zero.
func RatingBounds(col ColumnConfig) Bounds {
	lo := 0.0
	hi, ok := configFloat(col.Config, "max")
	if !ok || hi == 0 {
		hi = DefaultRatingMax
	}
	return Bounds{Min: &lo, Max: &hi}
}

func adjustSlider(value any, col ColumnConfig) any {
	f, ok := value.(float64)
	if !ok {
		return value
	}
	return SliderBounds(col).Clamp(f)
}

func adjustRating(value any, col ColumnConfig) any {
	f, ok := value.(float64)
	if !ok {
		return value
	}
	return RatingBounds(col).Clamp(f)
}

func adjustPercentage(value any, _ ColumnConfig) any {
	f, ok := value.(float64)
	if !ok {
		return value
	}
	return f / 100
}

func configString(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func configFloat(m map[string]any, key string) (float64, bool) {
	raw, ok := m[key]
	if !ok {
		return 0, false
	}
	return toFloat(raw)
}

// toFloat accepts the numeric shapes JSON, YAML and pgx decoders produce.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}
