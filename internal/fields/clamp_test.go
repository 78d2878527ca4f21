package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr(f float64) *float64 { return &f }

func TestClamp(t *testing.T) {
	tests := []struct {
		name     string
		v        float64
		min, max *float64
		want     float64
	}{
		{"in range", 5, ptr(0), ptr(10), 5},
		{"below min", -3, ptr(0), ptr(10), 0},
		{"above max", 15, ptr(0), ptr(10), 10},
		{"at min", 0, ptr(0), ptr(10), 0},
		{"at max", 10, ptr(0), ptr(10), 10},
		{"open min", -100, nil, ptr(10), -100},
		{"open max", 100, ptr(0), nil, 100},
		{"unbounded", 1e9, nil, nil, 1e9},
		{"inverted range", 5, ptr(10), ptr(0), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clamp(tt.v, tt.min, tt.max))
		})
	}
}

func TestClamp_IdempotentAndSaturating(t *testing.T) {
	b := Bounds{Min: ptr(-2), Max: ptr(7)}
	for v := -20.0; v <= 20; v += 0.5 {
		once := b.Clamp(v)
		assert.Equal(t, once, b.Clamp(once), "clamp(%v) not idempotent", v)
		assert.GreaterOrEqual(t, once, -2.0)
		assert.LessOrEqual(t, once, 7.0)
		if v >= -2 && v <= 7 {
			assert.Equal(t, v, once)
		}
	}
}

func TestBoundsFromConfig(t *testing.T) {
	s := SliderBounds(col(Slider, map[string]any{"min": int64(1), "max": "9.5"}))
	assert.Equal(t, 1.0, *s.Min)
	assert.Equal(t, 9.5, *s.Max)

	s = SliderBounds(col(Slider, map[string]any{"min": "low"}))
	assert.Nil(t, s.Min)
	assert.Nil(t, s.Max)

	r := RatingBounds(col(Rating, nil))
	assert.Equal(t, 0.0, *r.Min)
	assert.Equal(t, float64(DefaultRatingMax), *r.Max)

	r = RatingBounds(col(Rating, map[string]any{"max": 3}))
	assert.Equal(t, 3.0, *r.Max)
}
