package fields

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Default date patterns, date-fns style.
const (
	DefaultDateFormat     = "yyyy-MM-dd"
	DefaultDateTimeFormat = "yyyy-MM-dd HH:mm"
)

// EncodeError reports a stored value whose shape does not match its field type.
type EncodeError struct {
	Type FieldType
	Err  error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode %s value: %v", e.Type, e.Err)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}

// Codec converts between stored cell values and clipboard text.
// A Codec is safe for concurrent use.
type Codec struct {
	registry *Registry
	loc      *time.Location
}

// NewCodec creates a codec. A nil registry means DefaultRegistry and a nil
// location means UTC. Dates are formatted in loc.
func NewCodec(registry *Registry, loc *time.Location) *Codec {
	if registry == nil {
		registry = DefaultRegistry
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Codec{registry: registry, loc: loc}
}

// Registry returns the registry the codec dispatches on.
func (c *Codec) Registry() *Registry {
	return c.registry
}

// Location returns the time zone dates are formatted in.
func (c *Codec) Location() *time.Location {
	return c.loc
}

var defaultCodec = NewCodec(nil, nil)

// Encode renders value as clipboard text using the default codec.
func Encode(value any, col ColumnConfig) (string, error) {
	return defaultCodec.Encode(value, col)
}

// Decode parses clipboard text using the default codec.
func Decode(text string, col ColumnConfig) (any, error) {
	return defaultCodec.Decode(text, col)
}

// IsEmpty reports whether a cell value counts as missing: nil, a nil
// pointer/slice/map, or the empty string.
func IsEmpty(value any) bool {
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return s == ""
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// Encode renders value as clipboard text for the column's field type.
// Empty values encode to "". Date formatting failures also yield "" with a
// nil error; only structurally broken values return an *EncodeError.
func (c *Codec) Encode(value any, col ColumnConfig) (string, error) {
	if IsEmpty(value) {
		return "", nil
	}
	spec, ok := c.registry.Lookup(col.Type)
	if !ok || spec.Encode == nil {
		return textOf(value), nil
	}
	return spec.Encode(c, value, col)
}

func encodePercentage(_ *Codec, value any, col ColumnConfig) (string, error) {
	f, ok := toFloat(value)
	if !ok {
		return "", &EncodeError{Type: col.Type, Err: fmt.Errorf("%v is not a number", value)}
	}
	return formatNumber(roundSignificant(f * 100)), nil
}

func encodeJSON(_ *Codec, value any, col ColumnConfig) (string, error) {
	b, err := json.Marshal(value)
	if err != nil {
		return "", &EncodeError{Type: col.Type, Err: err}
	}
	return string(b), nil
}

func encodeDate(c *Codec, value any, col ColumnConfig) (string, error) {
	return c.formatTemporal(value, col, DefaultDateFormat), nil
}

func encodeDateTime(c *Codec, value any, col ColumnConfig) (string, error) {
	return c.formatTemporal(value, col, DefaultDateTimeFormat), nil
}

// formatTemporal never fails: values without a time and bad patterns give "".
func (c *Codec) formatTemporal(value any, col ColumnConfig, fallback string) string {
	t, ok := TimeOf(value)
	if !ok {
		return ""
	}
	pattern := configString(col.Config, "format")
	if pattern == "" {
		pattern = fallback
	}
	s, err := FormatDate(t.In(c.loc), pattern)
	if err != nil {
		return ""
	}
	return s
}

func encodeDuration(_ *Codec, value any, col ColumnConfig) (string, error) {
	start, end, err := durationBounds(value)
	if err != nil {
		return "", &EncodeError{Type: col.Type, Err: err}
	}
	return DurationString(start, end), nil
}

func durationBounds(value any) (time.Time, time.Time, error) {
	var rawStart, rawEnd any
	switch v := value.(type) {
	case DurationValue:
		rawStart, rawEnd = v.Start, v.End
	case *DurationValue:
		rawStart, rawEnd = v.Start, v.End
	case map[string]any:
		rawStart, rawEnd = v["start"], v["end"]
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("unexpected duration value %T", value)
	}

	start, ok := TimeOf(rawStart)
	if !ok {
		return time.Time{}, time.Time{}, errors.New("duration start is not a timestamp")
	}
	end, ok := TimeOf(rawEnd)
	if !ok {
		return time.Time{}, time.Time{}, errors.New("duration end is not a timestamp")
	}
	return start, end, nil
}

func encodeAttachment(_ *Codec, value any, col ColumnConfig) (string, error) {
	switch v := value.(type) {
	case []Attachment:
		if len(v) == 0 {
			return "", nil
		}
		return v[0].DownloadURL, nil
	case []map[string]any:
		if len(v) == 0 {
			return "", nil
		}
		return configString(v[0], "downloadURL"), nil
	case []any:
		if len(v) == 0 {
			return "", nil
		}
		switch first := v[0].(type) {
		case map[string]any:
			return configString(first, "downloadURL"), nil
		case Attachment:
			return first.DownloadURL, nil
		}
		return "", &EncodeError{Type: col.Type, Err: fmt.Errorf("unexpected attachment %T", v[0])}
	}
	return "", &EncodeError{Type: col.Type, Err: fmt.Errorf("unexpected attachment list %T", value)}
}

func encodeAuditUser(_ *Codec, value any, _ ColumnConfig) (string, error) {
	switch v := value.(type) {
	case AuditUser:
		return v.DisplayName, nil
	case *AuditUser:
		return v.DisplayName, nil
	case map[string]any:
		return configString(v, "displayName"), nil
	}
	return "", nil
}

// TimeOf extracts a time from the temporal shapes a cell may hold.
func TimeOf(value any) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, true
	case *time.Time:
		if v == nil {
			return time.Time{}, false
		}
		return *v, true
	case Temporal:
		if IsEmpty(v) {
			return time.Time{}, false
		}
		return v.ToDate(), true
	case map[string]any:
		secs, ok := firstNumber(v, "seconds", "_seconds")
		if !ok {
			return time.Time{}, false
		}
		nanos, _ := firstNumber(v, "nanoseconds", "_nanoseconds")
		return time.Unix(int64(secs), int64(nanos)), true
	}
	return time.Time{}, false
}

func firstNumber(m map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		if raw, ok := m[k]; ok {
			if f, ok := toFloat(raw); ok {
				return f, true
			}
		}
	}
	return 0, false
}

// textOf renders a pass-through value the way a browser clipboard would
// stringify it.
func textOf(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return formatNumber(v)
	case float32:
		return formatNumber(float64(v))
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(v)
	case json.Number:
		return v.String()
	case []string:
		return strings.Join(v, ",")
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = textOf(item)
		}
		return strings.Join(parts, ",")
	}
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprint(value)
	}
	return string(b)
}

// formatNumber uses plain notation except for very large or very small
// magnitudes.
func formatNumber(f float64) string {
	a := math.Abs(f)
	if a != 0 && (a < 1e-6 || a >= 1e21) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// roundSignificant drops binary noise such as 0.07*100 = 7.000000000000001.
func roundSignificant(f float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(f, 'g', 15, 64), 64)
	if err != nil {
		return f
	}
	return r
}
