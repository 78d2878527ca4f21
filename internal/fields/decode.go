package fields

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrNotANumber is returned when number text is empty, malformed, or
	// not finite.
	ErrNotANumber = errors.New("not a finite number")

	// ErrUnknownFieldType is returned when decoding for a type with no registry row.
	ErrUnknownFieldType = errors.New("unknown field type")
)

// ParseError reports pasted text that does not parse as the column's data type.
type ParseError struct {
	Type     FieldType
	DataType DataType
	Text     string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q as %s: %v", e.Text, e.DataType, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Decode parses clipboard text into a value for the column.
//
// Decoding runs in two stages. ParseText converts the text according to
// the type's declared data type, then the type's adjust step (percentage
// scaling, rating and slider clamping) is applied. Clamping never fails.
func (c *Codec) Decode(text string, col ColumnConfig) (any, error) {
	spec, ok := c.registry.Lookup(col.Type)
	if !ok {
		return nil, &ParseError{Type: col.Type, Text: text, Err: ErrUnknownFieldType}
	}
	parsed, err := ParseText(text, spec.DataType)
	if err != nil {
		return nil, &ParseError{Type: col.Type, DataType: spec.DataType, Text: text, Err: err}
	}
	if spec.Adjust != nil {
		parsed = spec.Adjust(parsed, col)
	}
	return parsed, nil
}

// ParseText is the first decode stage. Numbers become float64, strings are
// kept verbatim, and every other data type is parsed as JSON.
func ParseText(text string, dt DataType) (any, error) {
	switch dt {
	case DataNumber:
		return parseNumber(text)
	case DataString:
		return text, nil
	}

	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, err
	}
	return v, nil
}

func parseNumber(text string) (float64, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0, ErrNotANumber
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, ErrNotANumber
	}
	return f, nil
}
