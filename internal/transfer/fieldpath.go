package transfer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrFieldPath is returned when a write would have to replace a value that
// is not an object or list to reach the field.
var ErrFieldPath = errors.New("field path blocked")

// splitFieldName resolves a field name to path segments. Reads and writes
// share it: a top-level key equal to the whole name wins ("address.city"),
// otherwise the name is split on dots and walked through maps, with numeric
// segments indexing into lists ("tags.0").
func splitFieldName(data map[string]any, fieldName string) []string {
	if _, ok := data[fieldName]; ok || !strings.Contains(fieldName, ".") {
		return []string{fieldName}
	}
	return strings.Split(fieldName, ".")
}

// ValueAt looks up a field by name in row data.
func ValueAt(data map[string]any, fieldName string) (any, bool) {
	if data == nil || fieldName == "" {
		return nil, false
	}
	var cur any = data
	for _, seg := range splitFieldName(data, fieldName) {
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[seg]
			if !ok {
				return nil, false
			}
			cur = v
		case []any:
			i, ok := listIndex(node, seg)
			if !ok {
				return nil, false
			}
			cur = node[i]
		default:
			return nil, false
		}
	}
	return cur, true
}

// SetValue writes value at fieldName. Missing objects on the way are
// created. Existing lists are indexed, never replaced, and an index past
// the end of a list is an error. data is left unchanged on error.
func SetValue(data map[string]any, fieldName string, value any) error {
	if data == nil || fieldName == "" {
		return fmt.Errorf("%w: empty field name", ErrFieldPath)
	}
	_, err := setIn(data, splitFieldName(data, fieldName), value, fieldName)
	return err
}

func setIn(node any, segs []string, value any, fieldName string) (any, error) {
	seg := segs[0]
	switch n := node.(type) {
	case map[string]any:
		if len(segs) == 1 {
			n[seg] = value
			return n, nil
		}
		child, ok := n[seg]
		if !ok || child == nil {
			child = map[string]any{}
		}
		updated, err := setIn(child, segs[1:], value, fieldName)
		if err != nil {
			return nil, err
		}
		n[seg] = updated
		return n, nil
	case []any:
		i, ok := listIndex(n, seg)
		if !ok {
			return nil, fmt.Errorf("%w: %s: no list element %q", ErrFieldPath, fieldName, seg)
		}
		if len(segs) == 1 {
			n[i] = value
			return n, nil
		}
		updated, err := setIn(n[i], segs[1:], value, fieldName)
		if err != nil {
			return nil, err
		}
		n[i] = updated
		return n, nil
	default:
		return nil, fmt.Errorf("%w: %s: %q is not an object", ErrFieldPath, fieldName, seg)
	}
}

// DeleteValue removes the field at fieldName and reports whether anything
// was removed. Deleting a list element shortens the list.
func DeleteValue(data map[string]any, fieldName string) bool {
	if data == nil || fieldName == "" {
		return false
	}
	_, removed := deleteIn(data, splitFieldName(data, fieldName))
	return removed
}

func deleteIn(node any, segs []string) (any, bool) {
	seg := segs[0]
	switch n := node.(type) {
	case map[string]any:
		child, ok := n[seg]
		if !ok {
			return n, false
		}
		if len(segs) == 1 {
			delete(n, seg)
			return n, true
		}
		updated, removed := deleteIn(child, segs[1:])
		if removed {
			n[seg] = updated
		}
		return n, removed
	case []any:
		i, ok := listIndex(n, seg)
		if !ok {
			return n, false
		}
		if len(segs) == 1 {
			return append(n[:i:i], n[i+1:]...), true
		}
		updated, removed := deleteIn(n[i], segs[1:])
		if removed {
			n[i] = updated
		}
		return n, removed
	}
	return node, false
}

func listIndex(list []any, seg string) (int, bool) {
	i, err := strconv.Atoi(seg)
	if err != nil || i < 0 || i >= len(list) {
		return 0, false
	}
	return i, true
}
