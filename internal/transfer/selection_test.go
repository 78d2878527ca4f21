package transfer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/JonMunkholm/gridclip/internal/fields"
)

func TestResolveSelection(t *testing.T) {
	schema := Schema{
		"name": {Key: "name", FieldName: "name", Type: fields.ShortText},
		"city": {Key: "city", FieldName: "address.city", Type: fields.ShortText},
	}
	rows := []Row{
		{Path: "t/1", Data: map[string]any{"name": "first"}},
		{Path: "t/2", Data: map[string]any{"name": "second", "address": map[string]any{"city": "Oslo"}}},
	}

	tests := []struct {
		name       string
		sel        *SelectedCell
		wantValue  any
		wantColumn bool
		wantRow    bool
	}{
		{"nil selection", nil, nil, false, false},
		{"unknown column", &SelectedCell{Path: "t/1", ColumnKey: "nope"}, nil, false, false},
		{"match by path", &SelectedCell{Path: "t/2", ColumnKey: "name"}, "second", true, true},
		{"nested field", &SelectedCell{Path: "t/2", ColumnKey: "city"}, "Oslo", true, true},
		{"missing nested field", &SelectedCell{Path: "t/1", ColumnKey: "city"}, nil, true, true},
		{"missing row", &SelectedCell{Path: "t/9", ColumnKey: "name"}, nil, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveSelection(tt.sel, schema, rows)
			assert.Equal(t, tt.wantValue, got.Value)
			assert.Equal(t, tt.wantColumn, got.HasColumn)
			assert.Equal(t, tt.wantRow, got.HasRow)
		})
	}
}

func TestValueAt(t *testing.T) {
	data := map[string]any{
		"a.b":  "literal",
		"a":    map[string]any{"b": "nested", "list": []any{"x", map[string]any{"y": 2.0}}},
		"flat": 1.0,
	}

	tests := []struct {
		field  string
		want   any
		wantOK bool
	}{
		{"flat", 1.0, true},
		{"a.b", "literal", true},
		{"a.list.0", "x", true},
		{"a.list.1.y", 2.0, true},
		{"a.list.5", nil, false},
		{"a.missing", nil, false},
		{"flat.deeper", nil, false},
		{"", nil, false},
	}
	for _, tt := range tests {
		got, ok := ValueAt(data, tt.field)
		if ok != tt.wantOK || !assert.ObjectsAreEqual(tt.want, got) {
			t.Errorf("ValueAt(%q) = %v, %v; want %v, %v", tt.field, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		err  *Error
		want string
	}{
		{&Error{Op: OpCopy, Kind: KindCapabilityDenied, FieldType: fields.SubTable}, "subTable field cannot be copied"},
		{&Error{Op: OpCut, Kind: KindCapabilityDenied, FieldType: fields.Action}, "action field cannot be copied"},
		{&Error{Op: OpPaste, Kind: KindCapabilityDenied, FieldType: fields.Date}, "date field does not support paste functionality"},
		{&Error{Op: OpPaste, Kind: KindParse, FieldType: fields.JSON}, "json field does not support the data type being pasted"},
		{&Error{Op: OpPaste, Kind: KindClipboardPermissionDenied}, "Read clipboard permission denied."},
		{&Error{Op: OpCopy, Kind: KindNoSelection}, "No cell selected"},
	}
	for _, tt := range tests {
		if got := tt.err.Message(); got != tt.want {
			t.Errorf("Message() = %q, want %q", got, tt.want)
		}
	}

	assert.Equal(t, "ok", Outcome(nil))
	assert.Equal(t, "parse", Outcome(&Error{Kind: KindParse}))
	assert.Equal(t, "error", Outcome(assert.AnError))
}
