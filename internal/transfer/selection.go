package transfer

import (
	"github.com/JonMunkholm/gridclip/internal/fields"
)

// SelectedCell identifies the active cell: a row path plus a column key.
type SelectedCell struct {
	Path      string `json:"path"`
	ColumnKey string `json:"columnKey"`
}

// Schema maps column keys to column configs.
type Schema map[string]fields.ColumnConfig

// Row is one stored document. Path is its reference path, unique in a table.
type Row struct {
	Path string         `json:"path"`
	Data map[string]any `json:"data"`
}

// ResolvedCell is the controller's view of the selection: the column it
// points at and the current value of that column in the selected row.
type ResolvedCell struct {
	Selection SelectedCell
	Column    fields.ColumnConfig
	Value     any

	// HasColumn is false when nothing is selected or the column key is not
	// in the schema. Operations on such a cell fail with KindNoSelection.
	HasColumn bool
	// HasRow is false when no row matches the selection path. The value is
	// then nil.
	HasRow bool
}

// ResolveSelection binds a selection to its column and current value.
// Rows are scanned in order and matched by path. A field name containing
// dots addresses nested maps and slices, unless the row holds that exact key.
func ResolveSelection(sel *SelectedCell, schema Schema, rows []Row) ResolvedCell {
	if sel == nil {
		return ResolvedCell{}
	}
	r := ResolvedCell{Selection: *sel}

	col, ok := schema[sel.ColumnKey]
	if !ok {
		return r
	}
	r.Column = col
	r.HasColumn = true

	for i := range rows {
		if rows[i].Path == sel.Path {
			r.HasRow = true
			r.Value, _ = ValueAt(rows[i].Data, col.FieldName)
			break
		}
	}
	return r
}
