package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/gridclip/internal/transfer"
)

func TestMemoryStore_PutRowAndRows(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.PutRow(ctx, "contacts", transfer.Row{Path: "r1", Data: map[string]any{"name": "Ada"}}))
	require.NoError(t, store.PutRow(ctx, "contacts", transfer.Row{Path: "r2", Data: map[string]any{"name": "Grace"}}))
	require.NoError(t, store.PutRow(ctx, "contacts", transfer.Row{Path: "r1", Data: map[string]any{"name": "Ada L."}}))

	rows, err := store.Rows(ctx, "contacts")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "r1", rows[0].Path, "replacing a row keeps its position")
	assert.Equal(t, "Ada L.", rows[0].Data["name"])
	assert.Equal(t, "r2", rows[1].Path)

	n, err := store.Count(ctx, "contacts")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = store.Count(ctx, "missing")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMemoryStore_RowsAreCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.PutRow(ctx, "t", transfer.Row{Path: "r1", Data: map[string]any{
		"meta": map[string]any{"tags": []any{"a"}},
	}}))

	rows, err := store.Rows(ctx, "t")
	require.NoError(t, err)
	rows[0].Data["meta"].(map[string]any)["tags"].([]any)[0] = "changed"

	rows, err = store.Rows(ctx, "t")
	require.NoError(t, err)
	assert.Equal(t, "a", rows[0].Data["meta"].(map[string]any)["tags"].([]any)[0])
}

func TestMemoryStore_UpdateField(t *testing.T) {
	tests := []struct {
		name   string
		data   map[string]any
		update transfer.FieldUpdate
		want   map[string]any
	}{
		{
			name:   "set top-level field",
			data:   map[string]any{"a": 1},
			update: transfer.FieldUpdate{Path: "r1", FieldName: "b", Value: "x"},
			want:   map[string]any{"a": 1, "b": "x"},
		},
		{
			name:   "overwrite field",
			data:   map[string]any{"a": 1},
			update: transfer.FieldUpdate{Path: "r1", FieldName: "a", Value: 2.0},
			want:   map[string]any{"a": 2.0},
		},
		{
			name:   "set nested field creates parents",
			data:   map[string]any{},
			update: transfer.FieldUpdate{Path: "r1", FieldName: "stats.score", Value: 4.0},
			want:   map[string]any{"stats": map[string]any{"score": 4.0}},
		},
		{
			name:   "delete field",
			data:   map[string]any{"a": 1, "b": 2},
			update: transfer.FieldUpdate{Path: "r1", FieldName: "a", DeleteField: true},
			want:   map[string]any{"b": 2},
		},
		{
			name:   "delete nested field",
			data:   map[string]any{"stats": map[string]any{"score": 4.0, "views": 9}},
			update: transfer.FieldUpdate{Path: "r1", FieldName: "stats.score", DeleteField: true},
			want:   map[string]any{"stats": map[string]any{"views": 9}},
		},
		{
			name:   "delete under missing parent is a no-op",
			data:   map[string]any{"a": 1},
			update: transfer.FieldUpdate{Path: "r1", FieldName: "stats.score", DeleteField: true},
			want:   map[string]any{"a": 1},
		},
		{
			name:   "set list element keeps the list",
			data:   map[string]any{"tags": []any{"a", "b"}},
			update: transfer.FieldUpdate{Path: "r1", FieldName: "tags.0", Value: "z"},
			want:   map[string]any{"tags": []any{"z", "b"}},
		},
		{
			name:   "delete list element",
			data:   map[string]any{"tags": []any{"a", "b"}},
			update: transfer.FieldUpdate{Path: "r1", FieldName: "tags.0", DeleteField: true},
			want:   map[string]any{"tags": []any{"b"}},
		},
		{
			name:   "set exact dotted key",
			data:   map[string]any{"address.city": "Oslo"},
			update: transfer.FieldUpdate{Path: "r1", FieldName: "address.city", Value: "Bergen"},
			want:   map[string]any{"address.city": "Bergen"},
		},
		{
			name:   "delete exact dotted key",
			data:   map[string]any{"address.city": "Oslo", "name": "Ada"},
			update: transfer.FieldUpdate{Path: "r1", FieldName: "address.city", DeleteField: true},
			want:   map[string]any{"name": "Ada"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := NewMemoryStore()
			require.NoError(t, store.PutRow(ctx, "t", transfer.Row{Path: "r1", Data: tt.data}))

			require.NoError(t, store.UpdateField(ctx, "t", tt.update))

			rows, err := store.Rows(ctx, "t")
			require.NoError(t, err)
			assert.Equal(t, tt.want, rows[0].Data)
		})
	}
}

func TestMemoryStore_UpdateBlockedPath(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.PutRow(ctx, "t", transfer.Row{Path: "r1", Data: map[string]any{
		"score": 3.0,
		"tags":  []any{"a", "b"},
	}}))

	tests := []struct {
		name  string
		field string
	}{
		{"scalar parent", "score.value"},
		{"index past end", "tags.2"},
		{"named segment on list", "tags.first"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.UpdateField(ctx, "t", transfer.FieldUpdate{Path: "r1", FieldName: tt.field, Value: "z"})
			assert.ErrorIs(t, err, transfer.ErrFieldPath)
		})
	}

	rows, err := store.Rows(ctx, "t")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"score": 3.0, "tags": []any{"a", "b"}}, rows[0].Data, "row unchanged")
}

func TestMemoryStore_UpdateMissingRow(t *testing.T) {
	store := NewMemoryStore()
	err := store.UpdateField(context.Background(), "t", transfer.FieldUpdate{Path: "nope", FieldName: "a", Value: 1})
	assert.ErrorIs(t, err, ErrRowNotFound)
}

func TestMemoryStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := NewMemoryStore()
	_, err := store.Rows(ctx, "t")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, store.PutRow(ctx, "t", transfer.Row{Path: "r1"}), context.Canceled)
}

func TestSeedRows(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.PutRow(ctx, "existing", transfer.Row{Path: "keep", Data: map[string]any{}}))

	defs := []TableDefinition{
		{Info: TableInfo{Key: "fresh"}, SeedRows: []transfer.Row{
			{Path: "r1", Data: map[string]any{"a": 1}},
			{Path: "r2", Data: map[string]any{"a": 2}},
		}},
		{Info: TableInfo{Key: "existing"}, SeedRows: []transfer.Row{
			{Path: "r1", Data: map[string]any{"a": 1}},
		}},
		{Info: TableInfo{Key: "noseed"}},
	}

	n, err := SeedRows(ctx, store, defs)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	count, _ := store.Count(ctx, "existing")
	assert.Equal(t, 1, count, "non-empty tables are not seeded")

	n, err = SeedRows(ctx, store, defs)
	require.NoError(t, err)
	assert.Zero(t, n, "seeding twice adds nothing")
}
