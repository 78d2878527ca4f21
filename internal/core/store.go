package core

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/JonMunkholm/gridclip/internal/transfer"
)

var (
	// ErrTableNotFound is returned for table keys missing from the registry.
	ErrTableNotFound = errors.New("table not found")

	// ErrRowNotFound is returned when a field update targets a missing row.
	ErrRowNotFound = errors.New("row not found")
)

// RowStore holds table rows as JSON-like documents.
//
// Field names resolve as in transfer.ValueAt: an exact top-level key wins,
// otherwise dots address nested objects and list indexes. A write that
// would replace a non-object parent fails with transfer.ErrFieldPath.
// Updates are last-write-wins; no merge is attempted.
type RowStore interface {
	// Rows returns a table's rows in insertion order.
	Rows(ctx context.Context, tableKey string) ([]transfer.Row, error)

	// UpdateField sets or deletes one field of one row.
	UpdateField(ctx context.Context, tableKey string, u transfer.FieldUpdate) error

	// PutRow inserts a row or replaces the data of an existing one.
	PutRow(ctx context.Context, tableKey string, row transfer.Row) error

	// Count returns the number of rows in a table.
	Count(ctx context.Context, tableKey string) (int, error)
}

// tableUpdater binds a RowStore to one table for the transfer controller.
func tableUpdater(store RowStore, tableKey string) transfer.FieldUpdater {
	return transfer.FieldUpdaterFunc(func(ctx context.Context, u transfer.FieldUpdate) error {
		return store.UpdateField(ctx, tableKey, u)
	})
}

// SeedRows loads each definition's seed rows into tables that are empty.
func SeedRows(ctx context.Context, store RowStore, defs []TableDefinition) (int, error) {
	seeded := 0
	for _, def := range defs {
		if len(def.SeedRows) == 0 {
			continue
		}
		n, err := store.Count(ctx, def.Info.Key)
		if err != nil {
			return seeded, fmt.Errorf("count %s: %w", def.Info.Key, err)
		}
		if n > 0 {
			continue
		}
		for _, row := range def.SeedRows {
			if err := store.PutRow(ctx, def.Info.Key, row); err != nil {
				return seeded, fmt.Errorf("seed %s/%s: %w", def.Info.Key, row.Path, err)
			}
			seeded++
		}
	}
	return seeded, nil
}

// MemoryStore is a RowStore kept in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	tables map[string][]transfer.Row
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tables: make(map[string][]transfer.Row)}
}

func (m *MemoryStore) Rows(ctx context.Context, tableKey string) ([]transfer.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	rows := m.tables[tableKey]
	out := make([]transfer.Row, len(rows))
	for i, r := range rows {
		out[i] = transfer.Row{Path: r.Path, Data: cloneMap(r.Data)}
	}
	return out, nil
}

func (m *MemoryStore) UpdateField(ctx context.Context, tableKey string, u transfer.FieldUpdate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	rows := m.tables[tableKey]
	for i := range rows {
		if rows[i].Path != u.Path {
			continue
		}
		if rows[i].Data == nil {
			rows[i].Data = map[string]any{}
		}
		if u.DeleteField {
			transfer.DeleteValue(rows[i].Data, u.FieldName)
			return nil
		}
		if err := transfer.SetValue(rows[i].Data, u.FieldName, cloneValue(u.Value)); err != nil {
			return fmt.Errorf("%s/%s: %w", tableKey, u.Path, err)
		}
		return nil
	}
	return fmt.Errorf("%w: %s/%s", ErrRowNotFound, tableKey, u.Path)
}

func (m *MemoryStore) PutRow(ctx context.Context, tableKey string, row transfer.Row) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	row = transfer.Row{Path: row.Path, Data: cloneMap(row.Data)}
	rows := m.tables[tableKey]
	for i := range rows {
		if rows[i].Path == row.Path {
			rows[i] = row
			return nil
		}
	}
	m.tables[tableKey] = append(rows, row)
	return nil
}

func (m *MemoryStore) Count(ctx context.Context, tableKey string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tables[tableKey]), nil
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	}
	return v
}
