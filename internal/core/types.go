package core

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JonMunkholm/gridclip/internal/fields"
	"github.com/JonMunkholm/gridclip/internal/transfer"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// TableInfo contains display information about a table.
type TableInfo struct {
	Key         string `json:"key" yaml:"key"`                                     // Unique identifier: "contacts"
	Group       string `json:"group" yaml:"group"`                                 // Navigation group: "CRM"
	Label       string `json:"label" yaml:"label"`                                 // Display name: "Contacts"
	Description string `json:"description,omitempty" yaml:"description,omitempty"` // Shown under the table title
}

// TableDefinition is a table's schema plus optional seed rows.
type TableDefinition struct {
	Info    TableInfo
	Columns []fields.ColumnConfig

	// SeedRows are loaded into an empty store at startup.
	SeedRows []transfer.Row
}

// Schema returns the columns keyed by column key.
func (t TableDefinition) Schema() transfer.Schema {
	s := make(transfer.Schema, len(t.Columns))
	for _, c := range t.Columns {
		s[c.Key] = c
	}
	return s
}

// Column returns the column with the given key.
func (t TableDefinition) Column(key string) (fields.ColumnConfig, bool) {
	for _, c := range t.Columns {
		if c.Key == key {
			return c, true
		}
	}
	return fields.ColumnConfig{}, false
}

// CellView describes one cell for display: its value, clipboard text and
// which transfer operations the column allows.
type CellView struct {
	TableKey   string           `json:"tableKey"`
	Path       string           `json:"path"`
	Column     string           `json:"column"`
	FieldName  string           `json:"fieldName"`
	Type       fields.FieldType `json:"type"`
	Value      any              `json:"value"`
	Text       string           `json:"text"`
	RowFound   bool             `json:"rowFound"`
	Copyable   bool             `json:"copyable"`
	Pasteable  bool             `json:"pasteable"`
	CutDeletes bool             `json:"cutDeletes"`
}

// TransferRequest is one copy, cut or paste against a stored table.
type TransferRequest struct {
	TableKey  string
	Op        transfer.Op
	Selection transfer.SelectedCell

	// Clipboard is read by paste and written by copy and cut.
	Clipboard transfer.Clipboard
}

// TransferResult is the outcome of a TransferRequest that reached the
// controller. A rejected transfer has OK false and Err set.
type TransferResult struct {
	OK       bool               `json:"ok"`
	Text     string             `json:"text"` // written by copy and cut, read by paste
	Messages []transfer.Message `json:"messages"`
	Err      error              `json:"-"`
	Cell     CellView           `json:"cell"`
}
