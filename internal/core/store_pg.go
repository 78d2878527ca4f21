package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/JonMunkholm/gridclip/internal/transfer"
)

// rowsSchema creates the tables used by PgStore and PgAuditWriter.
const rowsSchema = `
CREATE TABLE IF NOT EXISTS grid_rows (
	table_key  TEXT        NOT NULL,
	path       TEXT        NOT NULL,
	position   BIGSERIAL,
	data       JSONB       NOT NULL DEFAULT '{}'::jsonb,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (table_key, path)
);

CREATE TABLE IF NOT EXISTS transfer_audit_log (
	id          UUID        PRIMARY KEY,
	action      TEXT        NOT NULL,
	severity    TEXT        NOT NULL,
	table_key   TEXT        NOT NULL,
	row_path    TEXT,
	column_key  TEXT,
	field_type  TEXT,
	outcome     TEXT        NOT NULL,
	value_text  TEXT,
	reason      TEXT,
	session_id  TEXT,
	ip_address  TEXT,
	user_agent  TEXT,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS transfer_audit_log_table_created
	ON transfer_audit_log (table_key, created_at DESC);
`

// Migrate creates the gridclip tables if they do not exist.
func Migrate(ctx context.Context, db DBTX) error {
	if _, err := db.Exec(ctx, rowsSchema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// TxDB is a DBTX that can start transactions, such as *pgxpool.Pool or
// pgx.Tx (which nests as a savepoint).
type TxDB interface {
	DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PgStore is a RowStore backed by a JSONB column in PostgreSQL.
type PgStore struct {
	db TxDB
}

// NewPgStore creates a store using db. Call Migrate first.
func NewPgStore(db TxDB) *PgStore {
	return &PgStore{db: db}
}

func (p *PgStore) Rows(ctx context.Context, tableKey string) ([]transfer.Row, error) {
	rows, err := p.db.Query(ctx,
		`SELECT path, data FROM grid_rows WHERE table_key = $1 ORDER BY position`,
		tableKey,
	)
	if err != nil {
		return nil, fmt.Errorf("query rows: %w", err)
	}
	defer rows.Close()

	var out []transfer.Row
	for rows.Next() {
		var (
			path string
			raw  []byte
		)
		if err := rows.Scan(&path, &raw); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		data := map[string]any{}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &data); err != nil {
				return nil, fmt.Errorf("decode row %s: %w", path, err)
			}
		}
		out = append(out, transfer.Row{Path: path, Data: data})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}

// UpdateField locks the row, applies the change with the same field
// resolution as MemoryStore and writes the document back.
func (p *PgStore) UpdateField(ctx context.Context, tableKey string, u transfer.FieldUpdate) error {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // No-op if already committed

	var raw []byte
	err = tx.QueryRow(ctx,
		`SELECT data FROM grid_rows WHERE table_key = $1 AND path = $2 FOR UPDATE`,
		tableKey, u.Path,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %s/%s", ErrRowNotFound, tableKey, u.Path)
	}
	if err != nil {
		return fmt.Errorf("lock row: %w", err)
	}

	data := map[string]any{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &data); err != nil {
			return fmt.Errorf("decode row %s: %w", u.Path, err)
		}
	}

	if u.DeleteField {
		if !transfer.DeleteValue(data, u.FieldName) {
			return nil
		}
	} else if err := transfer.SetValue(data, u.FieldName, u.Value); err != nil {
		return fmt.Errorf("%s/%s: %w", tableKey, u.Path, err)
	}

	updated, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode row: %w", err)
	}
	_, err = tx.Exec(ctx,
		`UPDATE grid_rows SET data = $3::jsonb, updated_at = now() WHERE table_key = $1 AND path = $2`,
		tableKey, u.Path, string(updated),
	)
	if err != nil {
		return fmt.Errorf("update field: %w", err)
	}
	return tx.Commit(ctx)
}

func (p *PgStore) PutRow(ctx context.Context, tableKey string, row transfer.Row) error {
	data := row.Data
	if data == nil {
		data = map[string]any{}
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode row: %w", err)
	}
	_, err = p.db.Exec(ctx,
		`INSERT INTO grid_rows (table_key, path, data) VALUES ($1, $2, $3::jsonb)
		ON CONFLICT (table_key, path) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
		tableKey, row.Path, string(raw),
	)
	if err != nil {
		return fmt.Errorf("put row: %w", err)
	}
	return nil
}

func (p *PgStore) Count(ctx context.Context, tableKey string) (int, error) {
	var n int
	err := p.db.QueryRow(ctx, `SELECT count(*) FROM grid_rows WHERE table_key = $1`, tableKey).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count rows: %w", err)
	}
	return n, nil
}
