package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// PgAuditWriter stores audit entries in the transfer_audit_log table.
type PgAuditWriter struct {
	db DBTX
}

// NewPgAuditWriter creates a writer using db. Call Migrate first.
func NewPgAuditWriter(db DBTX) *PgAuditWriter {
	return &PgAuditWriter{db: db}
}

func (p *PgAuditWriter) WriteAudit(ctx context.Context, e AuditEntry) error {
	id, err := uuid.Parse(e.ID)
	if err != nil {
		return fmt.Errorf("audit id: %w", err)
	}
	_, err = p.db.Exec(ctx,
		`INSERT INTO transfer_audit_log
			(id, action, severity, table_key, row_path, column_key, field_type,
			 outcome, value_text, reason, session_id, ip_address, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		pgtype.UUID{Bytes: id, Valid: true},
		string(e.Action),
		string(e.Severity),
		e.TableKey,
		toPgText(e.RowPath),
		toPgText(e.ColumnKey),
		toPgText(e.FieldType),
		e.Outcome,
		toPgText(e.ValueText),
		toPgText(e.Reason),
		toPgText(e.SessionID),
		toPgText(e.IPAddress),
		toPgText(e.UserAgent),
		pgtype.Timestamptz{Time: e.CreatedAt, Valid: true},
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func (p *PgAuditWriter) ListAudit(ctx context.Context, filter AuditLogFilter) ([]AuditEntry, error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultAuditLimit
	}

	var (
		conds []string
		args  []any
	)
	if filter.TableKey != "" {
		args = append(args, filter.TableKey)
		conds = append(conds, fmt.Sprintf("table_key = $%d", len(args)))
	}
	if filter.Action != "" {
		args = append(args, string(filter.Action))
		conds = append(conds, fmt.Sprintf("action = $%d", len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, filter.Limit)

	query := fmt.Sprintf(`SELECT id, action, severity, table_key, row_path, column_key, field_type,
			outcome, value_text, reason, session_id, ip_address, user_agent, created_at
		FROM transfer_audit_log %s ORDER BY created_at DESC LIMIT $%d`, where, len(args))

	rows, err := p.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}
	defer rows.Close()

	var out []AuditEntry
	for rows.Next() {
		var (
			e                             AuditEntry
			id                            pgtype.UUID
			action, severity              string
			rowPath, columnKey, fieldType pgtype.Text
			valueText, reason, sessionID  pgtype.Text
			ip, ua                        pgtype.Text
			createdAt                     pgtype.Timestamptz
		)
		if err := rows.Scan(&id, &action, &severity, &e.TableKey, &rowPath, &columnKey, &fieldType,
			&e.Outcome, &valueText, &reason, &sessionID, &ip, &ua, &createdAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		e.ID = uuidToString(id)
		e.Action = AuditAction(action)
		e.Severity = AuditSeverity(severity)
		e.RowPath = rowPath.String
		e.ColumnKey = columnKey.String
		e.FieldType = fieldType.String
		e.ValueText = valueText.String
		e.Reason = reason.String
		e.SessionID = sessionID.String
		e.IPAddress = ip.String
		e.UserAgent = ua.String
		e.CreatedAt = createdAt.Time
		out = append(out, e)
	}
	return out, rows.Err()
}

func (p *PgAuditWriter) PruneAudit(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := p.db.Exec(ctx, `DELETE FROM transfer_audit_log WHERE created_at < $1`,
		pgtype.Timestamptz{Time: cutoff, Valid: true})
	if err != nil {
		return 0, fmt.Errorf("prune audit log: %w", err)
	}
	return tag.RowsAffected(), nil
}

func toPgText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

func uuidToString(u pgtype.UUID) string {
	if !u.Valid {
		return ""
	}
	return uuid.UUID(u.Bytes).String()
}
