package core

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/gridclip/internal/transfer"
)

// AuditService records transfer outcomes. Audit failures are logged and
// never fail the transfer itself.
type AuditService struct {
	writer AuditWriter
	logger *slog.Logger
	now    func() time.Time
}

// NewAuditService creates an audit service. A nil writer disables auditing.
func NewAuditService(writer AuditWriter, logger *slog.Logger) *AuditService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditService{writer: writer, logger: logger, now: time.Now}
}

// TransferAuditEntry describes one finished transfer.
type TransferAuditEntry struct {
	TableKey  string
	Op        transfer.Op
	Cell      transfer.ResolvedCell
	ValueText string
	Err       error
}

// LogTransfer records a transfer, taking the client IP, user agent and
// clipboard session from ctx.
func (a *AuditService) LogTransfer(ctx context.Context, entry TransferAuditEntry) (*AuditEntry, error) {
	if a == nil || a.writer == nil {
		return nil, nil
	}

	action := actionForOp(entry.Op)
	outcome := transfer.Outcome(entry.Err)
	e := AuditEntry{
		ID:        uuid.NewString(),
		Action:    action,
		Severity:  determineSeverity(action, outcome),
		TableKey:  entry.TableKey,
		RowPath:   entry.Cell.Selection.Path,
		ColumnKey: entry.Cell.Selection.ColumnKey,
		FieldType: string(entry.Cell.Column.Type),
		Outcome:   outcome,
		ValueText: entry.ValueText,
		SessionID: GetSessionIDFromContext(ctx),
		IPAddress: GetIPAddressFromContext(ctx),
		UserAgent: GetUserAgentFromContext(ctx),
		CreatedAt: a.now().UTC(),
	}
	if entry.Err != nil {
		e.Reason = entry.Err.Error()
	}

	if err := a.writer.WriteAudit(ctx, e); err != nil {
		a.logger.Error("failed to write audit entry",
			"action", e.Action,
			"table", e.TableKey,
			"error", err,
		)
		return nil, err
	}
	return &e, nil
}

// List returns audit entries matching filter, newest first.
func (a *AuditService) List(ctx context.Context, filter AuditLogFilter) ([]AuditEntry, error) {
	if a == nil || a.writer == nil {
		return nil, nil
	}
	return a.writer.ListAudit(ctx, filter)
}
