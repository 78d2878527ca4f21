package core

import (
	"context"
	"time"

	"github.com/JonMunkholm/gridclip/internal/transfer"
)

// auditWriteTimeout bounds the audit write that follows a transfer.
const auditWriteTimeout = 5 * time.Second

// recordTransfer writes the audit entry for a finished transfer. Audit
// failures are logged by the audit service and do not fail the transfer.
// The write outlives the transfer's own deadline so timed-out transfers
// are still recorded.
func (s *Service) recordTransfer(ctx context.Context, req TransferRequest, cell transfer.ResolvedCell, text string, err error) {
	if s.audit == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditWriteTimeout)
	defer cancel()

	// The clipboard text is only meaningful when the operation reached it.
	if err != nil && transfer.KindOf(err) != transfer.KindStore {
		text = ""
	}
	_, _ = s.audit.LogTransfer(ctx, TransferAuditEntry{
		TableKey:  req.TableKey,
		Op:        req.Op,
		Cell:      cell,
		ValueText: text,
		Err:       err,
	})
}

// History returns recent transfers on a table, newest first. An empty
// tableKey lists every table.
func (s *Service) History(ctx context.Context, tableKey string, limit int) ([]AuditEntry, error) {
	if tableKey != "" {
		if _, err := s.Table(tableKey); err != nil {
			return nil, err
		}
	}
	return s.audit.List(ctx, AuditLogFilter{TableKey: tableKey, Limit: limit})
}
