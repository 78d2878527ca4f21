package core

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/JonMunkholm/gridclip/internal/transfer"
)

// AuditAction represents the type of action being audited.
type AuditAction string

const (
	ActionCellCopy  AuditAction = "cell_copy"
	ActionCellCut   AuditAction = "cell_cut"
	ActionCellPaste AuditAction = "cell_paste"
)

// actionForOp maps a transfer op to its audit action.
func actionForOp(op transfer.Op) AuditAction {
	switch op {
	case transfer.OpCut:
		return ActionCellCut
	case transfer.OpPaste:
		return ActionCellPaste
	default:
		return ActionCellCopy
	}
}

// AuditSeverity represents the severity level of an audit entry.
type AuditSeverity string

const (
	SeverityLow    AuditSeverity = "low"
	SeverityMedium AuditSeverity = "medium"
	SeverityHigh   AuditSeverity = "high"
)

// AuditEntry represents a single audit log entry.
type AuditEntry struct {
	ID        string        `json:"id"`
	Action    AuditAction   `json:"action"`
	Severity  AuditSeverity `json:"severity"`
	TableKey  string        `json:"tableKey"`
	RowPath   string        `json:"rowPath,omitempty"`
	ColumnKey string        `json:"columnKey,omitempty"`
	FieldType string        `json:"fieldType,omitempty"`
	Outcome   string        `json:"outcome"`
	ValueText string        `json:"valueText,omitempty"`
	Reason    string        `json:"reason,omitempty"`
	SessionID string        `json:"sessionId,omitempty"`
	IPAddress string        `json:"ipAddress,omitempty"`
	UserAgent string        `json:"userAgent,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
}

// determineSeverity returns the appropriate severity for an action.
// Copies never change data; a cut or paste that went through did.
func determineSeverity(action AuditAction, outcome string) AuditSeverity {
	if action == ActionCellCopy || outcome != "ok" {
		return SeverityLow
	}
	if action == ActionCellCut {
		return SeverityHigh
	}
	return SeverityMedium
}

// AuditLogFilter contains filtering options for querying audit logs.
type AuditLogFilter struct {
	TableKey string
	Action   AuditAction
	Limit    int
}

// DefaultAuditLimit caps audit queries without an explicit limit.
const DefaultAuditLimit = 100

// AuditWriter persists audit entries.
type AuditWriter interface {
	WriteAudit(ctx context.Context, entry AuditEntry) error
	ListAudit(ctx context.Context, filter AuditLogFilter) ([]AuditEntry, error)

	// PruneAudit deletes entries created before cutoff and returns how many.
	PruneAudit(ctx context.Context, cutoff time.Time) (int64, error)
}

// MemoryAuditLog keeps the most recent entries in memory.
type MemoryAuditLog struct {
	mu      sync.RWMutex
	entries []AuditEntry
	max     int
}

// NewMemoryAuditLog keeps at most max entries; max <= 0 means 1000.
func NewMemoryAuditLog(max int) *MemoryAuditLog {
	if max <= 0 {
		max = 1000
	}
	return &MemoryAuditLog{max: max}
}

func (m *MemoryAuditLog) WriteAudit(_ context.Context, entry AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	if over := len(m.entries) - m.max; over > 0 {
		m.entries = append([]AuditEntry(nil), m.entries[over:]...)
	}
	return nil
}

// ListAudit returns matching entries, newest first.
func (m *MemoryAuditLog) ListAudit(_ context.Context, filter AuditLogFilter) ([]AuditEntry, error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultAuditLimit
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []AuditEntry
	for i := len(m.entries) - 1; i >= 0 && len(out) < filter.Limit; i-- {
		e := m.entries[i]
		if filter.TableKey != "" && e.TableKey != filter.TableKey {
			continue
		}
		if filter.Action != "" && e.Action != filter.Action {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryAuditLog) PruneAudit(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.entries[:0]
	for _, e := range m.entries {
		if !e.CreatedAt.Before(cutoff) {
			kept = append(kept, e)
		}
	}
	pruned := int64(len(m.entries) - len(kept))
	m.entries = kept
	return pruned, nil
}
