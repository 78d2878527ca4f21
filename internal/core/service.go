package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/JonMunkholm/gridclip/internal/fields"
	"github.com/JonMunkholm/gridclip/internal/transfer"
)

// DefaultTransferTimeout bounds a single transfer including store access.
const DefaultTransferTimeout = 10 * time.Second

var (
	// ErrColumnNotFound is returned by Cell for column keys missing from a table.
	ErrColumnNotFound = errors.New("column not found")

	// ErrUnknownOp is returned for transfer ops other than copy, cut and paste.
	ErrUnknownOp = errors.New("unknown transfer op")
)

// TransferMetrics receives per-transfer observations and rejections that
// never reached the controller.
type TransferMetrics interface {
	transfer.Observer
	Rejected(reason string)
}

// ServiceConfig holds the collaborators of a Service. Store is required.
type ServiceConfig struct {
	Store   RowStore
	Audit   *AuditService
	Codec   *fields.Codec
	Limiter *TransferLimiter
	Metrics TransferMetrics
	Timeout time.Duration
	Logger  *slog.Logger
}

// Service runs clipboard transfers against registered tables.
type Service struct {
	store   RowStore
	audit   *AuditService
	codec   *fields.Codec
	limiter *TransferLimiter
	metrics TransferMetrics
	timeout time.Duration
	logger  *slog.Logger
}

// NewService creates a new Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Store == nil {
		return nil, errors.New("service: store is required")
	}
	s := &Service{
		store:   cfg.Store,
		audit:   cfg.Audit,
		codec:   cfg.Codec,
		limiter: cfg.Limiter,
		metrics: cfg.Metrics,
		timeout: cfg.Timeout,
		logger:  cfg.Logger,
	}
	if s.codec == nil {
		s.codec = fields.NewCodec(nil, nil)
	}
	if s.limiter == nil {
		s.limiter = NewTransferLimiter(0, 0)
	}
	if s.timeout <= 0 {
		s.timeout = DefaultTransferTimeout
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s, nil
}

// ListTables returns information about all registered tables.
func (s *Service) ListTables() []TableInfo {
	defs := All()
	infos := make([]TableInfo, len(defs))
	for i, def := range defs {
		infos[i] = def.Info
	}
	return infos
}

// ListTablesByGroup returns tables organized by group.
func (s *Service) ListTablesByGroup() map[string][]TableInfo {
	result := make(map[string][]TableInfo)
	for _, group := range Groups() {
		for _, def := range ByGroup(group) {
			result[group] = append(result[group], def.Info)
		}
	}
	return result
}

// Table returns a registered table definition.
func (s *Service) Table(tableKey string) (TableDefinition, error) {
	def, ok := Get(tableKey)
	if !ok {
		return TableDefinition{}, fmt.Errorf("%w: %s", ErrTableNotFound, tableKey)
	}
	return def, nil
}

// Rows returns a table's stored rows.
func (s *Service) Rows(ctx context.Context, tableKey string) ([]transfer.Row, error) {
	if _, err := s.Table(tableKey); err != nil {
		return nil, err
	}
	return s.store.Rows(ctx, tableKey)
}

// Limiter returns the transfer limiter, for status and shutdown draining.
func (s *Service) Limiter() *TransferLimiter {
	return s.limiter
}

// Codec returns the codec used for every transfer.
func (s *Service) Codec() *fields.Codec {
	return s.codec
}

// Cell resolves one cell and reports its value, clipboard text and which
// operations its column allows.
func (s *Service) Cell(ctx context.Context, tableKey string, sel transfer.SelectedCell) (*CellView, error) {
	def, err := s.Table(tableKey)
	if err != nil {
		return nil, err
	}
	if _, ok := def.Column(sel.ColumnKey); !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrColumnNotFound, tableKey, sel.ColumnKey)
	}
	rows, err := s.store.Rows(ctx, tableKey)
	if err != nil {
		return nil, fmt.Errorf("load rows: %w", err)
	}
	view := s.cellView(tableKey, transfer.ResolveSelection(&sel, def.Schema(), rows))
	return &view, nil
}

// Transfer runs one copy, cut or paste. Failures before the controller runs
// (unknown table or op, a full limiter, an unreadable store) are returned as
// errors. Everything after that is reported in the result, with the
// controller's notifications in Messages.
func (s *Service) Transfer(ctx context.Context, req TransferRequest) (*TransferResult, error) {
	def, err := s.Table(req.TableKey)
	if err != nil {
		s.reject("table_not_found")
		return nil, err
	}
	switch req.Op {
	case transfer.OpCopy, transfer.OpCut, transfer.OpPaste:
	default:
		s.reject("unknown_op")
		return nil, fmt.Errorf("%w: %q", ErrUnknownOp, req.Op)
	}
	if req.Clipboard == nil {
		return nil, errors.New("transfer: clipboard is required")
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		if errors.Is(err, ErrTooManyTransfers) {
			s.reject("too_many_transfers")
		}
		return nil, err
	}
	defer s.limiter.Release()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.store.Rows(ctx, req.TableKey)
	if err != nil {
		s.reject("store_unavailable")
		return nil, fmt.Errorf("load rows: %w", err)
	}

	var (
		log transfer.MessageLog
		cb  = &recordingClipboard{inner: req.Clipboard}
	)
	ctrl := transfer.NewController(transfer.Options{
		Clipboard: cb,
		Updater:   tableUpdater(s.store, req.TableKey),
		Codec:     s.codec,
		Reporter:  &log,
		Observer:  s.metrics,
		Logger:    s.logger.With("table", req.TableKey),
	})
	schema := def.Schema()
	cell := ctrl.Select(&req.Selection, schema, rows)

	switch req.Op {
	case transfer.OpCopy:
		err = ctrl.Copy(ctx)
	case transfer.OpCut:
		err = ctrl.Cut(ctx)
	case transfer.OpPaste:
		err = ctrl.Paste(ctx)
	}

	text := cb.Text()
	s.recordTransfer(ctx, req, cell, text, err)

	// Cut and paste change the row, so report the cell as it is now.
	if err == nil && req.Op != transfer.OpCopy {
		if fresh, rerr := s.store.Rows(ctx, req.TableKey); rerr == nil {
			cell = transfer.ResolveSelection(&req.Selection, schema, fresh)
		} else {
			s.logger.Warn("reload rows after transfer", "table", req.TableKey, "error", rerr)
		}
	}

	return &TransferResult{
		OK:       err == nil,
		Text:     text,
		Messages: log.Messages(),
		Err:      err,
		Cell:     s.cellView(req.TableKey, cell),
	}, nil
}

func (s *Service) reject(reason string) {
	if s.metrics != nil {
		s.metrics.Rejected(reason)
	}
}

func (s *Service) cellView(tableKey string, cell transfer.ResolvedCell) CellView {
	reg := s.codec.Registry()
	view := CellView{
		TableKey:   tableKey,
		Path:       cell.Selection.Path,
		Column:     cell.Selection.ColumnKey,
		FieldName:  cell.Column.FieldName,
		Type:       cell.Column.Type,
		Value:      cell.Value,
		RowFound:   cell.HasRow,
		Copyable:   reg.IsCopyable(cell.Column.Type),
		Pasteable:  reg.IsPasteable(cell.Column.Type),
		CutDeletes: reg.IsCutDeletable(cell.Column.Type),
	}
	if view.Copyable {
		text, err := s.codec.Encode(cell.Value, cell.Column)
		if err != nil {
			s.logger.Debug("encode cell", "table", tableKey, "column", view.Column, "error", err)
		}
		view.Text = text
	}
	return view
}

// recordingClipboard remembers the last text written to or read from the
// wrapped clipboard.
type recordingClipboard struct {
	inner transfer.Clipboard

	mu   sync.Mutex
	text string
}

func (r *recordingClipboard) ReadText(ctx context.Context) (string, error) {
	text, err := r.inner.ReadText(ctx)
	if err == nil {
		r.set(text)
	}
	return text, err
}

func (r *recordingClipboard) WriteText(ctx context.Context, text string) error {
	if err := r.inner.WriteText(ctx, text); err != nil {
		return err
	}
	r.set(text)
	return nil
}

func (r *recordingClipboard) set(text string) {
	r.mu.Lock()
	r.text = text
	r.mu.Unlock()
}

// Text returns the last text that crossed the clipboard.
func (r *recordingClipboard) Text() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.text
}
