// Package transfer implements single-cell copy, cut and paste between a grid
// and a clipboard.
//
// A Controller holds the resolved selection and runs each operation against
// a snapshot of it taken at invocation, so a selection change while an
// operation is in flight cannot redirect its write. The row store, the
// clipboard and the notification sink are collaborators supplied by the
// caller.
package transfer

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/JonMunkholm/gridclip/internal/fields"
)

// Op names a transfer operation.
type Op string

const (
	OpCopy  Op = "copy"
	OpCut   Op = "cut"
	OpPaste Op = "paste"
)

// Clipboard is plain-text clipboard access.
type Clipboard interface {
	ReadText(ctx context.Context) (string, error)
	WriteText(ctx context.Context, text string) error
}

// FieldUpdate sets or removes one field of one row.
type FieldUpdate struct {
	Path      string
	FieldName string
	Value     any
	// DeleteField removes the field instead of setting Value.
	DeleteField bool
}

// FieldUpdater applies field updates to the row store. Updates to the same
// field are last-write-wins.
type FieldUpdater interface {
	UpdateField(ctx context.Context, u FieldUpdate) error
}

// FieldUpdaterFunc adapts a function to FieldUpdater.
type FieldUpdaterFunc func(ctx context.Context, u FieldUpdate) error

func (f FieldUpdaterFunc) UpdateField(ctx context.Context, u FieldUpdate) error { return f(ctx, u) }

// Observer is notified after every operation.
type Observer interface {
	ObserveTransfer(op Op, fieldType fields.FieldType, outcome string, elapsed time.Duration)
}

// State of a controller.
type State int

const (
	StateIdle State = iota
	StateResolved
	StateBusy
)

func (s State) String() string {
	switch s {
	case StateResolved:
		return "resolved"
	case StateBusy:
		return "busy"
	default:
		return "idle"
	}
}

// Options configures a Controller. Clipboard and Updater are required.
type Options struct {
	Clipboard Clipboard
	Updater   FieldUpdater

	// Codec defaults to a UTC codec over fields.DefaultRegistry.
	Codec    *fields.Codec
	Reporter Reporter
	Observer Observer
	Logger   *slog.Logger

	// OnComplete runs after every Copy, Cut and Paste, including rejected ones.
	OnComplete func()
}

// Controller runs copy, cut and paste against the current selection.
type Controller struct {
	clipboard  Clipboard
	updater    FieldUpdater
	codec      *fields.Codec
	reporter   Reporter
	observer   Observer
	logger     *slog.Logger
	onComplete func()

	mu       sync.RWMutex
	resolved ResolvedCell
	inflight atomic.Int32
}

// NewController creates a controller with no selection.
func NewController(opts Options) *Controller {
	c := &Controller{
		clipboard:  opts.Clipboard,
		updater:    opts.Updater,
		codec:      opts.Codec,
		reporter:   opts.Reporter,
		observer:   opts.Observer,
		logger:     opts.Logger,
		onComplete: opts.OnComplete,
	}
	if c.codec == nil {
		c.codec = fields.NewCodec(nil, nil)
	}
	if c.reporter == nil {
		c.reporter = discardReporter{}
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Select re-resolves the selection and replaces the current snapshot.
// A nil selection clears it.
func (c *Controller) Select(sel *SelectedCell, schema Schema, rows []Row) ResolvedCell {
	r := ResolveSelection(sel, schema, rows)
	c.mu.Lock()
	c.resolved = r
	c.mu.Unlock()
	return r
}

// Resolved returns the current snapshot.
func (c *Controller) Resolved() ResolvedCell {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resolved
}

// CellValue returns the stored value of the selected cell.
func (c *Controller) CellValue() any {
	return c.Resolved().Value
}

// State reports whether the controller is idle, resolved, or running an operation.
func (c *Controller) State() State {
	if c.inflight.Load() > 0 {
		return StateBusy
	}
	if c.Resolved().HasColumn {
		return StateResolved
	}
	return StateIdle
}

// Copy writes the selected cell's clipboard text. Empty cells copy "".
func (c *Controller) Copy(ctx context.Context) error {
	return c.run(ctx, OpCopy, c.copy)
}

// Cut copies the selected cell, then removes the field when it holds a
// value and its type can be cleared by the user.
func (c *Controller) Cut(ctx context.Context) error {
	return c.run(ctx, OpCut, c.cut)
}

// Paste reads the clipboard, decodes the text for the selected column and
// stores the result. Nothing is written when reading or decoding fails.
func (c *Controller) Paste(ctx context.Context) error {
	return c.run(ctx, OpPaste, c.paste)
}

func (c *Controller) run(ctx context.Context, op Op, fn func(context.Context, ResolvedCell) error) error {
	cell := c.Resolved()
	start := time.Now()
	c.inflight.Add(1)
	defer c.inflight.Add(-1)
	if c.onComplete != nil {
		defer c.onComplete()
	}

	err := c.gate(op, cell)
	if err == nil {
		err = fn(ctx, cell)
	}
	elapsed := time.Since(start)

	logger := c.logger.With(
		"op", op,
		"type", cell.Column.Type,
		"path", cell.Selection.Path,
		"column", cell.Selection.ColumnKey,
	)
	if err != nil {
		if te, ok := err.(*Error); ok {
			c.reporter.Report(te.Message(), SeverityError)
		}
		logger.Warn("transfer failed", "error", err, "duration", elapsed)
	} else {
		logger.Debug("transfer complete", "duration", elapsed)
	}

	if c.observer != nil {
		c.observer.ObserveTransfer(op, cell.Column.Type, Outcome(err), elapsed)
	}
	return err
}

// gate rejects operations the selected column's type does not support,
// before any clipboard or store access.
func (c *Controller) gate(op Op, cell ResolvedCell) error {
	if !cell.HasColumn {
		return &Error{Op: op, Kind: KindNoSelection}
	}
	registry := c.codec.Registry()
	allowed := registry.IsCopyable(cell.Column.Type)
	if op == OpPaste {
		allowed = registry.IsPasteable(cell.Column.Type)
	}
	if !allowed {
		return &Error{Op: op, Kind: KindCapabilityDenied, FieldType: cell.Column.Type}
	}
	return nil
}

func (c *Controller) copy(ctx context.Context, cell ResolvedCell) error {
	text, err := c.codec.Encode(cell.Value, cell.Column)
	if err != nil {
		return &Error{Op: OpCopy, Kind: KindEncode, FieldType: cell.Column.Type, Err: err}
	}
	if err := c.clipboard.WriteText(ctx, text); err != nil {
		return &Error{Op: OpCopy, Kind: KindClipboardIO, FieldType: cell.Column.Type, Err: err}
	}
	c.reporter.Report("Copied", SeverityInfo)
	return nil
}

func (c *Controller) cut(ctx context.Context, cell ResolvedCell) error {
	text, err := c.codec.Encode(cell.Value, cell.Column)
	if err != nil {
		return &Error{Op: OpCut, Kind: KindEncode, FieldType: cell.Column.Type, Err: err}
	}
	if err := c.clipboard.WriteText(ctx, text); err != nil {
		return &Error{Op: OpCut, Kind: KindClipboardIO, FieldType: cell.Column.Type, Err: err}
	}
	c.reporter.Report("Copied", SeverityInfo)

	if fields.IsEmpty(cell.Value) || !c.codec.Registry().IsCutDeletable(cell.Column.Type) {
		return nil
	}
	err = c.updater.UpdateField(ctx, FieldUpdate{
		Path:        cell.Selection.Path,
		FieldName:   cell.Column.FieldName,
		DeleteField: true,
	})
	if err != nil {
		return &Error{Op: OpCut, Kind: KindStore, FieldType: cell.Column.Type, Err: err}
	}
	return nil
}

func (c *Controller) paste(ctx context.Context, cell ResolvedCell) error {
	text, err := c.clipboard.ReadText(ctx)
	if err != nil {
		return &Error{Op: OpPaste, Kind: KindClipboardPermissionDenied, FieldType: cell.Column.Type, Err: err}
	}
	value, err := c.codec.Decode(text, cell.Column)
	if err != nil {
		return &Error{Op: OpPaste, Kind: KindParse, FieldType: cell.Column.Type, Err: err}
	}
	err = c.updater.UpdateField(ctx, FieldUpdate{
		Path:      cell.Selection.Path,
		FieldName: cell.Column.FieldName,
		Value:     value,
	})
	if err != nil {
		return &Error{Op: OpPaste, Kind: KindStore, FieldType: cell.Column.Type, Err: err}
	}
	return nil
}
