package transfer

import (
	"errors"
	"fmt"

	"github.com/JonMunkholm/gridclip/internal/fields"
)

// Kind classifies a failed transfer.
type Kind string

const (
	KindCapabilityDenied          Kind = "capability_denied"
	KindNoSelection               Kind = "no_selection"
	KindClipboardPermissionDenied Kind = "clipboard_permission_denied"
	KindClipboardIO               Kind = "clipboard_io"
	KindEncode                    Kind = "encode"
	KindParse                     Kind = "parse"
	KindStore                     Kind = "store"
)

// Error is returned by Copy, Cut and Paste when the operation is rejected.
// The user-facing text is Message; Error is for logs.
type Error struct {
	Op        Op
	Kind      Kind
	FieldType fields.FieldType
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %s: %v", e.Op, e.FieldType, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s %s: %s", e.Op, e.FieldType, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Message returns the notification shown to the user.
func (e *Error) Message() string {
	switch e.Kind {
	case KindCapabilityDenied:
		if e.Op == OpPaste {
			return fmt.Sprintf("%s field does not support paste functionality", e.FieldType)
		}
		return fmt.Sprintf("%s field cannot be copied", e.FieldType)
	case KindNoSelection:
		return "No cell selected"
	case KindClipboardPermissionDenied:
		return "Read clipboard permission denied."
	case KindParse:
		// Parse diagnostics stay in logs.
		return fmt.Sprintf("%s field does not support the data type being pasted", e.FieldType)
	}

	switch e.Op {
	case OpCopy:
		return fmt.Sprintf("Failed to copy: %v", e.Err)
	case OpCut:
		return fmt.Sprintf("Failed to cut: %v", e.Err)
	default:
		return fmt.Sprintf("Failed to paste: %v", e.Err)
	}
}

// KindOf returns the kind of a transfer error, or "" if err is not one.
func KindOf(err error) Kind {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	return ""
}

// Outcome labels an operation result for metrics: "ok" or the error kind.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if k := KindOf(err); k != "" {
		return string(k)
	}
	return "error"
}
