// Package core provides the table, row and transfer services behind the
// clipboard API.
//
// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// When users encounter errors, they can quote the error code to support staff
// for faster diagnosis.
//
// # Database Errors (DB001-DB099)
//
//	DB004 - Connection refused: Unable to connect to database
//	        Patterns: "connection refused"
//
//	DB005 - Connection reset: Database connection was interrupted
//	        Patterns: "connection reset"
//
//	DB007 - Deadlock: Database was busy with conflicting operations
//	        Patterns: "deadlock"
//
// # Clipboard Errors (CLIP001-CLIP099)
//
//	CLIP001 - Permission denied: The clipboard could not be read
//	          Patterns: "clipboard read permission denied", "clipboard_permission_denied"
//
//	CLIP002 - Unavailable: No clipboard backend is available
//	          Patterns: "clipboard unavailable"
//
//	CLIP003 - Empty: There is nothing on the clipboard
//	          Patterns: "clipboard is empty"
//
//	CLIP004 - Not copyable: The field type cannot be copied or pasted
//	          Patterns: "capability_denied"
//
//	CLIP005 - No selection: No cell is selected
//	          Patterns: "no_selection"
//
//	CLIP006 - Incompatible value: The clipboard text does not fit the column
//	          Patterns: "parse:", "not a finite number"
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Invalid date pattern: A column's date format cannot be rendered
//	         Patterns: "invalid date pattern"
//
//	VAL002 - Invalid number: The value is not a finite number
//	         Patterns: "invalid number"
//
//	VAL003 - Unknown field type: The column's type is not registered
//	         Patterns: "unknown field type"
//
// # Table Errors (TBL001-TBL099)
//
//	TBL001 - Table not found: The specified table does not exist
//	         Patterns: "table not found"
//
//	TBL002 - Empty schema: The schema file defines no tables
//	         Patterns: "schema defines no tables"
//
//	TBL003 - Column not found: The table has no such column
//	         Patterns: "column not found"
//
// # Row Errors (ROW001-ROW099)
//
//	ROW001 - Row not found: The selected row no longer exists
//	         Patterns: "row not found"
//
// # Transfer Errors (XFER001-XFER099)
//
//	XFER001 - System busy: Too many transfers in progress
//	          Patterns: "too many transfers"
//
//	XFER002 - Request cancelled: Request was cancelled
//	          Patterns: "context canceled"
//
//	XFER003 - Request timeout: Request timed out
//	          Patterns: "context deadline exceeded", "timeout"
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Invalid request: Missing or malformed request parameters
//	         Patterns: "invalid request"
//
// # Default Error (ERR000)
//
// Fallback when no specific pattern matches:
//
//	ERR000 - Unknown error: An unexpected error occurred
//
// # Pattern Matching
//
// Error patterns are matched case-insensitively using strings.Contains.
// The first matching pattern wins, so more specific patterns come before
// general ones. A failed store write during a paste carries both the
// "store" kind and the underlying cause, so row and database patterns are
// listed ahead of the transfer kinds.
package core

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user
// messages. The first matching pattern wins.
var errorPatterns = []errorPattern{
	// Database connectivity
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},
	{
		pattern: "deadlock",
		msg: UserMessage{
			Message: "Database was busy with conflicting operations",
			Action:  "Please try again",
			Code:    "DB007",
		},
	},

	// Rows and tables
	{
		pattern: "row not found",
		msg: UserMessage{
			Message: "The selected row no longer exists",
			Action:  "Refresh the table and select the cell again",
			Code:    "ROW001",
		},
	},
	{
		pattern: "table not found",
		msg: UserMessage{
			Message: "Table not found",
			Action:  "Verify the table name is correct",
			Code:    "TBL001",
		},
	},
	{
		pattern: "column not found",
		msg: UserMessage{
			Message: "Column not found",
			Action:  "Verify the column key is correct",
			Code:    "TBL003",
		},
	},
	{
		pattern: "schema defines no tables",
		msg: UserMessage{
			Message: "No tables are configured",
			Action:  "Add at least one table to the schema file",
			Code:    "TBL002",
		},
	},

	// Clipboard
	{
		pattern: "clipboard read permission denied",
		msg: UserMessage{
			Message: "The clipboard could not be read",
			Action:  "Allow clipboard access and copy the value again",
			Code:    "CLIP001",
		},
	},
	{
		pattern: "clipboard_permission_denied",
		msg: UserMessage{
			Message: "The clipboard could not be read",
			Action:  "Allow clipboard access and copy the value again",
			Code:    "CLIP001",
		},
	},
	{
		pattern: "clipboard unavailable",
		msg: UserMessage{
			Message: "No clipboard is available on the server",
			Action:  "Use the session or request clipboard backend",
			Code:    "CLIP002",
		},
	},
	{
		pattern: "clipboard is empty",
		msg: UserMessage{
			Message: "There is nothing on the clipboard",
			Action:  "Copy a cell before pasting",
			Code:    "CLIP003",
		},
	},
	{
		pattern: "capability_denied",
		msg: UserMessage{
			Message: "This field type does not support the operation",
			Action:  "Choose a different cell",
			Code:    "CLIP004",
		},
	},
	{
		pattern: "no_selection",
		msg: UserMessage{
			Message: "No cell selected",
			Action:  "Select a cell and try again",
			Code:    "CLIP005",
		},
	},
	{
		pattern: "not a finite number",
		msg: UserMessage{
			Message: "The clipboard value does not fit this column",
			Action:  "Paste a value of the column's type",
			Code:    "CLIP006",
		},
	},
	{
		pattern: "parse:",
		msg: UserMessage{
			Message: "The clipboard value does not fit this column",
			Action:  "Paste a value of the column's type",
			Code:    "CLIP006",
		},
	},

	// Validation
	{
		pattern: "invalid date pattern",
		msg: UserMessage{
			Message: "The column's date format is invalid",
			Action:  "Fix the dateFormat in the schema file",
			Code:    "VAL001",
		},
	},
	{
		pattern: "invalid number",
		msg: UserMessage{
			Message: "Invalid number format detected",
			Action:  "Remove currency symbols and use standard decimal format",
			Code:    "VAL002",
		},
	},
	{
		pattern: "unknown field type",
		msg: UserMessage{
			Message: "The column's field type is not supported",
			Action:  "Check the column type in the schema file",
			Code:    "VAL003",
		},
	},

	// Transfer throttling and cancellation
	{
		pattern: "too many transfers",
		msg: UserMessage{
			Message: "System is busy processing other transfers",
			Action:  "Please wait a moment and try again",
			Code:    "XFER001",
		},
	},
	{
		pattern: "invalid request",
		msg: UserMessage{
			Message: "The request was missing required information",
			Action:  "Select a cell and try again",
			Code:    "REQ001",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "XFER002",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Please try again",
			Code:    "XFER003",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Please try again",
			Code:    "XFER003",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// If no pattern matches, a generic fallback message with code ERR000 is
// returned.
//
// Example:
//
//	msg := MapError(fmt.Errorf("%w: orders/r1", ErrRowNotFound))
//	// msg.Code == "ROW001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern rather than the
// ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	msg := MapError(err)
	return msg.Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
