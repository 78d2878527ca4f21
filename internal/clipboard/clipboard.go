// Package clipboard provides the plain-text clipboards the transfer
// controller reads and writes: a request-scoped buffer, server-side
// per-session clipboards, and the host system clipboard.
package clipboard

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrPermissionDenied is returned when clipboard contents may not be read.
	ErrPermissionDenied = errors.New("clipboard read permission denied")

	// ErrUnavailable is returned when the host has no clipboard.
	ErrUnavailable = errors.New("clipboard unavailable")

	// ErrEmpty is returned by a Buffer that was never given text.
	ErrEmpty = errors.New("clipboard is empty")
)

// Buffer is an in-memory clipboard for one request. A browser sends its own
// clipboard text with a paste and receives the copied text in the response.
type Buffer struct {
	mu     sync.Mutex
	text   string
	loaded bool
	writes int
}

// NewBuffer returns a buffer holding text.
func NewBuffer(text string) *Buffer {
	return &Buffer{text: text, loaded: true}
}

func (b *Buffer) ReadText(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.loaded {
		return "", ErrEmpty
	}
	return b.text, nil
}

func (b *Buffer) WriteText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.text = text
	b.loaded = true
	b.writes++
	return nil
}

// Text returns the buffer contents and whether anything was written to it.
func (b *Buffer) Text() (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.text, b.writes > 0
}
