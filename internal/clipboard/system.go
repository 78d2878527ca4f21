package clipboard

import (
	"context"
	"fmt"

	"github.com/atotto/clipboard"
)

// System is the host clipboard. It only makes sense for single-user
// deployments where the server runs on the user's own machine.
type System struct{}

// NewSystem returns ErrUnavailable when no clipboard utility is installed.
func NewSystem() (*System, error) {
	if clipboard.Unsupported {
		return nil, ErrUnavailable
	}
	return &System{}, nil
}

func (System) ReadText(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text, err := clipboard.ReadAll()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	}
	return text, nil
}

func (System) WriteText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("write system clipboard: %w", err)
	}
	return nil
}
