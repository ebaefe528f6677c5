package session

import (
	"context"

	"github.com/rcliao/file-snapshot/internal/model"
)

// Host is the editor the session works for. It owns the active file, its text and cursor,
// and all user interaction.
type Host interface {
	// ActiveFile returns the file being edited; ok is false when no file is active.
	ActiveFile() (file string, ok bool)

	// Text returns the full text of the active file.
	Text() (string, error)

	// Cursor returns the cursor position in the active file.
	Cursor() model.Position

	// PromptLabel asks the user for a snapshot label. ok is false when the user cancels.
	PromptLabel(ctx context.Context) (label string, ok bool, err error)

	// Replace swaps the whole text of the active file and moves the cursor.
	Replace(text string, cursor model.Position) error

	// Info, Warn and Error show messages to the user.
	Info(msg string)
	Warn(msg string)
	Error(msg string)

	// Confirm asks a yes/no question.
	Confirm(ctx context.Context, msg string) (bool, error)
}
