package session

import (
	"context"
	"sync"

	"github.com/rcliao/file-snapshot/internal/model"
)

// fakeHost is an in-memory editor.
type fakeHost struct {
	mu       sync.Mutex
	file     string
	text     string
	cursor   model.Position
	label    string
	canceled bool
	confirm  bool
	infos    []string
	warns    []string
	errs     []string
}

func (h *fakeHost) ActiveFile() (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.file, h.file != ""
}

func (h *fakeHost) Text() (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.text, nil
}

func (h *fakeHost) Cursor() model.Position {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cursor
}

func (h *fakeHost) PromptLabel(ctx context.Context) (string, bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.label, !h.canceled, nil
}

func (h *fakeHost) Replace(text string, cursor model.Position) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.text, h.cursor = text, cursor
	return nil
}

func (h *fakeHost) Info(msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.infos = append(h.infos, msg)
}

func (h *fakeHost) Warn(msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.warns = append(h.warns, msg)
}

func (h *fakeHost) Error(msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errs = append(h.errs, msg)
}

func (h *fakeHost) Confirm(ctx context.Context, msg string) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.confirm, nil
}

func (h *fakeHost) open(file, text string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.file, h.text = file, text
}
