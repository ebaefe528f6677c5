package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/rcliao/file-snapshot/internal/model"
)

// terminalHost is the editor host for the command line: the active file lives on disk,
// the cursor comes from flags and prompts go to the terminal.
type terminalHost struct {
	file     string
	cursor   model.Position
	label    string
	hasLabel bool
	yes      bool

	in  *bufio.Reader
	out io.Writer
}

func newTerminalHost(file string, in io.Reader, out io.Writer) *terminalHost {
	h := &terminalHost{in: bufio.NewReader(in), out: out, yes: assumeYes}
	h.setFile(file)
	return h
}

func (h *terminalHost) setFile(file string) {
	if file == "" {
		h.file = ""
		return
	}
	if !filepath.IsAbs(file) {
		if abs, err := filepath.Abs(file); err == nil {
			file = abs
		}
	}
	h.file = file
}

func (h *terminalHost) setLabel(label string) {
	h.label, h.hasLabel = label, true
}

func (h *terminalHost) ActiveFile() (string, bool) {
	return h.file, h.file != ""
}

func (h *terminalHost) Text() (string, error) {
	b, err := os.ReadFile(h.file)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (h *terminalHost) Cursor() model.Position {
	return h.cursor
}

func (h *terminalHost) readLine() (string, bool) {
	line, err := h.in.ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}
	return strings.TrimRight(line, "\r\n"), true
}

func (h *terminalHost) PromptLabel(ctx context.Context) (string, bool, error) {
	if h.hasLabel {
		return h.label, true, nil
	}
	fmt.Fprint(h.out, "Snapshot Label (type the label for your snapshot): ")
	label, ok := h.readLine()
	return label, ok, nil
}

// Replace writes text over the active file, keeping its permissions.
func (h *terminalHost) Replace(text string, cursor model.Position) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(h.file); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.WriteFile(h.file, []byte(text), mode); err != nil {
		return err
	}
	h.cursor = cursor
	log.WithField("file", h.file).Debugf("restored, cursor at line %d", cursor.Line)
	return nil
}

func (h *terminalHost) Info(msg string) {
	log.Info(msg)
}

func (h *terminalHost) Warn(msg string) {
	log.Warn(msg)
}

func (h *terminalHost) Error(msg string) {
	log.Error(msg)
}

func (h *terminalHost) Confirm(ctx context.Context, msg string) (bool, error) {
	if h.yes {
		return true, nil
	}
	fmt.Fprintf(h.out, "%s? [y/N] ", msg)
	answer, _ := h.readLine()
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}
