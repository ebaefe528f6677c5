package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rcliao/file-snapshot/internal/config"
	"github.com/rcliao/file-snapshot/internal/session"
	"github.com/rcliao/file-snapshot/internal/store"
)

func newTestShell(t *testing.T, script string) (*shell, *bytes.Buffer, string, *config.Config) {
	t.Helper()
	root := t.TempDir()
	for name, content := range map[string]string{"a.txt": "alpha\n", "b.txt": "beta\n"} {
		if err := os.WriteFile(filepath.Join(root, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	ws, err := store.NewWorkspace("proj", root)
	if err != nil {
		t.Fatal(err)
	}
	cfg := &config.Config{TreeLocation: config.TreeExplorer, Path: ".snap"}
	st := store.NewFileStore(store.NewMapper(ws, config.StorageRoot{Kind: config.Relative, Dir: ".snap"}))

	var tick int64 = 1700000000000
	clock := func() time.Time { return time.UnixMilli(atomic.AddInt64(&tick, 1000) - 1000) }

	script = strings.ReplaceAll(script, "$ROOT", root)
	h := newTerminalHost("", strings.NewReader(script), &bytes.Buffer{})
	h.yes = true
	out := &bytes.Buffer{}
	saved := &config.Config{}
	sh := &shell{
		sess: session.New(h, st, session.WithClock(clock), session.WithLocation(time.UTC)),
		host: h,
		cfg:  cfg,
		out:  out,
		saveConfig: func(c *config.Config) error {
			*saved = *c
			return nil
		},
	}
	return sh, out, root, saved
}

func TestShellSession(t *testing.T) {
	script := `open $ROOT/a.txt
cursor 2 3
save first
open $ROOT/b.txt
save
second label
open $ROOT/a.txt
config path .snap2
metrics
restore 1700000000000
bogus
quit
`
	sh, out, root, saved := newTestShell(t, script)
	if err := sh.run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	got := out.String()

	for _, want := range []string{
		"saved 1700000000000 first",
		"saved 1700000001000 second label",
		"1700000000000  [22:13] first",
		"cache.hit                1",
		"cache.miss               2",
		"restored 1700000000000, cursor at line 2",
		`unknown command "bogus"`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}

	if saved.Path != ".snap2" {
		t.Errorf("expected config saved with new path, got %+v", saved)
	}
	for _, rel := range []string{"a.txt.json", "b.txt.json"} {
		if _, err := os.Stat(filepath.Join(root, ".snap2", ".snapshot", rel)); err != nil {
			t.Errorf("expected %s relocated: %v", rel, err)
		}
	}
}

func TestShellDropAndClear(t *testing.T) {
	script := `open $ROOT/a.txt
save one
rm 1700000000000
save two
drop
save three
clear
ls
`
	sh, out, root, _ := newTestShell(t, script)
	if err := sh.run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if strings.Contains(out.String(), "error:") {
		t.Errorf("unexpected error output:\n%s", out.String())
	}
	if !strings.HasSuffix(strings.TrimSpace(out.String()), "None") {
		t.Errorf("expected empty list at the end:\n%s", out.String())
	}
	if _, err := os.Stat(filepath.Join(root, ".snap", ".snapshot")); !os.IsNotExist(err) {
		t.Errorf("expected storage dir removed, stat err = %v", err)
	}
}

func TestShellConfigRejectsMissingAbsolutePath(t *testing.T) {
	script := `open $ROOT/a.txt
save one
config path $ROOT/missing
ls
`
	sh, out, root, saved := newTestShell(t, script)
	if err := sh.run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "the specified path is invalid") {
		t.Errorf("expected invalid path error:\n%s", out.String())
	}
	if saved.Path != "" {
		t.Errorf("config should not be saved, got %+v", saved)
	}
	if sh.cfg.Path != ".snap" {
		t.Errorf("expected config unchanged, got %q", sh.cfg.Path)
	}
	if _, err := os.Stat(filepath.Join(root, ".snap", ".snapshot", "a.txt.json")); err != nil {
		t.Errorf("expected record to stay in place: %v", err)
	}
}
