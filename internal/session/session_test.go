package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	logtest "github.com/sirupsen/logrus/hooks/test"

	"github.com/rcliao/file-snapshot/internal/config"
	"github.com/rcliao/file-snapshot/internal/model"
	"github.com/rcliao/file-snapshot/internal/store"
)

const t0 = 1700000000000

// failingStore fails Save when saveErr is set.
type failingStore struct {
	*store.FileStore
	saveErr error
}

func (f *failingStore) Save(ctx context.Context, file string, c *model.Collection) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	return f.FileStore.Save(ctx, file, c)
}

type fixture struct {
	root  string
	host  *fakeHost
	store *store.FileStore
	sess  *Session
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	root := t.TempDir()
	ws, err := store.NewWorkspace("proj", root)
	if err != nil {
		t.Fatal(err)
	}
	logger, _ := logtest.NewNullLogger()
	fs := store.NewFileStore(
		store.NewMapper(ws, config.StorageRoot{Kind: config.Relative, Dir: ".snap"}),
		store.WithLogger(logger),
	)
	var tick int64 = t0
	clock := func() time.Time { return time.UnixMilli(atomic.AddInt64(&tick, 1000) - 1000) }
	host := &fakeHost{label: "v1", confirm: true}
	opts = append([]Option{WithClock(clock), WithLocation(time.UTC)}, opts...)
	return &fixture{root: root, host: host, store: fs, sess: New(host, fs, opts...)}
}

func (f *fixture) open(t *testing.T, name, text string) string {
	t.Helper()
	file := filepath.Join(f.root, name)
	f.host.open(file, text)
	if err := f.sess.SwitchFile(context.Background()); err != nil {
		t.Fatalf("switch file: %v", err)
	}
	return file
}

func TestSaveWritesRecordAndCache(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.open(t, "a.txt", "hello")
	f.host.cursor = model.Position{Line: 3, Column: 2}

	e, err := f.sess.Save(ctx)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if e.ID != "1700000000000" || e.Desc != "v1" || e.Value != "hello" {
		t.Errorf("unexpected entry %+v", e)
	}

	data, err := os.ReadFile(filepath.Join(f.root, ".snap", ".snapshot", "a.txt.json"))
	if err != nil {
		t.Fatalf("read record: %v", err)
	}
	want := `[{"id":"1700000000000","desc":"v1","value":"hello","position":{"line":3,"character":2}}]`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}
	if f.sess.Working().Len() != 1 {
		t.Errorf("expected 1 entry in working set")
	}
	if len(f.host.infos) != 1 || f.host.infos[0] != msgCreated {
		t.Errorf("expected created message, got %v", f.host.infos)
	}
}

func TestSaveLabelHandling(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.open(t, "a.txt", "x")

	f.host.canceled = true
	if _, err := f.sess.Save(ctx); !errors.Is(err, ErrCanceled) {
		t.Errorf("expected ErrCanceled, got %v", err)
	}
	f.host.canceled = false

	f.host.label = ""
	if _, err := f.sess.Save(ctx); !errors.Is(err, ErrCanceled) {
		t.Errorf("expected ErrCanceled for empty label, got %v", err)
	}

	f.host.label = "   "
	e, err := f.sess.Save(ctx)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if e.Desc != model.DefaultDesc {
		t.Errorf("expected %q, got %q", model.DefaultDesc, e.Desc)
	}
}

func TestSaveFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	fs := &failingStore{FileStore: f.store}
	f.sess = New(f.host, fs, WithClock(time.Now))
	f.open(t, "a.txt", "x")

	if _, err := f.sess.Save(ctx); err != nil {
		t.Fatalf("save: %v", err)
	}
	fs.saveErr = errors.New("disk full")
	if _, err := f.sess.Save(ctx); err == nil {
		t.Fatal("expected save error")
	}
	if f.sess.Working().Len() != 1 {
		t.Errorf("expected working set rolled back to 1 entry, got %d", f.sess.Working().Len())
	}
	if len(f.host.errs) != 1 {
		t.Errorf("expected one error message, got %v", f.host.errs)
	}
	if f.sess.Metrics()[MetricSaveFailed] != 1 {
		t.Errorf("expected save failure counted, got %v", f.sess.Metrics())
	}
}

func TestSaveRejectsNonUTF8Text(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.open(t, "a.txt", "cafe")
	if _, err := f.sess.Save(ctx); err != nil {
		t.Fatalf("save: %v", err)
	}
	record := filepath.Join(f.root, ".snap", ".snapshot", "a.txt.json")
	before, err := os.ReadFile(record)
	if err != nil {
		t.Fatalf("read record: %v", err)
	}

	f.host.text = "caf\xe9"
	if _, err := f.sess.Save(ctx); !errors.Is(err, ErrNotText) {
		t.Fatalf("expected ErrNotText, got %v", err)
	}
	if f.sess.Working().Len() != 1 {
		t.Errorf("expected working set unchanged, got %d entries", f.sess.Working().Len())
	}
	after, err := os.ReadFile(record)
	if err != nil {
		t.Fatalf("read record: %v", err)
	}
	if string(after) != string(before) {
		t.Errorf("record changed:\n%s\n%s", before, after)
	}
	if len(f.host.errs) != 1 {
		t.Errorf("expected one error message, got %v", f.host.errs)
	}
}

func TestSwitchFileUsesCache(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.open(t, "a.txt", "a")
	f.sess.Save(ctx)
	f.open(t, "b.txt", "b")

	// change the record behind the session's back; the cached copy wins until Sync
	f.store.DeleteRecord(ctx, a)
	f.open(t, "a.txt", "a")
	if f.sess.Working().Len() != 1 {
		t.Errorf("expected cached collection, got %d entries", f.sess.Working().Len())
	}
	m := f.sess.Metrics()
	if m[MetricCacheHit] != 1 || m[MetricCacheMiss] != 2 {
		t.Errorf("unexpected cache metrics %v", m)
	}

	if err := f.sess.Sync(ctx); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if f.sess.Working().Len() != 0 {
		t.Errorf("expected sync to pick up deletion, got %d", f.sess.Working().Len())
	}
}

func TestSwitchToNoFile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.open(t, "a.txt", "a")
	f.sess.Save(ctx)

	f.host.open("", "")
	if err := f.sess.SwitchFile(ctx); err != nil {
		t.Fatalf("switch: %v", err)
	}
	if f.sess.ActiveKey() != "" || f.sess.Working().Len() != 0 {
		t.Error("expected empty state without active file")
	}
	if _, err := f.sess.Save(ctx); !errors.Is(err, ErrNoActiveFile) {
		t.Errorf("expected ErrNoActiveFile, got %v", err)
	}
}

func TestRestore(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.open(t, "a.txt", "original")
	f.host.cursor = model.Position{Line: 5, Column: 9}
	e, _ := f.sess.Save(ctx)

	f.host.text = "edited"
	if _, err := f.sess.Restore(ctx, e.ID); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if f.host.text != "original" {
		t.Errorf("expected restored text, got %q", f.host.text)
	}
	if f.host.cursor != (model.Position{Line: 5}) {
		t.Errorf("expected cursor at start of line 5, got %+v", f.host.cursor)
	}

	if _, err := f.sess.Restore(ctx, "nope"); !errors.Is(err, ErrSnapshotNotFound) {
		t.Errorf("expected ErrSnapshotNotFound, got %v", err)
	}
}

func TestDeleteLastEntryRemovesRecord(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.open(t, filepath.Join("src", "a.txt"), "x")
	e1, _ := f.sess.Save(ctx)
	e2, _ := f.sess.Save(ctx)

	if err := f.sess.Delete(ctx, e1.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	record := filepath.Join(f.store.StorageDir(), "src", "a.txt.json")
	if _, err := os.Stat(record); err != nil {
		t.Fatalf("record should remain with one entry: %v", err)
	}

	if err := f.sess.Delete(ctx, e2.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := os.Stat(record); !os.IsNotExist(err) {
		t.Errorf("expected record removed, stat err = %v", err)
	}
	if _, err := os.Stat(filepath.Dir(record)); !os.IsNotExist(err) {
		t.Errorf("expected empty src dir pruned, stat err = %v", err)
	}

	// cache evicted: switching back reloads from disk
	f.open(t, "b.txt", "")
	f.open(t, filepath.Join("src", "a.txt"), "x")
	if f.sess.Metrics()[MetricCacheHit] != 0 {
		t.Errorf("expected no cache hits, got %v", f.sess.Metrics())
	}
	if err := f.sess.Delete(ctx, e2.ID); !errors.Is(err, ErrSnapshotNotFound) {
		t.Errorf("expected ErrSnapshotNotFound, got %v", err)
	}
}

func TestDeleteAllAndClearAll(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.open(t, "a.txt", "x")
	f.sess.Save(ctx)
	f.open(t, "b.txt", "y")
	f.sess.Save(ctx)

	f.host.confirm = false
	if err := f.sess.DeleteAll(ctx); !errors.Is(err, ErrCanceled) {
		t.Errorf("expected ErrCanceled, got %v", err)
	}
	if f.sess.Working().Len() != 1 {
		t.Error("declined delete must not change anything")
	}

	f.host.confirm = true
	if err := f.sess.DeleteAll(ctx); err != nil {
		t.Fatalf("delete all: %v", err)
	}
	if f.sess.Working().Len() != 0 {
		t.Error("expected empty working set")
	}

	f.open(t, "a.txt", "x")
	if f.sess.Working().Len() != 1 {
		t.Fatal("a.txt snapshots should be untouched")
	}
	if err := f.sess.ClearAll(ctx); err != nil {
		t.Fatalf("clear all: %v", err)
	}
	if _, err := os.Stat(f.store.StorageDir()); !os.IsNotExist(err) {
		t.Errorf("expected storage dir removed, stat err = %v", err)
	}
	f.open(t, "b.txt", "")
	f.host.file = a
	f.sess.SwitchFile(ctx)
	if f.sess.Working().Len() != 0 {
		t.Error("expected cache cleared by ClearAll")
	}
}

func TestMalformedRecordIsUnavailable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	record := filepath.Join(f.store.StorageDir(), "a.txt.json")
	os.MkdirAll(filepath.Dir(record), 0o755)
	os.WriteFile(record, []byte("garbage"), 0o644)

	f.host.open(filepath.Join(f.root, "a.txt"), "x")
	if err := f.sess.SwitchFile(ctx); !errors.Is(err, store.ErrMalformedRecord) {
		t.Fatalf("expected ErrMalformedRecord, got %v", err)
	}
	if _, err := f.sess.Save(ctx); !errors.Is(err, store.ErrMalformedRecord) {
		t.Errorf("save must refuse to overwrite a malformed record, got %v", err)
	}
	data, _ := os.ReadFile(record)
	if string(data) != "garbage" {
		t.Errorf("record was modified: %s", data)
	}

	if err := f.sess.DeleteAll(ctx); err != nil {
		t.Fatalf("delete all: %v", err)
	}
	if _, err := f.sess.Save(ctx); err != nil {
		t.Errorf("save after delete all: %v", err)
	}
}

func TestExcludedActiveFile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.open(t, filepath.Join(".history", "a_2020.txt"), "x")

	if f.sess.Working().Len() != 0 {
		t.Error("expected empty collection for excluded file")
	}
	if _, err := f.sess.Save(ctx); !errors.Is(err, store.ErrExcludedPath) {
		t.Errorf("expected ErrExcludedPath, got %v", err)
	}
}

func TestItems(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.open(t, "a.txt", "x")

	items := f.sess.Items()
	if len(items) != 1 || !items[0].Placeholder || items[0].Label != "None" {
		t.Fatalf("expected None placeholder, got %+v", items)
	}

	f.host.label = "before refactor"
	f.sess.Save(ctx)
	f.host.label = "after"
	f.sess.Save(ctx)

	items = f.sess.Items()
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	// 1700000000000 ms is 2023-11-14 22:13:20 UTC
	if items[0].Label != "[22:13] before refactor" {
		t.Errorf("unexpected label %q", items[0].Label)
	}
	if items[0].Tooltip != "before refactor [11-14 22:13]" {
		t.Errorf("unexpected tooltip %q", items[0].Tooltip)
	}
	if items[1].ID != "1700000001000" {
		t.Errorf("expected second item id, got %s", items[1].ID)
	}
}

func TestReconfigure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.open(t, "a.txt", "x")
	f.sess.Save(ctx)

	r, err := f.sess.Reconfigure(ctx, &config.Config{TreeLocation: config.TreeSnapshot, Path: ".snap2"})
	if err != nil {
		t.Fatalf("reconfigure: %v", err)
	}
	if !r.Moved {
		t.Error("expected relocation")
	}
	if f.sess.TreeLocation() != config.TreeSnapshot {
		t.Errorf("expected tree location updated, got %s", f.sess.TreeLocation())
	}
	if _, err := os.Stat(filepath.Join(f.root, ".snap2", ".snapshot", "a.txt.json")); err != nil {
		t.Errorf("expected record at new root: %v", err)
	}
	if n := len(f.host.infos); n == 0 || f.host.infos[n-1] != `.snapshot have moved to "`+filepath.Join(f.root, ".snap2")+`"` {
		t.Errorf("unexpected info messages %v", f.host.infos)
	}

	// later saves land under the new root
	if _, err := f.sess.Save(ctx); err != nil {
		t.Fatalf("save: %v", err)
	}
	c, _ := f.store.Load(ctx, filepath.Join(f.root, "a.txt"))
	if c.Len() != 2 {
		t.Errorf("expected 2 entries at new root, got %d", c.Len())
	}
}

func TestReconfigureInvalidAbsolutePath(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.sess.Reconfigure(ctx, &config.Config{Path: filepath.Join(f.root, "missing")})
	if err != nil {
		t.Fatalf("invalid path is a warning, got %v", err)
	}
	if len(f.host.warns) != 1 || len(f.host.errs) != 0 {
		t.Errorf("expected one warning and no errors, got %v / %v", f.host.warns, f.host.errs)
	}
	if want := filepath.Join(f.root, config.DefaultPath, ".snapshot"); f.store.StorageDir() != want {
		t.Errorf("expected default root, got %s", f.store.StorageDir())
	}
}

func TestConcurrentSavesAreSerialized(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	file := f.open(t, "a.txt", "x")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.sess.Save(ctx); err != nil {
				t.Errorf("save: %v", err)
			}
		}()
	}
	wg.Wait()

	c, err := f.store.Load(ctx, file)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Len() != 10 {
		t.Errorf("expected 10 snapshots, got %d", c.Len())
	}
}
