package store

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/rcliao/file-snapshot/internal/config"
)

// StorageDirName is the directory that holds all records under the storage root.
const StorageDirName = ".snapshot"

// RecordExt is appended to the workspace-relative path of a file.
const RecordExt = ".json"

// Workspace identifies the folders being snapshotted. Roots[0] anchors relative storage.
type Workspace struct {
	Roots []string
	Name  string
}

// NewWorkspace builds a Workspace from one or more root folders. The name defaults to the
// base name of the first root.
func NewWorkspace(name string, roots ...string) (Workspace, error) {
	if len(roots) == 0 {
		return Workspace{}, errors.New("workspace needs at least one root")
	}
	ws := Workspace{Name: name}
	for _, r := range roots {
		abs, err := filepath.Abs(r)
		if err != nil {
			return Workspace{}, errors.Wrapf(err, "resolve workspace root %s", r)
		}
		ws.Roots = append(ws.Roots, abs)
	}
	if ws.Name == "" {
		ws.Name = filepath.Base(ws.Roots[0])
	}
	return ws, nil
}

// Rel returns file relative to the innermost root containing it, slash separated.
func (w Workspace) Rel(file string) (string, error) {
	abs, err := filepath.Abs(file)
	if err != nil {
		return "", errors.Wrapf(err, "resolve %s", file)
	}
	best, bestRoot := "", ""
	for _, root := range w.Roots {
		rel, err := filepath.Rel(root, abs)
		if err != nil || !isBelow(rel) {
			continue
		}
		if len(root) > len(bestRoot) {
			best, bestRoot = rel, root
		}
	}
	if bestRoot == "" {
		return "", errors.Wrapf(ErrOutsideWorkspace, "%s", file)
	}
	return filepath.ToSlash(best), nil
}

// isBelow reports whether a filepath.Rel result names something strictly inside its base.
func isBelow(rel string) bool {
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Excluded reports whether a slash-separated relative path sits inside a .snapshot or
// .history directory.
func Excluded(rel string) bool {
	segs := strings.Split(rel, "/")
	for _, s := range segs[:len(segs)-1] {
		if s == ".snapshot" || s == ".history" {
			return true
		}
	}
	return false
}

// StorageDirFor computes the effective storage directory for a workspace and root.
func StorageDirFor(ws Workspace, root config.StorageRoot) string {
	if root.Kind == config.Absolute {
		return filepath.Join(root.Dir, ws.Name, StorageDirName)
	}
	base := ""
	if len(ws.Roots) > 0 {
		base = ws.Roots[0]
	}
	return filepath.Join(base, root.Dir, StorageDirName)
}

// Mapper maps workspace files to record paths under the active storage directory.
type Mapper struct {
	ws Workspace

	mu   sync.RWMutex
	root config.StorageRoot
	dir  string
}

// NewMapper adopts root as the initial storage root without moving anything.
func NewMapper(ws Workspace, root config.StorageRoot) *Mapper {
	return &Mapper{ws: ws, root: root, dir: StorageDirFor(ws, root)}
}

func (m *Mapper) Workspace() Workspace { return m.ws }

// Root returns the active storage root.
func (m *Mapper) Root() config.StorageRoot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.root
}

// StorageDir returns the active effective storage directory.
func (m *Mapper) StorageDir() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dir
}

func (m *Mapper) setRoot(root config.StorageRoot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.root = root
	m.dir = StorageDirFor(m.ws, root)
}

// Key returns the cache key for file: its slash-separated workspace-relative path.
func (m *Mapper) Key(file string) (string, error) {
	return m.ws.Rel(file)
}

// RecordPath returns where the record for file lives. ok is false for excluded files.
func (m *Mapper) RecordPath(file string) (path string, ok bool, err error) {
	rel, err := m.ws.Rel(file)
	if err != nil {
		return "", false, err
	}
	if Excluded(rel) {
		return "", false, nil
	}
	return filepath.Join(m.StorageDir(), filepath.FromSlash(rel)+RecordExt), true, nil
}
