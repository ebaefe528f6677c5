// Package session tracks the active file's snapshot collection and implements the user
// commands: save, restore, delete, delete all, clear everything, sync and reconfigure.
package session

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"
	metrics "github.com/rcrowley/go-metrics"
	log "github.com/sirupsen/logrus"

	"github.com/rcliao/file-snapshot/internal/cache"
	"github.com/rcliao/file-snapshot/internal/config"
	"github.com/rcliao/file-snapshot/internal/model"
	"github.com/rcliao/file-snapshot/internal/store"
)

var (
	ErrNoActiveFile     = errors.New("no active file")
	ErrCanceled         = errors.New("canceled")
	ErrSnapshotNotFound = errors.New("snapshot not found")
	ErrNotText          = errors.New("active file is not valid UTF-8 text")
)

// Metric names recorded in the session registry.
const (
	MetricCacheHit    = "cache.hit"
	MetricCacheMiss   = "cache.miss"
	MetricSave        = "snapshot.save"
	MetricSaveFailed  = "snapshot.save.failed"
	MetricRestore     = "snapshot.restore"
	MetricDelete      = "snapshot.delete"
	MetricDeleteFile  = "snapshot.delete_file"
	MetricClearAll    = "snapshot.clear_all"
	MetricRelocations = "storage.relocation"
)

// Messages shown through the host.
const (
	msgCreated       = "Snapshot is created!"
	msgConfirmDelete = "Delete this file's snapshots"
	msgConfirmClear  = "Delete all files's snapshots"
)

// Session holds the working set of the active file. Commands are serialized.
type Session struct {
	mu    sync.Mutex
	host  Host
	store store.Store
	cache *cache.Cache
	now   func() time.Time
	loc   *time.Location
	reg   metrics.Registry

	file        string
	key         string
	working     *model.Collection
	unavailable error
	tree        config.TreeLocation
}

// Option configures a Session.
type Option func(*Session)

// WithClock sets the time source used for snapshot ids.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithLocation sets the time zone used to render item labels.
func WithLocation(loc *time.Location) Option {
	return func(s *Session) { s.loc = loc }
}

// WithCache shares a cache between sessions.
func WithCache(c *cache.Cache) Option {
	return func(s *Session) { s.cache = c }
}

// WithTreeLocation sets the initial display location.
func WithTreeLocation(l config.TreeLocation) Option {
	return func(s *Session) { s.tree = l }
}

func New(host Host, st store.Store, opts ...Option) *Session {
	s := &Session{
		host:    host,
		store:   st,
		cache:   cache.New(),
		now:     time.Now,
		loc:     time.Local,
		reg:     metrics.NewRegistry(),
		working: &model.Collection{},
		tree:    config.TreeExplorer,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Session) inc(name string) {
	metrics.GetOrRegisterCounter(name, s.reg).Inc(1)
}

// SwitchFile adopts the host's active file, reading its collection from the cache when
// present and from disk otherwise.
func (s *Session) SwitchFile(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.file, s.key, s.unavailable = "", "", nil
	s.working = &model.Collection{}

	file, ok := s.host.ActiveFile()
	if !ok {
		return nil
	}
	key, err := s.store.Key(file)
	if err != nil {
		s.unavailable = err
		return err
	}
	s.file, s.key = file, key

	if c, ok := s.cache.Get(key); ok {
		s.inc(MetricCacheHit)
		s.working = c
		return nil
	}
	s.inc(MetricCacheMiss)

	c, err := s.store.Load(ctx, file)
	if err != nil {
		s.unavailable = err
		s.host.Error(err.Error())
		return err
	}
	s.working = c
	if c.Len() > 0 {
		s.cache.Put(key, c)
	}
	log.WithField("file", key).Debugf("switched file, %d snapshots", c.Len())
	return nil
}

func (s *Session) ready() error {
	if s.file == "" {
		return ErrNoActiveFile
	}
	return s.unavailable
}

// Save captures the active file as a new snapshot. The working set only changes once the
// record is written.
func (s *Session) Save(ctx context.Context) (model.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ready(); err != nil {
		return model.Entry{}, err
	}
	label, ok, err := s.host.PromptLabel(ctx)
	if err != nil {
		return model.Entry{}, err
	}
	if !ok || label == "" {
		return model.Entry{}, ErrCanceled
	}
	text, err := s.host.Text()
	if err != nil {
		return model.Entry{}, errors.Wrap(err, "read active file")
	}
	if !utf8.ValidString(text) {
		s.inc(MetricSaveFailed)
		s.host.Error(ErrNotText.Error())
		return model.Entry{}, errors.Wrapf(ErrNotText, "%s", s.key)
	}

	next := s.working.Clone()
	e := model.Entry{
		ID:       model.NextID(next, s.now()),
		Desc:     model.NormalizeDesc(label),
		Value:    text,
		Position: s.host.Cursor(),
	}
	next.Set(e)

	if err := s.store.Save(ctx, s.file, next); err != nil {
		s.inc(MetricSaveFailed)
		s.host.Error(err.Error())
		return model.Entry{}, err
	}
	s.working = next
	s.cache.Put(s.key, next)
	s.inc(MetricSave)
	s.host.Info(msgCreated)
	return e, nil
}

// Restore replaces the active file's text with snapshot id and puts the cursor at the
// start of the saved line.
func (s *Session) Restore(ctx context.Context, id string) (model.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ready(); err != nil {
		return model.Entry{}, err
	}
	e, ok := s.working.Get(id)
	if !ok {
		return model.Entry{}, errors.Wrapf(ErrSnapshotNotFound, "%s", id)
	}
	if err := s.host.Replace(e.Value, model.Position{Line: e.Position.Line}); err != nil {
		s.host.Error(err.Error())
		return model.Entry{}, err
	}
	s.inc(MetricRestore)
	return e, nil
}

// Delete removes one snapshot. Removing the last one deletes the record.
func (s *Session) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ready(); err != nil {
		return err
	}
	next := s.working.Clone()
	if !next.Delete(id) {
		return errors.Wrapf(ErrSnapshotNotFound, "%s", id)
	}
	if err := s.store.DeleteEntry(ctx, s.file, next); err != nil {
		s.host.Error(err.Error())
		return err
	}
	s.working = next
	s.cache.Put(s.key, next)
	s.inc(MetricDelete)
	return nil
}

// DeleteAll removes every snapshot of the active file after confirmation.
func (s *Session) DeleteAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == "" {
		return ErrNoActiveFile
	}
	yes, err := s.host.Confirm(ctx, msgConfirmDelete)
	if err != nil {
		return err
	}
	if !yes {
		return ErrCanceled
	}
	if err := s.store.DeleteRecord(ctx, s.file); err != nil {
		s.host.Error(fmt.Sprintf("Clear failed: %v", err))
		return err
	}
	s.working = &model.Collection{}
	s.unavailable = nil
	s.cache.Delete(s.key)
	s.inc(MetricDeleteFile)
	return nil
}

// ClearAll removes the whole storage directory after confirmation.
func (s *Session) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	yes, err := s.host.Confirm(ctx, msgConfirmClear)
	if err != nil {
		return err
	}
	if !yes {
		return ErrCanceled
	}
	if err := s.store.ClearAll(ctx); err != nil {
		s.host.Error(fmt.Sprintf("Clear failed: %v", err))
		return err
	}
	s.working = &model.Collection{}
	s.unavailable = nil
	s.cache.Clear()
	s.inc(MetricClearAll)
	return nil
}

// Sync rereads the active file's record from disk, replacing the cached copy.
func (s *Session) Sync(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == "" {
		return ErrNoActiveFile
	}
	c, err := s.store.Load(ctx, s.file)
	if err != nil {
		s.unavailable = err
		s.working = &model.Collection{}
		s.cache.Delete(s.key)
		s.host.Error(err.Error())
		return err
	}
	s.unavailable = nil
	s.working = c
	s.cache.Put(s.key, c)
	return nil
}

// Reconfigure applies a configuration change. The tree location is a display flag only;
// a new storage root relocates the existing records and is adopted only when the move
// succeeds.
func (s *Session) Reconfigure(ctx context.Context, cfg *config.Config) (store.Relocation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cfg.TreeLocation.Valid() {
		s.tree = cfg.TreeLocation
	}
	root, warn := cfg.Root()
	if warn != nil {
		s.host.Warn(warn.Error())
	}
	r, err := s.store.Reconfigure(ctx, root)
	if err != nil {
		s.host.Error(err.Error())
		return r, err
	}
	if r.Moved {
		s.inc(MetricRelocations)
		s.host.Info(fmt.Sprintf(".snapshot have moved to %q", filepath.Dir(r.To)))
	}
	return r, nil
}

// ActiveKey returns the workspace-relative path of the active file.
func (s *Session) ActiveKey() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.key
}

// Working returns a copy of the active file's collection.
func (s *Session) Working() *model.Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.working.Clone()
}

func (s *Session) TreeLocation() config.TreeLocation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree
}

// Metrics returns the current counter values.
func (s *Session) Metrics() map[string]int64 {
	out := map[string]int64{}
	s.reg.Each(func(name string, i interface{}) {
		if c, ok := i.(metrics.Counter); ok {
			out[name] = c.Count()
		}
	})
	return out
}
