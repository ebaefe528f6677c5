package store

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/rcliao/file-snapshot/internal/model"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// FileStore implements Store with one JSON record per workspace file.
type FileStore struct {
	mapper *Mapper
	fs     FS
	log    log.FieldLogger
	locks  sync.Map // record path -> *sync.Mutex
}

// Option configures a FileStore.
type Option func(*FileStore)

// WithFS replaces the local filesystem.
func WithFS(fs FS) Option {
	return func(s *FileStore) { s.fs = fs }
}

// WithLogger sets the logger used for non-fatal problems such as prune failures.
func WithLogger(l log.FieldLogger) Option {
	return func(s *FileStore) { s.log = l }
}

// NewFileStore creates a store over the records located by m.
func NewFileStore(m *Mapper, opts ...Option) *FileStore {
	s := &FileStore{
		mapper: m,
		fs:     NewOSFS(),
		log:    log.StandardLogger(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Mapper returns the path mapper backing the store.
func (s *FileStore) Mapper() *Mapper { return s.mapper }

func (s *FileStore) StorageDir() string { return s.mapper.StorageDir() }

func (s *FileStore) Key(file string) (string, error) { return s.mapper.Key(file) }

func (s *FileStore) lock(path string) func() {
	v, _ := s.locks.LoadOrStore(path, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (s *FileStore) Load(ctx context.Context, file string) (*model.Collection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, ok, err := s.mapper.RecordPath(file)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &model.Collection{}, nil
	}

	unlock := s.lock(path)
	defer unlock()

	data, err := s.fs.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.WithError(err).WithField("record", path).Warn("unreadable snapshot record, treating as empty")
		}
		return &model.Collection{}, nil
	}
	c, err := Decode(data)
	if err != nil {
		return nil, errors.WithMessage(err, path)
	}
	return c, nil
}

func (s *FileStore) Save(ctx context.Context, file string, c *model.Collection) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, ok, err := s.mapper.RecordPath(file)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Wrapf(ErrExcludedPath, "%s", file)
	}

	data, err := Encode(c)
	if err != nil {
		return &Error{Kind: ErrWriteFailed, Path: path, Err: err}
	}

	unlock := s.lock(path)
	defer unlock()

	if err := s.fs.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return &Error{Kind: ErrWriteFailed, Path: path, Err: err}
	}
	if err := s.fs.WriteFile(path, data, filePerm); err != nil {
		return &Error{Kind: ErrWriteFailed, Path: path, Err: err}
	}
	return nil
}

func (s *FileStore) DeleteEntry(ctx context.Context, file string, c *model.Collection) error {
	if c.Len() > 0 {
		return s.Save(ctx, file, c)
	}
	return s.DeleteRecord(ctx, file)
}

func (s *FileStore) DeleteRecord(ctx context.Context, file string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, ok, err := s.mapper.RecordPath(file)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	unlock := s.lock(path)
	defer unlock()

	if err := s.fs.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return &Error{Kind: ErrDeleteFailed, Path: path, Err: err}
	}
	s.prune(filepath.Dir(path))
	return nil
}

// prune removes empty directories from dir upwards, stopping at the first non-empty
// directory or at the storage directory itself. Failures are logged only.
func (s *FileStore) prune(dir string) {
	root := s.mapper.StorageDir()
	for {
		rel, err := filepath.Rel(root, dir)
		if err != nil || !isBelow(rel) {
			return
		}
		entries, err := s.fs.ReadDir(dir)
		if err != nil {
			if !os.IsNotExist(err) {
				s.log.WithError(err).WithField("dir", dir).Error("prune: list directory")
			}
			return
		}
		if len(entries) > 0 {
			return
		}
		if err := s.fs.Remove(dir); err != nil {
			s.log.WithError(err).WithField("dir", dir).Error("prune: remove directory")
			return
		}
		s.log.WithField("dir", dir).Debug("pruned empty directory")
		dir = filepath.Dir(dir)
	}
}

func (s *FileStore) ClearAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := s.mapper.StorageDir()
	if err := s.fs.RemoveAll(dir); err != nil {
		return &Error{Kind: ErrDeleteFailed, Path: dir, Err: err}
	}
	return nil
}
