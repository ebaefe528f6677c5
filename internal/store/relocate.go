package store

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rcliao/file-snapshot/internal/config"
)

// Relocation describes the outcome of a storage root change.
type Relocation struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Moved bool   `json:"moved"`
}

// Reconfigure computes the storage directory for root. When a directory already exists at
// the old location it is moved to the new one; the new root only becomes active once the
// move succeeded. On failure the old root stays active and ErrRelocationFailed is returned.
func (s *FileStore) Reconfigure(ctx context.Context, root config.StorageRoot) (Relocation, error) {
	if err := ctx.Err(); err != nil {
		return Relocation{}, err
	}
	from := s.mapper.StorageDir()
	to := StorageDirFor(s.mapper.Workspace(), root)
	r := Relocation{From: from, To: to}

	if from == to {
		s.mapper.setRoot(root)
		return r, nil
	}
	if _, err := s.fs.Stat(from); err != nil {
		if os.IsNotExist(err) {
			s.mapper.setRoot(root)
			return r, nil
		}
		return r, &Error{Kind: ErrRelocationFailed, Path: from, Err: err}
	}

	if err := s.relocate(from, to); err != nil {
		return r, err
	}
	s.mapper.setRoot(root)
	r.Moved = true
	s.log.WithField("from", from).WithField("to", to).Info("snapshot directory relocated")
	return r, nil
}

func (s *FileStore) relocate(from, to string) error {
	if err := s.fs.MkdirAll(filepath.Dir(to), dirPerm); err != nil {
		return &Error{Kind: ErrRelocationFailed, Path: to, Err: err}
	}
	if err := s.fs.Rename(from, to); err != nil {
		return &Error{Kind: ErrRelocationFailed, Path: from, Err: err}
	}
	return nil
}
