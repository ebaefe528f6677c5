package store

import (
	"os"
	"path/filepath"
)

// FS abstracts the filesystem operations used by the storage engine.
type FS interface {
	ReadFile(path string) ([]byte, error)
	// WriteFile replaces path so readers see either the old or the new content.
	WriteFile(path string, data []byte, perm os.FileMode) error
	MkdirAll(path string, perm os.FileMode) error
	Remove(path string) error
	RemoveAll(path string) error
	Rename(oldPath, newPath string) error
	Stat(path string) (os.FileInfo, error)
	ReadDir(path string) ([]os.DirEntry, error)
}

// OSFS implements FS on the local disk.
type OSFS struct{}

func NewOSFS() *OSFS {
	return &OSFS{}
}

func (OSFS) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }

func (OSFS) MkdirAll(path string, perm os.FileMode) error { return os.MkdirAll(path, perm) }

func (OSFS) Remove(path string) error { return os.Remove(path) }

func (OSFS) RemoveAll(path string) error { return os.RemoveAll(path) }

func (OSFS) Rename(oldPath, newPath string) error { return os.Rename(oldPath, newPath) }

func (OSFS) Stat(path string) (os.FileInfo, error) { return os.Stat(path) }

func (OSFS) ReadDir(path string) ([]os.DirEntry, error) { return os.ReadDir(path) }

// WriteFile writes to a temp file in the target directory, then renames it into place.
func (OSFS) WriteFile(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return err
	}
	return nil
}
