// Package store maps workspace files to JSON snapshot records and owns every read, write
// and delete of those records.
package store

import (
	"context"

	"github.com/rcliao/file-snapshot/internal/config"
	"github.com/rcliao/file-snapshot/internal/model"
)

// Store defines the snapshot storage interface.
type Store interface {
	// Key returns the cache key of file (its workspace-relative path).
	Key(file string) (string, error)

	// Load reads the collection for file. A missing record yields an empty collection.
	Load(ctx context.Context, file string) (*model.Collection, error)

	// Save replaces the record for file with c.
	Save(ctx context.Context, file string, c *model.Collection) error

	// DeleteEntry persists c after an entry was removed, deleting the record when c is empty.
	DeleteEntry(ctx context.Context, file string, c *model.Collection) error

	// DeleteRecord removes the record for file and prunes empty parent directories.
	DeleteRecord(ctx context.Context, file string) error

	// ClearAll removes the whole storage directory.
	ClearAll(ctx context.Context) error

	// StorageDir returns the active effective storage directory.
	StorageDir() string

	// Reconfigure switches to a new storage root, relocating existing records.
	Reconfigure(ctx context.Context, root config.StorageRoot) (Relocation, error)
}

var _ Store = (*FileStore)(nil)
