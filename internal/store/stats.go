package store

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Stats holds storage statistics.
type Stats struct {
	StorageDir string      `json:"storage_dir"`
	SizeBytes  int64       `json:"size_bytes"`
	Records    int         `json:"records"`
	Snapshots  int         `json:"snapshots"`
	Malformed  int         `json:"malformed"`
	Files      []FileStats `json:"files"`
}

// FileStats holds per-file counts.
type FileStats struct {
	File      string `json:"file"`
	Snapshots int    `json:"snapshots"`
	SizeBytes int64  `json:"size_bytes"`
}

// Stats walks the storage directory and counts records and snapshots.
func (s *FileStore) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{StorageDir: s.mapper.StorageDir()}

	err := s.walkRecords(ctx, func(recordPath, rel string) error {
		st.Records++
		fst := FileStats{File: rel}
		if info, err := s.fs.Stat(recordPath); err == nil {
			fst.SizeBytes = info.Size()
			st.SizeBytes += info.Size()
		}
		data, err := s.fs.ReadFile(recordPath)
		if err != nil {
			st.Malformed++
			return nil
		}
		c, err := Decode(data)
		if err != nil {
			st.Malformed++
			return nil
		}
		fst.Snapshots = c.Len()
		st.Snapshots += c.Len()
		st.Files = append(st.Files, fst)
		return nil
	})
	return st, err
}

// walkRecords calls fn for every record under the storage directory with the record path
// and the slash-separated workspace-relative path of the file it belongs to.
func (s *FileStore) walkRecords(ctx context.Context, fn func(recordPath, rel string) error) error {
	return s.walkDir(ctx, s.mapper.StorageDir(), "", fn)
}

func (s *FileStore) walkDir(ctx context.Context, dir, prefix string, fn func(string, string) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	entries, err := s.fs.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		full := filepath.Join(dir, e.Name())
		rel := path.Join(prefix, e.Name())
		if e.IsDir() {
			if err := s.walkDir(ctx, full, rel, fn); err != nil {
				return err
			}
			continue
		}
		if !strings.HasSuffix(e.Name(), RecordExt) {
			continue
		}
		if err := fn(full, strings.TrimSuffix(rel, RecordExt)); err != nil {
			return err
		}
	}
	return nil
}
