package store

import (
	"context"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/rcliao/file-snapshot/internal/model"
)

// Record is one exported record: a workspace-relative file and its snapshots.
type Record struct {
	File      string        `json:"file"`
	Snapshots []model.Entry `json:"snapshots"`
}

// ExportAll returns every record under the storage directory in walk order.
func (s *FileStore) ExportAll(ctx context.Context) ([]Record, error) {
	var records []Record
	err := s.walkRecords(ctx, func(recordPath, rel string) error {
		data, err := s.fs.ReadFile(recordPath)
		if err != nil {
			return errors.Wrapf(err, "read %s", recordPath)
		}
		c, err := Decode(data)
		if err != nil {
			return errors.WithMessage(err, recordPath)
		}
		records = append(records, Record{File: rel, Snapshots: c.Entries()})
		return nil
	})
	return records, err
}

// Import merges exported records into the store. Files are resolved against the first
// workspace root. Snapshots whose id already exists are skipped, and so are records for
// excluded files or files outside the workspace, with a warning. Returns the number of
// snapshots written.
func (s *FileStore) Import(ctx context.Context, records []Record) (int, error) {
	ws := s.mapper.Workspace()
	if len(ws.Roots) == 0 {
		return 0, errors.New("workspace has no root")
	}

	imported := 0
	for _, r := range records {
		file := filepath.Join(ws.Roots[0], filepath.FromSlash(r.File))
		if _, ok, err := s.mapper.RecordPath(file); err != nil || !ok {
			if err == nil {
				err = ErrExcludedPath
			}
			s.log.WithError(err).WithField("file", r.File).Warn("skipping record on import")
			continue
		}
		c, err := s.Load(ctx, file)
		if err != nil {
			return imported, err
		}
		added := 0
		for _, e := range r.Snapshots {
			if e.ID == "" || c.Has(e.ID) {
				continue
			}
			e.Desc = model.NormalizeDesc(e.Desc)
			c.Set(e)
			added++
		}
		if added == 0 {
			continue
		}
		if err := s.Save(ctx, file, c); err != nil {
			return imported, err
		}
		imported += added
	}
	return imported, nil
}
