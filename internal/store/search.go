package store

import (
	"context"
	"strings"

	"github.com/rcliao/file-snapshot/internal/model"
)

// SearchParams holds parameters for searching snapshots.
type SearchParams struct {
	Query string
	// Content also matches the saved text, not only the label.
	Content bool
	Limit   int
}

// SearchResult is a matching snapshot with the file it belongs to.
type SearchResult struct {
	File  string      `json:"file"`
	Entry model.Entry `json:"snapshot"`
	// Line is the first line (0-based) of the saved text containing the query, or -1 when
	// only the label matched.
	Line int `json:"line"`
}

// Search finds snapshots whose label (and optionally content) contains the query,
// case-insensitively. Malformed records are skipped.
func (s *FileStore) Search(ctx context.Context, p SearchParams) ([]SearchResult, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}
	q := strings.ToLower(p.Query)

	var results []SearchResult
	err := s.walkRecords(ctx, func(recordPath, rel string) error {
		if len(results) >= limit {
			return nil
		}
		data, err := s.fs.ReadFile(recordPath)
		if err != nil {
			return nil
		}
		c, err := Decode(data)
		if err != nil {
			s.log.WithError(err).WithField("record", recordPath).Warn("search: skipping record")
			return nil
		}
		for _, e := range c.Entries() {
			if len(results) >= limit {
				break
			}
			line := -1
			if p.Content {
				line = matchLine(e.Value, q)
			}
			if line < 0 && !strings.Contains(strings.ToLower(e.Desc), q) {
				continue
			}
			results = append(results, SearchResult{File: rel, Entry: e, Line: line})
		}
		return nil
	})
	return results, err
}

func matchLine(text, q string) int {
	for i, l := range strings.Split(text, "\n") {
		if strings.Contains(strings.ToLower(l), q) {
			return i
		}
	}
	return -1
}
