package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rcliao/file-snapshot/internal/model"
)

func TestSearch(t *testing.T) {
	ctx := context.Background()
	s, root := newTestStore(t)
	s.Save(ctx, filepath.Join(root, "a.go"), model.NewCollection(
		entry("1", "Before refactor", "package a\nfunc Old() {}\n"),
		entry("2", "after", "package a\nfunc New() {}\n"),
	))
	s.Save(ctx, filepath.Join(root, "lib", "b.go"), model.NewCollection(
		entry("3", "refactor done", "package b\n"),
	))

	results, err := s.Search(ctx, SearchParams{Query: "refactor"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 label matches, got %d", len(results))
	}
	for _, r := range results {
		if r.Line != -1 {
			t.Errorf("label-only match should have line -1, got %d", r.Line)
		}
	}

	results, _ = s.Search(ctx, SearchParams{Query: "func new", Content: true})
	if len(results) != 1 || results[0].Entry.ID != "2" || results[0].File != "a.go" {
		t.Fatalf("unexpected content results %+v", results)
	}
	if results[0].Line != 1 {
		t.Errorf("expected match on line 1, got %d", results[0].Line)
	}

	results, _ = s.Search(ctx, SearchParams{Query: "a", Limit: 1})
	if len(results) != 1 {
		t.Errorf("expected limit to apply, got %d", len(results))
	}
}
