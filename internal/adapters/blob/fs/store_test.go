package fs_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	blobfs "invertebratorium/internal/adapters/blob/fs"
	"invertebratorium/internal/ports/blob"
)

func newStore(t *testing.T) (*blobfs.Store, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := blobfs.New(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return s, dir
}

func TestPutOpenDelete(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, "tmp/abc", strings.NewReader("payload")); err != nil {
		t.Fatalf("put: %v", err)
	}

	rc, err := s.Open(ctx, "tmp/abc")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	got, _ := io.ReadAll(rc)
	rc.Close()
	if string(got) != "payload" {
		t.Fatalf("content mismatch: %q", got)
	}

	if err := s.Delete(ctx, "tmp/abc"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Open(ctx, "tmp/abc"); !errors.Is(err, blob.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestRename(t *testing.T) {
	s, dir := newStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, "tmp/abc", strings.NewReader("img")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Rename(ctx, "tmp/abc", "123-final.gif"); err != nil {
		t.Fatalf("rename: %v", err)
	}

	if _, err := s.Open(ctx, "tmp/abc"); !errors.Is(err, blob.ErrNotFound) {
		t.Fatalf("old key should be gone, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "123-final.gif")); err != nil {
		t.Fatalf("renamed file missing on disk: %v", err)
	}
}

func TestMissingKeys(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	if _, err := s.Open(ctx, "nope"); !errors.Is(err, blob.ErrNotFound) {
		t.Fatalf("open: expected ErrNotFound, got %v", err)
	}
	if err := s.Delete(ctx, "nope"); !errors.Is(err, blob.ErrNotFound) {
		t.Fatalf("delete: expected ErrNotFound, got %v", err)
	}
	if err := s.Rename(ctx, "nope", "other"); !errors.Is(err, blob.ErrNotFound) {
		t.Fatalf("rename: expected ErrNotFound, got %v", err)
	}
}

func TestTraversalKeysStayInsideRoot(t *testing.T) {
	s, dir := newStore(t)
	ctx := context.Background()

	for _, key := range []string{"../escaped", "/etc/passwd", "a/../../escaped", "  "} {
		if err := s.Put(ctx, key, strings.NewReader("x")); err == nil {
			t.Fatalf("key %q should be rejected", key)
		}
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(dir), "escaped")); !os.IsNotExist(err) {
		t.Fatal("traversal key wrote outside the root")
	}
}
