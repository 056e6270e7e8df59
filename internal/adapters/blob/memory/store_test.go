package memory_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	blobmem "invertebratorium/internal/adapters/blob/memory"
	"invertebratorium/internal/ports/blob"
)

func TestPutOpenRenameDelete(t *testing.T) {
	s := blobmem.New()
	ctx := context.Background()

	if err := s.Put(ctx, "tmp/abc", strings.NewReader("payload")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Rename(ctx, "tmp/abc", "123-final.gif"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if _, err := s.Open(ctx, "tmp/abc"); !errors.Is(err, blob.ErrNotFound) {
		t.Fatalf("old key should be gone, got %v", err)
	}

	rc, err := s.Open(ctx, "123-final.gif")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	got, _ := io.ReadAll(rc)
	rc.Close()
	if string(got) != "payload" {
		t.Fatalf("content mismatch: %q", got)
	}

	if err := s.Delete(ctx, "123-final.gif"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Delete(ctx, "123-final.gif"); !errors.Is(err, blob.ErrNotFound) {
		t.Fatalf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestPut_EmptyKeyIsInvalidNotMissing(t *testing.T) {
	s := blobmem.New()

	// clave vacía es un argumento inválido, no un blob ausente
	err := s.Put(context.Background(), "  ", strings.NewReader("x"))
	if err == nil {
		t.Fatal("empty key should be rejected")
	}
	if errors.Is(err, blob.ErrNotFound) {
		t.Fatalf("empty key misreported as not-found: %v", err)
	}
}
