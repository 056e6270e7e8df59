package memory

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"invertebratorium/internal/ports/blob"
)

type store struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// New crea un store en memoria (dev y tests).
func New() blob.Store {
	return &store{data: make(map[string][]byte)}
}

func (s *store) Put(ctx context.Context, key string, r io.Reader) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("empty key")
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = b
	return nil
}

func (s *store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.data[key]
	if !ok {
		return nil, blob.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (s *store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[key]; !ok {
		return blob.ErrNotFound
	}
	delete(s.data, key)
	return nil
}

func (s *store) Rename(ctx context.Context, oldKey, newKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.data[oldKey]
	if !ok {
		return blob.ErrNotFound
	}
	s.data[newKey] = b
	delete(s.data, oldKey)
	return nil
}
