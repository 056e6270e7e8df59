package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"invertebratorium/internal/domain/categories"
)

type categoriesRepo struct {
	mu   sync.RWMutex
	byID map[string]categories.Category
}

func NewCategoriesRepo() categories.Repository {
	return &categoriesRepo{
		byID: make(map[string]categories.Category),
	}
}

func (r *categoriesRepo) Create(ctx context.Context, c categories.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(c.ID) == "" {
		return errors.New("category id required")
	}
	if _, exists := r.byID[c.ID]; exists {
		return errors.New("category already exists")
	}
	for _, other := range r.byID {
		if strings.EqualFold(other.Name, c.Name) {
			return categories.ErrDuplicate
		}
	}
	r.byID[c.ID] = c
	return nil
}

func (r *categoriesRepo) Update(ctx context.Context, c categories.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[c.ID]; !exists {
		return categories.ErrNotFound
	}
	for _, other := range r.byID {
		if other.ID != c.ID && strings.EqualFold(other.Name, c.Name) {
			return categories.ErrDuplicate
		}
	}
	r.byID[c.ID] = c
	return nil
}

func (r *categoriesRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[id]; !exists {
		return categories.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *categoriesRepo) GetByID(ctx context.Context, id string) (categories.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byID[id]
	if !ok {
		return categories.Category{}, categories.ErrNotFound
	}
	return c, nil
}

func (r *categoriesRepo) ListAll(ctx context.Context) ([]categories.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]categories.Category, 0, len(r.byID))
	for _, c := range r.byID {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

func (r *categoriesRepo) FindByName(ctx context.Context, name string) (categories.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.byID {
		if strings.EqualFold(c.Name, name) {
			return c, nil
		}
	}
	return categories.Category{}, categories.ErrNotFound
}

func (r *categoriesRepo) Exists(ctx context.Context, id string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byID[id]
	return ok, nil
}

func (r *categoriesRepo) SetAnimalCount(ctx context.Context, id string, n int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.byID[id]
	if !ok {
		return categories.ErrNotFound
	}
	c.AnimalCount = n
	r.byID[id] = c
	return nil
}
