package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"invertebratorium/internal/domain/animals"
)

type animalsRepo struct {
	mu   sync.RWMutex
	byID map[string]animals.Animal
}

func NewAnimalsRepo() animals.Repository {
	return &animalsRepo{
		byID: make(map[string]animals.Animal),
	}
}

func (r *animalsRepo) Create(ctx context.Context, a animals.Animal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(a.ID) == "" {
		return errors.New("animal id required")
	}
	if _, exists := r.byID[a.ID]; exists {
		return errors.New("animal already exists")
	}
	// refleja el índice único de lower(species_name) del backend sql
	for _, other := range r.byID {
		if strings.EqualFold(other.SpeciesName, a.SpeciesName) {
			return animals.ErrDuplicate
		}
	}
	r.byID[a.ID] = a
	return nil
}

func (r *animalsRepo) Update(ctx context.Context, a animals.Animal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[a.ID]; !exists {
		return animals.ErrNotFound
	}
	for _, other := range r.byID {
		if other.ID != a.ID && strings.EqualFold(other.SpeciesName, a.SpeciesName) {
			return animals.ErrDuplicate
		}
	}
	r.byID[a.ID] = a
	return nil
}

func (r *animalsRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[id]; !exists {
		return animals.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *animalsRepo) GetByID(ctx context.Context, id string) (animals.Animal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	if !ok {
		return animals.Animal{}, animals.ErrNotFound
	}
	return a, nil
}

func (r *animalsRepo) ListAll(ctx context.Context) ([]animals.Animal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]animals.Animal, 0, len(r.byID))
	for _, a := range r.byID {
		out = append(out, a)
	}
	sortByCommonName(out)
	return out, nil
}

func (r *animalsRepo) ListByCategory(ctx context.Context, categoryID string) ([]animals.Animal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]animals.Animal, 0)
	for _, a := range r.byID {
		if a.CategoryID == categoryID {
			out = append(out, a)
		}
	}
	sortByCommonName(out)
	return out, nil
}

func (r *animalsRepo) FindBySpeciesName(ctx context.Context, name string) (animals.Animal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.byID {
		if strings.EqualFold(a.SpeciesName, name) {
			return a, nil
		}
	}
	return animals.Animal{}, animals.ErrNotFound
}

func (r *animalsRepo) CountByCategory(ctx context.Context) (map[string]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[string]int)
	for _, a := range r.byID {
		counts[a.CategoryID]++
	}
	return counts, nil
}

func sortByCommonName(list []animals.Animal) {
	sort.Slice(list, func(i, j int) bool {
		return strings.ToLower(list[i].CommonName) < strings.ToLower(list[j].CommonName)
	})
}
