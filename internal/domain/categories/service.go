package categories

import (
	"context"
	"errors"
	"time"

	"invertebratorium/internal/domain/animals"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var (
	ErrNotFound  = errors.New("category not found")
	ErrDuplicate = errors.New("category name already in use")

	// ErrInUse: no se borra una categoría mientras algún animal la
	// referencie. Precondición dura, acá no hay cascada.
	ErrInUse = errors.New("category has animals")
)

// AnimalSource es lo que este módulo necesita del módulo de animales.
type AnimalSource interface {
	ListByCategory(ctx context.Context, categoryID string) ([]animals.Animal, error)
	CountByCategory(ctx context.Context) (map[string]int, error)
}

type Input struct {
	Name        string
	Description string
}

type Service struct {
	repo    Repository
	animals AnimalSource
	now     func() time.Time
}

func NewService(repo Repository, animalSrc AnimalSource) *Service {
	return &Service{
		repo:    repo,
		animals: animalSrc,
		now:     time.Now,
	}
}

// List devuelve todas las categorías con AnimalCount recalculado. El
// recálculo también se persiste, pero si eso falla el listado no se cae.
func (s *Service) List(ctx context.Context) ([]Category, error) {
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	counts, err := s.animals.CountByCategory(ctx)
	if err != nil {
		return nil, err
	}

	for i := range all {
		n := counts[all[i].ID]
		if n != all[i].AnimalCount {
			all[i].AnimalCount = n
			_ = s.repo.SetAnimalCount(ctx, all[i].ID, n)
		}
	}
	return all, nil
}

// Detail carga la categoría y sus animales en paralelo: son dos lecturas
// independientes.
func (s *Service) Detail(ctx context.Context, id string) (Category, []animals.Animal, error) {
	var (
		cat     Category
		members []animals.Animal
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cat, err = s.repo.GetByID(ctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		members, err = s.animals.ListByCategory(ctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return Category{}, nil, err
	}

	cat.AnimalCount = len(members)
	return cat, members, nil
}

func (s *Service) Get(ctx context.Context, id string) (Category, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return 0, err
	}
	return len(all), nil
}

// Exists, Ref y Refs implementan animals.CategoryDirectory.
func (s *Service) Exists(ctx context.Context, id string) (bool, error) {
	return s.repo.Exists(ctx, id)
}

func (s *Service) Ref(ctx context.Context, id string) (animals.CategoryRef, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return animals.CategoryRef{}, err
	}
	return animals.CategoryRef{ID: c.ID, Name: c.Name}, nil
}

func (s *Service) Refs(ctx context.Context) ([]animals.CategoryRef, error) {
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	refs := make([]animals.CategoryRef, 0, len(all))
	for _, c := range all {
		refs = append(refs, animals.CategoryRef{ID: c.ID, Name: c.Name})
	}
	return refs, nil
}

// Create persiste una categoría nueva; nombre repetido (sin distinguir
// mayúsculas) devuelve la existente con ErrDuplicate.
func (s *Service) Create(ctx context.Context, in Input) (Category, error) {
	if existing, err := s.repo.FindByName(ctx, in.Name); err == nil {
		return existing, ErrDuplicate
	} else if !errors.Is(err, ErrNotFound) {
		return Category{}, err
	}

	now := s.now()
	c := Category{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, c); err != nil {
		if errors.Is(err, ErrDuplicate) {
			if existing, ferr := s.repo.FindByName(ctx, in.Name); ferr == nil {
				return existing, ErrDuplicate
			}
		}
		return Category{}, err
	}
	return c, nil
}

func (s *Service) Update(ctx context.Context, id string, in Input) (Category, error) {
	prev, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Category{}, err
	}

	if existing, err := s.repo.FindByName(ctx, in.Name); err == nil && existing.ID != id {
		return existing, ErrDuplicate
	} else if err != nil && !errors.Is(err, ErrNotFound) {
		return Category{}, err
	}

	c := prev
	c.Name = in.Name
	c.Description = in.Description
	c.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, c); err != nil {
		return Category{}, err
	}
	return c, nil
}

// Delete borra solo si ningún animal referencia la categoría; si hay
// bloqueantes los devuelve junto con ErrInUse para listarlos.
func (s *Service) Delete(ctx context.Context, id string) ([]animals.Animal, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	blockers, err := s.animals.ListByCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(blockers) > 0 {
		return blockers, ErrInUse
	}

	return nil, s.repo.Delete(ctx, id)
}
