package animals

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound = errors.New("animal not found")

	// ErrDuplicate se devuelve junto con el registro existente, para que
	// el workflow redirija al canónico en vez de crear un duplicado.
	ErrDuplicate = errors.New("species name already in use")

	// ErrNoCategory: la categoría referida no existe al momento de guardar.
	ErrNoCategory = errors.New("category does not exist")
)

// CategoryRef es lo mínimo que necesita este módulo saber de una
// categoría (el select del form).
type CategoryRef struct {
	ID   string
	Name string
}

func (c CategoryRef) URL() string { return "/categories/" + c.ID }

// CategoryDirectory evita importar el paquete categories (rompe ciclos).
type CategoryDirectory interface {
	Exists(ctx context.Context, id string) (bool, error)
	Ref(ctx context.Context, id string) (CategoryRef, error)
	Refs(ctx context.Context) ([]CategoryRef, error)
}

// Input son los campos mutables ya validados y tipados.
type Input struct {
	CommonName    string
	SpeciesName   string
	Description   string
	CategoryID    string
	Price         decimal.Decimal
	NumberInStock int

	// Image solo se aplica cuando ImageChanged es true; si no, en Update
	// se conserva la imagen previa tal cual.
	Image        string
	ImageChanged bool
}

// Totals son los agregados que muestra el listado y el dashboard.
type Totals struct {
	Species int
	InStock int
	Value   decimal.Decimal
}

type Service struct {
	repo       Repository
	categories CategoryDirectory
	now        func() time.Time
}

func NewService(repo Repository, categories CategoryDirectory) *Service {
	return &Service{
		repo:       repo,
		categories: categories,
		now:        time.Now,
	}
}

// List devuelve todos los animales (por nombre común) más los agregados.
func (s *Service) List(ctx context.Context) ([]Animal, Totals, error) {
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, Totals{}, err
	}
	return all, computeTotals(all), nil
}

// Totals calcula los agregados del inventario sin devolver el listado.
func (s *Service) Totals(ctx context.Context) (Totals, error) {
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return Totals{}, err
	}
	return computeTotals(all), nil
}

func computeTotals(all []Animal) Totals {
	t := Totals{Species: len(all), Value: decimal.Zero}
	for _, a := range all {
		t.InStock += a.NumberInStock
		t.Value = t.Value.Add(a.StockValue())
	}
	return t
}

func (s *Service) Get(ctx context.Context, id string) (Animal, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByCategory(ctx context.Context, categoryID string) ([]Animal, error) {
	return s.repo.ListByCategory(ctx, categoryID)
}

func (s *Service) CountByCategory(ctx context.Context) (map[string]int, error) {
	return s.repo.CountByCategory(ctx)
}

// CategoryRefs expone las categorías disponibles para el select del form.
func (s *Service) CategoryRefs(ctx context.Context) ([]CategoryRef, error) {
	return s.categories.Refs(ctx)
}

func (s *Service) CategoryRef(ctx context.Context, id string) (CategoryRef, error) {
	return s.categories.Ref(ctx, id)
}

// Create persiste un animal nuevo. Si ya existe uno con el mismo nombre
// de especie (sin distinguir mayúsculas) devuelve ese registro junto con
// ErrDuplicate, nunca crea un segundo.
func (s *Service) Create(ctx context.Context, in Input) (Animal, error) {
	if existing, err := s.repo.FindBySpeciesName(ctx, in.SpeciesName); err == nil {
		return existing, ErrDuplicate
	} else if !errors.Is(err, ErrNotFound) {
		return Animal{}, err
	}

	ok, err := s.categories.Exists(ctx, in.CategoryID)
	if err != nil {
		return Animal{}, err
	}
	if !ok {
		return Animal{}, ErrNoCategory
	}

	now := s.now()
	a := Animal{
		ID:            uuid.NewString(),
		CommonName:    in.CommonName,
		SpeciesName:   in.SpeciesName,
		Description:   in.Description,
		CategoryID:    in.CategoryID,
		Price:         in.Price,
		NumberInStock: in.NumberInStock,
		Image:         in.Image,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, a); err != nil {
		// carrera chequeo-inserción: el índice único del backend la
		// convierte en el mismo comportamiento de duplicado
		if errors.Is(err, ErrDuplicate) {
			if existing, ferr := s.repo.FindBySpeciesName(ctx, in.SpeciesName); ferr == nil {
				return existing, ErrDuplicate
			}
		}
		return Animal{}, err
	}
	return a, nil
}

// Update reemplaza los campos mutables conservando identidad. El target
// tiene que existir; si no, ErrNotFound (nunca crea por las dudas).
func (s *Service) Update(ctx context.Context, id string, in Input) (Animal, error) {
	prev, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Animal{}, err
	}

	if existing, err := s.repo.FindBySpeciesName(ctx, in.SpeciesName); err == nil && existing.ID != id {
		return existing, ErrDuplicate
	} else if err != nil && !errors.Is(err, ErrNotFound) {
		return Animal{}, err
	}

	ok, err := s.categories.Exists(ctx, in.CategoryID)
	if err != nil {
		return Animal{}, err
	}
	if !ok {
		return Animal{}, ErrNoCategory
	}

	a := prev
	a.CommonName = in.CommonName
	a.SpeciesName = in.SpeciesName
	a.Description = in.Description
	a.CategoryID = in.CategoryID
	a.Price = in.Price
	a.NumberInStock = in.NumberInStock
	if in.ImageChanged {
		a.Image = in.Image
	}
	a.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, a); err != nil {
		return Animal{}, err
	}
	return a, nil
}

// SetImage reescribe solo la referencia a imagen de un registro ya
// guardado. Para reparar el registro cuando la promoción del blob falla
// después de persistir.
func (s *Service) SetImage(ctx context.Context, id, key string) error {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	a.Image = key
	a.UpdatedAt = s.now()
	return s.repo.Update(ctx, a)
}

// Delete borra y devuelve el registro borrado (el caller libera la imagen).
func (s *Service) Delete(ctx context.Context, id string) (Animal, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Animal{}, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return Animal{}, err
	}
	return a, nil
}
