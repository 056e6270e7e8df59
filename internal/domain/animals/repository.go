package animals

import "context"

type Repository interface {
	Create(ctx context.Context, a Animal) error
	Update(ctx context.Context, a Animal) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Animal, error)

	// ListAll devuelve todos, ordenados por CommonName ascendente.
	ListAll(ctx context.Context) ([]Animal, error)
	ListByCategory(ctx context.Context, categoryID string) ([]Animal, error)

	// FindBySpeciesName busca sin distinguir mayúsculas.
	FindBySpeciesName(ctx context.Context, name string) (Animal, error)

	// CountByCategory agrupa la cantidad de animales por categoría.
	CountByCategory(ctx context.Context) (map[string]int, error)
}
