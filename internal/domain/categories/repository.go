package categories

import "context"

type Repository interface {
	Create(ctx context.Context, c Category) error
	Update(ctx context.Context, c Category) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Category, error)

	// ListAll devuelve todas, ordenadas por Name ascendente.
	ListAll(ctx context.Context) ([]Category, error)

	// FindByName busca sin distinguir mayúsculas.
	FindByName(ctx context.Context, name string) (Category, error)

	Exists(ctx context.Context, id string) (bool, error)

	// SetAnimalCount persiste la cache denormalizada.
	SetAnimalCount(ctx context.Context, id string, n int) error
}
