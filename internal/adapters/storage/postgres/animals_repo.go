package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"invertebratorium/internal/domain/animals"
)

type AnimalsRepo struct {
	db *sql.DB
}

func NewAnimalsRepo(db *sql.DB) *AnimalsRepo {
	return &AnimalsRepo{db: db}
}

const animalColumns = `
	id, common_name, species_name, description, category_id,
	price, number_in_stock, image, created_at, updated_at
`

func (r *AnimalsRepo) Create(ctx context.Context, a animals.Animal) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO animals (
			id, common_name, species_name, description, category_id,
			price, number_in_stock, image, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`,
		a.ID,
		a.CommonName,
		a.SpeciesName,
		a.Description,
		a.CategoryID,
		a.Price,
		a.NumberInStock,
		a.Image,
		a.CreatedAt,
		a.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return animals.ErrDuplicate
	}
	return err
}

func (r *AnimalsRepo) Update(ctx context.Context, a animals.Animal) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE animals
		SET
			common_name = $2,
			species_name = $3,
			description = $4,
			category_id = $5,
			price = $6,
			number_in_stock = $7,
			image = $8,
			updated_at = $9
		WHERE id = $1
	`,
		a.ID,
		a.CommonName,
		a.SpeciesName,
		a.Description,
		a.CategoryID,
		a.Price,
		a.NumberInStock,
		a.Image,
		a.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return animals.ErrDuplicate
		}
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return animals.ErrNotFound
	}
	return nil
}

func (r *AnimalsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM animals WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return animals.ErrNotFound
	}
	return nil
}

func (r *AnimalsRepo) GetByID(ctx context.Context, id string) (animals.Animal, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return animals.Animal{}, animals.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+animalColumns+`
		FROM animals
		WHERE id = $1
	`, id)
	return scanAnimal(row)
}

func (r *AnimalsRepo) ListAll(ctx context.Context) ([]animals.Animal, error) {
	return r.list(ctx, `
		SELECT `+animalColumns+`
		FROM animals
		ORDER BY lower(common_name) ASC
	`)
}

func (r *AnimalsRepo) ListByCategory(ctx context.Context, categoryID string) ([]animals.Animal, error) {
	return r.list(ctx, `
		SELECT `+animalColumns+`
		FROM animals
		WHERE category_id = $1
		ORDER BY lower(common_name) ASC
	`, categoryID)
}

func (r *AnimalsRepo) FindBySpeciesName(ctx context.Context, name string) (animals.Animal, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+animalColumns+`
		FROM animals
		WHERE lower(species_name) = lower($1)
	`, name)
	return scanAnimal(row)
}

func (r *AnimalsRepo) CountByCategory(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT category_id, count(*)
		FROM animals
		GROUP BY category_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			id string
			n  int
		)
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		counts[id] = n
	}
	return counts, rows.Err()
}

func (r *AnimalsRepo) list(ctx context.Context, query string, args ...any) ([]animals.Animal, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]animals.Animal, 0)
	for rows.Next() {
		a, err := scanAnimal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnimal(row rowScanner) (animals.Animal, error) {
	var a animals.Animal
	if err := row.Scan(
		&a.ID,
		&a.CommonName,
		&a.SpeciesName,
		&a.Description,
		&a.CategoryID,
		&a.Price,
		&a.NumberInStock,
		&a.Image,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return animals.Animal{}, animals.ErrNotFound
		}
		return animals.Animal{}, err
	}
	return a, nil
}
