package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"invertebratorium/internal/domain/categories"
)

type CategoriesRepo struct {
	db *sql.DB
}

func NewCategoriesRepo(db *sql.DB) *CategoriesRepo {
	return &CategoriesRepo{db: db}
}

const categoryColumns = `
	id, name, description, animal_count, created_at, updated_at
`

func (r *CategoriesRepo) Create(ctx context.Context, c categories.Category) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO categories (
			id, name, description, animal_count, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6)
	`,
		c.ID,
		c.Name,
		c.Description,
		c.AnimalCount,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return categories.ErrDuplicate
	}
	return err
}

func (r *CategoriesRepo) Update(ctx context.Context, c categories.Category) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE categories
		SET
			name = $2,
			description = $3,
			updated_at = $4
		WHERE id = $1
	`,
		c.ID,
		c.Name,
		c.Description,
		c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return categories.ErrDuplicate
		}
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return categories.ErrNotFound
	}
	return nil
}

func (r *CategoriesRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return categories.ErrNotFound
	}
	return nil
}

func (r *CategoriesRepo) GetByID(ctx context.Context, id string) (categories.Category, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return categories.Category{}, categories.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+categoryColumns+`
		FROM categories
		WHERE id = $1
	`, id)
	return scanCategory(row)
}

func (r *CategoriesRepo) ListAll(ctx context.Context) ([]categories.Category, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+categoryColumns+`
		FROM categories
		ORDER BY lower(name) ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]categories.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CategoriesRepo) FindByName(ctx context.Context, name string) (categories.Category, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+categoryColumns+`
		FROM categories
		WHERE lower(name) = lower($1)
	`, name)
	return scanCategory(row)
}

func (r *CategoriesRepo) Exists(ctx context.Context, id string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM categories WHERE id = $1`, id,
	).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *CategoriesRepo) SetAnimalCount(ctx context.Context, id string, n int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories SET animal_count = $2 WHERE id = $1`, id, n,
	)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return categories.ErrNotFound
	}
	return nil
}

func scanCategory(row rowScanner) (categories.Category, error) {
	var c categories.Category
	if err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Description,
		&c.AnimalCount,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return categories.Category{}, categories.ErrNotFound
		}
		return categories.Category{}, err
	}
	return c, nil
}
