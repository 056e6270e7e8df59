package blob

import (
	"context"
	"errors"
	"io"
)

var (
	ErrNotFound = errors.New("blob not found")
)

// Store es el puerto de almacenamiento de archivos (imágenes).
// Las claves son rutas relativas simples; "tmp/..." se usa como área
// de espera antes de promover a nombre definitivo.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error

	// Rename mueve un blob a otra clave (promoción tmp -> definitivo).
	Rename(ctx context.Context, oldKey, newKey string) error
}
