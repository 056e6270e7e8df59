package images

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"invertebratorium/internal/platform/logger"
	"invertebratorium/internal/ports/blob"

	"github.com/google/uuid"
)

// MaxBytes es el tamaño máximo de imagen aceptado (5 MiB).
const MaxBytes = 5 << 20

var (
	ErrTooLarge = errors.New("image too large")
	ErrBadType  = errors.New("unsupported image type")
)

var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// Service maneja el ciclo de vida de las imágenes: subir a tmp,
// promover a definitivo cuando la entidad se guardó, y borrar huérfanos.
type Service struct {
	store blob.Store
	log   logger.Logger
	now   func() time.Time
}

func NewService(store blob.Store, log logger.Logger) *Service {
	return &Service{store: store, log: log, now: time.Now}
}

// Stage valida tipo y tamaño y escribe el archivo en el área temporal.
// Devuelve la clave temporal; si la validación falla no se escribe nada.
func (s *Service) Stage(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	if fh.Size > MaxBytes {
		return "", ErrTooLarge
	}

	declared := fh.Header.Get("Content-Type")
	if declared != "" && !allowedTypes[declared] {
		return "", ErrBadType
	}

	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	// el content-type declarado se puede mentir; olfateamos los primeros bytes
	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	if !allowedTypes[http.DetectContentType(head[:n])] {
		return "", ErrBadType
	}

	key := "tmp/" + uuid.NewString()
	body := io.MultiReader(bytes.NewReader(head[:n]), f)
	if err := s.store.Put(ctx, key, body); err != nil {
		return "", err
	}
	return key, nil
}

// PermanentKey arma el nombre definitivo: timestamp + nombre original.
func (s *Service) PermanentKey(originalName string) string {
	base := filepath.Base(strings.TrimSpace(originalName))
	base = unsafeChars.ReplaceAllString(base, "_")
	if base == "" || base == "." {
		base = "image"
	}
	return fmt.Sprintf("%d-%s", s.now().UnixMilli(), base)
}

// Promote mueve el temporal a su clave definitiva. Esto sí se espera
// antes de responder.
func (s *Service) Promote(ctx context.Context, tmpKey, permKey string) error {
	if err := s.store.Rename(ctx, tmpKey, permKey); err != nil {
		return fmt.Errorf("promoting %s: %w", tmpKey, err)
	}
	return nil
}

// Discard borra un temporal que no llegó a promoverse. Best-effort.
func (s *Service) Discard(ctx context.Context, tmpKey string) {
	if tmpKey == "" {
		return
	}
	s.remove(ctx, tmpKey)
}

// Remove borra una imagen definitiva. Best-effort: un archivo que ya no
// está en disco no puede bloquear el borrado de la entidad.
func (s *Service) Remove(ctx context.Context, key string) {
	if key == "" {
		return
	}
	s.remove(ctx, key)
}

func (s *Service) remove(ctx context.Context, key string) {
	if err := s.store.Delete(ctx, key); err != nil && !errors.Is(err, blob.ErrNotFound) {
		s.log.Warn("image delete failed", map[string]any{"key": key, "error": err.Error()})
	}
}

// Open devuelve el contenido para servirlo en /uploads/.
func (s *Service) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	return s.store.Open(ctx, key)
}
