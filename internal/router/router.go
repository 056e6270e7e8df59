package router

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"net/http"
	"strings"

	blobfs "invertebratorium/internal/adapters/blob/fs"
	blobmem "invertebratorium/internal/adapters/blob/memory"
	blobs3 "invertebratorium/internal/adapters/blob/s3"
	mem "invertebratorium/internal/adapters/storage/memory"
	pg "invertebratorium/internal/adapters/storage/postgres"
	"invertebratorium/internal/config"
	"invertebratorium/internal/domain/animals"
	"invertebratorium/internal/domain/categories"
	"invertebratorium/internal/domain/dashboard"
	"invertebratorium/internal/domain/images"
	"invertebratorium/internal/forms"
	"invertebratorium/internal/middleware"
	"invertebratorium/internal/platform/logger"
	"invertebratorium/internal/platform/metrics"
	"invertebratorium/internal/ports/blob"
	"invertebratorium/internal/web"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type Options struct {
	Config *config.Config
	Logger logger.Logger

	// Opcionales: los tests los inyectan para no depender de config.
	DB   *sql.DB
	Blob blob.Store
}

// New arma el árbol completo de la aplicación: adapters según config,
// services, middleware y rutas por módulo.
func New(opts Options) (http.Handler, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}

	store, err := buildBlobStore(cfg, opts.Blob)
	if err != nil {
		return nil, err
	}

	var (
		animalRepo   animals.Repository
		categoryRepo categories.Repository
	)
	switch {
	case opts.DB != nil:
		animalRepo = pg.NewAnimalsRepo(opts.DB)
		categoryRepo = pg.NewCategoriesRepo(opts.DB)
	case cfg.Database.Type == "postgres":
		db, err := pg.Open(cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		animalRepo = pg.NewAnimalsRepo(db)
		categoryRepo = pg.NewCategoriesRepo(db)
	default:
		animalRepo = mem.NewAnimalsRepo()
		categoryRepo = mem.NewCategoriesRepo()
	}

	rnd, err := web.NewRenderer(cfg.Development())
	if err != nil {
		return nil, err
	}

	imgSvc := images.NewService(store, log)
	check := forms.NewChecker(cfg.AdminPassword)

	// animals mira categorías vía el service y categories mira animales
	// vía el repo: así ninguna construcción depende de la otra
	categorySvc := categories.NewService(categoryRepo, animalRepo)
	animalSvc := animals.NewService(animalRepo, categorySvc)

	m := metrics.New()

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLog(log, m))
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", m.Handler())

	dashboard.RegisterRoutes(r, animalSvc, categorySvc, rnd)
	animals.RegisterRoutes(r, animalSvc, imgSvc, check, rnd)
	categories.RegisterRoutes(r, categorySvc, check, rnd)

	r.Handle("/public/*", http.StripPrefix("/public/", web.Static()))
	r.Get("/uploads/{key}", serveUpload(imgSvc, rnd))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		rnd.NotFoundPage(w)
	})

	return r, nil
}

func buildBlobStore(cfg *config.Config, override blob.Store) (blob.Store, error) {
	if override != nil {
		return override, nil
	}
	switch cfg.Blob.Type {
	case "filesystem":
		root := cfg.Blob.Root
		if root == "" {
			root = "uploads"
		}
		return blobfs.New(root)
	case "s3":
		return blobs3.New(context.Background(), blobs3.Config{
			Bucket:          cfg.Blob.S3Bucket,
			Region:          cfg.Blob.S3Region,
			Prefix:          cfg.Blob.S3Prefix,
			Endpoint:        cfg.Blob.S3Endpoint,
			AccessKeyID:     cfg.Blob.S3AccessKeyID,
			SecretAccessKey: cfg.Blob.S3SecretAccessKey,
			PathStyle:       cfg.Blob.S3PathStyle,
		})
	default:
		return blobmem.New(), nil
	}
}

func serveUpload(imgSvc *images.Service, rnd *web.Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "key")

		rc, err := imgSvc.Open(r.Context(), key)
		if errors.Is(err, blob.ErrNotFound) {
			rnd.NotFoundPage(w)
			return
		}
		if err != nil {
			rnd.Error(w, err)
			return
		}
		defer rc.Close()

		w.Header().Set("Content-Type", contentTypeFor(key))
		w.Header().Set("Cache-Control", "public, max-age=86400")
		_, _ = io.Copy(w, rc)
	}
}

func contentTypeFor(key string) string {
	switch {
	case strings.HasSuffix(key, ".png"):
		return "image/png"
	case strings.HasSuffix(key, ".gif"):
		return "image/gif"
	case strings.HasSuffix(key, ".jpg"), strings.HasSuffix(key, ".jpeg"):
		return "image/jpeg"
	default:
		return "application/octet-stream"
	}
}
