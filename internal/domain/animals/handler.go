package animals

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"invertebratorium/internal/domain/images"
	"invertebratorium/internal/forms"
	"invertebratorium/internal/web"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// margen por encima del límite de imagen para los demás campos del form
const maxRequestBytes = images.MaxBytes + 1<<20

type handler struct {
	svc   *Service
	imgs  *images.Service
	check *forms.Checker
	rnd   *web.Renderer
}

func RegisterRoutes(r chi.Router, svc *Service, imgs *images.Service, check *forms.Checker, rnd *web.Renderer) {
	h := &handler{svc: svc, imgs: imgs, check: check, rnd: rnd}

	r.Route("/animals", func(ar chi.Router) {
		ar.Get("/", h.list)
		ar.Get("/new", h.newForm)
		ar.Post("/new", h.create)
		ar.Get("/{animalID}", h.detail)
		ar.Get("/{animalID}/edit", h.editForm)
		ar.Post("/{animalID}/edit", h.update)
		ar.Get("/{animalID}/delete", h.deleteForm)
		ar.Post("/{animalID}/delete", h.destroy)
	})
}

func (h *handler) list(w http.ResponseWriter, r *http.Request) {
	items, totals, err := h.svc.List(r.Context())
	if err != nil {
		h.rnd.Error(w, err)
		return
	}

	h.rnd.HTML(w, http.StatusOK, "animalList", web.Data{
		"Title":      "All Animals",
		"Animals":    items,
		"TotalStock": totals.InStock,
		"TotalValue": totals.Value,
	})
}

func (h *handler) detail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "animalID")
	// id malformado: ni consultamos el store
	if _, err := uuid.Parse(id); err != nil {
		h.rnd.NotFound(w, "animal", id)
		return
	}

	a, err := h.svc.Get(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		h.rnd.NotFound(w, "animal", id)
		return
	}
	if err != nil {
		h.rnd.Error(w, err)
		return
	}

	// tolera una categoría colgante: el detalle se muestra igual
	ref, _ := h.svc.CategoryRef(r.Context(), a.CategoryID)

	h.rnd.HTML(w, http.StatusOK, "animalDetail", web.Data{
		"Title":    a.CommonName,
		"Animal":   a,
		"Category": ref,
	})
}

func (h *handler) newForm(w http.ResponseWriter, r *http.Request) {
	// precio y stock arrancan en 0, que es válido
	f := forms.AnimalForm{Price: "0", NumberInStock: "0"}
	h.renderForm(w, r, "New Animal", f, forms.Errors{}, formOpts{})
}

func (h *handler) create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	f, errs, upload := h.parseSubmission(w, r)
	if errs == nil {
		return // ya respondió un error de sistema
	}

	if errs.Any() {
		h.imgs.Discard(ctx, upload.tmpKey)
		h.renderForm(w, r, "New Animal", f, errs, formOpts{})
		return
	}

	in := inputFromForm(f)
	if upload.tmpKey != "" {
		in.Image = h.imgs.PermanentKey(upload.name)
		in.ImageChanged = true
	}

	a, err := h.svc.Create(ctx, in)
	switch {
	case errors.Is(err, ErrDuplicate):
		// mismo nombre de especie: redirigimos al registro canónico
		h.imgs.Discard(ctx, upload.tmpKey)
		http.Redirect(w, r, a.URL(), http.StatusFound)
	case errors.Is(err, ErrNoCategory):
		h.imgs.Discard(ctx, upload.tmpKey)
		errs["category"] = "Choose a category"
		h.renderForm(w, r, "New Animal", f, errs, formOpts{})
	case err != nil:
		h.imgs.Discard(ctx, upload.tmpKey)
		h.rnd.Error(w, err)
	default:
		if upload.tmpKey != "" {
			if err := h.imgs.Promote(ctx, upload.tmpKey, a.Image); err != nil {
				// el registro no puede quedar apuntando a un blob que
				// nunca existió
				_ = h.svc.SetImage(ctx, a.ID, "")
				h.imgs.Discard(ctx, upload.tmpKey)
				h.rnd.Error(w, err)
				return
			}
		}
		// redirect, no render: el refresh no debe reenviar el POST
		http.Redirect(w, r, a.URL(), http.StatusFound)
	}
}

func (h *handler) editForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "animalID")
	if _, err := uuid.Parse(id); err != nil {
		h.rnd.NotFound(w, "animal", id)
		return
	}

	a, err := h.svc.Get(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		h.rnd.NotFound(w, "animal", id)
		return
	}
	if err != nil {
		h.rnd.Error(w, err)
		return
	}

	f := forms.AnimalForm{
		CommonName:    a.CommonName,
		SpeciesName:   a.SpeciesName,
		Description:   a.Description,
		Category:      a.CategoryID,
		Price:         a.Price.String(),
		NumberInStock: strconv.Itoa(a.NumberInStock),
	}
	h.renderForm(w, r, "Edit "+a.CommonName, f, forms.Errors{}, formOpts{
		editing:      true,
		changed:      "0",
		currentImage: a.Image,
	})
}

func (h *handler) update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id := chi.URLParam(r, "animalID")
	if _, err := uuid.Parse(id); err != nil {
		h.rnd.NotFound(w, "animal", id)
		return
	}

	f, errs, upload := h.parseSubmission(w, r)
	if errs == nil {
		return
	}
	h.check.CheckPassword(r.PostForm, errs)

	changed := r.PostForm.Get("changed") == "1"
	opts := formOpts{editing: true, changed: r.PostForm.Get("changed")}

	prev, err := h.svc.Get(ctx, id)
	switch {
	case errors.Is(err, ErrNotFound):
		errs["id"] = "No animal matches that id"
	case err != nil:
		h.imgs.Discard(ctx, upload.tmpKey)
		h.rnd.Error(w, err)
		return
	default:
		opts.currentImage = prev.Image
	}

	if errs.Any() {
		h.imgs.Discard(ctx, upload.tmpKey)
		h.renderForm(w, r, "Edit Animal", f, errs, opts)
		return
	}

	in := inputFromForm(f)
	in.ImageChanged = changed
	if changed && upload.tmpKey != "" {
		in.Image = h.imgs.PermanentKey(upload.name)
	}

	a, err := h.svc.Update(ctx, id, in)
	switch {
	case errors.Is(err, ErrDuplicate):
		h.imgs.Discard(ctx, upload.tmpKey)
		http.Redirect(w, r, a.URL(), http.StatusFound)
	case errors.Is(err, ErrNoCategory):
		h.imgs.Discard(ctx, upload.tmpKey)
		errs["category"] = "Choose a category"
		h.renderForm(w, r, "Edit Animal", f, errs, opts)
	case errors.Is(err, ErrNotFound):
		h.imgs.Discard(ctx, upload.tmpKey)
		errs["id"] = "No animal matches that id"
		h.renderForm(w, r, "Edit Animal", f, errs, opts)
	case err != nil:
		h.imgs.Discard(ctx, upload.tmpKey)
		h.rnd.Error(w, err)
	default:
		if changed {
			if upload.tmpKey != "" {
				// la promoción sí se espera antes de responder
				if err := h.imgs.Promote(ctx, upload.tmpKey, a.Image); err != nil {
					// volver a la imagen previa, que sí existe
					_ = h.svc.SetImage(ctx, id, prev.Image)
					h.imgs.Discard(ctx, upload.tmpKey)
					h.rnd.Error(w, err)
					return
				}
			}
			if prev.Image != "" {
				// liberar la imagen vieja no bloquea la respuesta
				go h.imgs.Remove(context.Background(), prev.Image)
			}
		}
		http.Redirect(w, r, a.URL(), http.StatusFound)
	}
}

func (h *handler) deleteForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "animalID")
	if _, err := uuid.Parse(id); err != nil {
		h.rnd.NotFound(w, "animal", id)
		return
	}

	a, err := h.svc.Get(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		h.rnd.NotFound(w, "animal", id)
		return
	}
	if err != nil {
		h.rnd.Error(w, err)
		return
	}

	h.rnd.HTML(w, http.StatusOK, "animalDelete", web.Data{
		"Title":  "Delete " + a.CommonName,
		"Animal": a,
		"Errors": forms.Errors{},
	})
}

func (h *handler) destroy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id := chi.URLParam(r, "animalID")
	if _, err := uuid.Parse(id); err != nil {
		h.rnd.NotFound(w, "animal", id)
		return
	}

	if err := r.ParseForm(); err != nil {
		h.rnd.Error(w, err)
		return
	}

	errs := forms.Errors{}
	h.check.CheckPassword(r.PostForm, errs)
	if errs.Any() {
		a, err := h.svc.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			h.rnd.NotFound(w, "animal", id)
			return
		}
		if err != nil {
			h.rnd.Error(w, err)
			return
		}
		h.rnd.HTML(w, http.StatusOK, "animalDelete", web.Data{
			"Title":  "Delete " + a.CommonName,
			"Animal": a,
			"Errors": errs,
		})
		return
	}

	a, err := h.svc.Delete(ctx, id)
	if errors.Is(err, ErrNotFound) {
		h.rnd.NotFound(w, "animal", id)
		return
	}
	if err != nil {
		h.rnd.Error(w, err)
		return
	}

	if a.Image != "" {
		go h.imgs.Remove(context.Background(), a.Image)
	}
	http.Redirect(w, r, "/animals", http.StatusFound)
}

type formOpts struct {
	editing      bool
	changed      string
	currentImage string
}

func (h *handler) renderForm(w http.ResponseWriter, r *http.Request, title string, f forms.AnimalForm, errs forms.Errors, opts formOpts) {
	refs, err := h.svc.CategoryRefs(r.Context())
	if err != nil {
		h.rnd.Error(w, err)
		return
	}

	// re-render con 200: es el mismo form con los errores inline
	h.rnd.HTML(w, http.StatusOK, "animalForm", web.Data{
		"Title":        title,
		"Form":         f,
		"Errors":       errs,
		"Categories":   refs,
		"Editing":      opts.editing,
		"Changed":      opts.changed,
		"CurrentImage": opts.currentImage,
	})
}

type uploadInfo struct {
	tmpKey string
	name   string
}

// parseSubmission lee el multipart, corre la validación de campos y deja
// la imagen (si vino) en el área temporal. Errores de sistema responden
// acá mismo y devuelven errs nil.
func (h *handler) parseSubmission(w http.ResponseWriter, r *http.Request) (forms.AnimalForm, forms.Errors, uploadInfo) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)

	var tooLarge bool
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		var mbe *http.MaxBytesError
		switch {
		case errors.Is(err, http.ErrNotMultipart):
			// un POST urlencoded también vale, solo que sin imagen
		case errors.As(err, &mbe), strings.Contains(err.Error(), "request body too large"):
			tooLarge = true
		default:
			h.rnd.Error(w, err)
			return forms.AnimalForm{}, nil, uploadInfo{}
		}
	}

	f, _, errs := h.check.ParseAnimal(r.PostForm)
	if tooLarge {
		errs["image"] = "Image too large (5MB max)"
		return f, errs, uploadInfo{}
	}

	var upload uploadInfo
	if fh := fileHeader(r, "image"); fh != nil {
		key, err := h.imgs.Stage(r.Context(), fh)
		switch {
		case errors.Is(err, images.ErrTooLarge):
			errs["image"] = "Image too large (5MB max)"
		case errors.Is(err, images.ErrBadType):
			errs["image"] = "Image must be jpeg, gif or png"
		case err != nil:
			h.rnd.Error(w, err)
			return forms.AnimalForm{}, nil, uploadInfo{}
		default:
			upload = uploadInfo{tmpKey: key, name: fh.Filename}
		}
	}
	return f, errs, upload
}

func fileHeader(r *http.Request, field string) *multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	if fhs := r.MultipartForm.File[field]; len(fhs) > 0 && fhs[0].Size > 0 {
		return fhs[0]
	}
	return nil
}

func inputFromForm(f forms.AnimalForm) Input {
	// a esta altura el form ya validó, los parseos no fallan
	price, _ := decimal.NewFromString(f.Price)
	stock, _ := strconv.Atoi(f.NumberInStock)
	return Input{
		CommonName:    f.CommonName,
		SpeciesName:   f.SpeciesName,
		Description:   f.Description,
		CategoryID:    f.Category,
		Price:         price,
		NumberInStock: stock,
	}
}
