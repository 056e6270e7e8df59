package categories

import (
	"errors"
	"net/http"

	"invertebratorium/internal/forms"
	"invertebratorium/internal/web"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type handler struct {
	svc   *Service
	check *forms.Checker
	rnd   *web.Renderer
}

func RegisterRoutes(r chi.Router, svc *Service, check *forms.Checker, rnd *web.Renderer) {
	h := &handler{svc: svc, check: check, rnd: rnd}

	r.Route("/categories", func(cr chi.Router) {
		cr.Get("/", h.list)
		cr.Get("/new", h.newForm)
		cr.Post("/new", h.create)
		cr.Get("/{categoryID}", h.detail)
		cr.Get("/{categoryID}/edit", h.editForm)
		cr.Post("/{categoryID}/edit", h.update)
		cr.Get("/{categoryID}/delete", h.deleteForm)
		cr.Post("/{categoryID}/delete", h.destroy)
	})
}

func (h *handler) list(w http.ResponseWriter, r *http.Request) {
	all, err := h.svc.List(r.Context())
	if err != nil {
		h.rnd.Error(w, err)
		return
	}
	h.rnd.HTML(w, http.StatusOK, "categoryList", web.Data{
		"Title":      "Creature Categories",
		"Categories": all,
	})
}

func (h *handler) detail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "categoryID")
	if _, err := uuid.Parse(id); err != nil {
		h.rnd.NotFound(w, "category", id)
		return
	}

	cat, members, err := h.svc.Detail(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		h.rnd.NotFound(w, "category", id)
		return
	}
	if err != nil {
		h.rnd.Error(w, err)
		return
	}

	h.rnd.HTML(w, http.StatusOK, "categoryDetail", web.Data{
		"Title":    cat.Name,
		"Category": cat,
		"Animals":  members,
	})
}

func (h *handler) newForm(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, "New Category", forms.CategoryForm{}, forms.Errors{}, false)
}

func (h *handler) create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.rnd.Error(w, err)
		return
	}

	f, vals, errs := h.check.ParseCategory(r.PostForm)
	if errs.Any() {
		h.renderForm(w, "New Category", f, errs, false)
		return
	}

	c, err := h.svc.Create(r.Context(), Input{Name: vals.Name, Description: vals.Description})
	switch {
	case errors.Is(err, ErrDuplicate):
		http.Redirect(w, r, c.URL(), http.StatusFound)
	case err != nil:
		h.rnd.Error(w, err)
	default:
		http.Redirect(w, r, c.URL(), http.StatusFound)
	}
}

func (h *handler) editForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "categoryID")
	if _, err := uuid.Parse(id); err != nil {
		h.rnd.NotFound(w, "category", id)
		return
	}

	c, err := h.svc.Get(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		h.rnd.NotFound(w, "category", id)
		return
	}
	if err != nil {
		h.rnd.Error(w, err)
		return
	}

	f := forms.CategoryForm{Name: c.Name, Description: c.Description}
	h.renderForm(w, "Edit "+c.Name, f, forms.Errors{}, true)
}

func (h *handler) update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id := chi.URLParam(r, "categoryID")
	if _, err := uuid.Parse(id); err != nil {
		h.rnd.NotFound(w, "category", id)
		return
	}

	if err := r.ParseForm(); err != nil {
		h.rnd.Error(w, err)
		return
	}

	f, vals, errs := h.check.ParseCategory(r.PostForm)
	h.check.CheckPassword(r.PostForm, errs)

	if _, err := h.svc.Get(ctx, id); errors.Is(err, ErrNotFound) {
		errs["id"] = "No category matches that id"
	} else if err != nil {
		h.rnd.Error(w, err)
		return
	}

	if errs.Any() {
		h.renderForm(w, "Edit Category", f, errs, true)
		return
	}

	c, err := h.svc.Update(ctx, id, Input{Name: vals.Name, Description: vals.Description})
	switch {
	case errors.Is(err, ErrDuplicate):
		// nombre tomado por otra categoría: al registro canónico
		http.Redirect(w, r, c.URL(), http.StatusFound)
	case errors.Is(err, ErrNotFound):
		errs["id"] = "No category matches that id"
		h.renderForm(w, "Edit Category", f, errs, true)
	case err != nil:
		h.rnd.Error(w, err)
	default:
		http.Redirect(w, r, c.URL(), http.StatusFound)
	}
}

func (h *handler) deleteForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "categoryID")
	if _, err := uuid.Parse(id); err != nil {
		h.rnd.NotFound(w, "category", id)
		return
	}

	cat, members, err := h.svc.Detail(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		h.rnd.NotFound(w, "category", id)
		return
	}
	if err != nil {
		h.rnd.Error(w, err)
		return
	}

	// si hay bloqueantes el template lista los animales en vez del form
	h.rnd.HTML(w, http.StatusOK, "categoryDelete", web.Data{
		"Title":    "Delete " + cat.Name,
		"Category": cat,
		"Blockers": members,
		"Errors":   forms.Errors{},
	})
}

func (h *handler) destroy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id := chi.URLParam(r, "categoryID")
	if _, err := uuid.Parse(id); err != nil {
		h.rnd.NotFound(w, "category", id)
		return
	}

	if err := r.ParseForm(); err != nil {
		h.rnd.Error(w, err)
		return
	}

	errs := forms.Errors{}
	h.check.CheckPassword(r.PostForm, errs)
	if errs.Any() {
		h.renderDelete(w, r, id, errs)
		return
	}

	_, err := h.svc.Delete(ctx, id)
	switch {
	case errors.Is(err, ErrInUse):
		h.renderDelete(w, r, id, forms.Errors{})
	case errors.Is(err, ErrNotFound):
		h.rnd.NotFound(w, "category", id)
	case err != nil:
		h.rnd.Error(w, err)
	default:
		http.Redirect(w, r, "/categories", http.StatusFound)
	}
}

func (h *handler) renderForm(w http.ResponseWriter, title string, f forms.CategoryForm, errs forms.Errors, editing bool) {
	h.rnd.HTML(w, http.StatusOK, "categoryForm", web.Data{
		"Title":   title,
		"Form":    f,
		"Errors":  errs,
		"Editing": editing,
	})
}

func (h *handler) renderDelete(w http.ResponseWriter, r *http.Request, id string, errs forms.Errors) {
	cat, members, err := h.svc.Detail(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		h.rnd.NotFound(w, "category", id)
		return
	}
	if err != nil {
		h.rnd.Error(w, err)
		return
	}
	h.rnd.HTML(w, http.StatusOK, "categoryDelete", web.Data{
		"Title":    "Delete " + cat.Name,
		"Category": cat,
		"Blockers": members,
		"Errors":   errs,
	})
}
