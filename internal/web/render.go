package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/shopspring/decimal"
)

//go:embed templates
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

// Data son los locals de una vista. El escape de todo lo que venga del
// usuario lo hace html/template solo.
type Data map[string]any

// Renderer pinta las vistas. Capa de presentación pura, sin lógica de
// negocio.
type Renderer struct {
	pages map[string]*template.Template
	dev   bool
}

var funcs = template.FuncMap{
	"currency": formatUSD,
}

func NewRenderer(dev bool) (*Renderer, error) {
	names, err := fs.Glob(templatesFS, "templates/pages/*.tmpl")
	if err != nil {
		return nil, err
	}

	pages := make(map[string]*template.Template, len(names))
	for _, name := range names {
		page := strings.TrimSuffix(path.Base(name), ".tmpl")
		t, err := template.New("base.tmpl").Funcs(funcs).ParseFS(
			templatesFS, "templates/base.tmpl", name,
		)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", name, err)
		}
		pages[page] = t
	}

	return &Renderer{pages: pages, dev: dev}, nil
}

// HTML ejecuta la página al buffer primero: si falla a mitad de camino no
// queda media respuesta escrita.
func (rd *Renderer) HTML(w http.ResponseWriter, status int, page string, data Data) {
	t, ok := rd.pages[page]
	if !ok {
		http.Error(w, "template not found: "+page, http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", data); err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// NotFound es la vista de "no existe tal registro": conserva el id para
// mostrarlo y no es un error HTTP.
func (rd *Renderer) NotFound(w http.ResponseWriter, what, id string) {
	rd.HTML(w, http.StatusOK, "notFound", Data{
		"Title": "Not Found",
		"What":  what,
		"ID":    id,
	})
}

// NotFoundPage es la 404 de rutas sin match.
func (rd *Renderer) NotFoundPage(w http.ResponseWriter) {
	rd.HTML(w, http.StatusNotFound, "notFound", Data{
		"Title": "Not Found",
		"What":  "page",
	})
}

// Error es la página genérica; el detalle solo sale en development.
func (rd *Renderer) Error(w http.ResponseWriter, err error) {
	data := Data{"Title": "Something went wrong"}
	if rd.dev && err != nil {
		data["Detail"] = err.Error()
	}
	rd.HTML(w, http.StatusInternalServerError, "error", data)
}

// Static sirve los assets embebidos bajo /public/.
func Static() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}

func formatUSD(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, fracPart, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	out := "$" + b.String() + "." + fracPart
	if neg {
		out = "-" + out
	}
	return out
}
