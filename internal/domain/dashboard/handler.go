// Package dashboard arma la página de inicio con los agregados del
// inventario. No tiene estado propio, lee de los otros dos módulos.
package dashboard

import (
	"net/http"

	"invertebratorium/internal/domain/animals"
	"invertebratorium/internal/domain/categories"
	"invertebratorium/internal/web"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, animalSvc *animals.Service, categorySvc *categories.Service, rnd *web.Renderer) {
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		ctx := req.Context()

		totals, err := animalSvc.Totals(ctx)
		if err != nil {
			rnd.Error(w, err)
			return
		}
		catCount, err := categorySvc.Count(ctx)
		if err != nil {
			rnd.Error(w, err)
			return
		}

		rnd.HTML(w, http.StatusOK, "index", web.Data{
			"Title":         "The Invertebratorium",
			"Description":   "Your premier source for live invertebrates of all kinds!",
			"SpeciesCount":  totals.Species,
			"AnimalCount":   totals.InStock,
			"CategoryCount": catCount,
			"TotalValue":    totals.Value,
		})
	})
}
