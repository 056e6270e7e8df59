package animals

import (
	"time"

	"github.com/shopspring/decimal"
)

// Animal es un bicho del catálogo. Image guarda la clave del blob
// definitivo ("" = sin imagen).
type Animal struct {
	ID string

	CommonName    string
	SpeciesName   string // único, sin distinguir mayúsculas
	Description   string
	CategoryID    string
	Price         decimal.Decimal
	NumberInStock int
	Image         string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// URL es la ruta canónica del detalle.
func (a Animal) URL() string { return "/animals/" + a.ID }

// StockValue es precio por unidades en stock.
func (a Animal) StockValue() decimal.Decimal {
	return a.Price.Mul(decimal.NewFromInt(int64(a.NumberInStock)))
}
