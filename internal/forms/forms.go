package forms

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Errors es el mapa campo -> mensaje que se vuelve a pintar en el form.
type Errors map[string]string

func (e Errors) Any() bool { return len(e) > 0 }

// rechaza negativos y ceros a la izquierda; acepta enteros y decimales
var pricePattern = regexp.MustCompile(`^(0|[1-9]\d*)(\.\d+)?$`)

// Checker valida formularios. El password de admin llega inyectado desde
// la config, una sola vez al arrancar.
type Checker struct {
	validate      *validator.Validate
	adminPassword string
}

func NewChecker(adminPassword string) *Checker {
	v := validator.New()

	// price: decimal no negativo según el patrón de arriba
	_ = v.RegisterValidation("price", func(fl validator.FieldLevel) bool {
		return pricePattern.MatchString(fl.Field().String())
	})

	// stock: entero no negativo
	_ = v.RegisterValidation("stock", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(fl.Field().String())
		return err == nil && n >= 0
	})

	return &Checker{validate: v, adminPassword: adminPassword}
}

// AnimalForm son los valores crudos (ya recortados) tal como se devuelven
// al re-renderizar. El escape HTML lo garantiza html/template al pintar.
type AnimalForm struct {
	CommonName    string `validate:"required,min=2"`
	SpeciesName   string `validate:"required,min=5"`
	Description   string
	Category      string `validate:"required,uuid4"`
	Price         string `validate:"required,price"`
	NumberInStock string `validate:"required,stock"`
}

// AnimalValues es el candidato tipado que sale cuando no hay errores.
type AnimalValues struct {
	CommonName    string
	SpeciesName   string
	Description   string
	CategoryID    string
	Price         decimal.Decimal
	NumberInStock int
}

// mensajes tomados tal cual del lado cliente, para que coincidan
var animalMessages = map[string]struct{ key, msg string }{
	"CommonName":    {"commonName", "2 characters minimum"},
	"SpeciesName":   {"speciesName", "5 characters minimum"},
	"Category":      {"category", "Choose a category"},
	"Price":         {"price", "Price must be positive number"},
	"NumberInStock": {"numberInStock", "Stock must be positive integer"},
}

// ParseAnimal aplica las reglas por campo, todas, sin cortar en la primera.
func (c *Checker) ParseAnimal(form url.Values) (AnimalForm, AnimalValues, Errors) {
	f := AnimalForm{
		CommonName:    strings.TrimSpace(form.Get("commonName")),
		SpeciesName:   strings.TrimSpace(form.Get("speciesName")),
		Description:   strings.TrimSpace(form.Get("description")),
		Category:      strings.TrimSpace(form.Get("category")),
		Price:         strings.TrimSpace(form.Get("price")),
		NumberInStock: strings.TrimSpace(form.Get("numberInStock")),
	}

	errs := Errors{}
	if err := c.validate.Struct(f); err != nil {
		for _, fe := range err.(validator.ValidationErrors) {
			if m, ok := animalMessages[fe.StructField()]; ok {
				errs[m.key] = m.msg
			}
		}
	}
	if errs.Any() {
		return f, AnimalValues{}, errs
	}

	price, err := decimal.NewFromString(f.Price)
	if err != nil {
		errs["price"] = animalMessages["Price"].msg
		return f, AnimalValues{}, errs
	}
	stock, err := strconv.Atoi(f.NumberInStock)
	if err != nil {
		errs["numberInStock"] = animalMessages["NumberInStock"].msg
		return f, AnimalValues{}, errs
	}

	return f, AnimalValues{
		CommonName:    f.CommonName,
		SpeciesName:   f.SpeciesName,
		Description:   f.Description,
		CategoryID:    f.Category,
		Price:         price,
		NumberInStock: stock,
	}, errs
}

type CategoryForm struct {
	Name        string `validate:"required,min=2"`
	Description string
}

type CategoryValues struct {
	Name        string
	Description string
}

func (c *Checker) ParseCategory(form url.Values) (CategoryForm, CategoryValues, Errors) {
	f := CategoryForm{
		Name:        strings.TrimSpace(form.Get("name")),
		Description: strings.TrimSpace(form.Get("description")),
	}

	errs := Errors{}
	if err := c.validate.Struct(f); err != nil {
		for _, fe := range err.(validator.ValidationErrors) {
			if fe.StructField() == "Name" {
				errs["name"] = "2 characters minimum"
			}
		}
	}
	if errs.Any() {
		return f, CategoryValues{}, errs
	}
	return f, CategoryValues{Name: f.Name, Description: f.Description}, errs
}

// CheckPassword trata el secreto de admin como un error de campo más,
// no como un fallo de auth aparte.
func (c *Checker) CheckPassword(form url.Values, errs Errors) {
	if form.Get("password") != c.adminPassword {
		errs["password"] = "Admin password required"
	}
}
