package categories

import "time"

// Category agrupa animales. AnimalCount es una cache denormalizada que se
// recalcula en los caminos de lectura, no se mantiene al escribir.
type Category struct {
	ID string

	Name        string // único, sin distinguir mayúsculas
	Description string
	AnimalCount int

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c Category) URL() string { return "/categories/" + c.ID }
