package animals_test

import (
	"context"
	"errors"
	"testing"

	mem "invertebratorium/internal/adapters/storage/memory"
	"invertebratorium/internal/domain/animals"
	"invertebratorium/internal/domain/categories"

	"github.com/shopspring/decimal"
)

// fixture: services reales sobre repos in-memory, como corre en dev
func newServices(t *testing.T) (*animals.Service, *categories.Service) {
	t.Helper()

	animalRepo := mem.NewAnimalsRepo()
	categoryRepo := mem.NewCategoriesRepo()
	categorySvc := categories.NewService(categoryRepo, animalRepo)
	animalSvc := animals.NewService(animalRepo, categorySvc)
	return animalSvc, categorySvc
}

func mustCategory(t *testing.T, svc *categories.Service, name string) string {
	t.Helper()
	c, err := svc.Create(context.Background(), categories.Input{Name: name})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	return c.ID
}

func price(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func TestCreate_DuplicateSpeciesReturnsExisting(t *testing.T) {
	svc, catSvc := newServices(t)
	ctx := context.Background()
	catID := mustCategory(t, catSvc, "Arachnids")

	first, err := svc.Create(ctx, animals.Input{
		CommonName:    "Pinktoe Tarantula",
		SpeciesName:   "Avicularia avicularia",
		CategoryID:    catID,
		Price:         price("24.50"),
		NumberInStock: 8,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// mismo nombre de especie con otras mayúsculas
	got, err := svc.Create(ctx, animals.Input{
		CommonName:    "Another Name",
		SpeciesName:   "AVICULARIA AVICULARIA",
		CategoryID:    catID,
		Price:         price("1"),
		NumberInStock: 1,
	})
	if !errors.Is(err, animals.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	if got.ID != first.ID {
		t.Fatalf("expected the existing record back, got %s", got.ID)
	}

	all, _, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("duplicate created a second record: %d", len(all))
	}
}

func TestCreate_RequiresExistingCategory(t *testing.T) {
	svc, _ := newServices(t)

	_, err := svc.Create(context.Background(), animals.Input{
		CommonName:    "Emperor Scorpion",
		SpeciesName:   "Pandinus imperator",
		CategoryID:    "3f0c8a4e-5b2d-4e7a-9c1f-2a6d8e4b7c90",
		Price:         price("25"),
		NumberInStock: 4,
	})
	if !errors.Is(err, animals.ErrNoCategory) {
		t.Fatalf("expected ErrNoCategory, got %v", err)
	}
}

func TestUpdate_PreservesImageUnlessChanged(t *testing.T) {
	svc, catSvc := newServices(t)
	ctx := context.Background()
	catID := mustCategory(t, catSvc, "Arachnids")

	a, err := svc.Create(ctx, animals.Input{
		CommonName:    "Pinktoe Tarantula",
		SpeciesName:   "Avicularia avicularia",
		CategoryID:    catID,
		Price:         price("24.50"),
		NumberInStock: 8,
		Image:         "123-pinktoe.gif",
		ImageChanged:  true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// sin ImageChanged la imagen previa queda tal cual
	upd, err := svc.Update(ctx, a.ID, animals.Input{
		CommonName:    "Pinktoe Tarantula",
		SpeciesName:   "Avicularia avicularia",
		CategoryID:    catID,
		Price:         price("30"),
		NumberInStock: 8,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if upd.Image != "123-pinktoe.gif" {
		t.Fatalf("image lost on update: %q", upd.Image)
	}
	if !upd.Price.Equal(price("30")) {
		t.Fatalf("price not updated: %s", upd.Price)
	}

	// con ImageChanged y clave vacía la imagen se quita
	upd, err = svc.Update(ctx, a.ID, animals.Input{
		CommonName:    "Pinktoe Tarantula",
		SpeciesName:   "Avicularia avicularia",
		CategoryID:    catID,
		Price:         price("30"),
		NumberInStock: 8,
		ImageChanged:  true,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if upd.Image != "" {
		t.Fatalf("image should be cleared: %q", upd.Image)
	}
}

func TestUpdate_UnknownTarget(t *testing.T) {
	svc, catSvc := newServices(t)
	catID := mustCategory(t, catSvc, "Arachnids")

	_, err := svc.Update(context.Background(), "3f0c8a4e-5b2d-4e7a-9c1f-2a6d8e4b7c90", animals.Input{
		CommonName:    "Ghost",
		SpeciesName:   "Phantasma phantasma",
		CategoryID:    catID,
		Price:         price("1"),
		NumberInStock: 1,
	})
	if !errors.Is(err, animals.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdate_DuplicateAgainstOtherRecordOnly(t *testing.T) {
	svc, catSvc := newServices(t)
	ctx := context.Background()
	catID := mustCategory(t, catSvc, "Arachnids")

	a, _ := svc.Create(ctx, animals.Input{
		CommonName: "Pinktoe", SpeciesName: "Avicularia avicularia",
		CategoryID: catID, Price: price("24"), NumberInStock: 8,
	})
	b, _ := svc.Create(ctx, animals.Input{
		CommonName: "Emperor Scorpion", SpeciesName: "Pandinus imperator",
		CategoryID: catID, Price: price("25"), NumberInStock: 4,
	})

	// renombrar b al nombre de a choca
	got, err := svc.Update(ctx, b.ID, animals.Input{
		CommonName: "Emperor Scorpion", SpeciesName: "avicularia AVICULARIA",
		CategoryID: catID, Price: price("25"), NumberInStock: 4,
	})
	if !errors.Is(err, animals.ErrDuplicate) || got.ID != a.ID {
		t.Fatalf("expected duplicate against a, got %v (%s)", err, got.ID)
	}

	// re-guardar a con su propio nombre no choca consigo mismo
	if _, err := svc.Update(ctx, a.ID, animals.Input{
		CommonName: "Pinktoe", SpeciesName: "Avicularia Avicularia",
		CategoryID: catID, Price: price("24"), NumberInStock: 8,
	}); err != nil {
		t.Fatalf("self-update flagged as duplicate: %v", err)
	}
}

func TestList_TotalsUseDecimalMath(t *testing.T) {
	svc, catSvc := newServices(t)
	ctx := context.Background()
	catID := mustCategory(t, catSvc, "Arachnids")

	// 0.10 * 3 + 0.20 * 3 = 0.90 exacto, sin deriva de float
	for _, in := range []animals.Input{
		{CommonName: "Dime Spider", SpeciesName: "Aranea decimus", CategoryID: catID, Price: price("0.10"), NumberInStock: 3},
		{CommonName: "Nickel Spider", SpeciesName: "Aranea vicesimus", CategoryID: catID, Price: price("0.20"), NumberInStock: 3},
	} {
		if _, err := svc.Create(ctx, in); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	_, totals, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if totals.Species != 2 || totals.InStock != 6 {
		t.Fatalf("unexpected totals: %+v", totals)
	}
	if totals.Value.StringFixed(2) != "0.90" {
		t.Fatalf("expected exact 0.90, got %s", totals.Value)
	}
}

func TestDelete_ReturnsDeletedRecord(t *testing.T) {
	svc, catSvc := newServices(t)
	ctx := context.Background()
	catID := mustCategory(t, catSvc, "Arachnids")

	a, _ := svc.Create(ctx, animals.Input{
		CommonName: "Pinktoe", SpeciesName: "Avicularia avicularia",
		CategoryID: catID, Price: price("24"), NumberInStock: 8,
		Image: "123-pinktoe.gif", ImageChanged: true,
	})

	deleted, err := svc.Delete(ctx, a.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if deleted.Image != "123-pinktoe.gif" {
		t.Fatalf("deleted record should carry image key: %q", deleted.Image)
	}

	if _, err := svc.Get(ctx, a.ID); !errors.Is(err, animals.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if _, err := svc.Delete(ctx, a.ID); !errors.Is(err, animals.ErrNotFound) {
		t.Fatalf("second delete should be ErrNotFound, got %v", err)
	}
}
