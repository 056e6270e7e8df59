package categories_test

import (
	"context"
	"errors"
	"testing"

	mem "invertebratorium/internal/adapters/storage/memory"
	"invertebratorium/internal/domain/animals"
	"invertebratorium/internal/domain/categories"

	"github.com/shopspring/decimal"
)

func newServices(t *testing.T) (*categories.Service, *animals.Service) {
	t.Helper()

	animalRepo := mem.NewAnimalsRepo()
	categoryRepo := mem.NewCategoriesRepo()
	categorySvc := categories.NewService(categoryRepo, animalRepo)
	animalSvc := animals.NewService(animalRepo, categorySvc)
	return categorySvc, animalSvc
}

func addAnimal(t *testing.T, svc *animals.Service, catID, common, species string) animals.Animal {
	t.Helper()
	a, err := svc.Create(context.Background(), animals.Input{
		CommonName:    common,
		SpeciesName:   species,
		CategoryID:    catID,
		Price:         decimal.NewFromInt(10),
		NumberInStock: 1,
	})
	if err != nil {
		t.Fatalf("create animal: %v", err)
	}
	return a
}

func TestCreate_DuplicateNameReturnsExisting(t *testing.T) {
	svc, _ := newServices(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, categories.Input{Name: "Arachnids"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := svc.Create(ctx, categories.Input{Name: "ARACHNIDS"})
	if !errors.Is(err, categories.ErrDuplicate) || got.ID != first.ID {
		t.Fatalf("expected existing category with ErrDuplicate, got %v (%s)", err, got.ID)
	}

	all, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("duplicate created a second category: %d", len(all))
	}
}

func TestDelete_RefusedWhileReferenced(t *testing.T) {
	svc, animalSvc := newServices(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, categories.Input{Name: "Myriapods"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	a := addAnimal(t, animalSvc, c.ID, "Giant Millipede", "Archispirostreptus gigas")

	// 1) Con un animal adentro: ErrInUse y los bloqueantes
	blockers, err := svc.Delete(ctx, c.ID)
	if !errors.Is(err, categories.ErrInUse) {
		t.Fatalf("expected ErrInUse, got %v", err)
	}
	if len(blockers) != 1 || blockers[0].ID != a.ID {
		t.Fatalf("expected the blocking animal, got %+v", blockers)
	}

	// 2) La categoría sigue intacta
	if _, err := svc.Get(ctx, c.ID); err != nil {
		t.Fatalf("category should survive refused delete: %v", err)
	}

	// 3) Sin el animal el borrado procede
	if _, err := animalSvc.Delete(ctx, a.ID); err != nil {
		t.Fatalf("delete animal: %v", err)
	}
	if _, err := svc.Delete(ctx, c.ID); err != nil {
		t.Fatalf("delete category: %v", err)
	}
	if _, err := svc.Get(ctx, c.ID); !errors.Is(err, categories.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestList_RecomputesAnimalCounts(t *testing.T) {
	svc, animalSvc := newServices(t)
	ctx := context.Background()

	c1, _ := svc.Create(ctx, categories.Input{Name: "Arachnids"})
	_, _ = svc.Create(ctx, categories.Input{Name: "Mollusks"})

	addAnimal(t, animalSvc, c1.ID, "Pinktoe", "Avicularia avicularia")
	addAnimal(t, animalSvc, c1.ID, "Emperor Scorpion", "Pandinus imperator")

	all, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	counts := map[string]int{}
	for _, c := range all {
		counts[c.Name] = c.AnimalCount
	}
	if counts["Arachnids"] != 2 || counts["Mollusks"] != 0 {
		t.Fatalf("unexpected counts: %v", counts)
	}
}

func TestDetail_LoadsCategoryAndMembers(t *testing.T) {
	svc, animalSvc := newServices(t)
	ctx := context.Background()

	c, _ := svc.Create(ctx, categories.Input{Name: "Arachnids"})
	addAnimal(t, animalSvc, c.ID, "Pinktoe", "Avicularia avicularia")
	addAnimal(t, animalSvc, c.ID, "Emperor Scorpion", "Pandinus imperator")

	cat, members, err := svc.Detail(ctx, c.ID)
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if cat.AnimalCount != 2 || len(members) != 2 {
		t.Fatalf("unexpected detail: count=%d members=%d", cat.AnimalCount, len(members))
	}

	if _, _, err := svc.Detail(ctx, "3f0c8a4e-5b2d-4e7a-9c1f-2a6d8e4b7c90"); !errors.Is(err, categories.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdate_RenameChecksOtherRecordsOnly(t *testing.T) {
	svc, _ := newServices(t)
	ctx := context.Background()

	a, _ := svc.Create(ctx, categories.Input{Name: "Arachnids"})
	b, _ := svc.Create(ctx, categories.Input{Name: "Mollusks"})

	got, err := svc.Update(ctx, b.ID, categories.Input{Name: "arachnids"})
	if !errors.Is(err, categories.ErrDuplicate) || got.ID != a.ID {
		t.Fatalf("expected duplicate against existing, got %v (%s)", err, got.ID)
	}

	if _, err := svc.Update(ctx, a.ID, categories.Input{Name: "ARACHNIDS", Description: "eight legs"}); err != nil {
		t.Fatalf("self-rename flagged as duplicate: %v", err)
	}
}
