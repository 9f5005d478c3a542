package listview

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Declyn50s/Traine-Savates/pkg/models"
)

func sponsors() []models.Sponsor {
	return []models.Sponsor{
		{ID: "1", Name: "Boulangerie Dupont", Category: models.SponsorPrincipal, OrderIndex: 1},
		{ID: "2", Name: "Garage du Pont", Category: models.SponsorSecondary, OrderIndex: 2},
		{ID: "3", Name: "Pharmacie du Lac", Category: models.SponsorPrincipal, OrderIndex: 3},
		{ID: "4", Name: "Café de la Gare", Category: models.SponsorPrincipal, OrderIndex: 4},
	}
}

func names(items []models.Sponsor) []string {
	var out []string
	for _, s := range items {
		out = append(out, s.Name)
	}
	return out
}

func TestFilterCategoryAndSearch(t *testing.T) {
	t.Parallel()

	category := func(s models.Sponsor) models.SponsorCategory { return s.Category }
	preds := []Predicate[models.Sponsor]{
		Equals(category, models.SponsorPrincipal),
		Search[models.Sponsor]("PONT"),
	}
	got := Filter(sponsors(), preds...)
	if diff := cmp.Diff([]string{"Boulangerie Dupont"}, names(got)); diff != "" {
		t.Fatalf("filter (-want +got):\n%s", diff)
	}
	again := Filter(got, preds...)
	if diff := cmp.Diff(got, again); diff != "" {
		t.Fatalf("filter not idempotent (-first +second):\n%s", diff)
	}
}

func TestFilterAllAndAccents(t *testing.T) {
	t.Parallel()

	category := func(s models.Sponsor) models.SponsorCategory { return s.Category }
	if got := Filter(sponsors(), Equals(category, ""), Search[models.Sponsor]("  ")); len(got) != 4 {
		t.Fatalf("empty filters kept %d rows, want 4", len(got))
	}
	got := Filter(sponsors(), Search[models.Sponsor]("cafe"))
	if diff := cmp.Diff([]string{"Café de la Gare"}, names(got)); diff != "" {
		t.Fatalf("accent search (-want +got):\n%s", diff)
	}
}

func TestMoveThenRenumber(t *testing.T) {
	t.Parallel()

	items := sponsors()[:3]
	moved, err := Move(IDs(items), 2, 0)
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if diff := cmp.Diff([]string{"3", "1", "2"}, moved); diff != "" {
		t.Fatalf("order (-want +got):\n%s", diff)
	}
	want := []Assignment{{ID: "3", OrderIndex: 1}, {ID: "1", OrderIndex: 2}, {ID: "2", OrderIndex: 3}}
	if diff := cmp.Diff(want, Renumber(moved, false)); diff != "" {
		t.Fatalf("assignments (-want +got):\n%s", diff)
	}
	desc := []Assignment{{ID: "3", OrderIndex: 3}, {ID: "1", OrderIndex: 2}, {ID: "2", OrderIndex: 1}}
	if diff := cmp.Diff(desc, Renumber(moved, true)); diff != "" {
		t.Fatalf("descending assignments (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"1", "2", "3"}, IDs(items)); diff != "" {
		t.Fatalf("input mutated (-want +got):\n%s", diff)
	}
}

func TestMoveOutOfRange(t *testing.T) {
	t.Parallel()

	if _, err := Move(sponsors(), 0, 4); err == nil {
		t.Fatal("expected out of range error")
	}
	if _, err := Move([]models.Sponsor{}, 0, 0); err == nil {
		t.Fatal("expected error on empty list")
	}
}

func TestSortByOrderStable(t *testing.T) {
	t.Parallel()

	items := []models.FaqItem{
		{ID: "a", OrderIndex: 2},
		{ID: "b", OrderIndex: 1},
		{ID: "c", OrderIndex: 2},
	}
	if diff := cmp.Diff([]string{"b", "a", "c"}, IDs(SortByOrder(items, false))); diff != "" {
		t.Fatalf("asc (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a", "c", "b"}, IDs(SortByOrder(items, true))); diff != "" {
		t.Fatalf("desc (-want +got):\n%s", diff)
	}
}
