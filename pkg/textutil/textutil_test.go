package textutil

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSlugify(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"Course des Traîne-Savates 2025": "course-des-traine-savates-2025",
		"  10 km — Populaire ":           "10-km-populaire",
		"Épreuve Villageoise":            "epreuve-villageoise",
		"2026":                           "2026",
		"!!!":                            "",
	}
	for in, want := range tests {
		if got := Slugify(in); got != want {
			t.Fatalf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsSlug(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]bool{"2025": true, "10-km": true, "10 km": false, "": false, "Édition": false} {
		if got := IsSlug(in); got != want {
			t.Fatalf("IsSlug(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestFoldAndSpaces(t *testing.T) {
	t.Parallel()

	if got := Fold("Départ Église"); got != "depart eglise" {
		t.Fatalf("Fold = %q", got)
	}
	if got := NormalizeSpace(" Salle \n\t communale  "); got != "Salle communale" {
		t.Fatalf("NormalizeSpace = %q", got)
	}
	if diff := cmp.Diff([]string{"a", "b"}, DeleteEmpty([]string{"a", " ", "", "b"})); diff != "" {
		t.Fatalf("DeleteEmpty (-want +got):\n%s", diff)
	}
}
