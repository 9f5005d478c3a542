package store

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestSortDocsMissingFirst(t *testing.T) {
	t.Parallel()

	docs := []Doc{
		Doc(`{"id":"b","date":"2024-06-14"}`),
		Doc(`{"id":"a"}`),
		Doc(`{"id":"c","date":"2025-04-18"}`),
	}
	SortDocs(docs, []Order{Asc("date")})
	var got []string
	for _, d := range docs {
		got = append(got, d.ID())
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, got); diff != "" {
		t.Fatalf("order (-want +got):\n%s", diff)
	}
}

func TestMatchTypedValues(t *testing.T) {
	t.Parallel()

	type status string
	doc := Doc(`{"status":"published","year":2025,"visible":true}`)
	tests := []struct {
		name    string
		filters []Filter
		want    bool
	}{
		{name: "named string type", filters: []Filter{Eq("status", status("published"))}, want: true},
		{name: "int vs float", filters: []Filter{Eq("year", 2025)}, want: true},
		{name: "string vs number", filters: []Filter{Eq("year", "2025")}, want: false},
		{name: "bool", filters: []Filter{Eq("visible", true)}, want: true},
		{name: "neq missing", filters: []Filter{Neq("slug", "2025")}, want: true},
	}
	for _, tt := range tests {
		if got := Match(doc, tt.filters); got != tt.want {
			t.Fatalf("%s: Match = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestApplyPatchRejectsManagedFields(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, field := range []string{"id", "created_at", "updated_at", "Bad-Field"} {
		if _, err := ApplyPatch(Doc(`{"id":"x"}`), Patch{field: "y"}, now); err == nil {
			t.Fatalf("patching %q succeeded", field)
		}
	}
}

func TestStampSortsLexically(t *testing.T) {
	t.Parallel()

	a := Stamp(time.Date(2025, 1, 1, 0, 0, 5, 100_000_000, time.UTC))
	b := Stamp(time.Date(2025, 1, 1, 0, 0, 5, 120_000_000, time.UTC))
	if !(a < b) {
		t.Fatalf("Stamp(%q) !< Stamp(%q)", a, b)
	}
}
