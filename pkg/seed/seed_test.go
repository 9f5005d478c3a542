package seed

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Declyn50s/Traine-Savates/pkg/content"
	"github.com/Declyn50s/Traine-Savates/pkg/models"
	"github.com/Declyn50s/Traine-Savates/pkg/store"
	"github.com/Declyn50s/Traine-Savates/pkg/store/boltstore"
	"github.com/Declyn50s/Traine-Savates/pkg/store/storetest"
)

func openStore(t *testing.T) store.DB {
	t.Helper()
	db, err := boltstore.Open(filepath.Join(t.TempDir(), "content.db"), boltstore.WithClock(storetest.StepClock()))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func loadFixture(t *testing.T, db store.Store, opts Options) (Summary, error) {
	t.Helper()
	f, err := os.Open(filepath.Join("testdata", "seed.yaml"))
	if err != nil {
		t.Fatalf("open fixture: %v", err)
	}
	defer f.Close()
	return Load(context.Background(), db, f, opts)
}

func TestLoad(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := openStore(t)
	sum, err := loadFixture(t, db, Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Summary{
		models.TableEditions: 2, models.TableRaceCategories: 3, models.TableProgramItems: 3,
		models.TableClubContent: 1, models.TablePracticalInfo: 1, models.TableTrainingSessions: 2,
		models.TableCommitteeMembers: 1, models.TableSponsors: 2, models.TableFaqItems: 1,
	}
	if diff := cmp.Diff(want, sum); diff != "" {
		t.Fatalf("summary (-want +got):\n%s", diff)
	}

	full, err := content.NewService(db, nil).GetEditionFull(ctx, "2025")
	if err != nil {
		t.Fatalf("GetEditionFull: %v", err)
	}
	if full.Edition.Status != models.EditionPublished || len(full.Races) != 3 || full.Races[1].OrderIndex != 2 {
		t.Fatalf("edition 2025 = %+v", full)
	}
	if full.Races[1].MaxAge == nil || *full.Races[1].MaxAge != 10 {
		t.Fatalf("junior race max age = %v", full.Races[1].MaxAge)
	}
	sponsors, err := content.NewService(db, nil).GetSponsors(ctx)
	if err != nil || len(sponsors) != 1 {
		t.Fatalf("visible sponsors = %d, %v; want 1", len(sponsors), err)
	}

	if _, err := loadFixture(t, db, Options{}); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("second load err = %v, want slug conflict", err)
	}
	if n, _ := content.NewTables(db).Races.Count(ctx); n != 3 {
		t.Fatalf("races after failed load = %d, want 3", n)
	}

	if _, err := loadFixture(t, db, Options{Reset: true}); err != nil {
		t.Fatalf("Load with reset: %v", err)
	}
	if n, _ := content.NewTables(db).Editions.Count(ctx); n != 2 {
		t.Fatalf("editions after reset = %d, want 2", n)
	}
}

func TestDecodeRejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name, doc, want string
	}{
		{"unknown key", "editons: []", "field editons not found"},
		{"two published", `
editions:
  - {slug: "2024", title: a, status: published}
  - {slug: "2025", title: b, status: published}
`, "at most one"},
		{"duplicate slug", `
editions:
  - {slug: "2025", title: a}
  - {slug: "2025", title: b}
`, "appears twice"},
		{"bad status", `
editions:
  - {slug: "2025", title: a, status: live}
`, "unknown status"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Decode(strings.NewReader(tt.doc))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Decode err = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestDecodeEmpty(t *testing.T) {
	t.Parallel()

	f, err := Decode(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(f.Editions) != 0 {
		t.Fatalf("editions = %d, want 0", len(f.Editions))
	}
}
