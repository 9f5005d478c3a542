package sqlitestore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Declyn50s/Traine-Savates/pkg/store"
	"github.com/Declyn50s/Traine-Savates/pkg/store/storetest"
)

func TestStoreContract(t *testing.T) {
	t.Parallel()
	storetest.Run(t, func(t *testing.T, path string, clock func() time.Time) store.DB {
		s, err := Open(path, WithClock(clock))
		if err != nil {
			t.Fatalf("open sqlite store: %v", err)
		}
		return s
	})
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()
	if _, err := Open("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestMigrationsApplyOnce(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "content.db")
	for i := 0; i < 2; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("open #%d: %v", i+1, err)
		}
		var n int
		if err := s.sqlDB.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM schema_migrations").Scan(&n); err != nil {
			t.Fatalf("count migrations: %v", err)
		}
		if n != 1 {
			t.Fatalf("applied migrations = %d, want 1", n)
		}
		_ = s.Close()
	}
}

func TestExtractUpMigration(t *testing.T) {
	t.Parallel()

	got := extractUpMigration("-- +migrate Up\nCREATE TABLE x (a);\n-- +migrate Down\nDROP TABLE x;\n")
	if want := "\nCREATE TABLE x (a);\n"; got != want {
		t.Fatalf("extractUpMigration = %q, want %q", got, want)
	}
}
