package scheduler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/Declyn50s/Traine-Savates/pkg/config"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fileSnapshotter struct{ err error }

func (f fileSnapshotter) Backup(_ context.Context, path string) error {
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(path, []byte("snapshot"), 0o600)
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestRunOnceKeepsNewest(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "backups")
	s, err := New(config.BackupConfig{CronSpec: "0 3 * * *", Dir: dir, Keep: 2}, fileSnapshotter{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	clock := time.Date(2025, 4, 18, 3, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }

	for i := 0; i < 3; i++ {
		path, err := s.RunOnce(context.Background())
		if err != nil {
			t.Fatalf("RunOnce: %v", err)
		}
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("backup missing: %v", err)
		}
		clock = clock.Add(24 * time.Hour)
	}

	want := []string{"content-20250419T030000Z.db", "content-20250420T030000Z.db"}
	if diff := cmp.Diff(want, listDir(t, dir)); diff != "" {
		t.Fatalf("backups (-want +got):\n%s", diff)
	}
}

func TestRunOnceFailure(t *testing.T) {
	dir := t.TempDir()
	s, err := New(config.BackupConfig{CronSpec: "@daily", Dir: dir, Keep: 1}, fileSnapshotter{err: errors.New("disk full")})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := s.RunOnce(context.Background()); err == nil {
		t.Fatal("RunOnce succeeded with failing store")
	}
	if got := listDir(t, dir); len(got) != 0 {
		t.Fatalf("files = %v, want none", got)
	}
}

func TestInvalidSchedule(t *testing.T) {
	if _, err := New(config.BackupConfig{CronSpec: "every day"}, fileSnapshotter{}); err == nil {
		t.Fatal("New accepted an invalid cron spec")
	}
}

func TestStartStop(t *testing.T) {
	s, err := New(config.BackupConfig{CronSpec: "@every 1h", Dir: t.TempDir()}, fileSnapshotter{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}

func TestPruneKeepAll(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"content-1.db", "content-2.db", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, n), nil, 0o600); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if n, err := prune(dir, 0); err != nil || n != 0 {
		t.Fatalf("prune(0) = %d, %v", n, err)
	}
	if n, err := prune(dir, 1); err != nil || n != 1 {
		t.Fatalf("prune(1) = %d, %v", n, err)
	}
	if diff := cmp.Diff([]string{"content-2.db", "notes.txt"}, listDir(t, dir)); diff != "" {
		t.Fatalf("remaining (-want +got):\n%s", diff)
	}
}
