// Package storetest holds the behaviour every store.DB implementation must share.
package storetest

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/Declyn50s/Traine-Savates/pkg/store"
)

// Opener opens a fresh store at path using clock for timestamps.
type Opener func(t *testing.T, path string, clock func() time.Time) store.DB

type item struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Kind       string `json:"kind,omitempty"`
	OrderIndex int    `json:"order_index"`
	Visible    *bool  `json:"visible,omitempty"`
	CreatedAt  string `json:"created_at,omitempty"`
	UpdatedAt  string `json:"updated_at,omitempty"`
}

// StepClock returns a clock advancing one second per call.
func StepClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2025, 6, 14, 8, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

// Run exercises open against the shared contract.
func Run(t *testing.T, open Opener) {
	t.Helper()

	fresh := func(t *testing.T) (store.DB, store.Table[item]) {
		t.Helper()
		db := open(t, filepath.Join(t.TempDir(), "content.db"), StepClock())
		t.Cleanup(func() { _ = db.Close() })
		return db, store.NewTable[item](db, "items")
	}

	t.Run("insert assigns id and timestamps", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		_, items := fresh(t)

		got, err := items.Insert(ctx, item{Name: "10 km"})
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
		if got.ID == "" {
			t.Fatal("id is empty")
		}
		if got.CreatedAt == "" || got.CreatedAt != got.UpdatedAt {
			t.Fatalf("timestamps = %q/%q, want equal and set", got.CreatedAt, got.UpdatedAt)
		}
		loaded, err := items.Get(ctx, got.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if diff := cmp.Diff(got, loaded); diff != "" {
			t.Fatalf("get mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("get missing is ErrNotFound", func(t *testing.T) {
		t.Parallel()
		_, items := fresh(t)
		_, err := items.Get(context.Background(), "nope")
		if !errors.Is(err, store.ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
		if err := items.Delete(context.Background(), "nope"); !errors.Is(err, store.ErrNotFound) {
			t.Fatalf("delete err = %v, want ErrNotFound", err)
		}
	})

	t.Run("duplicate id rejected", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		_, items := fresh(t)
		if _, err := items.Insert(ctx, item{ID: "a", Name: "first"}); err != nil {
			t.Fatalf("insert: %v", err)
		}
		if _, err := items.Insert(ctx, item{ID: "a", Name: "second"}); err == nil {
			t.Fatal("second insert with same id succeeded")
		}
	})

	t.Run("order is stable on ties", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		_, items := fresh(t)
		for _, it := range []item{
			{Name: "c", OrderIndex: 2},
			{Name: "a", OrderIndex: 1},
			{Name: "b", OrderIndex: 2},
			{Name: "d", OrderIndex: 1},
		} {
			if _, err := items.Insert(ctx, it); err != nil {
				t.Fatalf("insert: %v", err)
			}
		}

		asc, err := items.List(ctx, store.Query{}.OrderBy(store.Asc("order_index")))
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if diff := cmp.Diff([]string{"a", "d", "c", "b"}, names(asc)); diff != "" {
			t.Fatalf("asc order (-want +got):\n%s", diff)
		}

		desc, err := items.List(ctx, store.Query{}.OrderBy(store.Desc("order_index")).Take(3))
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if diff := cmp.Diff([]string{"c", "b", "a"}, names(desc)); diff != "" {
			t.Fatalf("desc order (-want +got):\n%s", diff)
		}
	})

	t.Run("filters", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		_, items := fresh(t)
		no := false
		for _, it := range []item{
			{Name: "a", Kind: "principal"},
			{Name: "b", Kind: "secondary", Visible: &no},
			{Name: "c"},
			{Name: "d", Kind: "principal", Visible: &no},
		} {
			if _, err := items.Insert(ctx, it); err != nil {
				t.Fatalf("insert: %v", err)
			}
		}

		tests := []struct {
			name    string
			filters []store.Filter
			want    []string
		}{
			{name: "eq", filters: []store.Filter{store.Eq("kind", "principal")}, want: []string{"a", "d"}},
			{name: "neq matches missing", filters: []store.Filter{store.Neq("kind", "principal")}, want: []string{"b", "c"}},
			{name: "bool neq", filters: []store.Filter{store.Neq("visible", false)}, want: []string{"a", "c"}},
			{name: "combined", filters: []store.Filter{store.Eq("kind", "principal"), store.Neq("visible", false)}, want: []string{"a"}},
			{name: "eq nil matches missing", filters: []store.Filter{store.Eq("kind", nil)}, want: []string{"c"}},
		}
		for _, tt := range tests {
			got, err := items.List(ctx, store.Where(tt.filters...))
			if err != nil {
				t.Fatalf("%s: list: %v", tt.name, err)
			}
			if diff := cmp.Diff(tt.want, names(got)); diff != "" {
				t.Fatalf("%s (-want +got):\n%s", tt.name, diff)
			}
			n, err := items.Count(ctx, tt.filters...)
			if err != nil {
				t.Fatalf("%s: count: %v", tt.name, err)
			}
			if n != len(tt.want) {
				t.Fatalf("%s: count = %d, want %d", tt.name, n, len(tt.want))
			}
		}
	})

	t.Run("update patch and replace", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		_, items := fresh(t)
		created, err := items.Insert(ctx, item{Name: "old", Kind: "x", OrderIndex: 4})
		if err != nil {
			t.Fatalf("insert: %v", err)
		}

		patched, err := items.Update(ctx, created.ID, store.Patch{"name": "new", "kind": nil})
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if patched.Name != "new" || patched.Kind != "" || patched.OrderIndex != 4 {
			t.Fatalf("patched = %+v", patched)
		}
		if patched.CreatedAt != created.CreatedAt || patched.UpdatedAt <= created.UpdatedAt {
			t.Fatalf("timestamps created=%q updated=%q after %q", patched.CreatedAt, patched.UpdatedAt, created.UpdatedAt)
		}

		replaced, err := items.Replace(ctx, created.ID, item{ID: "ignored", Name: "whole"})
		if err != nil {
			t.Fatalf("replace: %v", err)
		}
		if replaced.ID != created.ID || replaced.OrderIndex != 0 || replaced.CreatedAt != created.CreatedAt {
			t.Fatalf("replaced = %+v", replaced)
		}

		if _, err := items.Update(ctx, created.ID, store.Patch{"id": "other"}); err == nil {
			t.Fatal("patching id succeeded")
		}
	})

	t.Run("update where and delete where", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		_, items := fresh(t)
		keep, _ := items.Insert(ctx, item{Name: "keep", Kind: "published"})
		for _, n := range []string{"a", "b"} {
			if _, err := items.Insert(ctx, item{Name: n, Kind: "published"}); err != nil {
				t.Fatalf("insert: %v", err)
			}
		}
		n, err := items.UpdateWhere(ctx, store.Patch{"kind": "archived"}, store.Neq("id", keep.ID))
		if err != nil {
			t.Fatalf("update where: %v", err)
		}
		if n != 2 {
			t.Fatalf("updated = %d, want 2", n)
		}
		if c, _ := items.Count(ctx, store.Eq("kind", "published")); c != 1 {
			t.Fatalf("published = %d, want 1", c)
		}
		n, err = items.DeleteWhere(ctx, store.Eq("kind", "archived"))
		if err != nil {
			t.Fatalf("delete where: %v", err)
		}
		if n != 2 {
			t.Fatalf("deleted = %d, want 2", n)
		}
		rest, _ := items.List(ctx, store.Query{})
		if diff := cmp.Diff([]string{"keep"}, names(rest)); diff != "" {
			t.Fatalf("remaining (-want +got):\n%s", diff)
		}
	})

	t.Run("atomic rolls back on error", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		db, items := fresh(t)
		first, _ := items.Insert(ctx, item{Name: "first"})

		boom := errors.New("boom")
		err := db.Atomic(ctx, func(tx store.Store) error {
			txItems := items.With(tx)
			if _, err := txItems.Insert(ctx, item{Name: "second"}); err != nil {
				return err
			}
			if _, err := txItems.Update(ctx, first.ID, store.Patch{"name": "changed"}); err != nil {
				return err
			}
			if got, _ := txItems.Count(ctx); got != 2 {
				t.Errorf("count inside tx = %d, want 2", got)
			}
			return boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("atomic err = %v, want boom", err)
		}
		all, _ := items.List(ctx, store.Query{})
		if diff := cmp.Diff([]string{"first"}, names(all)); diff != "" {
			t.Fatalf("after rollback (-want +got):\n%s", diff)
		}
	})

	t.Run("atomic commits and nests", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		db, items := fresh(t)
		err := db.Atomic(ctx, func(tx store.Store) error {
			if _, err := items.With(tx).Insert(ctx, item{Name: "outer"}); err != nil {
				return err
			}
			return tx.Atomic(ctx, func(inner store.Store) error {
				_, err := items.With(inner).Insert(ctx, item{Name: "inner"})
				return err
			})
		})
		if err != nil {
			t.Fatalf("atomic: %v", err)
		}
		if n, _ := items.Count(ctx); n != 2 {
			t.Fatalf("count = %d, want 2", n)
		}
	})

	t.Run("invalid field rejected", func(t *testing.T) {
		t.Parallel()
		_, items := fresh(t)
		_, err := items.List(context.Background(), store.Where(store.Eq("name; DROP", "x")))
		if err == nil {
			t.Fatal("invalid field accepted")
		}
	})

	t.Run("backup", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		db, items := fresh(t)
		if _, err := items.Insert(ctx, item{Name: "saved"}); err != nil {
			t.Fatalf("insert: %v", err)
		}
		path := filepath.Join(t.TempDir(), "backup", "copy.db")
		if err := db.Backup(ctx, path); err != nil {
			t.Fatalf("backup: %v", err)
		}
		copyDB := open(t, path, StepClock())
		defer copyDB.Close()
		got, err := store.NewTable[item](copyDB, "items").List(ctx, store.Query{})
		if err != nil {
			t.Fatalf("list copy: %v", err)
		}
		if diff := cmp.Diff([]string{"saved"}, names(got)); diff != "" {
			t.Fatalf("backup contents (-want +got):\n%s", diff)
		}
	})

	t.Run("canceled context", func(t *testing.T) {
		t.Parallel()
		_, items := fresh(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := items.Insert(ctx, item{Name: "x"}); !errors.Is(err, context.Canceled) {
			t.Fatalf("err = %v, want context.Canceled", err)
		}
	})
}

func names(items []item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Name)
	}
	return out
}
