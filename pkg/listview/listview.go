// Package listview filters, searches and reorders lists that are already loaded.
package listview

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Declyn50s/Traine-Savates/pkg/textutil"
)

type Searchable interface {
	SearchText() string
}

// Ordered is a row positioned by order_index.
type Ordered interface {
	Key() string
	Position() int
}

// Predicate selects rows. A nil predicate matches everything.
type Predicate[T any] func(T) bool

// Equals matches rows whose field equals want. The zero value of V stands for
// "all" and yields a nil predicate.
func Equals[T any, V comparable](field func(T) V, want V) Predicate[T] {
	var zero V
	if want == zero {
		return nil
	}
	return func(v T) bool { return field(v) == want }
}

// Search matches rows whose search text contains term, ignoring case and accents.
func Search[T Searchable](term string) Predicate[T] {
	needle := textutil.Fold(strings.TrimSpace(term))
	if needle == "" {
		return nil
	}
	return func(v T) bool {
		return strings.Contains(textutil.Fold(v.SearchText()), needle)
	}
}

// Filter keeps rows matching every predicate. The input is not modified.
func Filter[T any](items []T, preds ...Predicate[T]) []T {
	out := make([]T, 0, len(items))
next:
	for _, it := range items {
		for _, p := range preds {
			if p != nil && !p(it) {
				continue next
			}
		}
		out = append(out, it)
	}
	return out
}

// SortByOrder returns a copy sorted by order_index; ties keep their input order.
func SortByOrder[T Ordered](items []T, desc bool) []T {
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b T) int {
		if desc {
			return b.Position() - a.Position()
		}
		return a.Position() - b.Position()
	})
	return out
}

// Move returns a copy with the row at from spliced to position to.
func Move[T any](items []T, from, to int) ([]T, error) {
	if from < 0 || from >= len(items) || to < 0 || to >= len(items) {
		return nil, fmt.Errorf("move %d -> %d out of range for %d rows", from, to, len(items))
	}
	out := slices.Clone(items)
	moved := out[from]
	out = slices.Delete(out, from, from+1)
	out = slices.Insert(out, to, moved)
	return out, nil
}

// Assignment is one order_index to persist.
type Assignment struct {
	ID         string
	OrderIndex int
}

// Renumber assigns order_index 1..N to ids in the order they are listed. A
// list shown in descending order gets N..1 instead, so it still reads top
// down once reloaded.
func Renumber(ids []string, desc bool) []Assignment {
	out := make([]Assignment, len(ids))
	for i, id := range ids {
		pos := i + 1
		if desc {
			pos = len(ids) - i
		}
		out[i] = Assignment{ID: id, OrderIndex: pos}
	}
	return out
}

// IDs returns the keys of items in order.
func IDs[T Ordered](items []T) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Key()
	}
	return out
}
