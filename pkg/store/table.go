package store

import (
	"context"
	"fmt"
)

// Table is a typed view over one collection.
type Table[T any] struct {
	s    Store
	name string
}

func NewTable[T any](s Store, name string) Table[T] {
	return Table[T]{s: s, name: name}
}

// With rebinds the table to another store, usually a transaction.
func (t Table[T]) With(s Store) Table[T] {
	t.s = s
	return t
}

func (t Table[T]) Name() string {
	return t.name
}

func (t Table[T]) List(ctx context.Context, q Query) ([]T, error) {
	docs, err := t.s.Select(ctx, t.name, q)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		v, err := decode[T](d)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", t.name, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// First returns the first match of q, reporting false when none.
func (t Table[T]) First(ctx context.Context, q Query) (T, bool, error) {
	var zero T
	rows, err := t.List(ctx, q.Take(1))
	if err != nil || len(rows) == 0 {
		return zero, false, err
	}
	return rows[0], true, nil
}

func (t Table[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	d, err := t.s.Get(ctx, t.name, id)
	if err != nil {
		return zero, err
	}
	return decode[T](d)
}

func (t Table[T]) Insert(ctx context.Context, v T) (T, error) {
	var zero T
	d, err := Encode(v)
	if err != nil {
		return zero, err
	}
	if d, err = t.s.Insert(ctx, t.name, d); err != nil {
		return zero, err
	}
	return decode[T](d)
}

func (t Table[T]) Update(ctx context.Context, id string, patch Patch) (T, error) {
	var zero T
	d, err := t.s.Update(ctx, t.name, id, patch)
	if err != nil {
		return zero, err
	}
	return decode[T](d)
}

func (t Table[T]) Replace(ctx context.Context, id string, v T) (T, error) {
	var zero T
	d, err := Encode(v)
	if err != nil {
		return zero, err
	}
	if d, err = t.s.Replace(ctx, t.name, id, d); err != nil {
		return zero, err
	}
	return decode[T](d)
}

func (t Table[T]) UpdateWhere(ctx context.Context, patch Patch, filters ...Filter) (int, error) {
	return t.s.UpdateWhere(ctx, t.name, filters, patch)
}

func (t Table[T]) Delete(ctx context.Context, id string) error {
	return t.s.Delete(ctx, t.name, id)
}

func (t Table[T]) DeleteWhere(ctx context.Context, filters ...Filter) (int, error) {
	return t.s.DeleteWhere(ctx, t.name, filters)
}

func (t Table[T]) Count(ctx context.Context, filters ...Filter) (int, error) {
	return t.s.Count(ctx, t.name, filters)
}

func decode[T any](d Doc) (T, error) {
	var v T
	if err := d.Decode(&v); err != nil {
		return v, fmt.Errorf("decode document: %w", err)
	}
	return v, nil
}
