// Package store defines the content repository used by the public and admin
// façades: one collection of JSON documents per entity, each document carrying
// an opaque id plus created_at/updated_at timestamps.
package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

// ErrNotFound is returned when a document id does not exist in a table.
var ErrNotFound = errors.New("store: document not found")

// Doc is a JSON object as stored.
type Doc []byte

// Patch maps top-level fields to new values. A nil value removes the field.
type Patch map[string]any

type Op int

const (
	OpEq Op = iota
	// OpNeq also matches documents where the field is absent.
	OpNeq
)

type Filter struct {
	Field string
	Op    Op
	Value any
}

func Eq(field string, value any) Filter {
	return Filter{Field: field, Op: OpEq, Value: value}
}

func Neq(field string, value any) Filter {
	return Filter{Field: field, Op: OpNeq, Value: value}
}

type Order struct {
	Field string
	Desc  bool
}

func Asc(field string) Order  { return Order{Field: field} }
func Desc(field string) Order { return Order{Field: field, Desc: true} }

// Query selects documents. Ties left by Order are broken by insertion order.
type Query struct {
	Filters []Filter
	Order   []Order
	Limit   int // 0 means no limit
}

// Where is shorthand for a query with filters only.
func Where(filters ...Filter) Query {
	return Query{Filters: filters}
}

// OrderBy returns a copy of q with the given sort keys.
func (q Query) OrderBy(order ...Order) Query {
	q.Order = order
	return q
}

// Take returns a copy of q limited to n documents.
func (q Query) Take(n int) Query {
	q.Limit = n
	return q
}

// Store is the content repository contract.
type Store interface {
	Select(ctx context.Context, table string, q Query) ([]Doc, error)
	Get(ctx context.Context, table, id string) (Doc, error)
	// Insert assigns an id when the document has none and stamps timestamps.
	Insert(ctx context.Context, table string, doc Doc) (Doc, error)
	// Update merges patch into the document.
	Update(ctx context.Context, table, id string, patch Patch) (Doc, error)
	// Replace swaps the whole document, keeping id and created_at.
	Replace(ctx context.Context, table, id string, doc Doc) (Doc, error)
	UpdateWhere(ctx context.Context, table string, filters []Filter, patch Patch) (int, error)
	Delete(ctx context.Context, table, id string) error
	DeleteWhere(ctx context.Context, table string, filters []Filter) (int, error)
	Count(ctx context.Context, table string, filters []Filter) (int, error)
	// Atomic runs fn in a single transaction. Any error returned by fn
	// discards every write fn made through tx.
	Atomic(ctx context.Context, fn func(tx Store) error) error
}

// DB is a Store that owns its underlying resources.
type DB interface {
	Store
	// Backup writes a consistent copy of the database to path.
	Backup(ctx context.Context, path string) error
	Close() error
}

var fieldPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// CheckField rejects field names that cannot be used as a document path.
func CheckField(name string) error {
	if !fieldPattern.MatchString(name) {
		return fmt.Errorf("invalid field name %q", name)
	}
	return nil
}

// CheckTable rejects empty or malformed table names.
func CheckTable(name string) error {
	if !fieldPattern.MatchString(name) {
		return fmt.Errorf("invalid table name %q", name)
	}
	return nil
}

// CheckQuery validates every field referenced by q.
func CheckQuery(q Query) error {
	if err := CheckFilters(q.Filters); err != nil {
		return err
	}
	for _, o := range q.Order {
		if err := CheckField(o.Field); err != nil {
			return err
		}
	}
	if q.Limit < 0 {
		return fmt.Errorf("invalid limit %d", q.Limit)
	}
	return nil
}

func CheckFilters(filters []Filter) error {
	for _, f := range filters {
		if err := CheckField(f.Field); err != nil {
			return err
		}
		if f.Op != OpEq && f.Op != OpNeq {
			return fmt.Errorf("invalid filter op %d on %s", f.Op, f.Field)
		}
	}
	return nil
}
