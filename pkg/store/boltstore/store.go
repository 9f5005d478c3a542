package boltstore

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"github.com/Declyn50s/Traine-Savates/pkg/logger"
	"github.com/Declyn50s/Traine-Savates/pkg/store"
)

var (
	// Each table bucket holds documents keyed by insertion sequence
	// plus an index from document id to that sequence.
	rowsBucket = []byte("rows")
	idsBucket  = []byte("ids")
)

// Store implements store.DB using BoltDB for persistence.
type Store struct {
	db  *bbolt.DB
	now func() time.Time
}

type Option func(*Store)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open creates or opens a BoltDB-backed content store.
func Open(dbPath string, opts ...Option) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory %s: %w", dir, err)
	}

	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open BoltDB at %s: %w", dbPath, err)
	}

	s := &Store{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	logger.Info("BoltDB content store opened at: %s", dbPath)
	return s, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Backup copies the database file inside a read transaction.
func (s *Store) Backup(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}
	return s.db.View(func(tx *bbolt.Tx) error {
		return tx.CopyFile(path, 0600)
	})
}

func (s *Store) view(ctx context.Context, fn func(t *txStore) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(func(tx *bbolt.Tx) error {
		return fn(&txStore{tx: tx, now: s.now})
	})
}

func (s *Store) update(ctx context.Context, fn func(t *txStore) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return fn(&txStore{tx: tx, now: s.now})
	})
}

func (s *Store) Select(ctx context.Context, table string, q store.Query) (docs []store.Doc, err error) {
	err = s.view(ctx, func(t *txStore) error {
		docs, err = t.Select(ctx, table, q)
		return err
	})
	return docs, err
}

func (s *Store) Get(ctx context.Context, table, id string) (doc store.Doc, err error) {
	err = s.view(ctx, func(t *txStore) error {
		doc, err = t.Get(ctx, table, id)
		return err
	})
	return doc, err
}

func (s *Store) Insert(ctx context.Context, table string, in store.Doc) (doc store.Doc, err error) {
	err = s.update(ctx, func(t *txStore) error {
		doc, err = t.Insert(ctx, table, in)
		return err
	})
	return doc, err
}

func (s *Store) Update(ctx context.Context, table, id string, patch store.Patch) (doc store.Doc, err error) {
	err = s.update(ctx, func(t *txStore) error {
		doc, err = t.Update(ctx, table, id, patch)
		return err
	})
	return doc, err
}

func (s *Store) Replace(ctx context.Context, table, id string, in store.Doc) (doc store.Doc, err error) {
	err = s.update(ctx, func(t *txStore) error {
		doc, err = t.Replace(ctx, table, id, in)
		return err
	})
	return doc, err
}

func (s *Store) UpdateWhere(ctx context.Context, table string, filters []store.Filter, patch store.Patch) (n int, err error) {
	err = s.update(ctx, func(t *txStore) error {
		n, err = t.UpdateWhere(ctx, table, filters, patch)
		return err
	})
	return n, err
}

func (s *Store) Delete(ctx context.Context, table, id string) error {
	return s.update(ctx, func(t *txStore) error {
		return t.Delete(ctx, table, id)
	})
}

func (s *Store) DeleteWhere(ctx context.Context, table string, filters []store.Filter) (n int, err error) {
	err = s.update(ctx, func(t *txStore) error {
		n, err = t.DeleteWhere(ctx, table, filters)
		return err
	})
	return n, err
}

func (s *Store) Count(ctx context.Context, table string, filters []store.Filter) (n int, err error) {
	err = s.view(ctx, func(t *txStore) error {
		n, err = t.Count(ctx, table, filters)
		return err
	})
	return n, err
}

// Atomic runs fn inside a single read-write BoltDB transaction.
func (s *Store) Atomic(ctx context.Context, fn func(tx store.Store) error) error {
	return s.update(ctx, func(t *txStore) error {
		return fn(t)
	})
}

// txStore runs store operations against an open BoltDB transaction.
type txStore struct {
	tx  *bbolt.Tx
	now func() time.Time
}

type entry struct {
	key []byte
	doc store.Doc
}

// buckets returns the rows and ids buckets of a table. With create unset a
// missing table yields nil buckets.
func (t *txStore) buckets(table string, create bool) (rows, ids *bbolt.Bucket, err error) {
	if err := store.CheckTable(table); err != nil {
		return nil, nil, err
	}
	if !create {
		b := t.tx.Bucket([]byte(table))
		if b == nil {
			return nil, nil, nil
		}
		return b.Bucket(rowsBucket), b.Bucket(idsBucket), nil
	}
	b, err := t.tx.CreateBucketIfNotExists([]byte(table))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create bucket %s: %w", table, err)
	}
	if rows, err = b.CreateBucketIfNotExists(rowsBucket); err != nil {
		return nil, nil, fmt.Errorf("failed to create rows bucket for %s: %w", table, err)
	}
	if ids, err = b.CreateBucketIfNotExists(idsBucket); err != nil {
		return nil, nil, fmt.Errorf("failed to create ids bucket for %s: %w", table, err)
	}
	return rows, ids, nil
}

// scan returns copies of matching documents in insertion order.
func (t *txStore) scan(table string, filters []store.Filter, create bool) ([]entry, error) {
	if err := store.CheckFilters(filters); err != nil {
		return nil, err
	}
	rows, _, err := t.buckets(table, create)
	if err != nil || rows == nil {
		return nil, err
	}
	var out []entry
	err = rows.ForEach(func(k, v []byte) error {
		doc := store.Doc(v)
		if !store.Match(doc, filters) {
			return nil
		}
		// Values are only valid for the life of the transaction.
		out = append(out, entry{
			key: append([]byte(nil), k...),
			doc: append(store.Doc(nil), v...),
		})
		return nil
	})
	return out, err
}

func (t *txStore) Select(ctx context.Context, table string, q store.Query) ([]store.Doc, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := store.CheckQuery(q); err != nil {
		return nil, err
	}
	entries, err := t.scan(table, q.Filters, false)
	if err != nil {
		return nil, fmt.Errorf("failed to select from %s: %w", table, err)
	}
	docs := make([]store.Doc, 0, len(entries))
	for _, e := range entries {
		docs = append(docs, e.doc)
	}
	store.SortDocs(docs, q.Order)
	if q.Limit > 0 && len(docs) > q.Limit {
		docs = docs[:q.Limit]
	}
	return docs, nil
}

func (t *txStore) lookup(table, id string, create bool) (rows, ids *bbolt.Bucket, key []byte, doc store.Doc, err error) {
	rows, ids, err = t.buckets(table, create)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if ids == nil {
		return nil, nil, nil, nil, store.ErrNotFound
	}
	key = ids.Get([]byte(id))
	if key == nil {
		return nil, nil, nil, nil, store.ErrNotFound
	}
	key = append([]byte(nil), key...)
	v := rows.Get(key)
	if v == nil {
		return nil, nil, nil, nil, fmt.Errorf("index for %s/%s points at a missing row", table, id)
	}
	return rows, ids, key, append(store.Doc(nil), v...), nil
}

func (t *txStore) Get(ctx context.Context, table, id string) (store.Doc, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	_, _, _, doc, err := t.lookup(table, id, false)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s/%s: %w", table, id, err)
	}
	return doc, nil
}

func (t *txStore) Insert(ctx context.Context, table string, in store.Doc) (store.Doc, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, ids, err := t.buckets(table, true)
	if err != nil {
		return nil, err
	}
	doc, err := store.PrepareInsert(in, t.now())
	if err != nil {
		return nil, fmt.Errorf("failed to insert into %s: %w", table, err)
	}
	id := []byte(doc.ID())
	if ids.Get(id) != nil {
		return nil, fmt.Errorf("failed to insert into %s: duplicate id %s", table, id)
	}
	seq, err := rows.NextSequence()
	if err != nil {
		return nil, fmt.Errorf("failed to allocate sequence for %s: %w", table, err)
	}
	key := itob(seq)
	if err := rows.Put(key, doc); err != nil {
		return nil, fmt.Errorf("failed to insert into %s: %w", table, err)
	}
	if err := ids.Put(id, key); err != nil {
		return nil, fmt.Errorf("failed to index %s/%s: %w", table, id, err)
	}
	return doc, nil
}

func (t *txStore) Update(ctx context.Context, table, id string, patch store.Patch) (store.Doc, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, _, key, current, err := t.lookup(table, id, true)
	if err != nil {
		return nil, fmt.Errorf("failed to update %s/%s: %w", table, id, err)
	}
	doc, err := store.ApplyPatch(current, patch, t.now())
	if err != nil {
		return nil, fmt.Errorf("failed to update %s/%s: %w", table, id, err)
	}
	if err := rows.Put(key, doc); err != nil {
		return nil, fmt.Errorf("failed to update %s/%s: %w", table, id, err)
	}
	return doc, nil
}

func (t *txStore) Replace(ctx context.Context, table, id string, in store.Doc) (store.Doc, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, _, key, current, err := t.lookup(table, id, true)
	if err != nil {
		return nil, fmt.Errorf("failed to replace %s/%s: %w", table, id, err)
	}
	doc, err := store.PrepareReplace(current, in, t.now())
	if err != nil {
		return nil, fmt.Errorf("failed to replace %s/%s: %w", table, id, err)
	}
	if err := rows.Put(key, doc); err != nil {
		return nil, fmt.Errorf("failed to replace %s/%s: %w", table, id, err)
	}
	return doc, nil
}

func (t *txStore) UpdateWhere(ctx context.Context, table string, filters []store.Filter, patch store.Patch) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	entries, err := t.scan(table, filters, true)
	if err != nil {
		return 0, fmt.Errorf("failed to update %s: %w", table, err)
	}
	rows, _, err := t.buckets(table, true)
	if err != nil {
		return 0, err
	}
	now := t.now()
	for _, e := range entries {
		doc, err := store.ApplyPatch(e.doc, patch, now)
		if err != nil {
			return 0, fmt.Errorf("failed to update %s/%s: %w", table, e.doc.ID(), err)
		}
		if err := rows.Put(e.key, doc); err != nil {
			return 0, fmt.Errorf("failed to update %s/%s: %w", table, e.doc.ID(), err)
		}
	}
	return len(entries), nil
}

func (t *txStore) Delete(ctx context.Context, table, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rows, ids, key, _, err := t.lookup(table, id, true)
	if err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", table, id, err)
	}
	if err := rows.Delete(key); err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", table, id, err)
	}
	return ids.Delete([]byte(id))
}

func (t *txStore) DeleteWhere(ctx context.Context, table string, filters []store.Filter) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	entries, err := t.scan(table, filters, true)
	if err != nil {
		return 0, fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	rows, ids, err := t.buckets(table, true)
	if err != nil {
		return 0, err
	}
	for _, e := range entries {
		if err := rows.Delete(e.key); err != nil {
			return 0, fmt.Errorf("failed to delete %s/%s: %w", table, e.doc.ID(), err)
		}
		if err := ids.Delete([]byte(e.doc.ID())); err != nil {
			return 0, fmt.Errorf("failed to unindex %s/%s: %w", table, e.doc.ID(), err)
		}
	}
	return len(entries), nil
}

func (t *txStore) Count(ctx context.Context, table string, filters []store.Filter) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	entries, err := t.scan(table, filters, false)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return len(entries), nil
}

// Atomic on an open transaction runs fn inline.
func (t *txStore) Atomic(ctx context.Context, fn func(tx store.Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(t)
}

func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

var (
	_ store.DB    = (*Store)(nil)
	_ store.Store = (*txStore)(nil)
)
