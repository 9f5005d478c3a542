package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Declyn50s/Traine-Savates/pkg/logger"
	"github.com/Declyn50s/Traine-Savates/pkg/store"
	"github.com/Declyn50s/Traine-Savates/pkg/store/sqlitestore/migrations"
)

// Store provides a SQLite-backed content repository.
type Store struct {
	docs
	sqlDB *sql.DB
}

type Option func(*Store)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open opens a SQLite store at the provided path and applies migrations.
func Open(path string, opts ...Option) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	dsn := "file:" + cleanPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_txlock=immediate"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One writer at a time keeps transactions serialized.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(context.Background(), sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	s := &Store{docs: docs{q: sqlDB, now: time.Now}, sqlDB: sqlDB}
	for _, opt := range opts {
		opt(s)
	}
	logger.Info("SQLite content store opened at: %s", cleanPath)
	return s, nil
}

// Close closes the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Backup writes a compacted copy of the database with VACUUM INTO.
func (s *Store) Backup(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create backup directory: %w", err)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove stale backup: %w", err)
	}
	if _, err := s.sqlDB.ExecContext(ctx, "VACUUM INTO ?", path); err != nil {
		return fmt.Errorf("vacuum into %s: %w", path, err)
	}
	return nil
}

// Atomic runs fn inside one SQL transaction.
func (s *Store) Atomic(ctx context.Context, fn func(tx store.Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(&txStore{docs: docs{q: tx, now: s.now}}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Multi-statement writes on the bare store run in their own transaction.
func (s *Store) Update(ctx context.Context, table, id string, patch store.Patch) (doc store.Doc, err error) {
	err = s.Atomic(ctx, func(tx store.Store) error {
		doc, err = tx.Update(ctx, table, id, patch)
		return err
	})
	return doc, err
}

func (s *Store) Replace(ctx context.Context, table, id string, in store.Doc) (doc store.Doc, err error) {
	err = s.Atomic(ctx, func(tx store.Store) error {
		doc, err = tx.Replace(ctx, table, id, in)
		return err
	})
	return doc, err
}

func (s *Store) UpdateWhere(ctx context.Context, table string, filters []store.Filter, patch store.Patch) (n int, err error) {
	err = s.Atomic(ctx, func(tx store.Store) error {
		n, err = tx.UpdateWhere(ctx, table, filters, patch)
		return err
	})
	return n, err
}

type txStore struct {
	docs
}

// Atomic on an open transaction runs fn inline.
func (t *txStore) Atomic(ctx context.Context, fn func(tx store.Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(t)
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// docs implements the document operations over a connection or transaction.
type docs struct {
	q   querier
	now func() time.Time
}

type row struct {
	seq int64
	doc store.Doc
}

// where renders the table and filter predicates.
func where(table string, filters []store.Filter) (string, []any, error) {
	if err := store.CheckTable(table); err != nil {
		return "", nil, err
	}
	if err := store.CheckFilters(filters); err != nil {
		return "", nil, err
	}
	var b strings.Builder
	args := []any{table}
	b.WriteString(" WHERE tbl = ?")
	for _, f := range filters {
		op := "IS"
		if f.Op == store.OpNeq {
			op = "IS NOT"
		}
		fmt.Fprintf(&b, " AND json_extract(body, ?) %s ?", op)
		args = append(args, "$."+f.Field, bindValue(f.Value))
	}
	return b.String(), args, nil
}

// bindValue converts filter literals to what json_extract yields.
func bindValue(v any) any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		if rv.Bool() {
			return int64(1)
		}
		return int64(0)
	case reflect.String:
		return rv.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	default:
		return fmt.Sprint(v)
	}
}

func (d docs) query(ctx context.Context, table string, q store.Query) ([]row, error) {
	if err := store.CheckQuery(q); err != nil {
		return nil, err
	}
	pred, args, err := where(table, q.Filters)
	if err != nil {
		return nil, err
	}
	var b strings.Builder
	b.WriteString("SELECT seq, body FROM documents")
	b.WriteString(pred)
	b.WriteString(" ORDER BY ")
	for _, o := range q.Order {
		dir := "ASC"
		if o.Desc {
			dir = "DESC"
		}
		fmt.Fprintf(&b, "json_extract(body, ?) %s, ", dir)
		args = append(args, "$."+o.Field)
	}
	b.WriteString("seq ASC")
	if q.Limit > 0 {
		b.WriteString(" LIMIT ?")
		args = append(args, q.Limit)
	}

	rs, err := d.q.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rs.Close()

	var out []row
	for rs.Next() {
		var r row
		var body string
		if err := rs.Scan(&r.seq, &body); err != nil {
			return nil, err
		}
		r.doc = store.Doc(body)
		out = append(out, r)
	}
	return out, rs.Err()
}

func (d docs) Select(ctx context.Context, table string, q store.Query) ([]store.Doc, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := d.query(ctx, table, q)
	if err != nil {
		return nil, fmt.Errorf("select from %s: %w", table, err)
	}
	out := make([]store.Doc, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.doc)
	}
	return out, nil
}

func (d docs) lookup(ctx context.Context, table, id string) (row, error) {
	if err := store.CheckTable(table); err != nil {
		return row{}, err
	}
	var r row
	var body string
	err := d.q.QueryRowContext(ctx,
		"SELECT seq, body FROM documents WHERE tbl = ? AND id = ?", table, id,
	).Scan(&r.seq, &body)
	if errors.Is(err, sql.ErrNoRows) {
		return row{}, store.ErrNotFound
	}
	if err != nil {
		return row{}, err
	}
	r.doc = store.Doc(body)
	return r, nil
}

func (d docs) Get(ctx context.Context, table, id string) (store.Doc, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r, err := d.lookup(ctx, table, id)
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", table, id, err)
	}
	return r.doc, nil
}

func (d docs) Insert(ctx context.Context, table string, in store.Doc) (store.Doc, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := store.CheckTable(table); err != nil {
		return nil, err
	}
	doc, err := store.PrepareInsert(in, d.now())
	if err != nil {
		return nil, fmt.Errorf("insert into %s: %w", table, err)
	}
	if _, err := d.q.ExecContext(ctx,
		"INSERT INTO documents (tbl, id, body) VALUES (?, ?, ?)", table, doc.ID(), string(doc),
	); err != nil {
		return nil, fmt.Errorf("insert into %s: %w", table, err)
	}
	return doc, nil
}

func (d docs) write(ctx context.Context, seq int64, doc store.Doc) error {
	_, err := d.q.ExecContext(ctx, "UPDATE documents SET body = ? WHERE seq = ?", string(doc), seq)
	return err
}

func (d docs) Update(ctx context.Context, table, id string, patch store.Patch) (store.Doc, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r, err := d.lookup(ctx, table, id)
	if err != nil {
		return nil, fmt.Errorf("update %s/%s: %w", table, id, err)
	}
	doc, err := store.ApplyPatch(r.doc, patch, d.now())
	if err != nil {
		return nil, fmt.Errorf("update %s/%s: %w", table, id, err)
	}
	if err := d.write(ctx, r.seq, doc); err != nil {
		return nil, fmt.Errorf("update %s/%s: %w", table, id, err)
	}
	return doc, nil
}

func (d docs) Replace(ctx context.Context, table, id string, in store.Doc) (store.Doc, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r, err := d.lookup(ctx, table, id)
	if err != nil {
		return nil, fmt.Errorf("replace %s/%s: %w", table, id, err)
	}
	doc, err := store.PrepareReplace(r.doc, in, d.now())
	if err != nil {
		return nil, fmt.Errorf("replace %s/%s: %w", table, id, err)
	}
	if err := d.write(ctx, r.seq, doc); err != nil {
		return nil, fmt.Errorf("replace %s/%s: %w", table, id, err)
	}
	return doc, nil
}

func (d docs) UpdateWhere(ctx context.Context, table string, filters []store.Filter, patch store.Patch) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	// Rows are drained before writing; the connection is shared.
	rows, err := d.query(ctx, table, store.Query{Filters: filters})
	if err != nil {
		return 0, fmt.Errorf("update %s: %w", table, err)
	}
	now := d.now()
	for _, r := range rows {
		doc, err := store.ApplyPatch(r.doc, patch, now)
		if err != nil {
			return 0, fmt.Errorf("update %s/%s: %w", table, r.doc.ID(), err)
		}
		if err := d.write(ctx, r.seq, doc); err != nil {
			return 0, fmt.Errorf("update %s/%s: %w", table, r.doc.ID(), err)
		}
	}
	return len(rows), nil
}

func (d docs) Delete(ctx context.Context, table, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := store.CheckTable(table); err != nil {
		return err
	}
	res, err := d.q.ExecContext(ctx, "DELETE FROM documents WHERE tbl = ? AND id = ?", table, id)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", table, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", table, id, err)
	}
	if n == 0 {
		return fmt.Errorf("delete %s/%s: %w", table, id, store.ErrNotFound)
	}
	return nil
}

func (d docs) DeleteWhere(ctx context.Context, table string, filters []store.Filter) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	pred, args, err := where(table, filters)
	if err != nil {
		return 0, err
	}
	res, err := d.q.ExecContext(ctx, "DELETE FROM documents"+pred, args...)
	if err != nil {
		return 0, fmt.Errorf("delete from %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete from %s: %w", table, err)
	}
	return int(n), nil
}

func (d docs) Count(ctx context.Context, table string, filters []store.Filter) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	pred, args, err := where(table, filters)
	if err != nil {
		return 0, err
	}
	var n int
	if err := d.q.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents"+pred, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

var (
	_ store.DB    = (*Store)(nil)
	_ store.Store = (*txStore)(nil)
)
