// Package sqlstore implements repository.ReferenceRepository on database/sql.
// SQL comes from the query package, so the same Store serves Postgres and SQLite.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"referensi/internal/model"
	"referensi/internal/query"
	"referensi/internal/repository"
)

// Store reads documents and categories. It contains no business logic.
type Store struct {
	db       *sqlx.DB
	composer *query.Composer
	snapshot bool
}

// Option configures a Store.
type Option func(*Store)

// WithSnapshot makes List run its count and page queries in one read-only transaction.
func WithSnapshot(enabled bool) Option {
	return func(s *Store) { s.snapshot = enabled }
}

// New creates a Store over db using the dialect's SQL.
func New(db *sql.DB, dialect query.Dialect, opts ...Option) *Store {
	s := &Store{
		db:       sqlx.NewDb(db, dialect.Name()),
		composer: query.New(dialect),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ repository.ReferenceRepository = (*Store)(nil)

// Search returns every document matching f.
func (s *Store) Search(ctx context.Context, f query.Filter) ([]model.DocumentRow, error) {
	return s.selectRows(ctx, s.db, s.composer.Search(f))
}

// List returns one page of documents and the filtered total.
func (s *Store) List(ctx context.Context, f query.Filter, pq repository.PageQuery) (*repository.PageResult[model.DocumentRow], error) {
	if !s.snapshot {
		return s.list(ctx, s.db, f, pq)
	}

	tx, err := s.db.BeginTxx(ctx, s.snapshotOptions())
	if err != nil {
		return nil, fmt.Errorf("begin snapshot: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := s.list(ctx, tx, f, pq)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit snapshot: %w", err)
	}
	return res, nil
}

func (s *Store) list(ctx context.Context, q sqlx.QueryerContext, f query.Filter, pq repository.PageQuery) (*repository.PageResult[model.DocumentRow], error) {
	// Count total rows
	count := s.composer.Count(f)
	var total int
	if err := sqlx.GetContext(ctx, q, &total, count.SQL, count.Args...); err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}

	// Fetch page
	items, err := s.selectRows(ctx, q, s.composer.Page(f, pq.Limit, pq.Offset))
	if err != nil {
		return nil, err
	}

	return &repository.PageResult[model.DocumentRow]{
		Items: items,
		Total: total,
	}, nil
}

// Random returns up to n documents in random order.
func (s *Store) Random(ctx context.Context, n int) ([]model.DocumentRow, error) {
	return s.selectRows(ctx, s.db, s.composer.Random(n))
}

// FindByID fetches a single document by its ID.
func (s *Store) FindByID(ctx context.Context, id int64) (*model.DocumentRow, error) {
	st := s.composer.ByID(id)
	var row model.DocumentRow
	if err := s.db.GetContext(ctx, &row, st.SQL, st.Args...); err != nil {
		return nil, err
	}
	return &row, nil
}

// Categories returns all categories ordered by ID.
func (s *Store) Categories(ctx context.Context) ([]model.Category, error) {
	st := s.composer.Categories()
	out := make([]model.Category, 0)
	if err := s.db.SelectContext(ctx, &out, st.SQL, st.Args...); err != nil {
		return nil, fmt.Errorf("select categories: %w", err)
	}
	return out, nil
}

// CategoryExists reports whether the category is stored.
func (s *Store) CategoryExists(ctx context.Context, id int64) (bool, error) {
	st := s.composer.CategoryExists(id)
	var ok bool
	if err := s.db.GetContext(ctx, &ok, st.SQL, st.Args...); err != nil {
		return false, fmt.Errorf("category exists: %w", err)
	}
	return ok, nil
}

func (s *Store) selectRows(ctx context.Context, q sqlx.QueryerContext, st query.Statement) ([]model.DocumentRow, error) {
	rows := make([]model.DocumentRow, 0)
	if err := sqlx.SelectContext(ctx, q, &rows, st.SQL, st.Args...); err != nil {
		return nil, fmt.Errorf("select documents: %w", err)
	}
	return rows, nil
}

// snapshotOptions returns read-only options; Postgres also gets repeatable read
// so the count and the page see the same data. SQLite transactions are already serializable.
func (s *Store) snapshotOptions() *sql.TxOptions {
	if s.composer.Dialect() == query.Postgres {
		return &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
	}
	return &sql.TxOptions{}
}
