package book

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const bookColumns = `id, title, comments, comment_count`

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *PostgresRepo) List(ctx context.Context) ([]Book, error) {
	const query = `SELECT ` + bookColumns + ` FROM books ORDER BY created_at, id`
	return r.query(ctx, query)
}

func (r *PostgresRepo) FindByTitle(ctx context.Context, title string) ([]Book, error) {
	const query = `SELECT ` + bookColumns + ` FROM books WHERE title = $1 ORDER BY created_at, id`
	return r.query(ctx, query, title)
}

func (r *PostgresRepo) query(ctx context.Context, sql string, args ...any) ([]Book, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(timeoutCtx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query books: %w", err)
	}
	defer rows.Close()

	out := []Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (Book, error) {
	if uuid.Validate(id) != nil {
		return Book{}, ErrNotFound
	}
	const query = `SELECT ` + bookColumns + ` FROM books WHERE id = $1`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.one(r.db.QueryRow(timeoutCtx, query, id), "get book "+id)
}

func (r *PostgresRepo) Create(ctx context.Context, title string) (Book, error) {
	const query = `
		INSERT INTO books (title, comments, comment_count, created_at, updated_at)
		VALUES ($1, '[]'::jsonb, 0, clock_timestamp(), clock_timestamp())
		RETURNING ` + bookColumns

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.one(r.db.QueryRow(timeoutCtx, query, title), "insert book")
}

// AppendComment pushes the comment and increments the counter in one
// UPDATE, so concurrent appends serialize on the row lock.
func (r *PostgresRepo) AppendComment(ctx context.Context, id, comment string) (Book, error) {
	if uuid.Validate(id) != nil {
		return Book{}, ErrNotFound
	}
	const query = `
		UPDATE books
		SET comments = comments || jsonb_build_array(jsonb_build_object('comment', $2::text)),
		    comment_count = comment_count + 1,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + bookColumns

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.one(r.db.QueryRow(timeoutCtx, query, id, comment), "append comment to "+id)
}

func (r *PostgresRepo) DeleteByID(ctx context.Context, id string) error {
	if uuid.Validate(id) != nil {
		return ErrNotFound
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Exec(timeoutCtx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete book %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) DeleteAll(ctx context.Context) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	if _, err := r.db.Exec(timeoutCtx, `DELETE FROM books`); err != nil {
		return fmt.Errorf("delete all books: %w", err)
	}
	return nil
}

func (r *PostgresRepo) Ping(ctx context.Context) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.db.Ping(timeoutCtx)
}

func (r *PostgresRepo) one(row pgx.Row, op string) (Book, error) {
	b, err := scanBook(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, fmt.Errorf("%s: %w", op, err)
	}
	return b, nil
}

func scanBook(row pgx.Row) (Book, error) {
	var b Book
	if err := row.Scan(&b.ID, &b.Title, &b.Comments, &b.CommentCount); err != nil {
		return Book{}, err
	}
	if b.Comments == nil {
		b.Comments = []Comment{}
	}
	return b, nil
}
