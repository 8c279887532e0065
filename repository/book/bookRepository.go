package bookrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/jmoiron/sqlx"

	"librarydesk/model"
	"librarydesk/util/database"
)

var pg = goqu.Dialect("postgres")

type Repo interface {
	List(ctx context.Context, search string) ([]model.Book, error)
	ByID(ctx context.Context, id int64) (*model.Book, error)
	Create(ctx context.Context, b *model.Book) error

	// Tx groups the read-modify-write paths (edit, guarded delete) into
	// one transaction so availability reconciliation is never partial.
	Tx(ctx context.Context, fn func(TxOps) error) error
}

type TxOps interface {
	ForUpdate(ctx context.Context, id int64) (*model.Book, error)
	Update(ctx context.Context, b *model.Book) error
	Delete(ctx context.Context, id int64) error
	OpenLoanCount(ctx context.Context, bookID int64) (int64, error)
	PendingReservationCount(ctx context.Context, bookID int64) (int64, error)
}

type repo struct{ db *sqlx.DB }

func New(db *sqlx.DB) Repo { return &repo{db: db} }

func (r *repo) List(ctx context.Context, search string) ([]model.Book, error) {
	ds := pg.From("books").
		Select("id", "isbn", "title", "author", "publisher", "published_year",
			"category", "total_copies", "available_copies").
		Order(goqu.C("title").Asc())
	if search != "" {
		pat := "%" + search + "%"
		ds = ds.Where(goqu.Or(
			goqu.C("title").ILike(pat),
			goqu.C("author").ILike(pat),
			goqu.C("isbn").ILike(pat),
			goqu.C("category").ILike(pat),
		))
	}
	q, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}

	var out []model.Book
	if err := r.db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.Book, error) {
	b := &model.Book{}
	err := r.db.GetContext(ctx, b, `
		SELECT id, isbn, title, author, publisher, published_year, category,
		       total_copies, available_copies
		FROM books
		WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return b, nil
}

func (r *repo) Create(ctx context.Context, b *model.Book) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO books (isbn, title, author, publisher, published_year, category,
		                   total_copies, available_copies)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id`,
		b.ISBN, b.Title, b.Author, b.Publisher, b.PublishedYear, b.Category,
		b.TotalCopies, b.AvailableCopies,
	).Scan(&b.ID)
}

func (r *repo) Tx(ctx context.Context, fn func(TxOps) error) error {
	return database.Tx(ctx, r.db, func(tx *sqlx.Tx) error {
		return fn(txOps{tx: tx})
	})
}

type txOps struct{ tx *sqlx.Tx }

func (o txOps) ForUpdate(ctx context.Context, id int64) (*model.Book, error) {
	b := &model.Book{}
	err := o.tx.GetContext(ctx, b, `
		SELECT id, isbn, title, author, publisher, published_year, category,
		       total_copies, available_copies
		FROM books
		WHERE id = $1
		FOR UPDATE`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return b, nil
}

func (o txOps) Update(ctx context.Context, b *model.Book) error {
	_, err := o.tx.ExecContext(ctx, `
		UPDATE books
		SET isbn = $2, title = $3, author = $4, publisher = $5,
		    published_year = $6, category = $7,
		    total_copies = $8, available_copies = $9
		WHERE id = $1`,
		b.ID, b.ISBN, b.Title, b.Author, b.Publisher, b.PublishedYear,
		b.Category, b.TotalCopies, b.AvailableCopies)
	return err
}

func (o txOps) Delete(ctx context.Context, id int64) error {
	_, err := o.tx.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	return err
}

func (o txOps) OpenLoanCount(ctx context.Context, bookID int64) (int64, error) {
	var n int64
	err := o.tx.GetContext(ctx, &n, `
		SELECT COUNT(*) FROM loans WHERE book_id = $1 AND status = 'issued'`, bookID)
	return n, err
}

func (o txOps) PendingReservationCount(ctx context.Context, bookID int64) (int64, error) {
	var n int64
	err := o.tx.GetContext(ctx, &n, `
		SELECT COUNT(*) FROM reservations WHERE book_id = $1 AND status = 'pending'`, bookID)
	return n, err
}
