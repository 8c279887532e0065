package reservationrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"librarydesk/model"
	"librarydesk/util/database"
)

type Repo interface {
	// Tx wraps reserve (duplicate pre-check + insert) and the status
	// transitions so concurrent requests cannot slip past the pre-check.
	Tx(ctx context.Context, fn func(TxOps) error) error

	ListAll(ctx context.Context) ([]model.ReservationDetail, error)
}

type TxOps interface {
	BookByID(ctx context.Context, bookID int64) (*model.Book, error)
	MemberByID(ctx context.Context, memberID int64) (*model.Member, error)
	HasPending(ctx context.Context, bookID, memberID int64) (bool, error)
	Insert(ctx context.Context, res *model.Reservation) error
	ForUpdate(ctx context.Context, id int64) (*model.Reservation, error)
	SetStatus(ctx context.Context, id int64, status model.ReservationStatus) error
}

type repo struct{ db *sqlx.DB }

func New(db *sqlx.DB) Repo { return &repo{db: db} }

func (r *repo) Tx(ctx context.Context, fn func(TxOps) error) error {
	return database.Tx(ctx, r.db, func(tx *sqlx.Tx) error {
		return fn(txOps{tx: tx})
	})
}

func (r *repo) ListAll(ctx context.Context) ([]model.ReservationDetail, error) {
	const q = `
		SELECT r.id, r.book_id, r.member_id, r.reserved_at, r.status,
		       b.title AS book_title,
		       b.available_copies AS available_copies,
		       m.name  AS member_name
		FROM reservations r
		JOIN books b   ON b.id = r.book_id
		JOIN members m ON m.id = r.member_id
		ORDER BY r.reserved_at DESC, r.id DESC`
	var out []model.ReservationDetail
	if err := r.db.SelectContext(ctx, &out, q); err != nil {
		return nil, err
	}
	return out, nil
}

type txOps struct{ tx *sqlx.Tx }

func (o txOps) BookByID(ctx context.Context, bookID int64) (*model.Book, error) {
	b := &model.Book{}
	err := o.tx.GetContext(ctx, b, `
		SELECT id, isbn, title, author, publisher, published_year, category,
		       total_copies, available_copies
		FROM books
		WHERE id = $1`, bookID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return b, nil
}

func (o txOps) MemberByID(ctx context.Context, memberID int64) (*model.Member, error) {
	m := &model.Member{}
	err := o.tx.GetContext(ctx, m, `
		SELECT id, name, email, phone, address, status
		FROM members
		WHERE id = $1`, memberID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

func (o txOps) HasPending(ctx context.Context, bookID, memberID int64) (bool, error) {
	var n int64
	err := o.tx.GetContext(ctx, &n, `
		SELECT COUNT(*) FROM reservations
		WHERE book_id = $1 AND member_id = $2 AND status = 'pending'`,
		bookID, memberID)
	return n > 0, err
}

func (o txOps) Insert(ctx context.Context, res *model.Reservation) error {
	return o.tx.QueryRowContext(ctx, `
		INSERT INTO reservations (book_id, member_id, reserved_at, status)
		VALUES ($1,$2,$3,$4)
		RETURNING id`,
		res.BookID, res.MemberID, res.ReservedAt, res.Status,
	).Scan(&res.ID)
}

func (o txOps) ForUpdate(ctx context.Context, id int64) (*model.Reservation, error) {
	res := &model.Reservation{}
	err := o.tx.GetContext(ctx, res, `
		SELECT id, book_id, member_id, reserved_at, status
		FROM reservations
		WHERE id = $1
		FOR UPDATE`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return res, nil
}

func (o txOps) SetStatus(ctx context.Context, id int64, status model.ReservationStatus) error {
	_, err := o.tx.ExecContext(ctx, `
		UPDATE reservations SET status = $2 WHERE id = $1`, id, status)
	return err
}
