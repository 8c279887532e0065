package loanrepo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"librarydesk/model"
	"librarydesk/util/database"
)

// ErrAvailabilityBounds is returned when an availability adjustment would
// push the counter below zero.
var ErrAvailabilityBounds = errors.New("availability adjustment out of bounds")

type Repo interface {
	// Tx wraps an issue or return so the loan row and the availability
	// counter always move together.
	Tx(ctx context.Context, fn func(TxOps) error) error

	ListAll(ctx context.Context) ([]model.LoanDetail, error)
}

type TxOps interface {
	BookForUpdate(ctx context.Context, bookID int64) (*model.Book, error)
	MemberByID(ctx context.Context, memberID int64) (*model.Member, error)
	InsertLoan(ctx context.Context, l *model.Loan) error
	LoanForUpdate(ctx context.Context, loanID int64) (*model.Loan, error)
	MarkReturned(ctx context.Context, loanID int64, returnedAt time.Time) error
	AdjustAvailability(ctx context.Context, bookID int64, delta int) error
}

type repo struct{ db *sqlx.DB }

func New(db *sqlx.DB) Repo { return &repo{db: db} }

func (r *repo) Tx(ctx context.Context, fn func(TxOps) error) error {
	return database.Tx(ctx, r.db, func(tx *sqlx.Tx) error {
		return fn(txOps{tx: tx})
	})
}

func (r *repo) ListAll(ctx context.Context) ([]model.LoanDetail, error) {
	const q = `
		SELECT l.id, l.book_id, l.member_id, l.issue_date, l.due_date,
		       l.return_date, l.status,
		       b.title AS book_title, b.author AS book_author,
		       m.name  AS member_name
		FROM loans l
		JOIN books b   ON b.id = l.book_id
		JOIN members m ON m.id = l.member_id
		ORDER BY l.issue_date DESC, l.id DESC`
	var out []model.LoanDetail
	if err := r.db.SelectContext(ctx, &out, q); err != nil {
		return nil, err
	}
	return out, nil
}

type txOps struct{ tx *sqlx.Tx }

func (o txOps) BookForUpdate(ctx context.Context, bookID int64) (*model.Book, error) {
	b := &model.Book{}
	err := o.tx.GetContext(ctx, b, `
		SELECT id, isbn, title, author, publisher, published_year, category,
		       total_copies, available_copies
		FROM books
		WHERE id = $1
		FOR UPDATE`, bookID)
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

func (o txOps) InsertLoan(ctx context.Context, l *model.Loan) error {
	return o.tx.QueryRowContext(ctx, `
		INSERT INTO loans (book_id, member_id, issue_date, due_date, status)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id`,
		l.BookID, l.MemberID, l.IssueDate, l.DueDate, l.Status,
	).Scan(&l.ID)
}

func (o txOps) LoanForUpdate(ctx context.Context, loanID int64) (*model.Loan, error) {
	l := &model.Loan{}
	err := o.tx.GetContext(ctx, l, `
		SELECT id, book_id, member_id, issue_date, due_date, return_date, status
		FROM loans
		WHERE id = $1
		FOR UPDATE`, loanID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return l, nil
}

func (o txOps) MarkReturned(ctx context.Context, loanID int64, returnedAt time.Time) error {
	_, err := o.tx.ExecContext(ctx, `
		UPDATE loans
		SET status = 'returned', return_date = $2
		WHERE id = $1`, loanID, returnedAt)
	return err
}

func (o txOps) AdjustAvailability(ctx context.Context, bookID int64, delta int) error {
	// Never below zero. Increments clamp at total_copies: a copy coming
	// back after the total was shrunk is retired rather than overflowing.
	res, err := o.tx.ExecContext(ctx, `
		UPDATE books
		SET available_copies = LEAST(available_copies + $2, total_copies)
		WHERE id = $1
		  AND available_copies + $2 >= 0`, bookID, delta)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		return ErrAvailabilityBounds
	}
	return nil
}
