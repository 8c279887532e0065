package memberrepo

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
	List(ctx context.Context, search string) ([]model.Member, error)
	ByID(ctx context.Context, id int64) (*model.Member, error)
	Create(ctx context.Context, m *model.Member) error
	Update(ctx context.Context, m *model.Member) (bool, error)
	LoanHistory(ctx context.Context, memberID int64) ([]model.LoanDetail, error)

	Tx(ctx context.Context, fn func(TxOps) error) error
}

type TxOps interface {
	ForUpdate(ctx context.Context, id int64) (*model.Member, error)
	Delete(ctx context.Context, id int64) error
	OpenLoanCount(ctx context.Context, memberID int64) (int64, error)
	PendingReservationCount(ctx context.Context, memberID int64) (int64, error)
}

type repo struct{ db *sqlx.DB }

func New(db *sqlx.DB) Repo { return &repo{db: db} }

func (r *repo) List(ctx context.Context, search string) ([]model.Member, error) {
	ds := pg.From("members").
		Select("id", "name", "email", "phone", "address", "status").
		Order(goqu.C("name").Asc())
	if search != "" {
		pat := "%" + search + "%"
		ds = ds.Where(goqu.Or(
			goqu.C("name").ILike(pat),
			goqu.C("email").ILike(pat),
			goqu.C("phone").ILike(pat),
		))
	}
	q, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}

	var out []model.Member
	if err := r.db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.Member, error) {
	m := &model.Member{}
	err := r.db.GetContext(ctx, m, `
		SELECT id, name, email, phone, address, status
		FROM members
		WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

func (r *repo) Create(ctx context.Context, m *model.Member) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO members (name, email, phone, address, status)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id`,
		m.Name, m.Email, m.Phone, m.Address, m.Status,
	).Scan(&m.ID)
}

func (r *repo) Update(ctx context.Context, m *model.Member) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE members
		SET name = $2, email = $3, phone = $4, address = $5, status = $6
		WHERE id = $1`,
		m.ID, m.Name, m.Email, m.Phone, m.Address, m.Status)
	if err != nil {
		return false, err
	}
	aff, _ := res.RowsAffected()
	return aff > 0, nil
}

func (r *repo) LoanHistory(ctx context.Context, memberID int64) ([]model.LoanDetail, error) {
	const q = `
		SELECT l.id, l.book_id, l.member_id, l.issue_date, l.due_date,
		       l.return_date, l.status,
		       b.title AS book_title, b.author AS book_author,
		       m.name  AS member_name
		FROM loans l
		JOIN books b   ON b.id = l.book_id
		JOIN members m ON m.id = l.member_id
		WHERE l.member_id = $1
		ORDER BY l.issue_date DESC, l.id DESC`
	var out []model.LoanDetail
	if err := r.db.SelectContext(ctx, &out, q, memberID); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repo) Tx(ctx context.Context, fn func(TxOps) error) error {
	return database.Tx(ctx, r.db, func(tx *sqlx.Tx) error {
		return fn(txOps{tx: tx})
	})
}

type txOps struct{ tx *sqlx.Tx }

func (o txOps) ForUpdate(ctx context.Context, id int64) (*model.Member, error) {
	m := &model.Member{}
	err := o.tx.GetContext(ctx, m, `
		SELECT id, name, email, phone, address, status
		FROM members
		WHERE id = $1
		FOR UPDATE`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

func (o txOps) Delete(ctx context.Context, id int64) error {
	_, err := o.tx.ExecContext(ctx, `DELETE FROM members WHERE id = $1`, id)
	return err
}

func (o txOps) OpenLoanCount(ctx context.Context, memberID int64) (int64, error) {
	var n int64
	err := o.tx.GetContext(ctx, &n, `
		SELECT COUNT(*) FROM loans WHERE member_id = $1 AND status = 'issued'`, memberID)
	return n, err
}

func (o txOps) PendingReservationCount(ctx context.Context, memberID int64) (int64, error) {
	var n int64
	err := o.tx.GetContext(ctx, &n, `
		SELECT COUNT(*) FROM reservations WHERE member_id = $1 AND status = 'pending'`, memberID)
	return n, err
}
