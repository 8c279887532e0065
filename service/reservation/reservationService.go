package reservationsvc

import (
	"context"
	"errors"
	"time"

	"librarydesk/model"
	reservationrepo "librarydesk/repository/reservation"
)

type ErrCode string

const (
	ErrBookNotFound   ErrCode = "BOOK_NOT_FOUND"
	ErrMemberNotFound ErrCode = "MEMBER_NOT_FOUND"
	ErrMemberInactive ErrCode = "MEMBER_INACTIVE"
	ErrDuplicate      ErrCode = "ALREADY_RESERVED"
	ErrNotFound       ErrCode = "RESERVATION_NOT_FOUND"
	ErrNotPending     ErrCode = "NOT_PENDING"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

type Service interface {
	// Reserve queues a member for a book. Allowed regardless of current
	// availability; at most one pending reservation per (book, member).
	Reserve(ctx context.Context, bookID, memberID int64) (*model.Reservation, error)

	// Cancel and Fulfill transition a pending reservation; cancelled and
	// fulfilled are terminal. Fulfill does not issue the book.
	Cancel(ctx context.Context, id int64) error
	Fulfill(ctx context.Context, id int64) error

	ListAll(ctx context.Context) ([]model.ReservationDetail, error)
}

type service struct {
	r   reservationrepo.Repo
	now func() time.Time
}

func New(r reservationrepo.Repo) Service { return &service{r: r, now: time.Now} }

func (s *service) Reserve(ctx context.Context, bookID, memberID int64) (*model.Reservation, error) {
	var res *model.Reservation
	err := s.r.Tx(ctx, func(ops reservationrepo.TxOps) error {
		book, err := ops.BookByID(ctx, bookID)
		if err != nil {
			return err
		}
		if book == nil {
			return makeErr(ErrBookNotFound)
		}

		member, err := ops.MemberByID(ctx, memberID)
		if err != nil {
			return err
		}
		if member == nil {
			return makeErr(ErrMemberNotFound)
		}
		if member.Status != model.MemberActive {
			return makeErr(ErrMemberInactive)
		}

		dup, err := ops.HasPending(ctx, bookID, memberID)
		if err != nil {
			return err
		}
		if dup {
			return makeErr(ErrDuplicate)
		}

		res = &model.Reservation{
			BookID:     bookID,
			MemberID:   memberID,
			ReservedAt: s.now(),
			Status:     model.ReservationPending,
		}
		return ops.Insert(ctx, res)
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *service) Cancel(ctx context.Context, id int64) error {
	return s.transition(ctx, id, model.ReservationCancelled)
}

func (s *service) Fulfill(ctx context.Context, id int64) error {
	return s.transition(ctx, id, model.ReservationFulfilled)
}

func (s *service) transition(ctx context.Context, id int64, to model.ReservationStatus) error {
	return s.r.Tx(ctx, func(ops reservationrepo.TxOps) error {
		res, err := ops.ForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if res == nil {
			return makeErr(ErrNotFound)
		}
		if res.Status != model.ReservationPending {
			return makeErr(ErrNotPending)
		}
		return ops.SetStatus(ctx, id, to)
	})
}

func (s *service) ListAll(ctx context.Context) ([]model.ReservationDetail, error) {
	return s.r.ListAll(ctx)
}
