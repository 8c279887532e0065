package loansvc

import (
	"context"
	"errors"
	"time"

	"librarydesk/model"
	loanrepo "librarydesk/repository/loan"
)

type ErrCode string

const (
	ErrBookNotFound    ErrCode = "BOOK_NOT_FOUND"
	ErrMemberNotFound  ErrCode = "MEMBER_NOT_FOUND"
	ErrMemberInactive  ErrCode = "MEMBER_INACTIVE"
	ErrNotAvailable    ErrCode = "NOT_AVAILABLE"
	ErrNotFound        ErrCode = "LOAN_NOT_FOUND"
	ErrAlreadyReturned ErrCode = "ALREADY_RETURNED"
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

const loanPeriodDays = 14

type Service interface {
	// Issue lends a copy: one transaction inserts the loan row and
	// decrements the book's availability together.
	Issue(ctx context.Context, bookID, memberID int64) (*model.Loan, error)

	// Return closes an issued loan and gives the copy back. Returning a
	// loan twice fails instead of inflating availability.
	Return(ctx context.Context, loanID int64) (*model.Loan, error)

	ListAll(ctx context.Context) ([]model.LoanDetail, error)
}

type service struct {
	r   loanrepo.Repo
	now func() time.Time
}

func New(r loanrepo.Repo) Service { return &service{r: r, now: time.Now} }

func (s *service) Issue(ctx context.Context, bookID, memberID int64) (*model.Loan, error) {
	var loan *model.Loan
	err := s.r.Tx(ctx, func(ops loanrepo.TxOps) error {
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

		book, err := ops.BookForUpdate(ctx, bookID)
		if err != nil {
			return err
		}
		if book == nil {
			return makeErr(ErrBookNotFound)
		}
		if book.AvailableCopies <= 0 {
			return makeErr(ErrNotAvailable)
		}

		issued := s.now()
		loan = &model.Loan{
			BookID:    bookID,
			MemberID:  memberID,
			IssueDate: issued,
			DueDate:   issued.AddDate(0, 0, loanPeriodDays),
			Status:    model.LoanIssued,
		}
		if err := ops.InsertLoan(ctx, loan); err != nil {
			return err
		}
		return ops.AdjustAvailability(ctx, bookID, -1)
	})
	if err != nil {
		return nil, err
	}
	return loan, nil
}

func (s *service) Return(ctx context.Context, loanID int64) (*model.Loan, error) {
	var out *model.Loan
	err := s.r.Tx(ctx, func(ops loanrepo.TxOps) error {
		loan, err := ops.LoanForUpdate(ctx, loanID)
		if err != nil {
			return err
		}
		if loan == nil {
			return makeErr(ErrNotFound)
		}
		if loan.Status != model.LoanIssued {
			return makeErr(ErrAlreadyReturned)
		}

		returned := s.now()
		if err := ops.MarkReturned(ctx, loan.ID, returned); err != nil {
			return err
		}
		if err := ops.AdjustAvailability(ctx, loan.BookID, +1); err != nil {
			return err
		}

		loan.Status = model.LoanReturned
		loan.ReturnDate = &returned
		out = loan
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) ListAll(ctx context.Context) ([]model.LoanDetail, error) {
	return s.r.ListAll(ctx)
}
