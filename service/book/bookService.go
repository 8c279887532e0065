package booksvc

import (
	"context"
	"errors"
	"strings"

	"librarydesk/model"
	bookrepo "librarydesk/repository/book"
)

type ErrCode string

const (
	ErrBadInput ErrCode = "BAD_INPUT"
	ErrNotFound ErrCode = "BOOK_NOT_FOUND"
	ErrInUse    ErrCode = "BOOK_IN_USE"
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

// Fields carries the editable attributes of a book.
type Fields struct {
	ISBN          string
	Title         string
	Author        string
	Publisher     string
	PublishedYear int
	Category      string
	TotalCopies   int
}

type Service interface {
	List(ctx context.Context, search string) ([]model.Book, error)
	Get(ctx context.Context, id int64) (*model.Book, error)
	Create(ctx context.Context, f Fields) (*model.Book, error)
	Update(ctx context.Context, id int64, f Fields) (*model.Book, error)
	Delete(ctx context.Context, id int64) error
}

type service struct{ r bookrepo.Repo }

func New(r bookrepo.Repo) Service { return &service{r: r} }

func (s *service) List(ctx context.Context, search string) ([]model.Book, error) {
	return s.r.List(ctx, strings.TrimSpace(search))
}

func (s *service) Get(ctx context.Context, id int64) (*model.Book, error) {
	b, err := s.r.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, makeErr(ErrNotFound)
	}
	return b, nil
}

func (s *service) Create(ctx context.Context, f Fields) (*model.Book, error) {
	if strings.TrimSpace(f.Title) == "" || f.TotalCopies < 0 {
		return nil, makeErr(ErrBadInput)
	}
	b := &model.Book{
		ISBN:          f.ISBN,
		Title:         f.Title,
		Author:        f.Author,
		Publisher:     f.Publisher,
		PublishedYear: f.PublishedYear,
		Category:      f.Category,
		TotalCopies:   f.TotalCopies,
		// a fresh book starts fully available
		AvailableCopies: f.TotalCopies,
	}
	if err := s.r.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Update replaces the book's attributes. Changing the total copy count
// shifts availability by the same delta so in-flight loans keep their
// copies: available' = available + (newTotal - oldTotal), floored at 0.
func (s *service) Update(ctx context.Context, id int64, f Fields) (*model.Book, error) {
	if strings.TrimSpace(f.Title) == "" || f.TotalCopies < 0 {
		return nil, makeErr(ErrBadInput)
	}

	var out *model.Book
	err := s.r.Tx(ctx, func(ops bookrepo.TxOps) error {
		b, err := ops.ForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if b == nil {
			return makeErr(ErrNotFound)
		}

		newAvailable := b.AvailableCopies + (f.TotalCopies - b.TotalCopies)
		if newAvailable < 0 {
			newAvailable = 0
		}

		b.ISBN = f.ISBN
		b.Title = f.Title
		b.Author = f.Author
		b.Publisher = f.Publisher
		b.PublishedYear = f.PublishedYear
		b.Category = f.Category
		b.TotalCopies = f.TotalCopies
		b.AvailableCopies = newAvailable

		if err := ops.Update(ctx, b); err != nil {
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete refuses while open loans or pending reservations still reference
// the book, so loan and reservation rows never dangle.
func (s *service) Delete(ctx context.Context, id int64) error {
	return s.r.Tx(ctx, func(ops bookrepo.TxOps) error {
		b, err := ops.ForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if b == nil {
			return makeErr(ErrNotFound)
		}

		loans, err := ops.OpenLoanCount(ctx, id)
		if err != nil {
			return err
		}
		pending, err := ops.PendingReservationCount(ctx, id)
		if err != nil {
			return err
		}
		if loans > 0 || pending > 0 {
			return makeErr(ErrInUse)
		}
		return ops.Delete(ctx, id)
	})
}
