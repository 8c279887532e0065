package membersvc

import (
	"context"
	"errors"
	"strings"

	"librarydesk/model"
	memberrepo "librarydesk/repository/member"
)

type ErrCode string

const (
	ErrBadInput ErrCode = "BAD_INPUT"
	ErrNotFound ErrCode = "MEMBER_NOT_FOUND"
	ErrInUse    ErrCode = "MEMBER_IN_USE"
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

// Fields carries the editable attributes of a member.
type Fields struct {
	Name    string
	Email   string
	Phone   string
	Address string
	Status  model.MemberStatus
}

// Detail is a member plus their full loan history, most recent first.
type Detail struct {
	Member model.Member       `json:"member"`
	Loans  []model.LoanDetail `json:"loans"`
}

type Service interface {
	List(ctx context.Context, search string) ([]model.Member, error)
	Detail(ctx context.Context, id int64) (*Detail, error)
	Create(ctx context.Context, f Fields) (*model.Member, error)
	Update(ctx context.Context, id int64, f Fields) (*model.Member, error)
	Delete(ctx context.Context, id int64) error
}

type service struct{ r memberrepo.Repo }

func New(r memberrepo.Repo) Service { return &service{r: r} }

func validStatus(s model.MemberStatus) bool {
	return s == model.MemberActive || s == model.MemberInactive
}

func (s *service) List(ctx context.Context, search string) ([]model.Member, error) {
	return s.r.List(ctx, strings.TrimSpace(search))
}

func (s *service) Detail(ctx context.Context, id int64) (*Detail, error) {
	m, err := s.r.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, makeErr(ErrNotFound)
	}
	loans, err := s.r.LoanHistory(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Detail{Member: *m, Loans: loans}, nil
}

func (s *service) Create(ctx context.Context, f Fields) (*model.Member, error) {
	if strings.TrimSpace(f.Name) == "" {
		return nil, makeErr(ErrBadInput)
	}
	if f.Status == "" {
		f.Status = model.MemberActive
	}
	if !validStatus(f.Status) {
		return nil, makeErr(ErrBadInput)
	}
	m := &model.Member{
		Name:    f.Name,
		Email:   strings.ToLower(strings.TrimSpace(f.Email)),
		Phone:   f.Phone,
		Address: f.Address,
		Status:  f.Status,
	}
	if err := s.r.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *service) Update(ctx context.Context, id int64, f Fields) (*model.Member, error) {
	if strings.TrimSpace(f.Name) == "" || !validStatus(f.Status) {
		return nil, makeErr(ErrBadInput)
	}
	m := &model.Member{
		ID:      id,
		Name:    f.Name,
		Email:   strings.ToLower(strings.TrimSpace(f.Email)),
		Phone:   f.Phone,
		Address: f.Address,
		Status:  f.Status,
	}
	found, err := s.r.Update(ctx, m)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, makeErr(ErrNotFound)
	}
	return m, nil
}

// Delete refuses while the member still has open loans or pending
// reservations.
func (s *service) Delete(ctx context.Context, id int64) error {
	return s.r.Tx(ctx, func(ops memberrepo.TxOps) error {
		m, err := ops.ForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if m == nil {
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
