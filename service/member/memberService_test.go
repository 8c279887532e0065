// service/member/memberService_test.go
package membersvc_test

import (
	"context"
	"testing"

	"librarydesk/model"
	memberrepo "librarydesk/repository/member"
	membersvc "librarydesk/service/member"
)

type txOpsMock struct {
	forUpdateFn    func(ctx context.Context, id int64) (*model.Member, error)
	deleteFn       func(ctx context.Context, id int64) error
	openLoansFn    func(ctx context.Context, memberID int64) (int64, error)
	pendingResvsFn func(ctx context.Context, memberID int64) (int64, error)
}

func (m *txOpsMock) ForUpdate(ctx context.Context, id int64) (*model.Member, error) {
	return m.forUpdateFn(ctx, id)
}
func (m *txOpsMock) Delete(ctx context.Context, id int64) error { return m.deleteFn(ctx, id) }
func (m *txOpsMock) OpenLoanCount(ctx context.Context, memberID int64) (int64, error) {
	return m.openLoansFn(ctx, memberID)
}
func (m *txOpsMock) PendingReservationCount(ctx context.Context, memberID int64) (int64, error) {
	return m.pendingResvsFn(ctx, memberID)
}

type repoMock struct {
	listFn    func(ctx context.Context, search string) ([]model.Member, error)
	byIDFn    func(ctx context.Context, id int64) (*model.Member, error)
	createFn  func(ctx context.Context, m *model.Member) error
	updateFn  func(ctx context.Context, m *model.Member) (bool, error)
	historyFn func(ctx context.Context, memberID int64) ([]model.LoanDetail, error)
	ops       *txOpsMock
}

func (m *repoMock) List(ctx context.Context, search string) ([]model.Member, error) {
	return m.listFn(ctx, search)
}
func (m *repoMock) ByID(ctx context.Context, id int64) (*model.Member, error) {
	return m.byIDFn(ctx, id)
}
func (m *repoMock) Create(ctx context.Context, mm *model.Member) error { return m.createFn(ctx, mm) }
func (m *repoMock) Update(ctx context.Context, mm *model.Member) (bool, error) {
	return m.updateFn(ctx, mm)
}
func (m *repoMock) LoanHistory(ctx context.Context, memberID int64) ([]model.LoanDetail, error) {
	return m.historyFn(ctx, memberID)
}
func (m *repoMock) Tx(ctx context.Context, fn func(memberrepo.TxOps) error) error {
	return fn(m.ops)
}

func TestCreate_DefaultsToActive(t *testing.T) {
	var got *model.Member
	m := &repoMock{
		createFn: func(ctx context.Context, mm *model.Member) error {
			mm.ID = 5
			got = mm
			return nil
		},
	}
	s := membersvc.New(m)

	out, err := s.Create(context.Background(), membersvc.Fields{Name: "Asha", Email: "A@X.COM"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got.Status != model.MemberActive {
		t.Fatalf("status=%q; want active", got.Status)
	}
	if out.Email != "a@x.com" {
		t.Fatalf("email=%q; want lowercased", out.Email)
	}
}

func TestCreate_Validation(t *testing.T) {
	s := membersvc.New(&repoMock{})
	if _, err := s.Create(context.Background(), membersvc.Fields{Name: " "}); membersvc.Code(err) != membersvc.ErrBadInput {
		t.Fatalf("expected BAD_INPUT for blank name, got %v", err)
	}
	if _, err := s.Create(context.Background(), membersvc.Fields{Name: "x", Status: "frozen"}); membersvc.Code(err) != membersvc.ErrBadInput {
		t.Fatalf("expected BAD_INPUT for unknown status, got %v", err)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	m := &repoMock{
		updateFn: func(ctx context.Context, mm *model.Member) (bool, error) { return false, nil },
	}
	s := membersvc.New(m)
	_, err := s.Update(context.Background(), 404, membersvc.Fields{Name: "x", Status: model.MemberActive})
	if membersvc.Code(err) != membersvc.ErrNotFound {
		t.Fatalf("expected MEMBER_NOT_FOUND, got %v", err)
	}
}

func TestDetail_IncludesHistory(t *testing.T) {
	m := &repoMock{
		byIDFn: func(ctx context.Context, id int64) (*model.Member, error) {
			return &model.Member{ID: id, Name: "Asha", Status: model.MemberActive}, nil
		},
		historyFn: func(ctx context.Context, memberID int64) ([]model.LoanDetail, error) {
			return []model.LoanDetail{
				{Loan: model.Loan{ID: 2, MemberID: memberID}, BookTitle: "Dune"},
				{Loan: model.Loan{ID: 1, MemberID: memberID}, BookTitle: "Emma"},
			}, nil
		},
	}
	s := membersvc.New(m)

	d, err := s.Detail(context.Background(), 7)
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if d.Member.ID != 7 || len(d.Loans) != 2 || d.Loans[0].BookTitle != "Dune" {
		t.Fatalf("unexpected detail: %+v", d)
	}
}

func TestDetail_NotFound(t *testing.T) {
	m := &repoMock{
		byIDFn: func(ctx context.Context, id int64) (*model.Member, error) { return nil, nil },
	}
	s := membersvc.New(m)
	if _, err := s.Detail(context.Background(), 404); membersvc.Code(err) != membersvc.ErrNotFound {
		t.Fatalf("expected MEMBER_NOT_FOUND, got %v", err)
	}
}

func TestDelete_RefusedWhileReferenced(t *testing.T) {
	deleted := false
	ops := &txOpsMock{
		forUpdateFn: func(ctx context.Context, id int64) (*model.Member, error) {
			return &model.Member{ID: id}, nil
		},
		openLoansFn:    func(ctx context.Context, memberID int64) (int64, error) { return 0, nil },
		pendingResvsFn: func(ctx context.Context, memberID int64) (int64, error) { return 1, nil },
		deleteFn: func(ctx context.Context, id int64) error {
			deleted = true
			return nil
		},
	}
	s := membersvc.New(&repoMock{ops: ops})

	if err := s.Delete(context.Background(), 7); membersvc.Code(err) != membersvc.ErrInUse {
		t.Fatalf("expected MEMBER_IN_USE, got %v", err)
	}
	if deleted {
		t.Fatal("delete must not run while reservations are pending")
	}

	ops.pendingResvsFn = func(ctx context.Context, memberID int64) (int64, error) { return 0, nil }
	if err := s.Delete(context.Background(), 7); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !deleted {
		t.Fatal("expected delete to run")
	}
}
