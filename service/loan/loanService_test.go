// service/loan/loanService_test.go
package loansvc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"librarydesk/model"
	loanrepo "librarydesk/repository/loan"
)

// fakeStore is an in-memory stand-in for the loan repository. Service
// logic checks every precondition before mutating, so the fake applies
// writes directly without rollback bookkeeping.
type fakeStore struct {
	books    map[int64]*model.Book
	members  map[int64]*model.Member
	loans    map[int64]*model.Loan
	nextLoan int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		books:    map[int64]*model.Book{},
		members:  map[int64]*model.Member{},
		loans:    map[int64]*model.Loan{},
		nextLoan: 1,
	}
}

func (f *fakeStore) Tx(ctx context.Context, fn func(loanrepo.TxOps) error) error {
	return fn(fakeOps{f})
}

func (f *fakeStore) ListAll(ctx context.Context) ([]model.LoanDetail, error) {
	var out []model.LoanDetail
	for _, l := range f.loans {
		out = append(out, model.LoanDetail{Loan: *l})
	}
	return out, nil
}

type fakeOps struct{ f *fakeStore }

func (o fakeOps) BookForUpdate(ctx context.Context, bookID int64) (*model.Book, error) {
	b, ok := o.f.books[bookID]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (o fakeOps) MemberByID(ctx context.Context, memberID int64) (*model.Member, error) {
	m, ok := o.f.members[memberID]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (o fakeOps) InsertLoan(ctx context.Context, l *model.Loan) error {
	l.ID = o.f.nextLoan
	o.f.nextLoan++
	cp := *l
	o.f.loans[l.ID] = &cp
	return nil
}

func (o fakeOps) LoanForUpdate(ctx context.Context, loanID int64) (*model.Loan, error) {
	l, ok := o.f.loans[loanID]
	if !ok {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (o fakeOps) MarkReturned(ctx context.Context, loanID int64, returnedAt time.Time) error {
	l := o.f.loans[loanID]
	l.Status = model.LoanReturned
	l.ReturnDate = &returnedAt
	return nil
}

func (o fakeOps) AdjustAvailability(ctx context.Context, bookID int64, delta int) error {
	b := o.f.books[bookID]
	next := b.AvailableCopies + delta
	if next < 0 {
		return loanrepo.ErrAvailabilityBounds
	}
	if next > b.TotalCopies {
		next = b.TotalCopies
	}
	b.AvailableCopies = next
	return nil
}

func testService(f *fakeStore, at time.Time) *service {
	return &service{r: f, now: func() time.Time { return at }}
}

func TestIssue_Success(t *testing.T) {
	f := newFakeStore()
	f.books[1] = &model.Book{ID: 1, Title: "Dune", TotalCopies: 1, AvailableCopies: 1}
	f.members[10] = &model.Member{ID: 10, Name: "A", Status: model.MemberActive}

	issuedAt := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	s := testService(f, issuedAt)

	l, err := s.Issue(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Equal(t, model.LoanIssued, l.Status)
	require.Equal(t, issuedAt, l.IssueDate)
	require.Equal(t, issuedAt.AddDate(0, 0, 14), l.DueDate)
	require.Equal(t, 0, f.books[1].AvailableCopies)
}

func TestIssue_NoCopiesLeft(t *testing.T) {
	f := newFakeStore()
	f.books[1] = &model.Book{ID: 1, TotalCopies: 1, AvailableCopies: 1}
	f.members[10] = &model.Member{ID: 10, Status: model.MemberActive}
	f.members[11] = &model.Member{ID: 11, Status: model.MemberActive}
	s := testService(f, time.Now())

	_, err := s.Issue(context.Background(), 1, 10)
	require.NoError(t, err)

	_, err = s.Issue(context.Background(), 1, 11)
	require.Equal(t, ErrNotAvailable, Code(err))
	require.Equal(t, 0, f.books[1].AvailableCopies)
	require.Len(t, f.loans, 1)
}

func TestIssue_MemberChecks(t *testing.T) {
	f := newFakeStore()
	f.books[1] = &model.Book{ID: 1, TotalCopies: 1, AvailableCopies: 1}
	f.members[10] = &model.Member{ID: 10, Status: model.MemberInactive}
	s := testService(f, time.Now())

	_, err := s.Issue(context.Background(), 1, 99)
	require.Equal(t, ErrMemberNotFound, Code(err))

	_, err = s.Issue(context.Background(), 1, 10)
	require.Equal(t, ErrMemberInactive, Code(err))

	require.Empty(t, f.loans)
	require.Equal(t, 1, f.books[1].AvailableCopies)
}

func TestIssue_BookNotFound(t *testing.T) {
	f := newFakeStore()
	f.members[10] = &model.Member{ID: 10, Status: model.MemberActive}
	s := testService(f, time.Now())

	_, err := s.Issue(context.Background(), 404, 10)
	require.Equal(t, ErrBookNotFound, Code(err))
}

func TestReturn_Success(t *testing.T) {
	f := newFakeStore()
	f.books[1] = &model.Book{ID: 1, TotalCopies: 1, AvailableCopies: 1}
	f.members[10] = &model.Member{ID: 10, Status: model.MemberActive}
	s := testService(f, time.Now())

	l, err := s.Issue(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Equal(t, 0, f.books[1].AvailableCopies)

	returnedAt := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return returnedAt }

	got, err := s.Return(context.Background(), l.ID)
	require.NoError(t, err)
	require.Equal(t, model.LoanReturned, got.Status)
	require.NotNil(t, got.ReturnDate)
	require.Equal(t, returnedAt, *got.ReturnDate)
	require.Equal(t, 1, f.books[1].AvailableCopies)
}

func TestReturn_TwiceDoesNotInflateAvailability(t *testing.T) {
	f := newFakeStore()
	f.books[1] = &model.Book{ID: 1, TotalCopies: 2, AvailableCopies: 2}
	f.members[10] = &model.Member{ID: 10, Status: model.MemberActive}
	s := testService(f, time.Now())

	l, err := s.Issue(context.Background(), 1, 10)
	require.NoError(t, err)

	_, err = s.Return(context.Background(), l.ID)
	require.NoError(t, err)
	require.Equal(t, 2, f.books[1].AvailableCopies)

	_, err = s.Return(context.Background(), l.ID)
	require.Equal(t, ErrAlreadyReturned, Code(err))
	require.Equal(t, 2, f.books[1].AvailableCopies)
}

func TestReturn_AfterTotalShrunkRetiresCopy(t *testing.T) {
	f := newFakeStore()
	f.books[1] = &model.Book{ID: 1, TotalCopies: 1, AvailableCopies: 1}
	f.members[10] = &model.Member{ID: 10, Status: model.MemberActive}
	s := testService(f, time.Now())

	l, err := s.Issue(context.Background(), 1, 10)
	require.NoError(t, err)

	// the librarian removed the last copy from the catalog while it was out
	f.books[1].TotalCopies = 0
	f.books[1].AvailableCopies = 0

	got, err := s.Return(context.Background(), l.ID)
	require.NoError(t, err)
	require.Equal(t, model.LoanReturned, got.Status)
	require.Equal(t, 0, f.books[1].AvailableCopies)
}

func TestReturn_NotFound(t *testing.T) {
	f := newFakeStore()
	s := testService(f, time.Now())

	_, err := s.Return(context.Background(), 404)
	require.Equal(t, ErrNotFound, Code(err))
}
