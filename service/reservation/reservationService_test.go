// service/reservation/reservationService_test.go
package reservationsvc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"librarydesk/model"
	reservationrepo "librarydesk/repository/reservation"
)

type fakeStore struct {
	books        map[int64]*model.Book
	members      map[int64]*model.Member
	reservations map[int64]*model.Reservation
	nextID       int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		books:        map[int64]*model.Book{},
		members:      map[int64]*model.Member{},
		reservations: map[int64]*model.Reservation{},
		nextID:       1,
	}
}

func (f *fakeStore) Tx(ctx context.Context, fn func(reservationrepo.TxOps) error) error {
	return fn(fakeOps{f})
}

func (f *fakeStore) ListAll(ctx context.Context) ([]model.ReservationDetail, error) {
	var out []model.ReservationDetail
	for _, r := range f.reservations {
		out = append(out, model.ReservationDetail{Reservation: *r})
	}
	return out, nil
}

type fakeOps struct{ f *fakeStore }

func (o fakeOps) BookByID(ctx context.Context, bookID int64) (*model.Book, error) {
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

func (o fakeOps) HasPending(ctx context.Context, bookID, memberID int64) (bool, error) {
	for _, r := range o.f.reservations {
		if r.BookID == bookID && r.MemberID == memberID && r.Status == model.ReservationPending {
			return true, nil
		}
	}
	return false, nil
}

func (o fakeOps) Insert(ctx context.Context, res *model.Reservation) error {
	res.ID = o.f.nextID
	o.f.nextID++
	cp := *res
	o.f.reservations[res.ID] = &cp
	return nil
}

func (o fakeOps) ForUpdate(ctx context.Context, id int64) (*model.Reservation, error) {
	r, ok := o.f.reservations[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (o fakeOps) SetStatus(ctx context.Context, id int64, status model.ReservationStatus) error {
	o.f.reservations[id].Status = status
	return nil
}

func testService(f *fakeStore, at time.Time) *service {
	return &service{r: f, now: func() time.Time { return at }}
}

func TestReserve_Success(t *testing.T) {
	f := newFakeStore()
	f.books[1] = &model.Book{ID: 1, TotalCopies: 1, AvailableCopies: 0}
	f.members[10] = &model.Member{ID: 10, Status: model.MemberActive}

	at := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	s := testService(f, at)

	res, err := s.Reserve(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Equal(t, model.ReservationPending, res.Status)
	require.Equal(t, at, res.ReservedAt)
}

func TestReserve_DuplicatePending(t *testing.T) {
	f := newFakeStore()
	f.books[1] = &model.Book{ID: 1, TotalCopies: 1, AvailableCopies: 0}
	f.members[10] = &model.Member{ID: 10, Status: model.MemberActive}
	s := testService(f, time.Now())

	_, err := s.Reserve(context.Background(), 1, 10)
	require.NoError(t, err)

	_, err = s.Reserve(context.Background(), 1, 10)
	require.Equal(t, ErrDuplicate, Code(err))
	require.Len(t, f.reservations, 1)
}

func TestReserve_AfterCancelAllowedAgain(t *testing.T) {
	f := newFakeStore()
	f.books[1] = &model.Book{ID: 1, TotalCopies: 1, AvailableCopies: 0}
	f.members[10] = &model.Member{ID: 10, Status: model.MemberActive}
	s := testService(f, time.Now())

	res, err := s.Reserve(context.Background(), 1, 10)
	require.NoError(t, err)
	require.NoError(t, s.Cancel(context.Background(), res.ID))

	_, err = s.Reserve(context.Background(), 1, 10)
	require.NoError(t, err)
}

func TestReserve_Preconditions(t *testing.T) {
	f := newFakeStore()
	f.books[1] = &model.Book{ID: 1}
	f.members[10] = &model.Member{ID: 10, Status: model.MemberInactive}
	s := testService(f, time.Now())

	_, err := s.Reserve(context.Background(), 404, 10)
	require.Equal(t, ErrBookNotFound, Code(err))

	_, err = s.Reserve(context.Background(), 1, 404)
	require.Equal(t, ErrMemberNotFound, Code(err))

	_, err = s.Reserve(context.Background(), 1, 10)
	require.Equal(t, ErrMemberInactive, Code(err))
}

func TestTransitions_TerminalStates(t *testing.T) {
	f := newFakeStore()
	f.books[1] = &model.Book{ID: 1}
	f.members[10] = &model.Member{ID: 10, Status: model.MemberActive}
	s := testService(f, time.Now())

	res, err := s.Reserve(context.Background(), 1, 10)
	require.NoError(t, err)

	require.NoError(t, s.Fulfill(context.Background(), res.ID))
	require.Equal(t, model.ReservationFulfilled, f.reservations[res.ID].Status)

	// fulfilled is terminal: neither cancel nor a second fulfill may move it
	require.Equal(t, ErrNotPending, Code(s.Cancel(context.Background(), res.ID)))
	require.Equal(t, ErrNotPending, Code(s.Fulfill(context.Background(), res.ID)))
	require.Equal(t, model.ReservationFulfilled, f.reservations[res.ID].Status)
}

func TestFulfill_DoesNotTouchAvailability(t *testing.T) {
	f := newFakeStore()
	f.books[1] = &model.Book{ID: 1, TotalCopies: 1, AvailableCopies: 0}
	f.members[10] = &model.Member{ID: 10, Status: model.MemberActive}
	s := testService(f, time.Now())

	res, err := s.Reserve(context.Background(), 1, 10)
	require.NoError(t, err)
	require.NoError(t, s.Fulfill(context.Background(), res.ID))

	// fulfilling only records the hand-off; issuing stays a separate step
	require.Equal(t, 0, f.books[1].AvailableCopies)
}

func TestCancel_NotFound(t *testing.T) {
	s := testService(newFakeStore(), time.Now())
	require.Equal(t, ErrNotFound, Code(s.Cancel(context.Background(), 404)))
}
