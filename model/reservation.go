package model

import "time"

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationCancelled ReservationStatus = "cancelled"
	ReservationFulfilled ReservationStatus = "fulfilled"
)

type Reservation struct {
	ID         int64             `db:"id" json:"id"`
	BookID     int64             `db:"book_id" json:"book_id"`
	MemberID   int64             `db:"member_id" json:"member_id"`
	ReservedAt time.Time         `db:"reserved_at" json:"reserved_at"`
	Status     ReservationStatus `db:"status" json:"status"`
}

// ReservationDetail joins in book/member display fields and the book's
// current availability so the list view can show whether a copy is back.
type ReservationDetail struct {
	Reservation
	BookTitle       string `db:"book_title" json:"book_title"`
	MemberName      string `db:"member_name" json:"member_name"`
	AvailableCopies int    `db:"available_copies" json:"available_copies"`
}
