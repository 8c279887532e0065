package model

type MemberStatus string

const (
	MemberActive   MemberStatus = "active"
	MemberInactive MemberStatus = "inactive"
)

type Member struct {
	ID      int64        `db:"id" json:"id"`
	Name    string       `db:"name" json:"name"`
	Email   string       `db:"email" json:"email,omitempty"`
	Phone   string       `db:"phone" json:"phone,omitempty"`
	Address string       `db:"address" json:"address,omitempty"`
	Status  MemberStatus `db:"status" json:"status"`
}
