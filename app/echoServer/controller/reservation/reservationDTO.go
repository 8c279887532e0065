package reservation

type ReserveReq struct {
	BookID   int64 `json:"book_id" form:"book_id" validate:"required,gt=0"`
	MemberID int64 `json:"member_id" form:"member_id" validate:"required,gt=0"`
}
