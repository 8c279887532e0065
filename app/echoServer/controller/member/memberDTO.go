package member

type MemberReq struct {
	Name    string `json:"name" form:"name" validate:"required"`
	Email   string `json:"email" form:"email" validate:"omitempty,email"`
	Phone   string `json:"phone" form:"phone"`
	Address string `json:"address" form:"address"`
	Status  string `json:"status" form:"status" validate:"omitempty,oneof=active inactive"`
}
