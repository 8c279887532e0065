package book

type BookReq struct {
	ISBN          string `json:"isbn" form:"isbn"`
	Title         string `json:"title" form:"title" validate:"required"`
	Author        string `json:"author" form:"author"`
	Publisher     string `json:"publisher" form:"publisher"`
	PublishedYear int    `json:"published_year" form:"published_year" validate:"gte=0"`
	Category      string `json:"category" form:"category"`
	TotalCopies   int    `json:"total_copies" form:"total_copies" validate:"gte=0"`
}
