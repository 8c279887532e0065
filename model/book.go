package model

type Book struct {
	ID              int64  `db:"id" json:"id"`
	ISBN            string `db:"isbn" json:"isbn"`
	Title           string `db:"title" json:"title"`
	Author          string `db:"author" json:"author"`
	Publisher       string `db:"publisher" json:"publisher,omitempty"`
	PublishedYear   int    `db:"published_year" json:"published_year,omitempty"`
	Category        string `db:"category" json:"category,omitempty"`
	TotalCopies     int    `db:"total_copies" json:"total_copies"`
	AvailableCopies int    `db:"available_copies" json:"available_copies"`
}
