package entity

import "time"

// Sale status values as the backend stores them on a post.
const (
	SaleActive    = 0
	SaleReserved  = 1
	SaleCompleted = 2
)

type PostImage struct {
	ImageURL string `json:"imageUrl"`
}

type Post struct {
	ID        int64       `json:"id"`
	AuthorID  string      `json:"authorId,omitempty"`
	Title     string      `json:"title"`
	Content   string      `json:"content,omitempty"`
	Price     int64       `json:"price"`
	Status    int         `json:"status"`
	Images    []PostImage `json:"images,omitempty"`
	CreatedAt time.Time   `json:"createdAt,omitempty"`
}

func SaleStatusText(status int) string {
	switch status {
	case SaleActive:
		return "for sale"
	case SaleReserved:
		return "reserved"
	case SaleCompleted:
		return "sold"
	default:
		return "unknown"
	}
}
