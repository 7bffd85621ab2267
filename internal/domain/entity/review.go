package entity

import "time"

type Review struct {
	ID         int64     `json:"id"`
	PostID     int64     `json:"postId"`
	PostTitle  string    `json:"postTitle,omitempty"`
	ReviewerID string    `json:"reviewerId"`
	RevieweeID string    `json:"revieweeId"`
	Rating     int       `json:"rating"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt,omitempty"`
	UpdatedAt  time.Time `json:"updatedAt,omitempty"`
}
