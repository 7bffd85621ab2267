package entity

type ChatRoom struct {
	ID     string       `json:"id"`
	PostID int64        `json:"postId"`
	Seller *Participant `json:"seller,omitempty"`
	Buyer  *Participant `json:"buyer,omitempty"`
	// Status is the sale status carried on the room payload. It is a display
	// hint only and may be stale; status-gated actions re-fetch the post.
	Status int `json:"status"`

	// Inbox annotations, filled client-side by the room list aggregator and
	// never sent to the server.
	LastMessage  *ChatMessage `json:"-"`
	ProductTitle string       `json:"-"`
	ProductPrice string       `json:"-"`
	ProductImage string       `json:"-"`
	Unread       bool         `json:"-"`
	Hidden       bool         `json:"-"`
}

// Partner returns the other participant from the given user's point of view.
func (r *ChatRoom) Partner(userID string) *Participant {
	if r.Seller != nil && r.Seller.ID == userID {
		return r.Buyer
	}
	return r.Seller
}

// HasParticipant reports whether the user is the room's buyer or seller.
func (r *ChatRoom) HasParticipant(userID string) bool {
	return (r.Seller != nil && r.Seller.ID == userID) ||
		(r.Buyer != nil && r.Buyer.ID == userID)
}
