package entity

type User struct {
	ID              string `json:"id"`
	Nickname        string `json:"nickname"`
	Email           string `json:"email,omitempty"`
	ProfileImageURL string `json:"profileImageUrl,omitempty"`
}

// Participant is the slim user shape embedded in rooms and messages.
type Participant struct {
	ID              string `json:"id"`
	Nickname        string `json:"nickname"`
	ProfileImageURL string `json:"profileImageUrl,omitempty"`
}
