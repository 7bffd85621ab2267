package entity

import (
	"regexp"
	"strings"
	"time"
)

type ChatMessage struct {
	ID     int64        `json:"id"`
	Sender *Participant `json:"sender,omitempty"`
	// Content is either plain text or an image reference (data URI or URL
	// with an image extension). There is no separate attachment field.
	Content string    `json:"content"`
	SentAt  time.Time `json:"sentAt,omitempty"`
}

var imageExtPattern = regexp.MustCompile(`(?i)\.(jpeg|jpg|gif|png|bmp|webp)$`)

// IsImageContent reports whether a message body should render as an image.
func IsImageContent(content string) bool {
	return strings.HasPrefix(content, "data:image") || imageExtPattern.MatchString(content)
}

func (m *ChatMessage) IsImage() bool {
	return IsImageContent(m.Content)
}

// Mine reports whether the message was sent by the given user. Messages
// without a sender (system frames, relay echoes) are never mine.
func (m *ChatMessage) Mine(userID string) bool {
	return m.Sender != nil && m.Sender.ID == userID
}
