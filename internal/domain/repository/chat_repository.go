package repository

import (
	"context"

	"hanlumi/internal/domain/entity"
)

type ChatRepository interface {
	// ListRooms returns every room the user participates in.
	ListRooms(ctx context.Context, userID string) ([]*entity.ChatRoom, error)
	// RecentMessages returns up to size messages, newest first.
	RecentMessages(ctx context.Context, roomID string, size int) ([]*entity.ChatMessage, error)
	// CreateRoom creates (or returns the existing) room between the current
	// user and the post's seller.
	CreateRoom(ctx context.Context, postID int64) (*entity.ChatRoom, error)
}
