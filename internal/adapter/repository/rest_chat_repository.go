package repository

import (
	"context"
	"fmt"

	"hanlumi/internal/domain/entity"
	"hanlumi/internal/domain/repository"
	"hanlumi/internal/infrastructure/httpclient"
)

type restChatRepository struct {
	api *httpclient.Client
}

func NewRESTChatRepository(api *httpclient.Client) repository.ChatRepository {
	return &restChatRepository{api: api}
}

func (r *restChatRepository) ListRooms(ctx context.Context, userID string) ([]*entity.ChatRoom, error) {
	var rooms []*entity.ChatRoom
	path := fmt.Sprintf("/api/users/%s/chatrooms", userID)
	if err := r.api.GetJSON(ctx, path, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

func (r *restChatRepository) RecentMessages(ctx context.Context, roomID string, size int) ([]*entity.ChatMessage, error) {
	var messages []*entity.ChatMessage
	path := fmt.Sprintf("/api/chatroom/%s/recent?size=%d", roomID, size)
	if err := r.api.GetJSON(ctx, path, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *restChatRepository) CreateRoom(ctx context.Context, postID int64) (*entity.ChatRoom, error) {
	var room entity.ChatRoom
	path := fmt.Sprintf("/api/post/%d/chatroom", postID)
	if err := r.api.PostJSON(ctx, path, nil, &room); err != nil {
		return nil, err
	}
	return &room, nil
}
