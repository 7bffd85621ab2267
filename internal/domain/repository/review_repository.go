package repository

import (
	"context"

	"hanlumi/internal/domain/entity"
)

type ReviewRepository interface {
	Create(ctx context.Context, postID int64, revieweeID string, rating int, content string) (*entity.Review, error)
	Update(ctx context.Context, id int64, rating int, content string) error
	Delete(ctx context.Context, id int64) error
	ListByUser(ctx context.Context, userID string) ([]*entity.Review, error)
	// Sent and Received list the current user's written / received reviews.
	Sent(ctx context.Context) ([]*entity.Review, error)
	Received(ctx context.Context) ([]*entity.Review, error)
}
