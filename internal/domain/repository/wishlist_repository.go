package repository

import (
	"context"

	"hanlumi/internal/domain/entity"
)

type WishlistRepository interface {
	Add(ctx context.Context, postID int64) error
	Remove(ctx context.Context, postID int64) error
	List(ctx context.Context) ([]*entity.Post, error)
}
