package repository

import (
	"context"

	"hanlumi/internal/domain/entity"
)

type PostRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.Post, error)
	// ListBefore pages the feed backwards from the cursor id (exclusive).
	ListBefore(ctx context.Context, cursor int64, size int) ([]*entity.Post, error)
	UpdateStatus(ctx context.Context, id int64, status int) error
	Delete(ctx context.Context, id int64) error
}
