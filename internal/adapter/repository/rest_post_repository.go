package repository

import (
	"context"
	"fmt"

	"hanlumi/internal/domain/entity"
	"hanlumi/internal/domain/repository"
	"hanlumi/internal/infrastructure/httpclient"
)

type restPostRepository struct {
	api *httpclient.Client
}

func NewRESTPostRepository(api *httpclient.Client) repository.PostRepository {
	return &restPostRepository{api: api}
}

func (r *restPostRepository) GetByID(ctx context.Context, id int64) (*entity.Post, error) {
	var post entity.Post
	if err := r.api.GetJSON(ctx, fmt.Sprintf("/api/post/%d", id), &post); err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *restPostRepository) ListBefore(ctx context.Context, cursor int64, size int) ([]*entity.Post, error) {
	var posts []*entity.Post
	path := fmt.Sprintf("/api/posts/before/%d?size=%d", cursor, size)
	if err := r.api.GetJSON(ctx, path, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *restPostRepository) UpdateStatus(ctx context.Context, id int64, status int) error {
	// Status rides the query string; the PATCH carries no body.
	return r.api.Patch(ctx, fmt.Sprintf("/api/post/%d?status=%d", id, status))
}

func (r *restPostRepository) Delete(ctx context.Context, id int64) error {
	return r.api.Delete(ctx, fmt.Sprintf("/api/post/%d", id))
}
