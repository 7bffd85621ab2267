package repository

import (
	"context"
	"fmt"

	"hanlumi/internal/domain/entity"
	"hanlumi/internal/domain/repository"
	"hanlumi/internal/infrastructure/httpclient"
)

type restWishlistRepository struct {
	api *httpclient.Client
}

func NewRESTWishlistRepository(api *httpclient.Client) repository.WishlistRepository {
	return &restWishlistRepository{api: api}
}

func (r *restWishlistRepository) Add(ctx context.Context, postID int64) error {
	return r.api.PostJSON(ctx, fmt.Sprintf("/api/wishlist/%d", postID), nil, nil)
}

func (r *restWishlistRepository) Remove(ctx context.Context, postID int64) error {
	return r.api.Delete(ctx, fmt.Sprintf("/api/wishlist/%d", postID))
}

func (r *restWishlistRepository) List(ctx context.Context) ([]*entity.Post, error) {
	var posts []*entity.Post
	if err := r.api.GetJSON(ctx, "/api/wishlist/getmywishlist", &posts); err != nil {
		return nil, err
	}
	return posts, nil
}
