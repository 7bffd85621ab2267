package repository

import (
	"context"
	"fmt"

	"hanlumi/internal/domain/entity"
	"hanlumi/internal/domain/repository"
	"hanlumi/internal/infrastructure/httpclient"
)

type restReviewRepository struct {
	api *httpclient.Client
}

func NewRESTReviewRepository(api *httpclient.Client) repository.ReviewRepository {
	return &restReviewRepository{api: api}
}

type reviewBody struct {
	Rating  int    `json:"rating"`
	Content string `json:"content"`
}

func (r *restReviewRepository) Create(ctx context.Context, postID int64, revieweeID string, rating int, content string) (*entity.Review, error) {
	var review entity.Review
	path := fmt.Sprintf("/api/posts/%d/reviews/%s", postID, revieweeID)
	if err := r.api.PostJSON(ctx, path, reviewBody{Rating: rating, Content: content}, &review); err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *restReviewRepository) Update(ctx context.Context, id int64, rating int, content string) error {
	path := fmt.Sprintf("/api/reviews/%d", id)
	return r.api.PutJSON(ctx, path, reviewBody{Rating: rating, Content: content}, nil)
}

func (r *restReviewRepository) Delete(ctx context.Context, id int64) error {
	return r.api.Delete(ctx, fmt.Sprintf("/api/reviews/%d", id))
}

func (r *restReviewRepository) ListByUser(ctx context.Context, userID string) ([]*entity.Review, error) {
	var reviews []*entity.Review
	path := fmt.Sprintf("/api/users/%s/reviews", userID)
	if err := r.api.GetJSON(ctx, path, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *restReviewRepository) Sent(ctx context.Context) ([]*entity.Review, error) {
	var reviews []*entity.Review
	if err := r.api.GetJSON(ctx, "/api/reviews/sent", &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *restReviewRepository) Received(ctx context.Context) ([]*entity.Review, error) {
	var reviews []*entity.Review
	if err := r.api.GetJSON(ctx, "/api/reviews/received", &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}
