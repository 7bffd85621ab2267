package usecase

import (
	"context"

	"github.com/go-playground/validator/v10"

	"hanlumi/internal/domain/entity"
	"hanlumi/internal/domain/repository"
	"hanlumi/pkg/errors"
)

type ReviewUseCase struct {
	reviewRepo repository.ReviewRepository
	validate   *validator.Validate
}

func NewReviewUseCase(reviewRepo repository.ReviewRepository) *ReviewUseCase {
	return &ReviewUseCase{
		reviewRepo: reviewRepo,
		validate:   validator.New(),
	}
}

type CreateReviewInput struct {
	PostID     int64  `validate:"required"`
	RevieweeID string `validate:"required"`
	Rating     int    `validate:"required,min=1,max=5"`
	Content    string `validate:"required,max=1000"`
}

// Create validates the form before any network call; a missing rating or
// empty body never reaches the server.
func (uc *ReviewUseCase) Create(ctx context.Context, input CreateReviewInput) (*entity.Review, error) {
	if err := uc.validate.Struct(input); err != nil {
		return nil, errors.BadRequest("Rating and review text are required", err)
	}
	return uc.reviewRepo.Create(ctx, input.PostID, input.RevieweeID, input.Rating, input.Content)
}

type UpdateReviewInput struct {
	ReviewID int64  `validate:"required"`
	Rating   int    `validate:"required,min=1,max=5"`
	Content  string `validate:"required,max=1000"`
}

func (uc *ReviewUseCase) Update(ctx context.Context, input UpdateReviewInput) error {
	if err := uc.validate.Struct(input); err != nil {
		return errors.BadRequest("Rating and review text are required", err)
	}
	return uc.reviewRepo.Update(ctx, input.ReviewID, input.Rating, input.Content)
}

func (uc *ReviewUseCase) Delete(ctx context.Context, reviewID int64) error {
	if reviewID <= 0 {
		return errors.BadRequest("Review id is required", nil)
	}
	return uc.reviewRepo.Delete(ctx, reviewID)
}

func (uc *ReviewUseCase) ListForUser(ctx context.Context, userID string) ([]*entity.Review, error) {
	return uc.reviewRepo.ListByUser(ctx, userID)
}

func (uc *ReviewUseCase) Sent(ctx context.Context) ([]*entity.Review, error) {
	return uc.reviewRepo.Sent(ctx)
}

func (uc *ReviewUseCase) Received(ctx context.Context) ([]*entity.Review, error) {
	return uc.reviewRepo.Received(ctx)
}
