package usecase

import (
	"context"

	"hanlumi/internal/domain/entity"
	"hanlumi/internal/domain/repository"
	"hanlumi/pkg/errors"
)

type WishlistUseCase struct {
	wishlistRepo repository.WishlistRepository
}

func NewWishlistUseCase(wishlistRepo repository.WishlistRepository) *WishlistUseCase {
	return &WishlistUseCase{wishlistRepo: wishlistRepo}
}

func (uc *WishlistUseCase) Add(ctx context.Context, postID int64) error {
	if postID <= 0 {
		return errors.BadRequest("Post id is required", nil)
	}
	return uc.wishlistRepo.Add(ctx, postID)
}

func (uc *WishlistUseCase) Remove(ctx context.Context, postID int64) error {
	if postID <= 0 {
		return errors.BadRequest("Post id is required", nil)
	}
	return uc.wishlistRepo.Remove(ctx, postID)
}

func (uc *WishlistUseCase) List(ctx context.Context) ([]*entity.Post, error) {
	return uc.wishlistRepo.List(ctx)
}
