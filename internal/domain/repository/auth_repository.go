package repository

import (
	"context"

	"hanlumi/internal/domain/entity"
)

type AuthRepository interface {
	SignIn(ctx context.Context, userID, password string) (string, *entity.User, error)
	GetUser(ctx context.Context, userID string) (*entity.User, error)
}
