package usecase

import (
	"context"

	"github.com/go-playground/validator/v10"

	"hanlumi/internal/domain/entity"
	"hanlumi/internal/domain/repository"
	"hanlumi/internal/infrastructure/session"
	"hanlumi/pkg/errors"
	"hanlumi/pkg/logger"
)

type AuthUseCase struct {
	authRepo repository.AuthRepository
	sessions *session.Store
	validate *validator.Validate
}

func NewAuthUseCase(authRepo repository.AuthRepository, sessions *session.Store) *AuthUseCase {
	return &AuthUseCase{
		authRepo: authRepo,
		sessions: sessions,
		validate: validator.New(),
	}
}

type SignInInput struct {
	UserID   string `validate:"required"`
	Password string `validate:"required,min=4"`
}

func (uc *AuthUseCase) SignIn(ctx context.Context, input SignInInput) (*entity.User, error) {
	if err := uc.validate.Struct(input); err != nil {
		return nil, errors.BadRequest("Id and password are required", err)
	}

	token, user, err := uc.authRepo.SignIn(ctx, input.UserID, input.Password)
	if err != nil {
		return nil, err
	}
	uc.sessions.Set(token, user.ID)
	logger.Info("signed in as %s", user.Nickname)
	return user, nil
}

func (uc *AuthUseCase) SignOut() {
	uc.sessions.Clear()
}

func (uc *AuthUseCase) CurrentUser(ctx context.Context) (*entity.User, error) {
	if !uc.sessions.Authenticated() {
		return nil, errors.Unauthorized("Not signed in", nil)
	}
	return uc.authRepo.GetUser(ctx, uc.sessions.UserID())
}
