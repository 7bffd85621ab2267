package repository

import (
	"context"

	"hanlumi/internal/domain/entity"
	"hanlumi/internal/domain/repository"
	"hanlumi/internal/infrastructure/httpclient"
	"hanlumi/pkg/errors"
)

type restAuthRepository struct {
	api *httpclient.Client
}

func NewRESTAuthRepository(api *httpclient.Client) repository.AuthRepository {
	return &restAuthRepository{api: api}
}

type signInRequest struct {
	UserID   string `json:"userid"`
	Password string `json:"password"`
}

type signInResponse struct {
	Token string       `json:"token"`
	User  *entity.User `json:"user"`
}

func (r *restAuthRepository) SignIn(ctx context.Context, userID, password string) (string, *entity.User, error) {
	var resp signInResponse
	err := r.api.PostJSON(ctx, "/api/signin", signInRequest{UserID: userID, Password: password}, &resp)
	if err != nil {
		return "", nil, err
	}
	if resp.Token == "" || resp.User == nil {
		return "", nil, errors.Internal("Sign-in response missing token or user", nil)
	}
	return resp.Token, resp.User, nil
}

func (r *restAuthRepository) GetUser(ctx context.Context, userID string) (*entity.User, error) {
	var user entity.User
	if err := r.api.GetJSON(ctx, "/api/user?userid="+userID, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
