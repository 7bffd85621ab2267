package usecase

import (
	"context"

	"hanlumi/internal/domain/entity"
)

// Session is the read-only view of the signed-in user that use cases need.
type Session interface {
	Token() string
	UserID() string
	Authenticated() bool
}

// LiveChannel is one open per-room connection as the chat session sees it.
type LiveChannel interface {
	Frames() <-chan entity.Frame
	Done() <-chan struct{}
	Send(payload string) error
	Close()
}

type LiveDialer interface {
	Dial(ctx context.Context, roomID, token string) (LiveChannel, error)
}

type LiveDialerFunc func(ctx context.Context, roomID, token string) (LiveChannel, error)

func (f LiveDialerFunc) Dial(ctx context.Context, roomID, token string) (LiveChannel, error) {
	return f(ctx, roomID, token)
}

// ImageEncoder turns a local image file into a single data-URI payload.
type ImageEncoder func(path string) (string, error)
