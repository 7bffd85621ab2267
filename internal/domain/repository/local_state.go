package repository

import "context"

// LocalState is the device-local chat state: rooms the user has hidden and
// the per-room last-seen message watermark. It is never reconciled with the
// server; uninstalling the app resets it.
type LocalState interface {
	HiddenRooms(ctx context.Context) ([]string, error)
	HideRoom(ctx context.Context, roomID string) error
	UnhideRoom(ctx context.Context, roomID string) error

	// LastSeen returns the watermark for the room, 0 when absent.
	LastSeen(ctx context.Context, roomID string) (int64, error)
	// MarkSeen raises the watermark to messageID. A lower value than the one
	// stored is ignored, so a racing refresh can never regress it.
	MarkSeen(ctx context.Context, roomID string, messageID int64) error

	ShowHidden(ctx context.Context) (bool, error)
	SetShowHidden(ctx context.Context, show bool) error
}
