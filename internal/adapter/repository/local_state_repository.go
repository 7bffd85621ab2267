package repository

import (
	"context"
	"encoding/json"

	"hanlumi/internal/domain/repository"
	"hanlumi/internal/infrastructure/localstore"
	"hanlumi/pkg/logger"
)

// Storage keys, kept byte-compatible with the mobile client's device store so
// an upgraded install keeps its hidden rooms and watermarks.
const (
	hiddenRoomsKey = "HIDDEN_CHATROOMS"
	lastSeenKey    = "CHAT_LAST_SEEN_MAP"
	showHiddenKey  = "SHOW_HIDDEN_CHATROOMS"
)

type localStateRepository struct {
	store *localstore.Store
}

func NewLocalStateRepository(store *localstore.Store) repository.LocalState {
	return &localStateRepository{store: store}
}

func (r *localStateRepository) HiddenRooms(ctx context.Context) ([]string, error) {
	raw, err := r.store.Get(hiddenRoomsKey)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	var hidden []string
	if err := json.Unmarshal(raw, &hidden); err != nil {
		// Corrupt local state degrades to "nothing hidden" rather than
		// blocking the inbox.
		logger.Warn("discarding corrupt hidden-room set: %v", err)
		return nil, nil
	}
	return hidden, nil
}

func (r *localStateRepository) HideRoom(ctx context.Context, roomID string) error {
	return r.store.Update(hiddenRoomsKey, func(current []byte) ([]byte, error) {
		var hidden []string
		if current != nil {
			if err := json.Unmarshal(current, &hidden); err != nil {
				hidden = nil
			}
		}
		for _, id := range hidden {
			if id == roomID {
				return nil, nil
			}
		}
		return json.Marshal(append(hidden, roomID))
	})
}

func (r *localStateRepository) UnhideRoom(ctx context.Context, roomID string) error {
	return r.store.Update(hiddenRoomsKey, func(current []byte) ([]byte, error) {
		if current == nil {
			return nil, nil
		}
		var hidden []string
		if err := json.Unmarshal(current, &hidden); err != nil {
			return nil, nil
		}
		kept := hidden[:0]
		for _, id := range hidden {
			if id != roomID {
				kept = append(kept, id)
			}
		}
		return json.Marshal(kept)
	})
}

func (r *localStateRepository) LastSeen(ctx context.Context, roomID string) (int64, error) {
	raw, err := r.store.Get(lastSeenKey)
	if err != nil {
		return 0, err
	}
	if raw == nil {
		return 0, nil
	}
	var seen map[string]int64
	if err := json.Unmarshal(raw, &seen); err != nil {
		logger.Warn("discarding corrupt last-seen map: %v", err)
		return 0, nil
	}
	return seen[roomID], nil
}

func (r *localStateRepository) MarkSeen(ctx context.Context, roomID string, messageID int64) error {
	if messageID <= 0 {
		return nil
	}
	return r.store.Update(lastSeenKey, func(current []byte) ([]byte, error) {
		seen := map[string]int64{}
		if current != nil {
			if err := json.Unmarshal(current, &seen); err != nil {
				seen = map[string]int64{}
			}
		}
		// The watermark only ever moves forward.
		if seen[roomID] >= messageID {
			return nil, nil
		}
		seen[roomID] = messageID
		return json.Marshal(seen)
	})
}

func (r *localStateRepository) ShowHidden(ctx context.Context) (bool, error) {
	raw, err := r.store.Get(showHiddenKey)
	if err != nil {
		return false, err
	}
	return string(raw) == "true", nil
}

func (r *localStateRepository) SetShowHidden(ctx context.Context, show bool) error {
	value := "false"
	if show {
		value = "true"
	}
	return r.store.Put(showHiddenKey, []byte(value))
}
