package usecase

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"hanlumi/internal/domain/entity"
	"hanlumi/internal/domain/repository"
	"hanlumi/pkg/errors"
	"hanlumi/pkg/logger"
)

// RoomList produces the inbox: the user's rooms annotated with their latest
// message, product snippet, unread badge and local hidden state, newest
// activity first.
type RoomList struct {
	chatRepo repository.ChatRepository
	postRepo repository.PostRepository
	local    repository.LocalState
	session  Session

	// imageBase prefixes relative post-image paths from the feed.
	imageBase string
}

func NewRoomList(
	chatRepo repository.ChatRepository,
	postRepo repository.PostRepository,
	local repository.LocalState,
	session Session,
	imageBase string,
) *RoomList {
	return &RoomList{
		chatRepo:  chatRepo,
		postRepo:  postRepo,
		local:     local,
		session:   session,
		imageBase: imageBase,
	}
}

// Refresh rebuilds the inbox. Per-room enrichment failures degrade only that
// room; only the room-list fetch itself is fatal to the refresh.
func (r *RoomList) Refresh(ctx context.Context) ([]*entity.ChatRoom, error) {
	if !r.session.Authenticated() {
		return nil, errors.Unauthorized("Sign in to see chats", nil)
	}

	rooms, err := r.chatRepo.ListRooms(ctx, r.session.UserID())
	if err != nil {
		return nil, err
	}

	var wg sync.WaitGroup
	for _, room := range rooms {
		wg.Add(1)
		go func(room *entity.ChatRoom) {
			defer wg.Done()
			r.enrich(ctx, room)
		}(room)
	}
	wg.Wait()

	// Recency keys are known for every room now; sort once, missing
	// last messages rank as epoch.
	sort.SliceStable(rooms, func(i, j int) bool {
		return lastActivity(rooms[i]).After(lastActivity(rooms[j]))
	})

	hidden := map[string]bool{}
	if ids, err := r.local.HiddenRooms(ctx); err == nil {
		for _, id := range ids {
			hidden[id] = true
		}
	} else {
		logger.Warn("hidden-room load failed: %v", err)
	}
	showHidden, err := r.local.ShowHidden(ctx)
	if err != nil {
		logger.Warn("inbox filter load failed: %v", err)
	}

	visible := rooms[:0]
	for _, room := range rooms {
		room.Hidden = hidden[room.ID]
		if room.Hidden && !showHidden {
			continue
		}
		lastSeen, err := r.local.LastSeen(ctx, room.ID)
		if err != nil {
			logger.Warn("last-seen load for room %s failed: %v", room.ID, err)
		}
		room.Unread = room.LastMessage != nil && room.LastMessage.ID > lastSeen
		visible = append(visible, room)
	}
	return visible, nil
}

// enrich annotates one room with its latest message and the product snippet.
// Both lookups are best effort; a failure leaves the field blank.
func (r *RoomList) enrich(ctx context.Context, room *entity.ChatRoom) {
	if recent, err := r.chatRepo.RecentMessages(ctx, room.ID, 1); err != nil {
		logger.Debug("last message for room %s unavailable: %v", room.ID, err)
	} else if len(recent) > 0 {
		room.LastMessage = recent[0]
	}

	// The post detail endpoint 404s once a listing is deleted; the feed
	// cursor one step past the post id still serves the snippet.
	posts, err := r.postRepo.ListBefore(ctx, room.PostID+1, 1)
	if err != nil || len(posts) == 0 {
		logger.Debug("product snippet for room %s unavailable: %v", room.ID, err)
		return
	}
	post := posts[0]
	room.ProductTitle = post.Title
	room.ProductPrice = strconv.FormatInt(post.Price, 10)
	if len(post.Images) > 0 {
		room.ProductImage = r.imageBase + "/images/" + post.Images[0].ImageURL
	}
}

func lastActivity(room *entity.ChatRoom) time.Time {
	if room.LastMessage == nil {
		return time.Time{}
	}
	return room.LastMessage.SentAt
}

// OpenRoom records the read watermark and hands back the parameters a chat
// session needs. The watermark write completes before this returns, so an
// immediate return to the inbox cannot show a stale badge.
func (r *RoomList) OpenRoom(ctx context.Context, room *entity.ChatRoom) (ChatSessionParams, error) {
	if room.LastMessage != nil {
		if err := r.local.MarkSeen(ctx, room.ID, room.LastMessage.ID); err != nil {
			return ChatSessionParams{}, err
		}
	}

	params := ChatSessionParams{
		RoomID:        room.ID,
		PostID:        room.PostID,
		DisplayStatus: room.Status,
		ProductTitle:  room.ProductTitle,
		ProductPrice:  room.ProductPrice,
		ProductImage:  room.ProductImage,
	}
	if room.Seller != nil {
		params.SellerID = room.Seller.ID
	}
	if room.Buyer != nil {
		params.BuyerID = room.Buyer.ID
	}
	if partner := room.Partner(r.session.UserID()); partner != nil {
		params.RoomName = partner.Nickname
	}
	return params, nil
}

func (r *RoomList) HideRoom(ctx context.Context, roomID string) error {
	return r.local.HideRoom(ctx, roomID)
}

func (r *RoomList) UnhideRoom(ctx context.Context, roomID string) error {
	return r.local.UnhideRoom(ctx, roomID)
}

// ToggleShowHidden flips the inbox filter and returns the new value.
func (r *RoomList) ToggleShowHidden(ctx context.Context) (bool, error) {
	current, err := r.local.ShowHidden(ctx)
	if err != nil {
		return false, err
	}
	next := !current
	if err := r.local.SetShowHidden(ctx, next); err != nil {
		return current, err
	}
	return next, nil
}
