package usecase

import (
	"context"
	"sync"

	"hanlumi/internal/domain/entity"
	"hanlumi/pkg/errors"
)

type fakeSession struct {
	token  string
	userID string
}

func (s *fakeSession) Token() string       { return s.token }
func (s *fakeSession) UserID() string      { return s.userID }
func (s *fakeSession) Authenticated() bool { return s.token != "" }

type fakeChatRepo struct {
	mu sync.Mutex

	rooms      []*entity.ChatRoom
	roomsErr   error
	history    map[string][]*entity.ChatMessage // newest first, per room
	historyErr map[string]error

	recentCalls []string
}

func (r *fakeChatRepo) ListRooms(ctx context.Context, userID string) ([]*entity.ChatRoom, error) {
	if r.roomsErr != nil {
		return nil, r.roomsErr
	}
	return r.rooms, nil
}

func (r *fakeChatRepo) RecentMessages(ctx context.Context, roomID string, size int) ([]*entity.ChatMessage, error) {
	r.mu.Lock()
	r.recentCalls = append(r.recentCalls, roomID)
	r.mu.Unlock()
	if err := r.historyErr[roomID]; err != nil {
		return nil, err
	}
	msgs := r.history[roomID]
	if len(msgs) > size {
		msgs = msgs[:size]
	}
	return msgs, nil
}

func (r *fakeChatRepo) CreateRoom(ctx context.Context, postID int64) (*entity.ChatRoom, error) {
	return nil, errors.Internal("not implemented in fake", nil)
}

type fakePostRepo struct {
	mu sync.Mutex

	posts     map[int64]*entity.Post
	getErr    map[int64]error
	feedErr   error
	updateErr error

	updates []int
}

func (r *fakePostRepo) GetByID(ctx context.Context, id int64) (*entity.Post, error) {
	if err := r.getErr[id]; err != nil {
		return nil, err
	}
	if post, ok := r.posts[id]; ok {
		return post, nil
	}
	return nil, errors.NotFound("Post", nil)
}

func (r *fakePostRepo) ListBefore(ctx context.Context, cursor int64, size int) ([]*entity.Post, error) {
	if r.feedErr != nil {
		return nil, r.feedErr
	}
	if post, ok := r.posts[cursor-1]; ok {
		return []*entity.Post{post}, nil
	}
	return nil, nil
}

func (r *fakePostRepo) UpdateStatus(ctx context.Context, id int64, status int) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, status)
	if post, ok := r.posts[id]; ok {
		post.Status = status
	}
	return nil
}

func (r *fakePostRepo) Delete(ctx context.Context, id int64) error {
	delete(r.posts, id)
	return nil
}

type fakeLocalState struct {
	mu         sync.Mutex
	hidden     map[string]bool
	lastSeen   map[string]int64
	showHidden bool
}

func newFakeLocalState() *fakeLocalState {
	return &fakeLocalState{
		hidden:   map[string]bool{},
		lastSeen: map[string]int64{},
	}
}

func (s *fakeLocalState) HiddenRooms(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for id, on := range s.hidden {
		if on {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *fakeLocalState) HideRoom(ctx context.Context, roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hidden[roomID] = true
	return nil
}

func (s *fakeLocalState) UnhideRoom(ctx context.Context, roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.hidden, roomID)
	return nil
}

func (s *fakeLocalState) LastSeen(ctx context.Context, roomID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen[roomID], nil
}

func (s *fakeLocalState) MarkSeen(ctx context.Context, roomID string, messageID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastSeen[roomID] < messageID {
		s.lastSeen[roomID] = messageID
	}
	return nil
}

func (s *fakeLocalState) ShowHidden(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.showHidden, nil
}

func (s *fakeLocalState) SetShowHidden(ctx context.Context, show bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.showHidden = show
	return nil
}

type fakeChannel struct {
	mu     sync.Mutex
	frames chan entity.Frame
	done   chan struct{}
	sent   []string
	closed bool
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{
		frames: make(chan entity.Frame, 32),
		done:   make(chan struct{}),
	}
}

func (c *fakeChannel) Frames() <-chan entity.Frame { return c.frames }
func (c *fakeChannel) Done() <-chan struct{}       { return c.done }

func (c *fakeChannel) Send(payload string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.Unavailable("closed", nil)
	}
	c.sent = append(c.sent, payload)
	return nil
}

func (c *fakeChannel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.done)
	close(c.frames)
}

func (c *fakeChannel) Sent() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.sent...)
}

// push normalizes and delivers a raw payload as the live relay would.
func (c *fakeChannel) push(raw string) {
	c.frames <- entity.NormalizeFrame([]byte(raw))
}

type fakeDialer struct {
	mu       sync.Mutex
	channels []*fakeChannel
	err      error
}

func (d *fakeDialer) Dial(ctx context.Context, roomID, token string) (LiveChannel, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return nil, d.err
	}
	ch := newFakeChannel()
	d.channels = append(d.channels, ch)
	return ch, nil
}

func (d *fakeDialer) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.channels)
}

func (d *fakeDialer) last() *fakeChannel {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.channels) == 0 {
		return nil
	}
	return d.channels[len(d.channels)-1]
}
