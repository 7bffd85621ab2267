package usecase

import (
	"context"
	"sort"
	"strings"
	"sync"

	"hanlumi/internal/domain/entity"
	"hanlumi/internal/domain/repository"
	"hanlumi/pkg/errors"
	"hanlumi/pkg/logger"
)

type SessionState int

const (
	StateIdle SessionState = iota
	StateLoadingHistory
	StateLive
	StateReconnecting
	StateClosed
)

func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoadingHistory:
		return "loading-history"
	case StateLive:
		return "live"
	case StateReconnecting:
		return "reconnecting"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

type EventKind int

const (
	EventMessage EventKind = iota
	EventStateChange
	EventWarning
)

// Event is what the session surfaces to its view: a new message, a state
// transition, or a non-fatal warning suitable for a toast.
type Event struct {
	Kind    EventKind
	Message *entity.ChatMessage
	State   SessionState
	Warning string
}

// ChatSessionParams carries a room into a session the way the room list hands
// it over. DisplayStatus is the possibly stale status from the room payload;
// status-gated actions never trust it.
type ChatSessionParams struct {
	RoomID        string
	RoomName      string
	PostID        int64
	SellerID      string
	BuyerID       string
	DisplayStatus int
	ProductTitle  string
	ProductPrice  string
	ProductImage  string
}

// ChatSession owns one open chat room: history load, live stream, outgoing
// sends and the status-gated side actions.
type ChatSession struct {
	chatRepo repository.ChatRepository
	postRepo repository.PostRepository
	local    repository.LocalState
	dialer   LiveDialer
	session  Session
	encode   ImageEncoder

	params   ChatSessionParams
	pageSize int

	mu         sync.Mutex
	state      SessionState
	channel    LiveChannel
	messages   []*entity.ChatMessage
	seen       map[int64]bool
	saleStatus int

	events chan Event
}

func NewChatSession(
	chatRepo repository.ChatRepository,
	postRepo repository.PostRepository,
	local repository.LocalState,
	dialer LiveDialer,
	session Session,
	encode ImageEncoder,
	params ChatSessionParams,
	pageSize int,
) *ChatSession {
	if pageSize <= 0 {
		pageSize = 100
	}
	return &ChatSession{
		chatRepo:   chatRepo,
		postRepo:   postRepo,
		local:      local,
		dialer:     dialer,
		session:    session,
		encode:     encode,
		params:     params,
		pageSize:   pageSize,
		state:      StateIdle,
		seen:       make(map[int64]bool),
		saleStatus: params.DisplayStatus,
		events:     make(chan Event, 256),
	}
}

// Events delivers session events. Consumers must keep draining until Close.
func (s *ChatSession) Events() <-chan Event {
	return s.events
}

func (s *ChatSession) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Open loads recent history and then brings the live channel up. A history
// failure is reported as a warning and does not block connecting; only a
// failed handshake is returned as an error.
func (s *ChatSession) Open(ctx context.Context) error {
	if s.params.RoomID == "" {
		return errors.BadRequest("Room id is required", nil)
	}
	if !s.session.Authenticated() {
		return errors.Unauthorized("Sign in to open a chat room", nil)
	}

	s.transition(StateLoadingHistory)

	history, err := s.chatRepo.RecentMessages(ctx, s.params.RoomID, s.pageSize)
	if err != nil {
		logger.Error("history fetch for room %s failed: %v", s.params.RoomID, err)
		s.emit(Event{Kind: EventWarning, Warning: "Could not load chat history."})
	} else {
		s.mu.Lock()
		// The endpoint returns newest first; display order is ascending.
		for i := len(history) - 1; i >= 0; i-- {
			s.insertLocked(history[i])
		}
		tail := int64(0)
		if n := len(s.messages); n > 0 {
			tail = s.messages[n-1].ID
		}
		s.mu.Unlock()
		if tail > 0 {
			if err := s.local.MarkSeen(ctx, s.params.RoomID, tail); err != nil {
				logger.Warn("mark seen for room %s failed: %v", s.params.RoomID, err)
			}
		}
	}

	return s.connect(ctx)
}

// Reconnect replaces a dropped connection. The previous channel, if any, is
// closed first so at most one connection exists per session.
func (s *ChatSession) Reconnect(ctx context.Context) error {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return errors.BadRequest("Session is closed", nil)
	}
	old := s.channel
	s.channel = nil
	s.mu.Unlock()

	if old != nil {
		old.Close()
	}
	return s.connect(ctx)
}

func (s *ChatSession) connect(ctx context.Context) error {
	ch, err := s.dialer.Dial(ctx, s.params.RoomID, s.session.Token())
	if err != nil {
		logger.Error("live channel for room %s failed: %v", s.params.RoomID, err)
		s.emit(Event{Kind: EventWarning, Warning: "Could not connect to chat."})
		s.transition(StateIdle)
		return err
	}

	s.mu.Lock()
	if s.state == StateClosed {
		// Closed while the handshake was in flight; drop the connection.
		s.mu.Unlock()
		ch.Close()
		return nil
	}
	s.channel = ch
	s.mu.Unlock()

	s.transition(StateLive)
	go s.readFrames(ch)
	return nil
}

func (s *ChatSession) readFrames(ch LiveChannel) {
	for frame := range ch.Frames() {
		s.ingest(frame)
	}

	s.mu.Lock()
	stale := s.channel != ch || s.state == StateClosed
	if !stale {
		s.channel = nil
	}
	s.mu.Unlock()
	if !stale {
		s.transition(StateReconnecting)
	}
}

func (s *ChatSession) ingest(frame entity.Frame) {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return
	}
	msg := frame.Message
	if !s.insertLocked(&msg) {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	s.emit(Event{Kind: EventMessage, Message: &msg})
}

// insertLocked places the message at its ascending-id position, dropping
// duplicates. Messages without an id (relay quirks) always append in arrival
// order. Returns false for a duplicate.
func (s *ChatSession) insertLocked(msg *entity.ChatMessage) bool {
	if msg.ID > 0 {
		if s.seen[msg.ID] {
			return false
		}
		s.seen[msg.ID] = true

		at := sort.Search(len(s.messages), func(i int) bool {
			return s.messages[i].ID > 0 && s.messages[i].ID > msg.ID
		})
		if at < len(s.messages) {
			s.messages = append(s.messages, nil)
			copy(s.messages[at+1:], s.messages[at:])
			s.messages[at] = msg
			return true
		}
	}
	s.messages = append(s.messages, msg)
	return true
}

// Messages returns a snapshot of the conversation in display order.
func (s *ChatSession) Messages() []*entity.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*entity.ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

// SendText transmits trimmed text over the live channel. Empty input or a
// missing connection is a silent no-op; the message only shows up once the
// server echoes it back.
func (s *ChatSession) SendText(message string) {
	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		return
	}

	s.mu.Lock()
	ch := s.channel
	s.mu.Unlock()
	if ch == nil {
		return
	}

	if err := ch.Send(trimmed); err != nil {
		logger.Warn("send on room %s failed: %v", s.params.RoomID, err)
	}
}

// SendImage encodes the local file off the calling goroutine and ships it as
// one inline data-URI frame. Encode failure surfaces as a warning and nothing
// is transmitted.
func (s *ChatSession) SendImage(path string) {
	s.mu.Lock()
	ch := s.channel
	s.mu.Unlock()
	if ch == nil || s.encode == nil {
		return
	}

	go func() {
		payload, err := s.encode(path)
		if err != nil {
			logger.Error("image encode failed: %v", err)
			s.emit(Event{Kind: EventWarning, Warning: "Could not send image."})
			return
		}
		if err := ch.Send(payload); err != nil {
			logger.Warn("image send on room %s failed: %v", s.params.RoomID, err)
		}
	}()
}

// RefreshSaleStatus re-fetches the post's current status. The value handed in
// at navigation time is a display hint only.
func (s *ChatSession) RefreshSaleStatus(ctx context.Context) (int, error) {
	post, err := s.postRepo.GetByID(ctx, s.params.PostID)
	if err != nil {
		return s.SaleStatus(), err
	}
	s.mu.Lock()
	s.saleStatus = post.Status
	s.mu.Unlock()
	return post.Status, nil
}

func (s *ChatSession) SaleStatus() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saleStatus
}

// ChangeSaleStatus updates the post's sale status. The displayed status only
// changes after the backend accepts the update.
func (s *ChatSession) ChangeSaleStatus(ctx context.Context, status int) error {
	if status < entity.SaleActive || status > entity.SaleCompleted {
		return errors.BadRequest("Unknown sale status", nil)
	}
	if err := s.postRepo.UpdateStatus(ctx, s.params.PostID, status); err != nil {
		return err
	}
	s.mu.Lock()
	s.saleStatus = status
	s.mu.Unlock()
	logger.Info("post %d sale status changed to %s", s.params.PostID, entity.SaleStatusText(status))
	return nil
}

// CanWriteReview gates the review form: the sale must be completed per a
// fresh status fetch and the caller must be one of the room's participants.
func (s *ChatSession) CanWriteReview(ctx context.Context) (bool, error) {
	userID := s.session.UserID()
	if userID != s.params.SellerID && userID != s.params.BuyerID {
		return false, nil
	}
	status, err := s.RefreshSaleStatus(ctx)
	if err != nil {
		return false, err
	}
	return status == entity.SaleCompleted, nil
}

// RevieweeID returns the counterpart participant the current user would
// review.
func (s *ChatSession) RevieweeID() string {
	if s.session.UserID() == s.params.SellerID {
		return s.params.BuyerID
	}
	return s.params.SellerID
}

// Close shuts the session down: the live connection is closed exactly once
// and late results are discarded rather than applied.
func (s *ChatSession) Close() {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return
	}
	s.state = StateClosed
	ch := s.channel
	s.channel = nil
	events := s.events
	s.mu.Unlock()

	if ch != nil {
		ch.Close()
	}
	close(events)
}

func (s *ChatSession) transition(next SessionState) {
	s.mu.Lock()
	if s.state == StateClosed || s.state == next {
		s.mu.Unlock()
		return
	}
	s.state = next
	s.mu.Unlock()
	s.emit(Event{Kind: EventStateChange, State: next})
}

// emit never blocks; when the consumer lags behind the buffer the event is
// dropped (messages remain available via Messages).
func (s *ChatSession) emit(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return
	}
	select {
	case s.events <- ev:
	default:
		logger.Debug("event buffer full, dropping %v", ev.Kind)
	}
}
