package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hanlumi/internal/adapter/repository"
	"hanlumi/internal/domain/entity"
	domain "hanlumi/internal/domain/repository"
	"hanlumi/internal/infrastructure/httpclient"
	"hanlumi/internal/infrastructure/livechannel"
	"hanlumi/internal/infrastructure/localstore"
	"hanlumi/internal/infrastructure/session"
	"hanlumi/internal/testsupport"
	"hanlumi/internal/usecase"
)

// client is one signed-in device: its own session, REST client and local
// store, all pointed at the shared fake backend.
type client struct {
	sessions *session.Store
	chatRepo domain.ChatRepository
	postRepo domain.PostRepository
	local    domain.LocalState
	dialer   usecase.LiveDialer
	inbox    *usecase.RoomList
}

func newClient(t *testing.T, backend *testsupport.FakeBackend, token, userID string) *client {
	t.Helper()
	sessions := session.NewStore()
	sessions.Set(token, userID)

	api := httpclient.NewClient(backend.URL(), sessions, 2*time.Second)
	store, err := localstore.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	wsDialer := livechannel.NewDialer(backend.WSURL())
	c := &client{
		sessions: sessions,
		chatRepo: repository.NewRESTChatRepository(api),
		postRepo: repository.NewRESTPostRepository(api),
		local:    repository.NewLocalStateRepository(store),
		dialer: usecase.LiveDialerFunc(func(ctx context.Context, roomID, token string) (usecase.LiveChannel, error) {
			return wsDialer.Dial(ctx, roomID, token)
		}),
	}
	c.inbox = usecase.NewRoomList(c.chatRepo, c.postRepo, c.local, sessions, backend.URL())
	return c
}

func (c *client) openSession(t *testing.T, params usecase.ChatSessionParams) *usecase.ChatSession {
	t.Helper()
	sess := usecase.NewChatSession(c.chatRepo, c.postRepo, c.local, c.dialer, c.sessions, nil, params, 50)
	go func() {
		for range sess.Events() {
		}
	}()
	require.NoError(t, sess.Open(context.Background()))
	t.Cleanup(sess.Close)
	return sess
}

func waitForMessages(t *testing.T, sess *usecase.ChatSession, want int) []*entity.ChatMessage {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if msgs := sess.Messages(); len(msgs) >= want {
			return msgs
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("never saw %d messages, have %d", want, len(sess.Messages()))
	return nil
}

func TestSignInBadgeAndWatermark(t *testing.T) {
	backend := testsupport.NewFakeBackend()
	defer backend.Close()
	seller, _ := backend.AddUser("mina")
	buyer, _ := backend.AddUser("jun")
	post := backend.AddPost(seller.ID, "floor lamp", 15000, entity.SaleActive)
	room := backend.AddRoom(post, seller, buyer)
	backend.SeedMessage(room.ID, seller, "hello", time.Now().Add(-time.Minute))

	c := newClient(t, backend, "", "")
	auth := usecase.NewAuthUseCase(repository.NewRESTAuthRepository(
		httpclient.NewClient(backend.URL(), c.sessions, 2*time.Second)), c.sessions)

	// The fake accepts the user id as the password.
	user, err := auth.SignIn(context.Background(), usecase.SignInInput{UserID: buyer.ID, Password: buyer.ID})
	require.NoError(t, err)
	require.Equal(t, buyer.ID, user.ID)

	ctx := context.Background()
	rooms, err := c.inbox.Refresh(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.True(t, rooms[0].Unread)
	assert.Equal(t, "floor lamp", rooms[0].ProductTitle)
	assert.Equal(t, "hello", rooms[0].LastMessage.Content)

	// Opening the room moves the watermark; the badge is gone on the next
	// inbox build even before the chat screen loads anything.
	_, err = c.inbox.OpenRoom(ctx, rooms[0])
	require.NoError(t, err)
	rooms, err = c.inbox.Refresh(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.False(t, rooms[0].Unread)

	// A newer message flips it back.
	backend.SeedMessage(room.ID, seller, "price is firm", time.Now())
	rooms, err = c.inbox.Refresh(ctx)
	require.NoError(t, err)
	assert.True(t, rooms[0].Unread)
}

func TestLiveConversationEndToEnd(t *testing.T) {
	backend := testsupport.NewFakeBackend()
	defer backend.Close()
	seller, sellerToken := backend.AddUser("mina")
	buyer, buyerToken := backend.AddUser("jun")
	post := backend.AddPost(seller.ID, "floor lamp", 15000, entity.SaleActive)
	room := backend.AddRoom(post, seller, buyer)
	backend.SeedMessage(room.ID, seller, "hi, it's available", time.Now().Add(-time.Hour))
	backend.SeedMessage(room.ID, buyer, "great, when can I pick it up?", time.Now().Add(-time.Minute))

	sellerSide := newClient(t, backend, sellerToken, seller.ID)
	buyerSide := newClient(t, backend, buyerToken, buyer.ID)

	ctx := context.Background()
	rooms, err := buyerSide.inbox.Refresh(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	params, err := buyerSide.inbox.OpenRoom(ctx, rooms[0])
	require.NoError(t, err)
	assert.Equal(t, "mina", params.RoomName)
	assert.Equal(t, seller.ID, params.SellerID)

	buyerSess := buyerSide.openSession(t, params)
	msgs := waitForMessages(t, buyerSess, 2)
	assert.Equal(t, "hi, it's available", msgs[0].Content)

	sellerRooms, err := sellerSide.inbox.Refresh(ctx)
	require.NoError(t, err)
	sellerParams, err := sellerSide.inbox.OpenRoom(ctx, sellerRooms[0])
	require.NoError(t, err)
	sellerSess := sellerSide.openSession(t, sellerParams)
	waitForMessages(t, sellerSess, 2)

	// One side talks, both sides converge on the same ordered transcript.
	sellerSess.SendText("tonight after 7 works")
	buyerMsgs := waitForMessages(t, buyerSess, 3)
	assert.Equal(t, "tonight after 7 works", buyerMsgs[2].Content)
	assert.True(t, buyerMsgs[2].Mine(seller.ID))

	buyerSess.SendText("see you then")
	waitForMessages(t, buyerSess, 4)
	sellerMsgs := waitForMessages(t, sellerSess, 4)
	for i := 1; i < len(sellerMsgs); i++ {
		assert.Less(t, sellerMsgs[i-1].ID, sellerMsgs[i].ID)
	}
	assert.Equal(t, "see you then", sellerMsgs[3].Content)

	// The sent messages became durable history for the next visitor.
	history, err := buyerSide.chatRepo.RecentMessages(ctx, room.ID, 10)
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, "see you then", history[0].Content)
}

func TestSaleStatusAndReviewGateOverRealBackend(t *testing.T) {
	backend := testsupport.NewFakeBackend()
	defer backend.Close()
	seller, sellerToken := backend.AddUser("mina")
	buyer, buyerToken := backend.AddUser("jun")
	post := backend.AddPost(seller.ID, "floor lamp", 15000, entity.SaleActive)
	backend.AddRoom(post, seller, buyer)

	sellerSide := newClient(t, backend, sellerToken, seller.ID)
	buyerSide := newClient(t, backend, buyerToken, buyer.ID)
	ctx := context.Background()

	rooms, err := sellerSide.inbox.Refresh(ctx)
	require.NoError(t, err)
	params, err := sellerSide.inbox.OpenRoom(ctx, rooms[0])
	require.NoError(t, err)
	sellerSess := sellerSide.openSession(t, params)

	buyerRooms, err := buyerSide.inbox.Refresh(ctx)
	require.NoError(t, err)
	buyerParams, err := buyerSide.inbox.OpenRoom(ctx, buyerRooms[0])
	require.NoError(t, err)
	buyerSess := buyerSide.openSession(t, buyerParams)

	// Active sale: nobody can review yet.
	ok, err := buyerSess.CanWriteReview(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	// Only the seller may move the status.
	err = buyerSess.ChangeSaleStatus(ctx, entity.SaleCompleted)
	require.Error(t, err)
	require.NoError(t, sellerSess.ChangeSaleStatus(ctx, entity.SaleCompleted))

	// The buyer's session still shows the stale status it navigated with,
	// but the gate re-fetches and opens.
	assert.Equal(t, entity.SaleActive, buyerSess.SaleStatus())
	ok, err = buyerSess.CanWriteReview(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, entity.SaleCompleted, buyerSess.SaleStatus())
	assert.Equal(t, seller.ID, buyerSess.RevieweeID())

	reviews := usecase.NewReviewUseCase(repository.NewRESTReviewRepository(
		httpclient.NewClient(backend.URL(), buyerSide.sessions, 2*time.Second)))
	review, err := reviews.Create(ctx, usecase.CreateReviewInput{
		PostID:     post.ID,
		RevieweeID: buyerSess.RevieweeID(),
		Rating:     5,
		Content:    "kind seller, lamp as described",
	})
	require.NoError(t, err)
	assert.Equal(t, buyer.ID, review.ReviewerID)

	received, err := usecase.NewReviewUseCase(repository.NewRESTReviewRepository(
		httpclient.NewClient(backend.URL(), sellerSide.sessions, 2*time.Second))).Received(ctx)
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, 5, received[0].Rating)
}
