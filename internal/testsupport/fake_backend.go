// Package testsupport runs an in-process stand-in for the marketplace
// backend so client code can be exercised over real HTTP and WebSocket
// connections.
package testsupport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"hanlumi/internal/domain/entity"
)

type FakeBackend struct {
	srv *httptest.Server

	mu       sync.Mutex
	tokens   map[string]string // bearer token -> user id
	users    map[string]*entity.User
	posts    map[int64]*entity.Post
	rooms    map[string]*entity.ChatRoom
	messages map[string][]*entity.ChatMessage
	wishlist map[string]map[int64]bool
	reviews  []*entity.Review

	nextMessageID int64
	nextReviewID  int64

	conns map[string][]*websocket.Conn

	// FailRecentFor makes the recent-messages endpoint 500 for a room id;
	// FailFeed does the same for the feed cursor endpoint.
	FailRecentFor map[string]bool
	FailFeed      bool
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func NewFakeBackend() *FakeBackend {
	b := &FakeBackend{
		tokens:        map[string]string{},
		users:         map[string]*entity.User{},
		posts:         map[int64]*entity.Post{},
		rooms:         map[string]*entity.ChatRoom{},
		messages:      map[string][]*entity.ChatMessage{},
		wishlist:      map[string]map[int64]bool{},
		conns:         map[string][]*websocket.Conn{},
		FailRecentFor: map[string]bool{},
	}

	e := echo.New()
	e.HideBanner = true

	e.POST("/api/signin", b.signIn)

	api := e.Group("/api", b.requireAuth)
	api.GET("/user", b.getUser)
	api.GET("/users/:userId/chatrooms", b.listRooms)
	api.GET("/users/:userId/reviews", b.listUserReviews)
	api.GET("/chatroom/:roomId/recent", b.recentMessages)
	api.GET("/post/:postId", b.getPost)
	api.PATCH("/post/:postId", b.patchPost)
	api.DELETE("/post/:postId", b.deletePost)
	api.POST("/post/:postId/chatroom", b.createRoom)
	api.GET("/posts/before/:cursor", b.postsBefore)
	api.POST("/posts/:postId/reviews/:revieweeId", b.createReview)
	api.PUT("/reviews/:reviewId", b.updateReview)
	api.DELETE("/reviews/:reviewId", b.deleteReview)
	api.GET("/reviews/sent", b.sentReviews)
	api.GET("/reviews/received", b.receivedReviews)
	api.GET("/wishlist/getmywishlist", b.listWishlist)
	api.POST("/wishlist/:postId", b.addWishlist)
	api.DELETE("/wishlist/:postId", b.removeWishlist)

	e.GET("/ws/chat/:roomId", b.chatSocket)

	b.srv = httptest.NewServer(e)
	return b
}

func (b *FakeBackend) URL() string { return b.srv.URL }

func (b *FakeBackend) WSURL() string {
	return "ws" + strings.TrimPrefix(b.srv.URL, "http")
}

func (b *FakeBackend) Close() {
	b.mu.Lock()
	for _, conns := range b.conns {
		for _, conn := range conns {
			conn.Close()
		}
	}
	b.conns = map[string][]*websocket.Conn{}
	b.mu.Unlock()
	b.srv.Close()
}

// Seeding helpers

func (b *FakeBackend) AddUser(nickname string) (*entity.User, string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	user := &entity.User{ID: uuid.New().String(), Nickname: nickname}
	token := uuid.New().String()
	b.users[user.ID] = user
	b.tokens[token] = user.ID
	return user, token
}

func (b *FakeBackend) AddPost(authorID, title string, price int64, status int) *entity.Post {
	b.mu.Lock()
	defer b.mu.Unlock()
	post := &entity.Post{
		ID:       int64(len(b.posts) + 1),
		AuthorID: authorID,
		Title:    title,
		Price:    price,
		Status:   status,
		Images:   []entity.PostImage{{ImageURL: "post_" + strconv.Itoa(len(b.posts)+1) + ".jpg"}},
	}
	b.posts[post.ID] = post
	return post
}

func (b *FakeBackend) AddRoom(post *entity.Post, seller, buyer *entity.User) *entity.ChatRoom {
	b.mu.Lock()
	defer b.mu.Unlock()
	room := &entity.ChatRoom{
		ID:     uuid.New().String(),
		PostID: post.ID,
		Status: post.Status,
		Seller: &entity.Participant{ID: seller.ID, Nickname: seller.Nickname},
		Buyer:  &entity.Participant{ID: buyer.ID, Nickname: buyer.Nickname},
	}
	b.rooms[room.ID] = room
	return room
}

func (b *FakeBackend) SeedMessage(roomID string, sender *entity.User, content string, sentAt time.Time) *entity.ChatMessage {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.appendMessageLocked(roomID, sender, content, sentAt)
}

func (b *FakeBackend) appendMessageLocked(roomID string, sender *entity.User, content string, sentAt time.Time) *entity.ChatMessage {
	b.nextMessageID++
	msg := &entity.ChatMessage{
		ID:      b.nextMessageID,
		Content: content,
		SentAt:  sentAt,
	}
	if sender != nil {
		msg.Sender = &entity.Participant{ID: sender.ID, Nickname: sender.Nickname}
	}
	b.messages[roomID] = append(b.messages[roomID], msg)
	return msg
}

// PushRaw delivers an arbitrary payload to every connection in the room,
// bypassing message bookkeeping. Used to reproduce relay quirks.
func (b *FakeBackend) PushRaw(roomID, payload string) {
	b.mu.Lock()
	conns := append([]*websocket.Conn(nil), b.conns[roomID]...)
	b.mu.Unlock()
	for _, conn := range conns {
		conn.WriteMessage(websocket.TextMessage, []byte(payload))
	}
}

// Handlers

func (b *FakeBackend) authedUser(c echo.Context) *entity.User {
	header := c.Request().Header.Get("Authorization")
	token := strings.TrimPrefix(header, "Bearer ")
	if token == header {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if id, ok := b.tokens[token]; ok {
		return b.users[id]
	}
	return nil
}

func (b *FakeBackend) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if b.authedUser(c) == nil {
			return c.String(http.StatusUnauthorized, "missing or unknown bearer token")
		}
		return next(c)
	}
}

func (b *FakeBackend) signIn(c echo.Context) error {
	var req struct {
		UserID   string `json:"userid"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return c.String(http.StatusBadRequest, "bad body")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	user, ok := b.users[req.UserID]
	if !ok {
		return c.String(http.StatusUnauthorized, "unknown user")
	}
	// The fake accepts the user id as the password.
	if req.Password != user.ID {
		return c.String(http.StatusUnauthorized, "wrong password")
	}
	token := uuid.New().String()
	b.tokens[token] = user.ID
	return c.JSON(http.StatusOK, map[string]interface{}{"token": token, "user": user})
}

func (b *FakeBackend) getUser(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if user, ok := b.users[c.QueryParam("userid")]; ok {
		return c.JSON(http.StatusOK, user)
	}
	return c.String(http.StatusNotFound, "no such user")
}

func (b *FakeBackend) listRooms(c echo.Context) error {
	userID := c.Param("userId")
	b.mu.Lock()
	defer b.mu.Unlock()
	rooms := []*entity.ChatRoom{}
	for _, room := range b.rooms {
		if room.HasParticipant(userID) {
			rooms = append(rooms, room)
		}
	}
	return c.JSON(http.StatusOK, rooms)
}

func (b *FakeBackend) recentMessages(c echo.Context) error {
	roomID := c.Param("roomId")
	b.mu.Lock()
	fail := b.FailRecentFor[roomID]
	all := append([]*entity.ChatMessage(nil), b.messages[roomID]...)
	b.mu.Unlock()
	if fail {
		return c.String(http.StatusInternalServerError, "storage offline")
	}

	size, err := strconv.Atoi(c.QueryParam("size"))
	if err != nil || size <= 0 {
		size = 100
	}
	// Newest first, at most size.
	out := []*entity.ChatMessage{}
	for i := len(all) - 1; i >= 0 && len(out) < size; i-- {
		out = append(out, all[i])
	}
	return c.JSON(http.StatusOK, out)
}

func (b *FakeBackend) getPost(c echo.Context) error {
	id, _ := strconv.ParseInt(c.Param("postId"), 10, 64)
	b.mu.Lock()
	defer b.mu.Unlock()
	if post, ok := b.posts[id]; ok {
		return c.JSON(http.StatusOK, post)
	}
	return c.String(http.StatusNotFound, "no such post")
}

func (b *FakeBackend) patchPost(c echo.Context) error {
	id, _ := strconv.ParseInt(c.Param("postId"), 10, 64)
	status, err := strconv.Atoi(c.QueryParam("status"))
	if err != nil {
		return c.String(http.StatusBadRequest, "status query required")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	post, ok := b.posts[id]
	if !ok {
		return c.String(http.StatusNotFound, "no such post")
	}
	if post.AuthorID != b.tokenUserLocked(c) {
		return c.String(http.StatusForbidden, "only the seller can change status")
	}
	post.Status = status
	return c.NoContent(http.StatusOK)
}

func (b *FakeBackend) deletePost(c echo.Context) error {
	id, _ := strconv.ParseInt(c.Param("postId"), 10, 64)
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.posts[id]; !ok {
		return c.String(http.StatusNotFound, "no such post")
	}
	delete(b.posts, id)
	return c.NoContent(http.StatusOK)
}

func (b *FakeBackend) createRoom(c echo.Context) error {
	id, _ := strconv.ParseInt(c.Param("postId"), 10, 64)
	b.mu.Lock()
	defer b.mu.Unlock()
	post, ok := b.posts[id]
	if !ok {
		return c.String(http.StatusNotFound, "no such post")
	}
	buyerID := b.tokenUserLocked(c)
	for _, room := range b.rooms {
		if room.PostID == id && room.Buyer != nil && room.Buyer.ID == buyerID {
			return c.JSON(http.StatusOK, room)
		}
	}
	seller := b.users[post.AuthorID]
	buyer := b.users[buyerID]
	room := &entity.ChatRoom{
		ID:     uuid.New().String(),
		PostID: id,
		Status: post.Status,
		Seller: &entity.Participant{ID: seller.ID, Nickname: seller.Nickname},
		Buyer:  &entity.Participant{ID: buyer.ID, Nickname: buyer.Nickname},
	}
	b.rooms[room.ID] = room
	return c.JSON(http.StatusCreated, room)
}

func (b *FakeBackend) postsBefore(c echo.Context) error {
	cursor, _ := strconv.ParseInt(c.Param("cursor"), 10, 64)
	size, err := strconv.Atoi(c.QueryParam("size"))
	if err != nil || size <= 0 {
		size = 10
	}
	b.mu.Lock()
	fail := b.FailFeed
	posts := []*entity.Post{}
	for id := cursor - 1; id > 0 && len(posts) < size; id-- {
		if post, ok := b.posts[id]; ok {
			posts = append(posts, post)
		}
	}
	b.mu.Unlock()
	if fail {
		return c.String(http.StatusInternalServerError, "feed offline")
	}
	return c.JSON(http.StatusOK, posts)
}

func (b *FakeBackend) createReview(c echo.Context) error {
	postID, _ := strconv.ParseInt(c.Param("postId"), 10, 64)
	var req struct {
		Rating  int    `json:"rating"`
		Content string `json:"content"`
	}
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return c.String(http.StatusBadRequest, "bad body")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	post, ok := b.posts[postID]
	if !ok {
		return c.String(http.StatusNotFound, "no such post")
	}
	if post.Status != entity.SaleCompleted {
		return c.String(http.StatusBadRequest, "post not sold yet")
	}
	b.nextReviewID++
	review := &entity.Review{
		ID:         b.nextReviewID,
		PostID:     postID,
		PostTitle:  post.Title,
		ReviewerID: b.tokenUserLocked(c),
		RevieweeID: c.Param("revieweeId"),
		Rating:     req.Rating,
		Content:    req.Content,
		CreatedAt:  time.Now(),
	}
	b.reviews = append(b.reviews, review)
	return c.JSON(http.StatusCreated, review)
}

func (b *FakeBackend) updateReview(c echo.Context) error {
	id, _ := strconv.ParseInt(c.Param("reviewId"), 10, 64)
	var req struct {
		Rating  int    `json:"rating"`
		Content string `json:"content"`
	}
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return c.String(http.StatusBadRequest, "bad body")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, review := range b.reviews {
		if review.ID == id {
			review.Rating = req.Rating
			review.Content = req.Content
			review.UpdatedAt = time.Now()
			return c.JSON(http.StatusOK, review)
		}
	}
	return c.String(http.StatusNotFound, "no such review")
}

func (b *FakeBackend) deleteReview(c echo.Context) error {
	id, _ := strconv.ParseInt(c.Param("reviewId"), 10, 64)
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, review := range b.reviews {
		if review.ID == id {
			b.reviews = append(b.reviews[:i], b.reviews[i+1:]...)
			return c.NoContent(http.StatusOK)
		}
	}
	return c.String(http.StatusNotFound, "no such review")
}

func (b *FakeBackend) listUserReviews(c echo.Context) error {
	userID := c.Param("userId")
	return b.filterReviews(c, func(r *entity.Review) bool { return r.RevieweeID == userID })
}

func (b *FakeBackend) sentReviews(c echo.Context) error {
	b.mu.Lock()
	userID := b.tokenUserLocked(c)
	b.mu.Unlock()
	return b.filterReviews(c, func(r *entity.Review) bool { return r.ReviewerID == userID })
}

func (b *FakeBackend) receivedReviews(c echo.Context) error {
	b.mu.Lock()
	userID := b.tokenUserLocked(c)
	b.mu.Unlock()
	return b.filterReviews(c, func(r *entity.Review) bool { return r.RevieweeID == userID })
}

func (b *FakeBackend) filterReviews(c echo.Context, keep func(*entity.Review) bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []*entity.Review{}
	for _, review := range b.reviews {
		if keep(review) {
			out = append(out, review)
		}
	}
	return c.JSON(http.StatusOK, out)
}

func (b *FakeBackend) listWishlist(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	userID := b.tokenUserLocked(c)
	out := []*entity.Post{}
	for id := range b.wishlist[userID] {
		if post, ok := b.posts[id]; ok {
			out = append(out, post)
		}
	}
	return c.JSON(http.StatusOK, out)
}

func (b *FakeBackend) addWishlist(c echo.Context) error {
	id, _ := strconv.ParseInt(c.Param("postId"), 10, 64)
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.posts[id]; !ok {
		return c.String(http.StatusNotFound, "no such post")
	}
	userID := b.tokenUserLocked(c)
	if b.wishlist[userID] == nil {
		b.wishlist[userID] = map[int64]bool{}
	}
	b.wishlist[userID][id] = true
	return c.NoContent(http.StatusOK)
}

func (b *FakeBackend) removeWishlist(c echo.Context) error {
	id, _ := strconv.ParseInt(c.Param("postId"), 10, 64)
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.wishlist[b.tokenUserLocked(c)], id)
	return c.NoContent(http.StatusOK)
}

// tokenUserLocked resolves the request's bearer token; callers hold b.mu.
func (b *FakeBackend) tokenUserLocked(c echo.Context) string {
	header := c.Request().Header.Get("Authorization")
	token := strings.TrimPrefix(header, "Bearer ")
	return b.tokens[token]
}

// chatSocket relays frames: every inbound text frame becomes a persisted
// message echoed to all of the room's connections as JSON.
func (b *FakeBackend) chatSocket(c echo.Context) error {
	roomID := c.Param("roomId")
	user := b.authedUser(c)
	if user == nil {
		return c.String(http.StatusUnauthorized, "missing or unknown bearer token")
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	b.mu.Lock()
	b.conns[roomID] = append(b.conns[roomID], conn)
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		conns := b.conns[roomID]
		for i, peer := range conns {
			if peer == conn {
				b.conns[roomID] = append(conns[:i], conns[i+1:]...)
				break
			}
		}
		b.mu.Unlock()
		conn.Close()
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return nil
		}
		b.mu.Lock()
		msg := b.appendMessageLocked(roomID, user, string(raw), time.Now())
		payload, _ := json.Marshal(msg)
		peers := append([]*websocket.Conn(nil), b.conns[roomID]...)
		b.mu.Unlock()
		for _, peer := range peers {
			peer.WriteMessage(websocket.TextMessage, payload)
		}
	}
}
