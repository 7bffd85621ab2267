package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	adapter "hanlumi/internal/adapter/repository"
	"hanlumi/internal/domain/entity"
	domain "hanlumi/internal/domain/repository"
	"hanlumi/internal/infrastructure/httpclient"
	"hanlumi/internal/infrastructure/imagecodec"
	"hanlumi/internal/infrastructure/livechannel"
	"hanlumi/internal/infrastructure/localstore"
	"hanlumi/internal/infrastructure/session"
	"hanlumi/internal/usecase"
	"hanlumi/pkg/config"
	"hanlumi/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger.Reinit(cfg.Environment)
	defer logger.Sync()

	store, err := localstore.Open(cfg.DataDir)
	if err != nil {
		log.Fatalf("Failed to open local store: %v", err)
	}
	defer store.Close()

	sessions := session.NewStore()
	api := httpclient.NewClient(cfg.BaseURL, sessions, cfg.HTTPTimeout)
	wsDialer := livechannel.NewDialer(cfg.WSBaseURL)

	chatRepo := adapter.NewRESTChatRepository(api)
	postRepo := adapter.NewRESTPostRepository(api)
	authRepo := adapter.NewRESTAuthRepository(api)
	localState := adapter.NewLocalStateRepository(store)

	authUc := usecase.NewAuthUseCase(authRepo, sessions)
	roomList := usecase.NewRoomList(chatRepo, postRepo, localState, sessions, cfg.BaseURL)
	reviews := usecase.NewReviewUseCase(adapter.NewRESTReviewRepository(api))
	wishlist := usecase.NewWishlistUseCase(adapter.NewRESTWishlistRepository(api))

	dialer := usecase.LiveDialerFunc(func(ctx context.Context, roomID, token string) (usecase.LiveChannel, error) {
		return wsDialer.Dial(ctx, roomID, token)
	})

	ctx := context.Background()
	stdin := bufio.NewScanner(os.Stdin)

	userID := prompt(stdin, "id: ")
	password := prompt(stdin, "password: ")
	user, err := authUc.SignIn(ctx, usecase.SignInInput{UserID: userID, Password: password})
	if err != nil {
		log.Fatalf("Sign-in failed: %v", err)
	}
	fmt.Printf("hello, %s\n", user.Nickname)

	for {
		rooms, err := roomList.Refresh(ctx)
		if err != nil {
			fmt.Printf("could not load inbox: %v\n", err)
			return
		}
		for i, room := range rooms {
			badge := " "
			if room.Unread {
				badge = "*"
			}
			snippet := ""
			if room.LastMessage != nil {
				snippet = room.LastMessage.Content
				if len(snippet) > 40 {
					snippet = snippet[:40] + "..."
				}
			}
			name := ""
			if partner := room.Partner(sessions.UserID()); partner != nil {
				name = partner.Nickname
			}
			fmt.Printf("%s %2d. %-12s %-20s %s\n", badge, i+1, name, room.ProductTitle, snippet)
		}

		line := prompt(stdin, "inbox (number to open, hide N, show, wish, q)> ")
		switch {
		case line == "q":
			return
		case line == "wish":
			posts, err := wishlist.List(ctx)
			if err != nil {
				fmt.Printf("could not load wishlist: %v\n", err)
				continue
			}
			for _, post := range posts {
				fmt.Printf("   %-20s %8d won  %s\n", post.Title, post.Price, entity.SaleStatusText(post.Status))
			}
		case line == "show":
			on, err := roomList.ToggleShowHidden(ctx)
			if err != nil {
				fmt.Printf("could not toggle filter: %v\n", err)
			} else {
				fmt.Printf("show hidden: %v\n", on)
			}
		case strings.HasPrefix(line, "hide "):
			idx, err := strconv.Atoi(strings.TrimSpace(line[5:]))
			if err != nil || idx < 1 || idx > len(rooms) {
				continue
			}
			if err := roomList.HideRoom(ctx, rooms[idx-1].ID); err != nil {
				fmt.Printf("could not hide room: %v\n", err)
			}
		default:
			idx, err := strconv.Atoi(line)
			if err != nil || idx < 1 || idx > len(rooms) {
				continue
			}
			params, err := roomList.OpenRoom(ctx, rooms[idx-1])
			if err != nil {
				fmt.Printf("could not open room: %v\n", err)
				continue
			}
			runRoom(ctx, stdin, chatRepo, postRepo, localState, dialer, sessions, reviews, params, cfg.HistoryPageSize)
		}
	}
}

func runRoom(
	ctx context.Context,
	stdin *bufio.Scanner,
	chatRepo domain.ChatRepository,
	postRepo domain.PostRepository,
	localState domain.LocalState,
	dialer usecase.LiveDialer,
	sessions usecase.Session,
	reviews *usecase.ReviewUseCase,
	params usecase.ChatSessionParams,
	pageSize int,
) {
	sess := usecase.NewChatSession(chatRepo, postRepo, localState, dialer, sessions,
		imagecodec.EncodeDataURI, params, pageSize)
	defer sess.Close()

	if err := sess.Open(ctx); err != nil {
		fmt.Printf("could not connect: %v\n", err)
	}
	for _, msg := range sess.Messages() {
		printMessage(sessions.UserID(), msg)
	}
	go func() {
		for ev := range sess.Events() {
			switch ev.Kind {
			case usecase.EventMessage:
				printMessage(sessions.UserID(), ev.Message)
			case usecase.EventWarning:
				fmt.Println("! " + ev.Warning)
			case usecase.EventStateChange:
				logger.Debug("session state: %s", ev.State)
			}
		}
	}()

	fmt.Printf("-- %s (/img PATH, /status N, /review, /back) --\n", params.RoomName)
	for {
		line := prompt(stdin, "")
		switch {
		case line == "/back":
			return
		case strings.HasPrefix(line, "/img "):
			sess.SendImage(strings.TrimSpace(line[5:]))
		case strings.HasPrefix(line, "/status "):
			status, err := strconv.Atoi(strings.TrimSpace(line[8:]))
			if err != nil {
				continue
			}
			if err := sess.ChangeSaleStatus(ctx, status); err != nil {
				fmt.Printf("could not change status: %v\n", err)
			}
		case line == "/review":
			ok, err := sess.CanWriteReview(ctx)
			if err != nil {
				fmt.Printf("could not check sale status: %v\n", err)
				continue
			}
			if !ok {
				fmt.Println("reviews open once the sale is completed")
				continue
			}
			rating, err := strconv.Atoi(prompt(stdin, "rating (1-5): "))
			if err != nil {
				continue
			}
			content := prompt(stdin, "review: ")
			_, err = reviews.Create(ctx, usecase.CreateReviewInput{
				PostID:     params.PostID,
				RevieweeID: sess.RevieweeID(),
				Rating:     rating,
				Content:    content,
			})
			if err != nil {
				fmt.Printf("could not submit review: %v\n", err)
			} else {
				fmt.Println("review submitted")
			}
		default:
			sess.SendText(line)
		}
	}
}

func printMessage(currentUserID string, msg *entity.ChatMessage) {
	who := "them"
	if msg.Mine(currentUserID) {
		who = "me"
	} else if msg.Sender != nil {
		who = msg.Sender.Nickname
	}
	body := msg.Content
	if msg.IsImage() {
		body = "[image]"
	}
	stamp := ""
	if !msg.SentAt.IsZero() {
		stamp = msg.SentAt.Format("15:04") + " "
	}
	fmt.Printf("%s%s: %s\n", stamp, who, body)
}

func prompt(stdin *bufio.Scanner, label string) string {
	fmt.Print(label)
	if !stdin.Scan() {
		os.Exit(0)
	}
	return strings.TrimSpace(stdin.Text())
}
