package livechannel

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"hanlumi/internal/domain/entity"
	"hanlumi/pkg/errors"
	"hanlumi/pkg/logger"
)

// Channel is one live connection to a chat room. Inbound payloads are
// normalized to frames on a read pump; outbound frames are raw strings with
// no envelope, matching the backend's relay.
type Channel struct {
	roomID string
	conn   *websocket.Conn

	frames chan entity.Frame
	done   chan struct{}

	writeMu   sync.Mutex
	closeOnce sync.Once
}

type Dialer struct {
	wsBase string
}

func NewDialer(wsBase string) *Dialer {
	return &Dialer{wsBase: strings.TrimRight(wsBase, "/")}
}

// Dial opens the room's live channel, authenticating with the bearer token at
// handshake time, and starts the read pump.
func (d *Dialer) Dial(ctx context.Context, roomID, token string) (*Channel, error) {
	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	url := d.wsBase + "/ws/chat/" + roomID
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		if resp != nil {
			return nil, errors.FromStatus(resp.StatusCode, "live channel handshake rejected")
		}
		return nil, errors.Unavailable("Failed to open live channel", err)
	}

	ch := &Channel{
		roomID: roomID,
		conn:   conn,
		frames: make(chan entity.Frame, 64),
		done:   make(chan struct{}),
	}
	go ch.readPump()
	return ch, nil
}

func (c *Channel) readPump() {
	defer func() {
		c.Close()
		close(c.frames)
	}()

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("live channel %s read ended: %v", c.roomID, err)
			}
			return
		}
		select {
		case c.frames <- entity.NormalizeFrame(raw):
		case <-c.done:
			return
		}
	}
}

// Frames delivers normalized inbound frames. The channel is closed when the
// connection drops or Close is called.
func (c *Channel) Frames() <-chan entity.Frame {
	return c.frames
}

// Done is closed once the connection is no longer usable.
func (c *Channel) Done() <-chan struct{} {
	return c.done
}

// Send transmits one raw text frame. Returns an error once the channel is
// closed; callers treat that the same as never having had a connection.
func (c *Channel) Send(payload string) error {
	select {
	case <-c.done:
		return errors.Unavailable("Live channel is closed", nil)
	default:
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.WriteMessage(websocket.TextMessage, []byte(payload)); err != nil {
		return errors.Unavailable("Failed to send on live channel", err)
	}
	return nil
}

// Close tears the connection down. Safe to call any number of times, from any
// goroutine, including on a channel whose peer already went away.
func (c *Channel) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			closeDeadline())
		c.conn.Close()
	})
}

func closeDeadline() time.Time {
	return time.Now().Add(time.Second)
}
