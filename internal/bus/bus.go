// Package bus connects the assistant to a websocket message bus. Other
// services send utterances addressed to the assistant and receive its
// replies on the same connection.
package bus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	log "log/slog"
	"net"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"jarvis/internal/speech"
)

const (
	Name = "jarvis"

	KindUtterance = "utterance"
	KindReply     = "reply"
)

type Message struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Kind    string `json:"kind"`
	Content string `json:"content"`
}

// Channel is a speech.Listener and speech.Speaker over a bus connection.
type Channel struct {
	conn  *websocket.Conn
	wmu   sync.Mutex
	inbox chan Message
	done  chan struct{}
	once  sync.Once
	log   *log.Logger

	mu   sync.Mutex
	peer string
}

// Dial connects to the bus at wsURL and starts reading messages.
func Dial(ctx context.Context, wsURL string, logger *log.Logger) (*Channel, error) {
	u, err := url.Parse(wsURL)
	if err != nil {
		return nil, fmt.Errorf("invalid bus url: %w", err)
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial bus: %w", err)
	}
	if logger == nil {
		logger = log.Default()
	}

	c := &Channel{
		conn:  conn,
		inbox: make(chan Message),
		done:  make(chan struct{}),
		log:   logger.With("channel", "bus"),
	}
	c.log.Info("connected to bus", "url", wsURL)
	go c.read()
	return c, nil
}

func (c *Channel) read() {
	defer close(c.inbox)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if isClosed(err) || errors.Is(err, net.ErrClosed) {
				c.log.Info("bus connection closed")
			} else {
				c.log.Error("bus read failed", "err", err)
			}
			return
		}

		var m Message
		if err := json.Unmarshal(data, &m); err != nil {
			c.log.Warn("skipping malformed bus message", "err", err)
			continue
		}
		if m.Kind != KindUtterance || (m.To != "" && m.To != Name) {
			continue
		}

		select {
		case c.inbox <- m:
		case <-c.done:
			return
		}
	}
}

// Listen returns the next utterance addressed to the assistant. It returns
// speech.ErrClosed after the connection ends.
func (c *Channel) Listen(ctx context.Context, timeout time.Duration) (string, error) {
	var expired <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		expired = t.C
	}

	select {
	case m, ok := <-c.inbox:
		if !ok {
			return "", speech.ErrClosed
		}
		c.mu.Lock()
		c.peer = m.From
		c.mu.Unlock()
		return strings.ToLower(strings.TrimSpace(m.Content)), nil
	case <-expired:
		return "", nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Speak sends a reply to the sender of the last utterance.
func (c *Channel) Speak(ctx context.Context, text string) error {
	c.mu.Lock()
	peer := c.peer
	c.mu.Unlock()
	return c.Write(ctx, Message{From: Name, To: peer, Kind: KindReply, Content: text})
}

func (c *Channel) Write(ctx context.Context, m Message) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}

	c.wmu.Lock()
	defer c.wmu.Unlock()
	if deadline, ok := ctx.Deadline(); ok {
		_ = c.conn.SetWriteDeadline(deadline)
		defer c.conn.SetWriteDeadline(time.Time{})
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("failed to write bus message: %w", err)
	}
	return nil
}

// Close sends a close frame and releases the connection.
func (c *Channel) Close() error {
	var err error
	c.once.Do(func() {
		close(c.done)
		c.wmu.Lock()
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		c.wmu.Unlock()
		err = c.conn.Close()
	})
	return err
}

func isClosed(err error) bool {
	return websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseAbnormalClosure)
}
