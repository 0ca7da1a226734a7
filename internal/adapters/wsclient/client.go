// Package wsclient is the participant side of the relay channel.
package wsclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dkeye/Collab/internal/domain"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1 << 20
	sendBuffer     = 256
)

var (
	ErrClosed       = errors.New("relay connection closed")
	ErrBackpressure = errors.New("relay send buffer full")
)

type Client struct {
	conn     *websocket.Conn
	incoming chan domain.Envelope
	outgoing chan domain.Envelope
	done     chan struct{}
	once     sync.Once
}

// Dial connects and starts the pumps. Incoming is closed when the connection ends.
func Dial(ctx context.Context, url string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	c := &Client{
		conn:     conn,
		incoming: make(chan domain.Envelope, sendBuffer),
		outgoing: make(chan domain.Envelope, sendBuffer),
		done:     make(chan struct{}),
	}
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	go c.readPump()
	go c.writePump()
	return c, nil
}

func (c *Client) readPump() {
	defer func() {
		c.Close()
		close(c.incoming)
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	for {
		var env domain.Envelope
		if err := c.conn.ReadJSON(&env); err != nil {
			var syntax *json.SyntaxError
			if errors.As(err, &syntax) {
				log.Warn().Err(err).Str("module", "wsclient").Msg("bad frame skipped")
				continue
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("module", "wsclient").Msg("read error")
			}
			return
		}
		select {
		case c.incoming <- env:
		case <-c.done:
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case env := <-c.outgoing:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(env); err != nil {
				log.Warn().Err(err).Str("module", "wsclient").Msg("write error")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			c.flush()
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// flush writes what was queued before Close, so a final leave-room is not lost.
func (c *Client) flush() {
	for {
		select {
		case env := <-c.outgoing:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(env); err != nil {
				return
			}
		default:
			return
		}
	}
}

// Send queues env without blocking. Safe from any goroutine.
func (c *Client) Send(env domain.Envelope) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}
	select {
	case c.outgoing <- env:
		return nil
	case <-c.done:
		return ErrClosed
	default:
		return ErrBackpressure
	}
}

func (c *Client) Emit(typ string, data any) error {
	env, err := domain.NewEnvelope(typ, data)
	if err != nil {
		return err
	}
	return c.Send(env)
}

// Signal sends a handshake frame to one room member.
func (c *Client) Signal(to domain.ParticipantID, p domain.SignalPayload) error {
	env, err := domain.NewEnvelope(domain.EventSignal, p)
	if err != nil {
		return err
	}
	env.To = to
	return c.Send(env)
}

func (c *Client) Join(room domain.RoomID, media domain.ParticipantID) error {
	return c.Send(domain.Envelope{Type: domain.EventJoinRoom, Room: room, Media: media})
}

func (c *Client) Incoming() <-chan domain.Envelope { return c.incoming }

func (c *Client) Done() <-chan struct{} { return c.done }

func (c *Client) Close() {
	c.once.Do(func() { close(c.done) })
}
