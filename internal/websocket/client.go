package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 << 10 // 64 KB, chat frames are small
)

// MessageHandler consumes one inbound frame. Dispatch runs on the
// connection's read loop, so per-connection ordering is the loop order.
type MessageHandler func(client *Client, raw []byte)

// Client is one live websocket connection. Identity is attached at
// handshake time (or left anonymous); event roles are cached here at
// join time and reused for the lifetime of the session.
type Client struct {
	ID              string
	UserID          string // "" for anonymous connections
	Username        string
	IsAuthenticated bool
	DisplayName     string
	ClientIP        string
	ConnectedAt     time.Time

	Conn *websocket.Conn
	Send chan []byte

	hub     *Hub
	handler MessageHandler
	onClose func(*Client)

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.RWMutex
	active     bool
	lastSeen   time.Time
	eventRoles map[string]string // eventID -> derived role, set on join
	roomEvents map[string]string // roomID -> eventID for rooms joined on this connection

	closeOnce sync.Once
}

func NewClient(id string, conn *websocket.Conn, hub *Hub, handler MessageHandler) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		ID:          id,
		Conn:        conn,
		Send:        make(chan []byte, 256),
		hub:         hub,
		handler:     handler,
		ctx:         ctx,
		cancel:      cancel,
		active:      true,
		lastSeen:    time.Now(),
		ConnectedAt: time.Now(),
		eventRoles:  make(map[string]string),
		roomEvents:  make(map[string]string),
	}
}

// Start launches the read and write pumps.
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case msg := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			if _, err := w.Write(msg); err != nil {
				_ = w.Close()
				return
			}
			_ = w.Close()

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

func (c *Client) readPump() {
	defer c.Close()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		c.touch()
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Str("clientID", c.ID).Msg("ws: unexpected close")
			}
			break
		}

		c.touch()
		if c.handler != nil {
			// Handler failures are scoped to the frame; they never tear
			// down the connection.
			c.handler(c, raw)
		}
	}
}

// SendMessage marshals and queues an outbound frame; it never blocks the
// caller. A full buffer drops the frame.
func (c *Client) SendMessage(msg OutgoingMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Str("clientID", c.ID).Msg("ws: failed to marshal outgoing message")
		return
	}

	select {
	case c.Send <- data:
	case <-c.ctx.Done():
	default:
		log.Warn().Str("clientID", c.ID).Str("type", msg.Type).Msg("ws: send buffer full, dropping frame")
	}
}

// SendError reports a handler failure to this connection only.
func (c *Client) SendError(message string) {
	c.SendMessage(NewErrorMessage(message))
}

func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.active = false
		c.mu.Unlock()

		if c.hub != nil {
			c.hub.UnregisterAll(c)
		}

		// Send stays open. Hub broadcasts snapshot subscribers before
		// sending, so a frame can race this close; SendMessage must keep
		// landing in the buffer or the ctx branch, never on a closed
		// channel. writePump exits through the canceled context.
		c.cancel()
		_ = c.Conn.Close()

		if c.onClose != nil {
			c.onClose(c)
		}
	})
}

func (c *Client) IsClientActive() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active
}

func (c *Client) GetLastSeen() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastSeen
}

func (c *Client) touch() {
	c.mu.Lock()
	c.lastSeen = time.Now()
	c.mu.Unlock()
}

// SetEventRole caches the role resolved by a successful join. Deliberate
// staleness tradeoff: role changes mid-session are not reflected until
// the user joins again.
func (c *Client) SetEventRole(eventID, role string) {
	c.mu.Lock()
	c.eventRoles[eventID] = role
	c.mu.Unlock()
}

func (c *Client) EventRole(eventID string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	role, ok := c.eventRoles[eventID]
	return role, ok
}

func (c *Client) MarkJoined(roomID, eventID string) {
	c.mu.Lock()
	c.roomEvents[roomID] = eventID
	c.mu.Unlock()
}

func (c *Client) HasJoined(roomID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.roomEvents[roomID]
	return ok
}

func (c *Client) ForgetRoom(roomID string) {
	c.mu.Lock()
	delete(c.roomEvents, roomID)
	c.mu.Unlock()
}
