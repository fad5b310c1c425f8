package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Hub is the in-process fan-out engine. It maps room IDs to the live
// connections subscribed to them and user IDs to all their connections.
// Subscription here is orthogonal to persisted membership; the hub never
// touches storage.
type Hub struct {
	mu          sync.RWMutex
	rooms       map[string]map[*Client]struct{}
	userClients map[string][]*Client

	closed bool
}

func NewHub() *Hub {
	return &Hub{
		rooms:       make(map[string]map[*Client]struct{}),
		userClients: make(map[string][]*Client),
	}
}

// Track records a connection as belonging to its user. Anonymous
// connections are not tracked by user.
func (h *Hub) Track(client *Client) {
	if client.UserID == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.userClients[client.UserID] = append(h.userClients[client.UserID], client)
}

// Register subscribes a connection to a room's broadcast channel.
func (h *Hub) Register(roomID string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}

	room, ok := h.rooms[roomID]
	if !ok {
		room = make(map[*Client]struct{})
		h.rooms[roomID] = room
	}
	room[client] = struct{}{}

	log.Debug().Str("roomID", roomID).Str("clientID", client.ID).Str("userID", client.UserID).Msg("hub: client subscribed")
}

// Unregister drops a single room subscription.
func (h *Hub) Unregister(roomID string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeFromRoom(roomID, client)
}

// UnregisterAll drops every subscription and the user tracking entry for
// a disconnecting client.
func (h *Hub) UnregisterAll(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for roomID := range h.rooms {
		h.removeFromRoom(roomID, client)
	}

	if client.UserID == "" {
		return
	}
	conns := h.userClients[client.UserID]
	for i, c := range conns {
		if c == client {
			h.userClients[client.UserID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(h.userClients[client.UserID]) == 0 {
		delete(h.userClients, client.UserID)
	}
}

// removeFromRoom must be called with h.mu held.
func (h *Hub) removeFromRoom(roomID string, client *Client) {
	room, ok := h.rooms[roomID]
	if !ok {
		return
	}
	if _, subscribed := room[client]; !subscribed {
		return
	}
	delete(room, client)
	if len(room) == 0 {
		delete(h.rooms, roomID)
	}
}

// BroadcastToRoom fans a frame out to every connection subscribed to the
// room, including the originator.
func (h *Hub) BroadcastToRoom(roomID string, msg OutgoingMessage) {
	h.broadcast(roomID, msg, nil)
}

// BroadcastToRoomExcept fans out to the room while skipping one
// connection, used for typing and read signals where echoing back to the
// originator is noise.
func (h *Hub) BroadcastToRoomExcept(roomID string, msg OutgoingMessage, except *Client) {
	h.broadcast(roomID, msg, except)
}

func (h *Hub) broadcast(roomID string, msg OutgoingMessage, except *Client) {
	h.mu.RLock()
	room, ok := h.rooms[roomID]
	if !ok {
		h.mu.RUnlock()
		return
	}
	clients := make([]*Client, 0, len(room))
	for c := range room {
		if c != except {
			clients = append(clients, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.SendMessage(msg)
	}
}

// BroadcastToRooms sends the same frame to a set of rooms, stamping each
// copy with its room ID. Used for event-wide announcements.
func (h *Hub) BroadcastToRooms(roomIDs []string, msg OutgoingMessage) {
	for _, roomID := range roomIDs {
		copied := msg
		copied.RoomID = roomID
		h.BroadcastToRoom(roomID, copied)
	}
}

// BroadcastToUser sends to every live connection of one user.
func (h *Hub) BroadcastToUser(userID string, msg OutgoingMessage) {
	h.mu.RLock()
	clients := make([]*Client, len(h.userClients[userID]))
	copy(clients, h.userClients[userID])
	h.mu.RUnlock()

	for _, c := range clients {
		c.SendMessage(msg)
	}
}

func (h *Hub) GetUserClients(userID string) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	clients := make([]*Client, len(h.userClients[userID]))
	copy(clients, h.userClients[userID])
	return clients
}

func (h *Hub) GetRoomClients(roomID string) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	room := h.rooms[roomID]
	clients := make([]*Client, 0, len(room))
	for c := range room {
		clients = append(clients, c)
	}
	return clients
}

func (h *Hub) IsUserOnlineInRoom(roomID, userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[roomID] {
		if c.UserID == userID {
			return true
		}
	}
	return false
}

type RoomStats struct {
	RoomID      string `json:"room_id"`
	Connections int    `json:"connections"`
	Users       int    `json:"users"`
	Anonymous   int    `json:"anonymous"`
}

type HubStats struct {
	Rooms       int `json:"rooms"`
	Connections int `json:"connections"`
	Users       int `json:"users"`
}

func (h *Hub) GetRoomStats(roomID string) RoomStats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	stats := RoomStats{RoomID: roomID}
	users := make(map[string]struct{})
	for c := range h.rooms[roomID] {
		stats.Connections++
		if c.UserID == "" {
			stats.Anonymous++
		} else {
			users[c.UserID] = struct{}{}
		}
	}
	stats.Users = len(users)
	return stats
}

func (h *Hub) GetHubStats() HubStats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	seen := make(map[*Client]struct{})
	for _, room := range h.rooms {
		for c := range room {
			seen[c] = struct{}{}
		}
	}
	return HubStats{
		Rooms:       len(h.rooms),
		Connections: len(seen),
		Users:       len(h.userClients),
	}
}

// StartCleanup evicts connections that stopped answering pings but never
// closed cleanly.
func (h *Hub) StartCleanup(ctx context.Context, interval, maxIdle time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				h.evictStale(maxIdle)
			}
		}
	}()
}

func (h *Hub) evictStale(maxIdle time.Duration) {
	cutoff := time.Now().Add(-maxIdle)

	h.mu.RLock()
	var stale []*Client
	seen := make(map[*Client]struct{})
	for _, room := range h.rooms {
		for c := range room {
			if _, dup := seen[c]; dup {
				continue
			}
			seen[c] = struct{}{}
			if !c.IsClientActive() || c.GetLastSeen().Before(cutoff) {
				stale = append(stale, c)
			}
		}
	}
	h.mu.RUnlock()

	for _, c := range stale {
		log.Info().Str("clientID", c.ID).Str("userID", c.UserID).Msg("hub: evicting stale connection")
		c.Close()
	}
}

// Close tears down every connection and rejects further registrations.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	seen := make(map[*Client]struct{})
	for _, room := range h.rooms {
		for c := range room {
			seen[c] = struct{}{}
		}
	}
	for _, conns := range h.userClients {
		for _, c := range conns {
			seen[c] = struct{}{}
		}
	}
	h.rooms = make(map[string]map[*Client]struct{})
	h.userClients = make(map[string][]*Client)
	h.mu.Unlock()

	for c := range seen {
		c.Close()
	}
}
