package websocket

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		// Origin checks belong to the edge proxy in this deployment.
		return true
	},
}

type RateLimitConfig struct {
	Enabled          bool
	ConnectionsPerIP int
	WindowSize       time.Duration
}

// WebSocketHandler is the connection gateway. Authentication failures
// downgrade the session to anonymous instead of rejecting the upgrade:
// anonymous connections may observe public traffic but every mutating
// action is refused downstream.
type WebSocketHandler struct {
	hub           *Hub
	authenticator AuthenticatorFunc
	dispatcher    *Dispatcher

	MaxConnections int64
	RateLimit      RateLimitConfig

	connCount    int64
	limiterMu    sync.Mutex
	rateLimiters map[string]*rateLimiter
}

func NewWebSocketHandler(hub *Hub, authenticator AuthenticatorFunc, dispatcher *Dispatcher) *WebSocketHandler {
	return &WebSocketHandler{
		hub:           hub,
		authenticator: authenticator,
		dispatcher:    dispatcher,
		MaxConnections: 10000,
		RateLimit: RateLimitConfig{
			Enabled:          true,
			ConnectionsPerIP: 20,
			WindowSize:       time.Minute,
		},
		rateLimiters: make(map[string]*rateLimiter),
	}
}

func (h *WebSocketHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	clientIP := getClientIP(r)

	if atomic.LoadInt64(&h.connCount) >= h.MaxConnections {
		http.Error(w, "server at capacity", http.StatusServiceUnavailable)
		return
	}

	if h.RateLimit.Enabled && !h.allowIP(clientIP) {
		http.Error(w, "too many connection attempts", http.StatusTooManyRequests)
		return
	}

	identity, err := h.authenticator(r)
	if err != nil {
		log.Debug().Err(err).Str("clientIP", clientIP).Msg("ws: handshake unauthenticated, continuing as anonymous")
		identity = nil
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("clientIP", clientIP).Msg("ws: upgrade failed")
		return
	}

	client := NewClient(uuid.New().String(), conn, h.hub, h.dispatcher.Dispatch)
	client.ClientIP = clientIP
	if identity != nil {
		client.UserID = identity.UserID
		client.Username = identity.Username
		client.IsAuthenticated = true
	}

	atomic.AddInt64(&h.connCount, 1)
	client.onClose = func(c *Client) {
		atomic.AddInt64(&h.connCount, -1)
		log.Info().Str("clientID", c.ID).Str("userID", c.UserID).Msg("ws: connection closed")
	}

	h.hub.Track(client)
	client.Start()

	log.Info().
		Str("clientID", client.ID).
		Str("userID", client.UserID).
		Bool("authenticated", client.IsAuthenticated).
		Str("clientIP", clientIP).
		Msg("ws: connection established")
}

func (h *WebSocketHandler) allowIP(ip string) bool {
	h.limiterMu.Lock()
	rl, ok := h.rateLimiters[ip]
	if !ok {
		rl = newRateLimiter(h.RateLimit.ConnectionsPerIP, h.RateLimit.WindowSize)
		h.rateLimiters[ip] = rl
	}
	h.limiterMu.Unlock()

	return rl.allow()
}

// StartCleanup drops rate limiter state for IPs that went quiet.
func (h *WebSocketHandler) StartCleanup(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				h.limiterMu.Lock()
				for ip, rl := range h.rateLimiters {
					if rl.idle(10 * time.Minute) {
						delete(h.rateLimiters, ip)
					}
				}
				h.limiterMu.Unlock()
			}
		}
	}()
}

func (h *WebSocketHandler) ConnectionCount() int64 {
	return atomic.LoadInt64(&h.connCount)
}
