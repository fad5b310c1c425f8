package routers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/akashyap25/eazy-event-server-sub000/internal/middleware"
	"github.com/akashyap25/eazy-event-server-sub000/internal/websocket"
	"github.com/akashyap25/eazy-event-server-sub000/state"
)

func NewRouter(appState *state.AppState, hub *websocket.Hub, wsHandler *websocket.WebSocketHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.WithRequestId)

	RoomRouter(r, appState)
	ChatRouter(r, appState)
	HubRouter(r, hub)

	// The gateway route skips the JWT middleware on purpose: a failed
	// token downgrades the session to anonymous instead of rejecting.
	r.Get("/ws", wsHandler.ServeWS)

	return r
}
