package routers

import (
	"github.com/go-chi/chi/v5"

	"github.com/akashyap25/eazy-event-server-sub000/internal/handlers"
	hub_handler "github.com/akashyap25/eazy-event-server-sub000/internal/handlers/hub-handler"
	"github.com/akashyap25/eazy-event-server-sub000/internal/websocket"
)

func HubRouter(r chi.Router, hub *websocket.Hub) {
	hubHandler := hub_handler.NewHubHandler(hub)

	r.Get("/health", hubHandler.HandleHealth)
	r.Get("/api/v1/ws/stats", handlers.WrapHandler(hubHandler.HandleGetStats))
	r.Get("/api/v1/ws/rooms/{roomId}/stats", handlers.WrapHandler(hubHandler.HandleGetRoomStats))
	r.Get("/api/v1/ws/rooms/{roomId}/clients", handlers.WrapHandler(hubHandler.HandleGetRoomClients))
	r.Get("/api/v1/ws/users/{userId}/status", handlers.WrapHandler(hubHandler.HandleGetUserStatus))
	r.Post("/api/v1/ws/rooms/{roomId}/kick", handlers.WrapHandler(hubHandler.HandleKickUser))
}
