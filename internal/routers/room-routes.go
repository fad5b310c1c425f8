package routers

import (
	"github.com/go-chi/chi/v5"

	"github.com/akashyap25/eazy-event-server-sub000/internal/handlers"
	room_handler "github.com/akashyap25/eazy-event-server-sub000/internal/handlers/room-handler"
	"github.com/akashyap25/eazy-event-server-sub000/internal/middleware"
	"github.com/akashyap25/eazy-event-server-sub000/state"
)

func RoomRouter(r chi.Router, appState *state.AppState) {
	roomHandler := room_handler.NewRoomHandler(appState)

	r.Group(func(public chi.Router) {
		public.Get("/api/v1/rooms/{roomId}", handlers.WrapHandler(roomHandler.GetRoom))
	})

	r.Group(func(protected chi.Router) {
		protected.Use(middleware.JWTAuth(appState.JwtSecret.Public))
		protected.Post("/api/v1/events/{eventId}/rooms", handlers.WrapHandler(roomHandler.CreateRoom))
		protected.Get("/api/v1/events/{eventId}/rooms", handlers.WrapHandler(roomHandler.ListRooms))
		protected.Post("/api/v1/events/{eventId}/announce", handlers.WrapHandler(roomHandler.Announce))
		protected.Post("/api/v1/rooms/{roomId}/join", handlers.WrapHandler(roomHandler.JoinRoom))
		protected.Post("/api/v1/rooms/{roomId}/leave", handlers.WrapHandler(roomHandler.LeaveRoom))
		protected.Patch("/api/v1/rooms/{roomId}/participants", handlers.WrapHandler(roomHandler.ModerateParticipant))
	})
}
