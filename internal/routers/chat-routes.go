package routers

import (
	"github.com/go-chi/chi/v5"

	"github.com/akashyap25/eazy-event-server-sub000/internal/handlers"
	chat_handler "github.com/akashyap25/eazy-event-server-sub000/internal/handlers/chat-handler"
	"github.com/akashyap25/eazy-event-server-sub000/internal/middleware"
	"github.com/akashyap25/eazy-event-server-sub000/state"
)

func ChatRouter(r chi.Router, appState *state.AppState) {
	chatHandler := chat_handler.NewChatHandler(appState)

	r.Group(func(public chi.Router) {
		// Message history is readable without a token; soft-deleted
		// messages come back redacted either way.
		public.Get("/api/v1/rooms/{roomId}/messages", handlers.WrapHandler(chatHandler.GetMessages))
	})

	r.Group(func(protected chi.Router) {
		protected.Use(middleware.JWTAuth(appState.JwtSecret.Public))
		protected.Post("/api/v1/rooms/{roomId}/messages", handlers.WrapHandler(chatHandler.SendMessage))
		protected.Put("/api/v1/messages/{messageId}", handlers.WrapHandler(chatHandler.EditMessage))
		protected.Delete("/api/v1/messages/{messageId}", handlers.WrapHandler(chatHandler.DeleteMessage))
		protected.Post("/api/v1/messages/{messageId}/reactions", handlers.WrapHandler(chatHandler.AddReaction))
		protected.Delete("/api/v1/messages/{messageId}/reactions", handlers.WrapHandler(chatHandler.RemoveReaction))
		protected.Patch("/api/v1/rooms/{roomId}/read", handlers.WrapHandler(chatHandler.MarkAsRead))
		protected.Get("/api/v1/unread", handlers.WrapHandler(chatHandler.GetUnreadCounts))
	})
}
