package chat_handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/akashyap25/eazy-event-server-sub000/internal/dtos/chat_dto"
	app_error "github.com/akashyap25/eazy-event-server-sub000/internal/errors"
	"github.com/akashyap25/eazy-event-server-sub000/internal/handlers"
	"github.com/akashyap25/eazy-event-server-sub000/internal/queue"
	message_repo "github.com/akashyap25/eazy-event-server-sub000/internal/repo/message"
	room_repo "github.com/akashyap25/eazy-event-server-sub000/internal/repo/room"
	chat_service "github.com/akashyap25/eazy-event-server-sub000/internal/use-case/chat-case"
	presence_service "github.com/akashyap25/eazy-event-server-sub000/internal/use-case/presence-case"
	"github.com/akashyap25/eazy-event-server-sub000/state"
)

// ChatHandler is the stateless message surface. Every successful write
// also queues a broadcast job so socket subscribers see HTTP-originated
// activity.
type ChatHandler struct {
	State    *state.AppState
	Producer queue.Producer
	Validate *validator.Validate
	Service  chat_service.ChatServiceContract
	Presence presence_service.PresenceServiceContract
}

func NewChatHandler(appState *state.AppState) *ChatHandler {
	validate := validator.New()
	validate.RegisterValidation("objectID", chat_dto.ObjectIDValidator)

	roomRepo := room_repo.NewRoomRepo(appState.DB)
	messageRepo := message_repo.NewMessageRepo(appState.MessageCollection())
	return &ChatHandler{
		State:    appState,
		Producer: queue.NewProducer(appState.Redis),
		Validate: validate,
		Service:  chat_service.NewChatService(roomRepo, messageRepo),
		Presence: presence_service.NewPresenceService(roomRepo, messageRepo),
	}
}

func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	var req chat_dto.SendMessageRequest
	defer r.Body.Close()

	roomID := chi.URLParam(r, "roomId")
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return app_error.InvalidInput("Invalid JSON", "body")
	}
	if err := h.Validate.Struct(req); err != nil {
		return app_error.InvalidInput(fmt.Sprintf("Invalid fields: %v", err), "validation")
	}

	userID := handlers.UserID(r)
	resp, appErr := h.Service.SendMessage(r.Context(), roomID, userID, req)
	if appErr != nil {
		return appErr
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(handlers.CreateResponse("message sent successfully", *resp, handlers.RequestID(r)))

	go h.broadcastRoomEvent(chat_dto.WSNewMessage, roomID, userID, map[string]any{
		"message": resp,
	})
	return nil
}

func (h *ChatHandler) GetMessages(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	roomID := chi.URLParam(r, "roomId")

	req := chat_dto.GetMessagesRequest{}
	q := r.URL.Query()
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return app_error.InvalidInput("limit must be a number", "limit")
		}
		req.Limit = limit
	}
	if v := q.Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil {
			return app_error.InvalidInput("page must be a number", "page")
		}
		req.Page = page
	}
	if v := q.Get("before"); v != "" {
		req.Before = &v
	}
	if v := q.Get("after"); v != "" {
		req.After = &v
	}
	if err := h.Validate.Struct(req); err != nil {
		return app_error.InvalidInput(fmt.Sprintf("Invalid fields: %v", err), "validation")
	}

	resp, appErr := h.Service.GetMessages(r.Context(), roomID, req)
	if appErr != nil {
		return appErr
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(handlers.CreateResponse("messages fetched successfully", *resp, handlers.RequestID(r)))
	return nil
}

func (h *ChatHandler) EditMessage(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	var req chat_dto.EditMessageRequest
	defer r.Body.Close()

	messageID := chi.URLParam(r, "messageId")
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return app_error.InvalidInput("Invalid JSON", "body")
	}
	if err := h.Validate.Struct(req); err != nil {
		return app_error.InvalidInput(fmt.Sprintf("Invalid fields: %v", err), "validation")
	}

	userID := handlers.UserID(r)
	resp, appErr := h.Service.EditMessage(r.Context(), messageID, userID, req.NewContent)
	if appErr != nil {
		return appErr
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(handlers.CreateResponse("message edited successfully", *resp, handlers.RequestID(r)))

	go h.broadcastRoomEvent(chat_dto.WSMessageEdited, resp.RoomID, userID, map[string]any{
		"message": resp,
	})
	return nil
}

func (h *ChatHandler) DeleteMessage(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	messageID := chi.URLParam(r, "messageId")
	permanent := r.URL.Query().Get("permanent") == "true"

	userID := handlers.UserID(r)
	resp, appErr := h.Service.DeleteMessage(r.Context(), messageID, userID, permanent)
	if appErr != nil {
		return appErr
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(handlers.CreateResponse("message deleted successfully", *resp, handlers.RequestID(r)))

	if permanent {
		go h.broadcastRoomEvent(chat_dto.WSMessageDeleted, resp.RoomID, userID, map[string]any{
			"message_id": messageID,
		})
	} else {
		go h.broadcastRoomEvent(chat_dto.WSMessageUpdated, resp.RoomID, userID, map[string]any{
			"message": resp,
		})
	}
	return nil
}

func (h *ChatHandler) AddReaction(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	var req chat_dto.ReactionRequest
	defer r.Body.Close()

	messageID := chi.URLParam(r, "messageId")
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return app_error.InvalidInput("Invalid JSON", "body")
	}
	if err := h.Validate.Struct(req); err != nil {
		return app_error.InvalidInput(fmt.Sprintf("Invalid fields: %v", err), "validation")
	}

	userID := handlers.UserID(r)
	roomID, appErr := h.Service.AddReaction(r.Context(), messageID, userID, req.Emoji)
	if appErr != nil {
		return appErr
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(handlers.CreateResponse("reaction added successfully", "OK", handlers.RequestID(r)))

	go h.broadcastRoomEvent(chat_dto.WSReactionAdded, roomID, userID, map[string]any{
		"message_id": messageID,
		"user_id":    userID,
		"emoji":      req.Emoji,
	})
	return nil
}

func (h *ChatHandler) RemoveReaction(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	messageID := chi.URLParam(r, "messageId")
	emoji := r.URL.Query().Get("emoji")

	userID := handlers.UserID(r)
	roomID, appErr := h.Service.RemoveReaction(r.Context(), messageID, userID, emoji)
	if appErr != nil {
		return appErr
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(handlers.CreateResponse("reaction removed successfully", "OK", handlers.RequestID(r)))

	go h.broadcastRoomEvent(chat_dto.WSReactionRemoved, roomID, userID, map[string]any{
		"message_id": messageID,
		"user_id":    userID,
		"emoji":      emoji,
	})
	return nil
}

func (h *ChatHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	roomID := chi.URLParam(r, "roomId")

	userID := handlers.UserID(r)
	readAt, appErr := h.Presence.MarkAsRead(r.Context(), roomID, userID)
	if appErr != nil {
		return appErr
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(handlers.CreateResponse("room marked as read", map[string]any{
		"room_id":      roomID,
		"last_read_at": readAt,
	}, handlers.RequestID(r)))

	go h.broadcastRoomEvent(chat_dto.WSUserRead, roomID, userID, map[string]any{
		"user_id":      userID,
		"last_read_at": readAt,
	})
	return nil
}

func (h *ChatHandler) GetUnreadCounts(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	userID := handlers.UserID(r)

	resp, appErr := h.Presence.UnreadCounts(r.Context(), userID)
	if appErr != nil {
		return appErr
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(handlers.CreateResponse("unread counts fetched successfully", *resp, handlers.RequestID(r)))
	return nil
}
