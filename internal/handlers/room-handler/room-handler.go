package room_handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/akashyap25/eazy-event-server-sub000/internal/dtos/chat_dto"
	"github.com/akashyap25/eazy-event-server-sub000/internal/entity"
	app_error "github.com/akashyap25/eazy-event-server-sub000/internal/errors"
	"github.com/akashyap25/eazy-event-server-sub000/internal/handlers"
	"github.com/akashyap25/eazy-event-server-sub000/internal/queue"
	event_repo "github.com/akashyap25/eazy-event-server-sub000/internal/repo/event"
	room_repo "github.com/akashyap25/eazy-event-server-sub000/internal/repo/room"
	room_service "github.com/akashyap25/eazy-event-server-sub000/internal/use-case/room-case"
	"github.com/akashyap25/eazy-event-server-sub000/internal/utils/types"
	"github.com/akashyap25/eazy-event-server-sub000/state"
)

type RoomHandler struct {
	State    *state.AppState
	Producer queue.Producer
	Validate *validator.Validate
	Service  room_service.RoomServiceContract
}

func NewRoomHandler(appState *state.AppState) *RoomHandler {
	validate := validator.New()
	validate.RegisterValidation("objectID", chat_dto.ObjectIDValidator)
	return &RoomHandler{
		State:    appState,
		Producer: queue.NewProducer(appState.Redis),
		Validate: validate,
		Service: room_service.NewRoomService(
			room_repo.NewRoomRepo(appState.DB),
			event_repo.NewEventRepo(appState.DB),
			appState.Redis,
		),
	}
}

func (h *RoomHandler) CreateRoom(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	var req chat_dto.CreateRoomRequest
	defer r.Body.Close()

	eventID := chi.URLParam(r, "eventId")
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return app_error.InvalidInput("Invalid JSON", "body")
	}
	if err := h.Validate.Struct(req); err != nil {
		return app_error.InvalidInput(fmt.Sprintf("Invalid fields: %v", err), "validation")
	}

	userID := handlers.UserID(r)
	resp, appErr := h.Service.CreateRoom(r.Context(), eventID, userID, req)
	if appErr != nil {
		return appErr
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(handlers.CreateResponse("room created successfully", *resp, handlers.RequestID(r)))

	go h.notifyRoomCreated(eventID, resp)
	return nil
}

func (h *RoomHandler) ListRooms(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	eventID := chi.URLParam(r, "eventId")
	userID := handlers.UserID(r)

	resp, appErr := h.Service.ListEventRooms(r.Context(), eventID, userID)
	if appErr != nil {
		return appErr
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(handlers.CreateResponse("rooms fetched successfully", resp, handlers.RequestID(r)))
	return nil
}

// Announce queues a system message fan-out into every active room of the
// event. The 202 means accepted, not delivered; the worker does the
// persistence and broadcast.
func (h *RoomHandler) Announce(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	var req chat_dto.AnnounceRequest
	defer r.Body.Close()

	eventID := chi.URLParam(r, "eventId")
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return app_error.InvalidInput("Invalid JSON", "body")
	}
	if err := h.Validate.Struct(req); err != nil {
		return app_error.InvalidInput(fmt.Sprintf("Invalid fields: %v", err), "validation")
	}

	userID := handlers.UserID(r)
	role, appErr := h.Service.ComputeEventRole(r.Context(), eventID, userID)
	if appErr != nil {
		return appErr
	}
	if role != entity.EventRoleOwner {
		return app_error.Forbidden("only the event owner can announce")
	}

	job := queue.NewJob(types.JobEventAnnouncement, types.AnnouncementPayload{
		EventID:  eventID,
		SenderID: userID,
		Content:  req.Content,
	})
	if err := h.Producer.Enqueue(r.Context(), job); err != nil {
		return app_error.Internal("failed to queue announcement", "queue")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(handlers.CreateResponse("announcement queued", "OK", handlers.RequestID(r)))
	return nil
}

func (h *RoomHandler) GetRoom(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	roomID := chi.URLParam(r, "roomId")

	resp, appErr := h.Service.GetRoom(r.Context(), roomID)
	if appErr != nil {
		return appErr
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(handlers.CreateResponse("room fetched successfully", *resp, handlers.RequestID(r)))
	return nil
}

func (h *RoomHandler) JoinRoom(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	var req chat_dto.JoinRoomRequest
	defer r.Body.Close()

	roomID := chi.URLParam(r, "roomId")
	// The body is optional here; display_name is the only field.
	_ = json.NewDecoder(r.Body).Decode(&req)
	if err := h.Validate.Struct(req); err != nil {
		return app_error.InvalidInput(fmt.Sprintf("Invalid fields: %v", err), "validation")
	}

	userID := handlers.UserID(r)
	resp, appErr := h.Service.JoinRoom(r.Context(), roomID, userID)
	if appErr != nil {
		return appErr
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(handlers.CreateResponse("room joined successfully", *resp, handlers.RequestID(r)))

	go h.broadcastRoomEvent(chat_dto.WSRoomJoined, roomID, userID, map[string]any{
		"user_id":      userID,
		"display_name": req.DisplayName,
	})
	return nil
}

func (h *RoomHandler) LeaveRoom(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	roomID := chi.URLParam(r, "roomId")
	userID := handlers.UserID(r)
	if userID == "" {
		return app_error.Unauthenticated("sign in to leave chat rooms")
	}

	// Membership and read markers survive a leave; only the live roster
	// is told.
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(handlers.CreateResponse("room left successfully", "OK", handlers.RequestID(r)))

	go h.broadcastRoomEvent(chat_dto.WSRoomLeft, roomID, userID, map[string]any{
		"user_id": userID,
	})
	return nil
}

func (h *RoomHandler) ModerateParticipant(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	var req chat_dto.ModerateParticipantRequest
	defer r.Body.Close()

	roomID := chi.URLParam(r, "roomId")
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return app_error.InvalidInput("Invalid JSON", "body")
	}
	if err := h.Validate.Struct(req); err != nil {
		return app_error.InvalidInput(fmt.Sprintf("Invalid fields: %v", err), "validation")
	}

	userID := handlers.UserID(r)
	if appErr := h.Service.ModerateParticipant(r.Context(), roomID, userID, req); appErr != nil {
		return appErr
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(handlers.CreateResponse("participant moderated successfully", "OK", handlers.RequestID(r)))
	return nil
}

func (h *RoomHandler) notifyRoomCreated(eventID string, room *chat_dto.RoomResponse) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	job := queue.NewJob(types.JobNotifyRoomCreated, types.RoomCreatedPayload{
		EventID: eventID,
		RoomID:  room.RoomID,
		Room: map[string]any{
			"room_id":   room.RoomID,
			"event_id":  room.EventID,
			"name":      room.Name,
			"room_type": room.RoomType,
		},
	})
	if err := h.Producer.Enqueue(ctx, job); err != nil {
		log.Error().Err(err).Str("roomID", room.RoomID).Msg("failed to queue room created notification")
	}
}

func (h *RoomHandler) broadcastRoomEvent(eventType, roomID, senderID string, data map[string]any) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	job := queue.NewJob(types.JobBroadcastRoomEvent, types.RoomEventBroadcastPayload{
		RoomID:    roomID,
		SenderID:  senderID,
		EventType: eventType,
		Data:      data,
	})
	if err := h.Producer.Enqueue(ctx, job); err != nil {
		log.Error().Err(err).Str("roomID", roomID).Str("event", eventType).Msg("failed to queue room broadcast")
	}
}
