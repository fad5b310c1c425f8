package hub_handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	app_error "github.com/akashyap25/eazy-event-server-sub000/internal/errors"
	"github.com/akashyap25/eazy-event-server-sub000/internal/handlers"
	"github.com/akashyap25/eazy-event-server-sub000/internal/websocket"
)

// HubHandler exposes operational views of the fan-out engine.
type HubHandler struct {
	Hub *websocket.Hub
}

func NewHubHandler(hub *websocket.Hub) *HubHandler {
	return &HubHandler{
		Hub: hub,
	}
}

func (h *HubHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
		"service":   "event-chat",
	})
}

func (h *HubHandler) HandleGetStats(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	stats := h.Hub.GetHubStats()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(handlers.CreateResponse("get websocket stats", stats, handlers.RequestID(r)))
	return nil
}

func (h *HubHandler) HandleGetRoomStats(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	roomID := chi.URLParam(r, "roomId")
	stats := h.Hub.GetRoomStats(roomID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(handlers.CreateResponse("get websocket room stats", stats, handlers.RequestID(r)))
	return nil
}

func (h *HubHandler) HandleGetRoomClients(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	roomID := chi.URLParam(r, "roomId")
	clients := h.Hub.GetRoomClients(roomID)

	type ClientInfo struct {
		ID            string    `json:"id"`
		UserID        string    `json:"user_id"`
		Authenticated bool      `json:"authenticated"`
		ConnectedAt   time.Time `json:"connected_at"`
		LastSeen      time.Time `json:"last_seen"`
	}

	clientList := make([]ClientInfo, 0, len(clients))
	for _, client := range clients {
		clientList = append(clientList, ClientInfo{
			ID:            client.ID,
			UserID:        client.UserID,
			Authenticated: client.IsAuthenticated,
			ConnectedAt:   client.ConnectedAt,
			LastSeen:      client.GetLastSeen(),
		})
	}

	resp := map[string]any{
		"room_id": roomID,
		"count":   len(clientList),
		"clients": clientList,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(handlers.CreateResponse("successfully get room clients", resp, handlers.RequestID(r)))
	return nil
}

func (h *HubHandler) HandleGetUserStatus(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	userID := chi.URLParam(r, "userId")
	roomID := r.URL.Query().Get("roomId")

	var isOnline bool
	var activeClients int

	if roomID != "" {
		isOnline = h.Hub.IsUserOnlineInRoom(roomID, userID)
	} else {
		clients := h.Hub.GetUserClients(userID)
		activeClients = len(clients)
		isOnline = activeClients > 0
	}

	resp := map[string]any{
		"user_id":        userID,
		"online":         isOnline,
		"active_clients": activeClients,
		"room_id":        roomID,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(handlers.CreateResponse("successfully get user status", resp, handlers.RequestID(r)))
	return nil
}

// HandleKickUser force-closes a user's connections in one room. This is
// the live counterpart of a ban; the persisted ban flag is set through
// the moderation endpoint.
func (h *HubHandler) HandleKickUser(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	roomID := chi.URLParam(r, "roomId")

	var payload struct {
		UserID string `json:"user_id"`
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		return app_error.InvalidInput("invalid request body", "body")
	}
	if payload.UserID == "" {
		return app_error.InvalidInput("user_id is required", "user_id")
	}

	clients := h.Hub.GetRoomClients(roomID)
	kicked := 0
	for _, client := range clients {
		if client.UserID == payload.UserID {
			kickMsg := websocket.NewSystemMessage(roomID, fmt.Sprintf("You have been removed from the room. Reason: %s", payload.Reason), map[string]any{"action": "force_disconnect"})
			client.SendMessage(kickMsg)
			client.Close()
			kicked++
		}
	}

	resp := map[string]any{
		"status":         "success",
		"kicked_clients": kicked,
		"user_id":        payload.UserID,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(handlers.CreateResponse("successfully kicked user", resp, handlers.RequestID(r)))
	return nil
}
