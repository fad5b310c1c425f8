package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/akashyap25/eazy-event-server-sub000/config"
	"github.com/akashyap25/eazy-event-server-sub000/internal/dtos/chat_dto"
	event_repo "github.com/akashyap25/eazy-event-server-sub000/internal/repo/event"
	message_repo "github.com/akashyap25/eazy-event-server-sub000/internal/repo/message"
	room_repo "github.com/akashyap25/eazy-event-server-sub000/internal/repo/room"
	user_repo "github.com/akashyap25/eazy-event-server-sub000/internal/repo/user"
	"github.com/akashyap25/eazy-event-server-sub000/internal/routers"
	chat_service "github.com/akashyap25/eazy-event-server-sub000/internal/use-case/chat-case"
	presence_service "github.com/akashyap25/eazy-event-server-sub000/internal/use-case/presence-case"
	room_service "github.com/akashyap25/eazy-event-server-sub000/internal/use-case/room-case"
	"github.com/akashyap25/eazy-event-server-sub000/internal/websocket"
	"github.com/akashyap25/eazy-event-server-sub000/internal/worker"
	worker_handler "github.com/akashyap25/eazy-event-server-sub000/internal/worker/worker-handler"
	"github.com/akashyap25/eazy-event-server-sub000/state"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if err := config.LoadConfig(); err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appState, err := state.InitAppState(ctx, stop)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize application state")
	}
	defer appState.Close()

	roomRepo := room_repo.NewRoomRepo(appState.DB)
	eventRepo := event_repo.NewEventRepo(appState.DB)
	userRepo := user_repo.NewUserRepo(appState.DB)
	messageRepo := message_repo.NewMessageRepo(appState.MessageCollection())

	roomService := room_service.NewRoomService(roomRepo, eventRepo, appState.Redis)
	chatService := chat_service.NewChatService(roomRepo, messageRepo)
	presenceService := presence_service.NewPresenceService(roomRepo, messageRepo)

	validate := validator.New()
	validate.RegisterValidation("objectID", chat_dto.ObjectIDValidator)

	wsHub := websocket.NewHub()
	wsHub.StartCleanup(ctx, time.Minute, 5*time.Minute)
	log.Info().Msg("Websocket hub initialized")

	dispatcher := websocket.NewDispatcher(wsHub, roomService, chatService, presenceService, validate)
	authFunc := websocket.JWTWebSocketAuth(appState.JwtSecret.Public, userRepo)

	wsHandler := websocket.NewWebSocketHandler(wsHub, authFunc, dispatcher)
	wsHandler.StartCleanup(ctx)
	log.Info().Msg("Websocket handler initialized")

	r := routers.NewRouter(appState, wsHub, wsHandler)

	workerCount := config.Conf.WORKER.Count
	if workerCount <= 0 {
		workerCount = 5
	}
	workerHandler := worker_handler.NewWorkerHandler(wsHub, roomRepo, chatService)
	workerPool := worker.NewWorkerPool(appState.Redis, workerCount, workerHandler)
	workerPool.Start(ctx)

	server := &http.Server{
		Addr:         config.Conf.App.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Msgf("Starting server on http://localhost%s", config.Conf.App.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			panic(fmt.Sprintf("ListenAndServe failed: %v", err))
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutdown initiated...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		fmt.Printf("Graceful shutdown failed: %v\n", err)
	} else {
		fmt.Println("Server exited gracefully.")
	}

	wsHub.Close()
	workerPool.Wait()
}
