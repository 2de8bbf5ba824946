package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"social-network-client/internal/channel"
	"social-network-client/internal/config"
	"social-network-client/internal/models"
	"social-network-client/internal/screens"
	"social-network-client/internal/session"
	"social-network-client/internal/store"
	"social-network-client/internal/stubserver"
	"social-network-client/internal/upload"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Run() {
	// Optional .env for the session token
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	if len(os.Args) > 1 && os.Args[1] == "stub" {
		runStub(cfg)
		return
	}
	runClient(cfg)
}

// runClient opens a session against the configured backend and keeps it
// alive until interrupted.
func runClient(cfg *config.Config) {
	userID, err := session.UserIDFromToken(cfg.Auth.Token)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read session token")
	}

	st := store.New()
	ch := channel.New(cfg.Server.SocketURL(), cfg.Auth.Token)
	session.Route(ch, st)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := ch.Connect(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect channel")
	}

	uploader := upload.New(cfg.Server.UploadURL())
	notifier := screens.LogNotifier{}

	feedScreen := screens.NewFeedScreen(st, ch, uploader, notifier)
	friendsScreen := screens.NewFriendsScreen(st, ch, notifier)

	if err := feedScreen.Refresh(); err != nil {
		log.Error().Err(err).Msg("Failed to request post feed")
	}

	log.Info().Str("user_id", userID).Msg("Session established")

	// Log a status line until interrupted
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	for running := true; running; {
		select {
		case <-ticker.C:
			requests, friends := friendsScreen.Render()
			log.Info().
				Int("posts", len(feedScreen.Render())).
				Int("friends", len(friends)).
				Int("requests", len(requests)).
				Bool("connected", ch.Connected()).
				Msg("Session status")
		case <-quit:
			running = false
		}
	}

	log.Info().Msg("Closing session...")
	ch.Close()
	log.Info().Msg("Session closed")
}

// runStub serves the in-memory stub backend, seeded with demo users.
func runStub(cfg *config.Config) {
	srv := stubserver.New(stubserver.NewState(), "stub-secret")
	seed(srv)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      srv.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting stub server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Stub server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down stub server...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Stub server forced to shutdown")
	}
	log.Info().Msg("Stub server exited")
}

// seed loads demo users into the stub state and logs their tokens.
func seed(srv *stubserver.Server) {
	state := srv.State()

	alice := models.User{ID: uuid.New().String(), Email: "alice@example.com", DisplayName: "Alice"}
	bob := models.User{ID: uuid.New().String(), Email: "bob@example.com", DisplayName: "Bob"}
	carol := models.User{ID: uuid.New().String(), Email: "carol@example.com", DisplayName: "Carol"}
	state.AddUser(alice)
	state.AddUser(bob)
	state.AddUser(carol)
	state.SetFriends(alice.ID, bob.ID)
	state.SetFriends(bob.ID, alice.ID)
	state.SetRequests(alice.ID, carol.ID)

	state.SavePost(models.Post{
		ID:        uuid.New().String(),
		Owner:     bob,
		Type:      models.TypeText,
		Content:   "hello from the stub feed",
		Timestamp: time.Now().UnixMilli(),
	})

	for _, user := range []models.User{alice, bob, carol} {
		token, err := srv.GenerateToken(user.ID)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to generate seed token")
		}
		log.Info().Str("email", user.Email).Str("token", token).Msg("Seeded user")
	}
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
