// Package stubserver implements the server half of the channel protocol
// in memory: history push, message echo and relay, like and comment
// broadcasts, profile persistence, friendship moves and multipart file
// upload. It backs the CLI's dev mode and the integration tests.
package stubserver

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"social-network-client/internal/channel"
	"social-network-client/internal/models"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Server is the in-memory stub backend.
type Server struct {
	state     *State
	hub       *Hub
	jwtSecret string
}

// New creates a stub server with the given state and signing secret.
func New(state *State, jwtSecret string) *Server {
	return &Server{state: state, hub: NewHub(), jwtSecret: jwtSecret}
}

// State exposes the backing state, for seeding and test assertions.
func (s *Server) State() *State { return s.state }

// GenerateToken signs a session token for a user.
func (s *Server) GenerateToken(userID string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().AddDate(0, 0, 365).Unix(),
		"iat":     time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// validateToken checks the token signature and returns the user id.
func (s *Server) validateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return "", fmt.Errorf("invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}
	userID, ok := claims["user_id"].(string)
	if !ok {
		return "", fmt.Errorf("user_id not found in token")
	}
	return userID, nil
}

// Router builds the HTTP surface: the upload endpoint, stored file
// delivery and the websocket channel.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)

	r.Post("/upload", s.handleUpload)
	r.Get("/files/{name}", s.handleFile)
	r.Get("/ws", s.handleWebSocket)

	return r
}

// handleUpload accepts a multipart file and returns its stored URL.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, "file field required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, "failed to read file", http.StatusInternalServerError)
		return
	}

	name := uuid.New().String()
	s.state.SaveFile(name, data)

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	fileURL := fmt.Sprintf("%s://%s/files/%s", scheme, r.Host, name)

	log.Info().Str("filename", header.Filename).Str("url", fileURL).Msg("File stored")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"fileUrl": fileURL})
}

// handleFile serves a stored file back.
func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	data, ok := s.state.File(chi.URLParam(r, "name"))
	if !ok {
		respondError(w, "file not found", http.StatusNotFound)
		return
	}
	w.Write(data)
}

// handleWebSocket authenticates the session token, registers the
// connection and serves the event loop.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respondError(w, "token required", http.StatusUnauthorized)
		return
	}

	userID, err := s.validateToken(token)
	if err != nil {
		respondError(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade connection")
		return
	}
	defer conn.Close()

	s.hub.Register(userID, conn)
	defer s.hub.Unregister(userID, conn)

	// Initial push: the signed-in user record and the current feed
	if user, ok := s.state.ResolveUser(userID); ok {
		if err := s.hub.SendToUser(userID, channel.EventUserUpdate, user); err != nil {
			log.Error().Err(err).Str("user_id", userID).Msg("Failed to push user record")
		}
	}
	if err := s.hub.SendToUser(userID, channel.EventPostsResponse, s.state.Posts()); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to push post feed")
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("user_id", userID).Msg("Read error")
			}
			break
		}

		var env channel.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			log.Error().Err(err).Str("user_id", userID).Msg("Failed to parse event")
			s.sendError(userID, "invalid event format")
			continue
		}

		if err := s.handleEvent(userID, env); err != nil {
			log.Error().Err(err).Str("user_id", userID).Str("event", env.Event).Msg("Failed to handle event")
			s.sendError(userID, err.Error())
		}
	}
}

// handleEvent dispatches an inbound client event.
func (s *Server) handleEvent(userID string, env channel.Envelope) error {
	switch env.Event {
	case channel.EventGetMessages:
		return s.handleGetMessages(userID, env.Payload)
	case channel.EventSendMessage:
		return s.handleSendMessage(userID, env.Payload)
	case channel.EventGetPosts:
		return s.hub.SendToUser(userID, channel.EventPostsResponse, s.state.Posts())
	case channel.EventCreatePost:
		return s.handleCreatePost(env.Payload)
	case channel.EventLikePost:
		return s.handleLike(env.Payload, true)
	case channel.EventUnlikePost:
		return s.handleLike(env.Payload, false)
	case channel.EventCommentPost:
		return s.handleComment(env.Payload)
	case channel.EventGetProfile:
		return s.handleGetProfile(userID, env.Payload)
	case channel.EventUpdateProfile:
		return s.handleUpdateProfile(env.Payload)
	case channel.EventAcceptFriend:
		return s.handleFriendChange(env.Payload, "accept")
	case channel.EventRejectFriend:
		return s.handleFriendChange(env.Payload, "reject")
	case channel.EventUnfriendUser:
		return s.handleFriendChange(env.Payload, "unfriend")
	default:
		return fmt.Errorf("unknown event %q", env.Event)
	}
}

func (s *Server) handleGetMessages(userID string, payload json.RawMessage) error {
	var req channel.MessagesRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return fmt.Errorf("failed to parse request: %w", err)
	}
	return s.hub.SendToUser(userID, channel.EventMessagesResponse, s.state.Conversation(req.Sender, req.Receiver))
}

func (s *Server) handleSendMessage(userID string, payload json.RawMessage) error {
	var msg models.ChatMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return fmt.Errorf("failed to parse message: %w", err)
	}
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().UnixMilli()
	}
	s.state.SaveMessage(msg)

	// Echo to the sender, relay to the receiver if connected
	if err := s.hub.SendToUser(userID, channel.EventMessageResponse, msg); err != nil {
		return err
	}
	if receiver, ok := s.state.UserByEmail(msg.Receiver); ok {
		if err := s.hub.SendToUser(receiver.ID, channel.EventMessageResponse, msg); err != nil {
			log.Debug().Str("receiver", msg.Receiver).Msg("Receiver offline, message stored only")
		}
	}
	return nil
}

func (s *Server) handleCreatePost(payload json.RawMessage) error {
	var post models.Post
	if err := json.Unmarshal(payload, &post); err != nil {
		return fmt.Errorf("failed to parse post: %w", err)
	}
	if post.ID == "" {
		post.ID = uuid.New().String()
	}
	if post.Timestamp == 0 {
		post.Timestamp = time.Now().UnixMilli()
	}
	s.state.SavePost(post)
	s.hub.Broadcast(channel.EventPostCreated, post)
	return nil
}

func (s *Server) handleLike(payload json.RawMessage, like bool) error {
	var req channel.LikeRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return fmt.Errorf("failed to parse like: %w", err)
	}
	if like {
		if !s.state.LikePost(req.PostID, req.UserID) {
			return fmt.Errorf("post %s not found", req.PostID)
		}
		s.hub.Broadcast(channel.EventLikeUpdate, req)
		return nil
	}
	if !s.state.UnlikePost(req.PostID, req.UserID) {
		return fmt.Errorf("post %s not found", req.PostID)
	}
	s.hub.Broadcast(channel.EventUnlikeUpdate, req)
	return nil
}

func (s *Server) handleComment(payload json.RawMessage) error {
	var req channel.CommentRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return fmt.Errorf("failed to parse comment: %w", err)
	}
	user, ok := s.state.ResolveUser(req.UserID)
	if !ok {
		return fmt.Errorf("user %s not found", req.UserID)
	}
	comment := models.Comment{
		User:      models.User{ID: user.ID, Email: user.Email, DisplayName: user.DisplayName, PhotoURL: user.PhotoURL},
		Text:      req.Text,
		Timestamp: time.Now().UnixMilli(),
	}
	if !s.state.CommentPost(req.PostID, comment) {
		return fmt.Errorf("post %s not found", req.PostID)
	}
	s.hub.Broadcast(channel.EventCommentUpdate, channel.CommentUpdate{PostID: req.PostID, Comment: comment})
	return nil
}

func (s *Server) handleGetProfile(userID string, payload json.RawMessage) error {
	var profileID string
	if err := json.Unmarshal(payload, &profileID); err != nil {
		return fmt.Errorf("failed to parse profile id: %w", err)
	}
	user, ok := s.state.ResolveUser(profileID)
	if !ok {
		return fmt.Errorf("user %s not found", profileID)
	}
	return s.hub.SendToUser(userID, channel.EventProfileResponse, user)
}

func (s *Server) handleUpdateProfile(payload json.RawMessage) error {
	var req channel.ProfileUpdate
	if err := json.Unmarshal(payload, &req); err != nil {
		return fmt.Errorf("failed to parse profile update: %w", err)
	}
	ok := s.state.UpdateProfile(req.ID, map[string]string{
		"displayName": req.DisplayName,
		"email":       req.Email,
		"phoneNumber": req.PhoneNumber,
		"dob":         req.DOB,
		"address":     req.Address,
		"photoURL":    req.PhotoURL,
		"cover":       req.Cover,
	})
	if !ok {
		return fmt.Errorf("user %s not found", req.ID)
	}
	user, _ := s.state.ResolveUser(req.ID)
	s.hub.Broadcast(channel.EventProfileUpdated, user)
	return nil
}

func (s *Server) handleFriendChange(payload json.RawMessage, action string) error {
	var req channel.FriendRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return fmt.Errorf("failed to parse friend request: %w", err)
	}

	switch action {
	case "accept":
		if !s.state.AcceptFriend(req.Receiver, req.Sender) {
			return fmt.Errorf("no pending request from %s", req.Sender)
		}
	case "reject":
		if !s.state.RejectFriend(req.Receiver, req.Sender) {
			return fmt.Errorf("no pending request from %s", req.Sender)
		}
	case "unfriend":
		s.state.Unfriend(req.Receiver, req.Sender)
	}

	// Push the refreshed records to both sides
	for _, id := range []string{req.Receiver, req.Sender} {
		if user, ok := s.state.ResolveUser(id); ok {
			if err := s.hub.SendToUser(id, channel.EventUserUpdate, user); err != nil {
				log.Debug().Str("user_id", id).Msg("User offline, record push skipped")
			}
		}
	}
	return nil
}

func (s *Server) sendError(userID, message string) {
	if err := s.hub.SendToUser(userID, channel.EventError, channel.ErrorPayload{Message: message}); err != nil {
		log.Debug().Err(err).Str("user_id", userID).Msg("Failed to report error")
	}
}

func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
