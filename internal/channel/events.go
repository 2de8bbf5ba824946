package channel

import (
	"encoding/json"

	"social-network-client/internal/models"
)

// Event names - client → server
const (
	EventGetMessages   = "get-messages-request"
	EventSendMessage   = "send-message-request"
	EventGetPosts      = "get-posts-request"
	EventCreatePost    = "create-post"
	EventLikePost      = "like-post"
	EventUnlikePost    = "unlike-post"
	EventCommentPost   = "comment-post"
	EventGetProfile    = "get-profile-request"
	EventUpdateProfile = "update-profile"
	EventAcceptFriend  = "accept-friend-request"
	EventRejectFriend  = "reject-friend-request"
	EventUnfriendUser  = "unfriend-user"
)

// Event names - server → client
const (
	EventMessagesResponse = "get-messages-response"
	EventMessageResponse  = "send-message-response"
	EventPostsResponse    = "get-posts-response"
	EventPostCreated      = "create-post-response"
	EventLikeUpdate       = "like-post-response"
	EventUnlikeUpdate     = "unlike-post-response"
	EventCommentUpdate    = "comment-post-response"
	EventProfileResponse  = "get-profile-response"
	EventProfileUpdated   = "update-profile-response"
	EventUserUpdate       = "user-update"
	EventError            = "error"
)

// Envelope is the wire frame for every channel event
type Envelope struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MessagesRequest asks the server to push the history of a conversation
type MessagesRequest struct {
	Sender   string `json:"sender"`
	Receiver string `json:"receiver"`
}

// LikeRequest toggles a like; the same shape is broadcast back as the
// like-post-response / unlike-post-response confirmation
type LikeRequest struct {
	PostID string `json:"post_id"`
	UserID string `json:"user_id"`
}

// CommentRequest appends a comment to a post
type CommentRequest struct {
	PostID string `json:"post_id"`
	UserID string `json:"user_id"`
	Text   string `json:"text"`
}

// CommentUpdate is the broadcast confirmation of an appended comment
type CommentUpdate struct {
	PostID  string         `json:"post_id"`
	Comment models.Comment `json:"comment"`
}

// FriendRequest identifies both sides of a relationship change
type FriendRequest struct {
	Receiver string `json:"receiver"`
	Sender   string `json:"sender"`
}

// ProfileUpdate carries the full editable profile record
type ProfileUpdate struct {
	ID          string `json:"_id"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	DOB         string `json:"dob"`
	Address     string `json:"address"`
	PhotoURL    string `json:"photoURL,omitempty"`
	Cover       string `json:"cover,omitempty"`
}

// ErrorPayload is the server's error report
type ErrorPayload struct {
	Message string `json:"message"`
}
