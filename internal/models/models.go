package models

// Message and post content types
const (
	TypeText  = "text"
	TypeImage = "image"
	TypeVideo = "video"
)

// User represents an account record. Friends and Requests carry the
// server-resolved records of the referenced users; ID is the reference key.
type User struct {
	ID          string `json:"_id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoURL,omitempty"`
	Cover       string `json:"cover,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	DOB         string `json:"dob,omitempty"`
	Address     string `json:"address,omitempty"`
	Friends     []User `json:"friends,omitempty"`
	Requests    []User `json:"requests,omitempty"`
}

// ChatMessage represents a single direct message between two users.
// Timestamp is unix milliseconds.
type ChatMessage struct {
	ID        string `json:"_id"`
	Sender    string `json:"sender"`
	Receiver  string `json:"receiver"`
	Message   string `json:"message"`
	Type      string `json:"type"`
	Media     string `json:"media,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// Post represents a public feed post. Likes holds user ids and is a set.
type Post struct {
	ID        string    `json:"_id"`
	Owner     User      `json:"owner"`
	Type      string    `json:"type"`
	Content   string    `json:"content"`
	Text      string    `json:"text,omitempty"`
	Likes     []string  `json:"likes"`
	Comments  []Comment `json:"comments"`
	Timestamp int64     `json:"timestamp"`
}

// Comment represents a single comment on a post.
type Comment struct {
	User      User   `json:"user"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}

// ProfileDraft holds the editable profile fields while a profile form is
// open. It is committed to the user record only on an explicit save.
type ProfileDraft struct {
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	DOB         string `json:"dob"`
	Address     string `json:"address"`
}
