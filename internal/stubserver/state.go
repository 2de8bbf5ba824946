package stubserver

import (
	"sync"

	"social-network-client/internal/models"
)

// State is the in-memory world of the stub backend: user records, the
// friendship graph as id reference lists, the message log and the post
// feed. Friends and requests are resolved to records on the way out.
type State struct {
	mu       sync.RWMutex
	users    map[string]models.User // base records, no friends/requests
	friends  map[string][]string
	requests map[string][]string
	messages []models.ChatMessage
	posts    []models.Post
	files    map[string][]byte
}

// NewState creates an empty state.
func NewState() *State {
	return &State{
		users:    make(map[string]models.User),
		friends:  make(map[string][]string),
		requests: make(map[string][]string),
		files:    make(map[string][]byte),
	}
}

// AddUser registers a user record.
func (s *State) AddUser(user models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user.Friends = nil
	user.Requests = nil
	s.users[user.ID] = user
}

// SetFriends replaces a user's friends list.
func (s *State) SetFriends(userID string, friendIDs ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.friends[userID] = append([]string(nil), friendIDs...)
}

// SetRequests replaces a user's pending requests list.
func (s *State) SetRequests(userID string, senderIDs ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests[userID] = append([]string(nil), senderIDs...)
}

// ResolveUser returns the user record with friends and requests resolved
// to their base records.
func (s *State) ResolveUser(userID string) (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resolveLocked(userID)
}

func (s *State) resolveLocked(userID string) (models.User, bool) {
	user, ok := s.users[userID]
	if !ok {
		return models.User{}, false
	}
	for _, id := range s.friends[userID] {
		if friend, ok := s.users[id]; ok {
			user.Friends = append(user.Friends, friend)
		}
	}
	for _, id := range s.requests[userID] {
		if sender, ok := s.users[id]; ok {
			user.Requests = append(user.Requests, sender)
		}
	}
	return user, true
}

// UserByEmail looks a user record up by email.
func (s *State) UserByEmail(email string) (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.Email == email {
			return user, true
		}
	}
	return models.User{}, false
}

// SaveMessage stores a message, deduplicated by id.
func (s *State) SaveMessage(msg models.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.messages {
		if existing.ID == msg.ID {
			s.messages[i] = msg
			return
		}
	}
	s.messages = append(s.messages, msg)
}

// Conversation returns all messages exchanged between the two emails.
func (s *State) Conversation(a, b string) []models.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.ChatMessage
	for _, msg := range s.messages {
		if (msg.Sender == a && msg.Receiver == b) || (msg.Sender == b && msg.Receiver == a) {
			out = append(out, msg)
		}
	}
	return out
}

// SavePost stores a post, deduplicated by id.
func (s *State) SavePost(post models.Post) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if post.Likes == nil {
		post.Likes = []string{}
	}
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}
	for i, existing := range s.posts {
		if existing.ID == post.ID {
			s.posts[i] = post
			return
		}
	}
	s.posts = append(s.posts, post)
}

// Posts returns a snapshot of the feed.
func (s *State) Posts() []models.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Post, len(s.posts))
	copy(out, s.posts)
	return out
}

// LikePost adds userID to the post's like set. Reports whether the post
// exists.
func (s *State) LikePost(postID, userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, post := range s.posts {
		if post.ID != postID {
			continue
		}
		for _, id := range post.Likes {
			if id == userID {
				return true
			}
		}
		s.posts[i].Likes = append(post.Likes, userID)
		return true
	}
	return false
}

// UnlikePost removes userID from the post's like set.
func (s *State) UnlikePost(postID, userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, post := range s.posts {
		if post.ID != postID {
			continue
		}
		likes := post.Likes[:0]
		for _, id := range post.Likes {
			if id != userID {
				likes = append(likes, id)
			}
		}
		s.posts[i].Likes = likes
		return true
	}
	return false
}

// CommentPost appends a comment to the post.
func (s *State) CommentPost(postID string, comment models.Comment) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, post := range s.posts {
		if post.ID == postID {
			s.posts[i].Comments = append(post.Comments, comment)
			return true
		}
	}
	return false
}

// UpdateProfile merges the non-empty fields into the user record.
func (s *State) UpdateProfile(userID string, fields map[string]string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return false
	}
	for field, value := range fields {
		if value == "" {
			continue
		}
		switch field {
		case "displayName":
			user.DisplayName = value
		case "email":
			user.Email = value
		case "phoneNumber":
			user.PhoneNumber = value
		case "dob":
			user.DOB = value
		case "address":
			user.Address = value
		case "photoURL":
			user.PhotoURL = value
		case "cover":
			user.Cover = value
		}
	}
	s.users[userID] = user
	return true
}

// AcceptFriend moves senderID from receiver's requests to friends, both
// directions.
func (s *State) AcceptFriend(receiverID, senderID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.removeRequestLocked(receiverID, senderID) {
		return false
	}
	s.friends[receiverID] = appendUnique(s.friends[receiverID], senderID)
	s.friends[senderID] = appendUnique(s.friends[senderID], receiverID)
	return true
}

// RejectFriend removes senderID from receiver's requests.
func (s *State) RejectFriend(receiverID, senderID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeRequestLocked(receiverID, senderID)
}

// Unfriend removes the relationship in both directions.
func (s *State) Unfriend(userID, friendID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.friends[userID] = remove(s.friends[userID], friendID)
	s.friends[friendID] = remove(s.friends[friendID], userID)
}

func (s *State) removeRequestLocked(receiverID, senderID string) bool {
	reqs := s.requests[receiverID]
	next := remove(reqs, senderID)
	if len(next) == len(reqs) {
		return false
	}
	s.requests[receiverID] = next
	return true
}

// SaveFile stores uploaded file bytes under a name.
func (s *State) SaveFile(name string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[name] = data
}

// File returns stored file bytes.
func (s *State) File(name string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.files[name]
	return data, ok
}

func appendUnique(ids []string, id string) []string {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}

func remove(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, existing := range ids {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}
