package store

import (
	"sync"

	"social-network-client/internal/models"
)

// AuthSlice holds the signed-in user's record, including the friends and
// requests reference lists.
type AuthSlice struct {
	mu   sync.RWMutex
	user models.User
	set  bool
}

func (s *AuthSlice) commit(f func(models.User) models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = f(s.user)
	s.set = true
}

// SetUser replaces the signed-in user record, as delivered on login or
// by a server-side user-update push.
func (s *AuthSlice) SetUser(user models.User) {
	s.commit(func(models.User) models.User { return user })
}

// User returns the signed-in user record and whether one has been set.
func (s *AuthSlice) User() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user, s.set
}

// AcceptFriend moves the sender from the user's requests to friends.
func (s *AuthSlice) AcceptFriend(senderID, receiverID string) Result {
	var res Result
	s.commit(func(prev models.User) models.User {
		var next models.User
		next, res = ApplyFriendAccept(prev, senderID, receiverID)
		return next
	})
	return res
}

// RejectFriend removes the sender from the user's requests.
func (s *AuthSlice) RejectFriend(senderID string) Result {
	var res Result
	s.commit(func(prev models.User) models.User {
		var next models.User
		next, res = ApplyFriendReject(prev, senderID)
		return next
	})
	return res
}

// Unfriend removes the friend from the user's friends list.
func (s *AuthSlice) Unfriend(friendID string) Result {
	var res Result
	s.commit(func(prev models.User) models.User {
		var next models.User
		next, res = ApplyUnfriend(prev, friendID)
		return next
	})
	return res
}

// Update shallow-merges a profile patch into the user record.
func (s *AuthSlice) Update(patch ProfilePatch) {
	s.commit(func(prev models.User) models.User {
		return ApplyProfileUpdate(prev, patch)
	})
}

// ApplyFriendAccept moves senderID from the receiver's requests list to
// the friends list. The receiver must be the record being reduced; a
// mismatched receiver or a sender not present in requests is a no-op
// reported as NotFound. Re-applying never duplicates the friend entry.
func ApplyFriendAccept(user models.User, senderID, receiverID string) (models.User, Result) {
	if user.ID != receiverID {
		return user, NotFound
	}

	idx := -1
	for i, req := range user.Requests {
		if req.ID == senderID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return user, NotFound
	}
	sender := user.Requests[idx]

	out := user
	out.Requests = make([]models.User, 0, len(user.Requests)-1)
	out.Requests = append(out.Requests, user.Requests[:idx]...)
	out.Requests = append(out.Requests, user.Requests[idx+1:]...)

	out.Friends = make([]models.User, len(user.Friends))
	copy(out.Friends, user.Friends)
	for _, f := range out.Friends {
		if f.ID == senderID {
			return out, Applied
		}
	}
	out.Friends = append(out.Friends, sender)
	return out, Applied
}

// ApplyFriendReject removes senderID from the requests list. An absent
// sender is a no-op reported as NotFound.
func ApplyFriendReject(user models.User, senderID string) (models.User, Result) {
	for i, req := range user.Requests {
		if req.ID != senderID {
			continue
		}
		out := user
		out.Requests = make([]models.User, 0, len(user.Requests)-1)
		out.Requests = append(out.Requests, user.Requests[:i]...)
		out.Requests = append(out.Requests, user.Requests[i+1:]...)
		return out, Applied
	}
	return user, NotFound
}

// ApplyUnfriend removes friendID from the friends list. An absent
// friend is a no-op reported as NotFound.
func ApplyUnfriend(user models.User, friendID string) (models.User, Result) {
	for i, f := range user.Friends {
		if f.ID != friendID {
			continue
		}
		out := user
		out.Friends = make([]models.User, 0, len(user.Friends)-1)
		out.Friends = append(out.Friends, user.Friends[:i]...)
		out.Friends = append(out.Friends, user.Friends[i+1:]...)
		return out, Applied
	}
	return user, NotFound
}
