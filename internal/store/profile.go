package store

import (
	"sync"

	"social-network-client/internal/models"
)

// ProfilePatch carries the fields of a profile update. Empty fields are
// left unchanged by the merge.
type ProfilePatch struct {
	DisplayName string
	Email       string
	PhoneNumber string
	DOB         string
	Address     string
	PhotoURL    string
	Cover       string
}

// ProfileSlice holds the profile record currently open in the profile
// screen, which may belong to the signed-in user or to someone else.
type ProfileSlice struct {
	mu   sync.RWMutex
	data models.User
	set  bool
}

func (s *ProfileSlice) commit(f func(models.User) models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = f(s.data)
	s.set = true
}

// Set replaces the viewed profile record.
func (s *ProfileSlice) Set(user models.User) {
	s.commit(func(models.User) models.User { return user })
}

// Update shallow-merges a patch into the viewed profile.
func (s *ProfileSlice) Update(patch ProfilePatch) {
	s.commit(func(prev models.User) models.User {
		return ApplyProfileUpdate(prev, patch)
	})
}

// Data returns the viewed profile and whether one has been loaded.
func (s *ProfileSlice) Data() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data, s.set
}

// ApplyProfileUpdate shallow-merges the patch into the user record.
// Only set fields overwrite; the input record is not mutated.
func ApplyProfileUpdate(user models.User, patch ProfilePatch) models.User {
	out := user
	if patch.DisplayName != "" {
		out.DisplayName = patch.DisplayName
	}
	if patch.Email != "" {
		out.Email = patch.Email
	}
	if patch.PhoneNumber != "" {
		out.PhoneNumber = patch.PhoneNumber
	}
	if patch.DOB != "" {
		out.DOB = patch.DOB
	}
	if patch.Address != "" {
		out.Address = patch.Address
	}
	if patch.PhotoURL != "" {
		out.PhotoURL = patch.PhotoURL
	}
	if patch.Cover != "" {
		out.Cover = patch.Cover
	}
	return out
}
