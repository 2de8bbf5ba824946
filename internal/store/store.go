// Package store holds the client-side state. State lives in four
// independent slices (auth, chat, feed, profile); every transition goes
// through a pure reducer applied under the slice's single commit entry
// point, so state is always a total function of (previous state, event).
package store

// Result tags the outcome of a targeted reducer: either the target was
// found and the transition applied, or the reducer degraded to a no-op.
type Result int

const (
	Applied Result = iota
	NotFound
)

func (r Result) String() string {
	if r == Applied {
		return "applied"
	}
	return "not found"
}

// Store aggregates the four state slices of a session.
type Store struct {
	Auth    *AuthSlice
	Chat    *ChatSlice
	Feed    *FeedSlice
	Profile *ProfileSlice
}

// New creates an empty store.
func New() *Store {
	return &Store{
		Auth:    &AuthSlice{},
		Chat:    &ChatSlice{},
		Feed:    &FeedSlice{},
		Profile: &ProfileSlice{},
	}
}
