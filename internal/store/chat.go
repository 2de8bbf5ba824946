package store

import (
	"sync"

	"social-network-client/internal/models"
)

// ChatSlice holds every chat message delivered during the session,
// across all conversations. Order is not authoritative; consumers sort
// by timestamp at render time.
type ChatSlice struct {
	mu       sync.RWMutex
	messages []models.ChatMessage
}

func (s *ChatSlice) commit(f func([]models.ChatMessage) []models.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = f(s.messages)
}

// Add records a single message, deduplicated by id. Used both for the
// optimistic local add and for server pushes.
func (s *ChatSlice) Add(msg models.ChatMessage) {
	s.commit(func(prev []models.ChatMessage) []models.ChatMessage {
		return ApplyIncomingMessages(prev, []models.ChatMessage{msg})
	})
}

// ApplyIncoming merges a batch of server-delivered messages into the
// slice, deduplicated by id.
func (s *ChatSlice) ApplyIncoming(incoming []models.ChatMessage) {
	s.commit(func(prev []models.ChatMessage) []models.ChatMessage {
		return ApplyIncomingMessages(prev, incoming)
	})
}

// Messages returns a snapshot of the slice.
func (s *ChatSlice) Messages() []models.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

// ApplyIncomingMessages unions incoming into existing by message id,
// keeping exactly one copy per id. On an id collision the incoming copy
// wins, so a server echo carrying resolved fields replaces the
// optimistic local entry. The input slices are not mutated.
func ApplyIncomingMessages(existing, incoming []models.ChatMessage) []models.ChatMessage {
	out := make([]models.ChatMessage, len(existing))
	copy(out, existing)

	index := make(map[string]int, len(out))
	for i, msg := range out {
		index[msg.ID] = i
	}

	for _, msg := range incoming {
		if i, ok := index[msg.ID]; ok {
			out[i] = msg
			continue
		}
		index[msg.ID] = len(out)
		out = append(out, msg)
	}
	return out
}
