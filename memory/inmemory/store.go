package inmemory

import (
	"context"
	"sync"
	"time"

	"github.com/wellnesskit/wellness-agents/memory"
)

// Store implements memory.ConversationStore with a mutex-guarded map.
// When the tracked-user cap is reached, the least recently created user's
// history is evicted to make room.
type Store struct {
	mu          sync.RWMutex
	data        map[string][]memory.Message
	order       []string // userIDs in creation order, oldest first
	maxMessages int
	maxUsers    int
}

// Option configures a Store
type Option func(*Store)

// WithMaxMessages caps per-user history length
func WithMaxMessages(n int) Option {
	return func(s *Store) { s.maxMessages = n }
}

// WithMaxUsers caps the number of tracked users
func WithMaxUsers(n int) Option {
	return func(s *Store) { s.maxUsers = n }
}

// NewStore creates a new in-memory conversation store
func NewStore(opts ...Option) *Store {
	s := &Store{
		data:        make(map[string][]memory.Message),
		maxMessages: memory.DefaultMaxMessages,
		maxUsers:    100,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AppendMessage implements memory.ConversationStore
func (s *Store) AppendMessage(ctx context.Context, userID, role, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[userID]; !exists {
		if s.maxUsers > 0 && len(s.order) >= s.maxUsers {
			oldest := s.order[0]
			s.order = s.order[1:]
			delete(s.data, oldest)
		}
		s.order = append(s.order, userID)
	}

	msgs := append(s.data[userID], memory.Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now().Unix(),
	})
	if s.maxMessages > 0 && len(msgs) > s.maxMessages {
		msgs = msgs[len(msgs)-s.maxMessages:]
	}
	s.data[userID] = msgs

	return nil
}

// GetMessages implements memory.ConversationStore
func (s *Store) GetMessages(ctx context.Context, userID string) ([]memory.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.data[userID]
	out := make([]memory.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

// ClearUser implements memory.ConversationStore
func (s *Store) ClearUser(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[userID]; !exists {
		return nil
	}
	delete(s.data, userID)
	for i, id := range s.order {
		if id == userID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

var _ memory.ConversationStore = (*Store)(nil)
