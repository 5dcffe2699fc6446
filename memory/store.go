package memory

import (
	"context"
	"fmt"
	"strings"
)

// Default caps mirror the assistant's short-term memory policy: a bounded
// window per user, and a bounded number of tracked users.
const (
	DefaultMaxMessages = 20
	DefaultContextSize = 5
)

// Message represents a conversation message
type Message struct {
	Role      string            `json:"role"`
	Content   string            `json:"content"`
	Timestamp int64             `json:"timestamp"`
	Meta      map[string]string `json:"meta,omitempty"`
}

// ConversationStore manages per-user short-term conversation memory.
// Implementations cap history at their configured message limit, discarding
// the oldest messages first.
type ConversationStore interface {
	// AppendMessage adds a message to the user's conversation
	AppendMessage(ctx context.Context, userID, role, content string) error

	// GetMessages retrieves the user's conversation history, oldest first
	GetMessages(ctx context.Context, userID string) ([]Message, error)

	// ClearUser removes all messages for a user
	ClearUser(ctx context.Context, userID string) error
}

// Stats summarizes a user's stored conversation
type Stats struct {
	UserID       string   `json:"user_id"`
	MessageCount int      `json:"message_count"`
	LastMessage  *Message `json:"last_message,omitempty"`
}

// GetStats computes memory statistics for a user
func GetStats(ctx context.Context, store ConversationStore, userID string) (Stats, error) {
	msgs, err := store.GetMessages(ctx, userID)
	if err != nil {
		return Stats{}, err
	}
	stats := Stats{UserID: userID, MessageCount: len(msgs)}
	if len(msgs) > 0 {
		last := msgs[len(msgs)-1]
		stats.LastMessage = &last
	}
	return stats, nil
}

// FormatContext renders the most recent n messages as "role: content" lines,
// the shape the specialist agents expect as prior-conversation context.
func FormatContext(msgs []Message, n int) string {
	if n <= 0 {
		n = DefaultContextSize
	}
	if len(msgs) > n {
		msgs = msgs[len(msgs)-n:]
	}
	lines := make([]string, 0, len(msgs))
	for _, m := range msgs {
		lines = append(lines, fmt.Sprintf("%s: %s", m.Role, m.Content))
	}
	return strings.Join(lines, "\n")
}
