package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	rds "github.com/redis/go-redis/v9"

	"github.com/wellnesskit/wellness-agents/memory"
)

// Store implements memory.ConversationStore on a Redis list per user, so
// memory survives process restarts and can be shared across replicas.
type Store struct {
	client      *rds.Client
	prefix      string
	ttl         time.Duration
	maxMessages int
}

// NewStore creates a Redis-backed conversation store. A zero ttl disables
// expiry; a zero maxMessages uses memory.DefaultMaxMessages.
func NewStore(client *rds.Client, prefix string, ttl time.Duration, maxMessages int) *Store {
	if maxMessages <= 0 {
		maxMessages = memory.DefaultMaxMessages
	}
	return &Store{client: client, prefix: prefix, ttl: ttl, maxMessages: maxMessages}
}

func (s *Store) convKey(userID string) string {
	p := s.prefix
	if p != "" {
		p += ":"
	}
	return fmt.Sprintf("%sconversation:%s", p, userID)
}

// AppendMessage implements memory.ConversationStore
func (s *Store) AppendMessage(ctx context.Context, userID, role, content string) error {
	key := s.convKey(userID)
	msg := memory.Message{Role: role, Content: content, Timestamp: time.Now().Unix()}
	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if err := s.client.RPush(ctx, key, b).Err(); err != nil {
		return err
	}
	// Keep only the newest maxMessages entries
	if err := s.client.LTrim(ctx, key, int64(-s.maxMessages), -1).Err(); err != nil {
		return err
	}
	if s.ttl > 0 {
		_ = s.client.Expire(ctx, key, s.ttl).Err()
	}
	return nil
}

// GetMessages implements memory.ConversationStore
func (s *Store) GetMessages(ctx context.Context, userID string) ([]memory.Message, error) {
	key := s.convKey(userID)
	vals, err := s.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		if errors.Is(err, rds.Nil) {
			return []memory.Message{}, nil
		}
		return nil, err
	}
	msgs := make([]memory.Message, 0, len(vals))
	for _, v := range vals {
		var m memory.Message
		if err := json.Unmarshal([]byte(v), &m); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

// ClearUser implements memory.ConversationStore
func (s *Store) ClearUser(ctx context.Context, userID string) error {
	return s.client.Del(ctx, s.convKey(userID)).Err()
}

var _ memory.ConversationStore = (*Store)(nil)
