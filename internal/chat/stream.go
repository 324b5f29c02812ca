package chat

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"juridico/api/internal/store"
)

// insertChannel carries one event per inserted message row. Consumers filter
// by conversation pair themselves.
const insertChannel = "juridico:messages:inserted"

// insertEvent is the wire form of a message INSERT notification.
type insertEvent struct {
	ID         string `json:"id"`
	SenderID   string `json:"sender_id"`
	ReceiverID string `json:"receiver_id"`
	Content    string `json:"content"`
	CreatedAt  string `json:"created_at"`
}

// Stream is the realtime change-notification channel for message inserts,
// backed by Redis pub/sub.
type Stream struct {
	client *redis.Client
}

func NewStream(client *redis.Client) *Stream {
	return &Stream{client: client}
}

// PublishInsert announces a newly inserted message row.
func (s *Stream) PublishInsert(ctx context.Context, message store.Message) error {
	payload, err := json.Marshal(insertEvent{
		ID:         message.ID,
		SenderID:   message.SenderID,
		ReceiverID: message.ReceiverID,
		Content:    message.Content,
		CreatedAt:  message.CreatedAt.UTC().Format("2006-01-02T15:04:05.999999999Z07:00"),
	})
	if err != nil {
		return fmt.Errorf("encode insert event: %w", err)
	}
	if err := s.client.Publish(ctx, insertChannel, payload).Err(); err != nil {
		return fmt.Errorf("publish insert event: %w", err)
	}
	return nil
}

// Subscribe opens a subscription to message insert events. The caller owns
// the returned PubSub and must close it.
func (s *Stream) Subscribe(ctx context.Context) *redis.PubSub {
	return s.client.Subscribe(ctx, insertChannel)
}
