// Package chat keeps the message list for the active conversation live. One
// conversation is open at a time: opening a new one cancels the previous
// consumer before subscribing again, so contact switches never leak
// listeners.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"juridico/api/internal/store"
	"juridico/api/internal/util"
)

// ErrContactNotRegistered is returned when the selected contact exists only
// in the local clients/lawyers collections and has no account in the hosted
// backend. Such contacts are display-only; sending must fail loudly.
var ErrContactNotRegistered = errors.New("contact is not a registered account")

// Message is a chat message with the sender's display metadata resolved.
type Message struct {
	ID           string    `json:"id"`
	SenderID     string    `json:"senderId"`
	ReceiverID   string    `json:"receiverId"`
	Content      string    `json:"content"`
	SenderName   string    `json:"senderName"`
	SenderAvatar string    `json:"senderAvatar,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// MessageStore is the hosted-backend message table.
type MessageStore interface {
	ListConversation(ctx context.Context, a, b string) ([]store.Message, error)
	InsertMessage(ctx context.Context, message store.Message) error
}

// ProfileResolver looks up registered accounts for sender display metadata
// and for the send-side registration check.
type ProfileResolver interface {
	GetProfile(ctx context.Context, id string) (store.Profile, error)
}

// Bridge maintains the message list for exactly one active conversation.
type Bridge struct {
	messages MessageStore
	profiles ProfileResolver
	stream   *Stream

	mu       sync.Mutex
	epoch    uint64
	cancel   context.CancelFunc
	me       string
	contact  string
	list     []Message
	resolved map[string]store.Profile
}

func NewBridge(messages MessageStore, profiles ProfileResolver, stream *Stream) *Bridge {
	return &Bridge{messages: messages, profiles: profiles, stream: stream}
}

// Open switches the bridge to the (me, contact) conversation: it tears down
// any previous subscription, fetches the full history oldest-first, and opens
// a new subscription filtered to that unordered pair. The returned slice is
// the history at the moment of opening.
func (b *Bridge) Open(ctx context.Context, me, contact string) ([]Message, error) {
	b.mu.Lock()
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
	b.epoch++
	epoch := b.epoch
	b.me = me
	b.contact = contact
	b.list = nil
	b.resolved = make(map[string]store.Profile)
	b.mu.Unlock()

	history, err := b.messages.ListConversation(ctx, me, contact)
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}

	resolvedHistory := make([]Message, 0, len(history))
	for _, row := range history {
		resolvedHistory = append(resolvedHistory, b.resolve(ctx, row))
	}

	consumerCtx, cancel := context.WithCancel(context.Background())
	sub := b.stream.Subscribe(consumerCtx)

	b.mu.Lock()
	if b.epoch != epoch {
		// A newer Open superseded this one while the history was loading.
		// Its subscription and list must stay in place.
		b.mu.Unlock()
		cancel()
		sub.Close()
		return resolvedHistory, nil
	}
	b.cancel = cancel
	b.list = append([]Message(nil), resolvedHistory...)
	b.mu.Unlock()

	go b.consume(consumerCtx, sub, me, contact)

	return resolvedHistory, nil
}

// consume appends matching insert events to the list until the conversation
// is switched or the bridge is closed.
func (b *Bridge) consume(ctx context.Context, sub *redis.PubSub, me, contact string) {
	defer sub.Close()
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-ch:
			if !ok {
				return
			}
			event, row, err := decodeEvent(raw.Payload)
			if err != nil {
				log.Printf("chat: %v", err)
				continue
			}
			if !pairMatches(event, me, contact) {
				continue
			}
			b.append(me, contact, b.resolve(ctx, row))
		}
	}
}

// Messages returns the current in-memory list in arrival order.
func (b *Bridge) Messages() []Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Message(nil), b.list...)
}

// Send inserts a message for the open conversation and publishes the insert
// event. Sending to a contact without a registered account is rejected before
// anything is written.
func (b *Bridge) Send(ctx context.Context, content string) (Message, error) {
	b.mu.Lock()
	me, contact := b.me, b.contact
	b.mu.Unlock()
	if me == "" || contact == "" {
		return Message{}, fmt.Errorf("no open conversation")
	}

	if _, err := b.profiles.GetProfile(ctx, contact); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Message{}, ErrContactNotRegistered
		}
		return Message{}, fmt.Errorf("check contact registration: %w", err)
	}

	row := store.Message{
		ID:         util.NewID("msg"),
		SenderID:   me,
		ReceiverID: contact,
		Content:    content,
		CreatedAt:  time.Now().UTC(),
	}
	if err := b.messages.InsertMessage(ctx, row); err != nil {
		return Message{}, fmt.Errorf("insert message: %w", err)
	}
	if err := b.stream.PublishInsert(ctx, row); err != nil {
		// The row is durable; only the live notification was lost.
		log.Printf("chat: publish insert failed: %v", err)
	}
	return b.resolve(ctx, row), nil
}

// Close tears down the active subscription, if any.
func (b *Bridge) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
}

// resolve attaches the sender's display profile to a message row. Lookups are
// cached per conversation; a failed lookup degrades to the bare id.
func (b *Bridge) resolve(ctx context.Context, row store.Message) Message {
	message := Message{
		ID:         row.ID,
		SenderID:   row.SenderID,
		ReceiverID: row.ReceiverID,
		Content:    row.Content,
		CreatedAt:  row.CreatedAt,
	}

	b.mu.Lock()
	profile, ok := b.resolved[row.SenderID]
	b.mu.Unlock()
	if !ok {
		loaded, err := b.profiles.GetProfile(ctx, row.SenderID)
		if err != nil {
			log.Printf("chat: resolve sender %s: %v", row.SenderID, err)
			message.SenderName = row.SenderID
			return message
		}
		profile = loaded
		b.mu.Lock()
		b.resolved[row.SenderID] = profile
		b.mu.Unlock()
	}
	message.SenderName = profile.DisplayName
	message.SenderAvatar = profile.AvatarURL
	return message
}

// append adds an event's message to the list if the bridge is still on the
// same conversation.
func (b *Bridge) append(me, contact string, message Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.me != me || b.contact != contact {
		return
	}
	b.list = append(b.list, message)
}

func pairMatches(event insertEvent, me, contact string) bool {
	return (event.SenderID == me && event.ReceiverID == contact) ||
		(event.SenderID == contact && event.ReceiverID == me)
}

func decodeEvent(payload string) (insertEvent, store.Message, error) {
	var event insertEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return insertEvent{}, store.Message{}, fmt.Errorf("decode insert event: %w", err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, event.CreatedAt)
	if err != nil {
		createdAt = time.Now().UTC()
	}
	return event, store.Message{
		ID:         event.ID,
		SenderID:   event.SenderID,
		ReceiverID: event.ReceiverID,
		Content:    event.Content,
		CreatedAt:  createdAt,
	}, nil
}
