package chat

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"juridico/api/internal/store"
)

type fakeMessageStore struct {
	mu       sync.Mutex
	rows     []store.Message
	listHook func(a, b string)
}

func (f *fakeMessageStore) ListConversation(_ context.Context, a, b string) ([]store.Message, error) {
	if f.listHook != nil {
		f.listHook(a, b)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []store.Message
	for _, row := range f.rows {
		if (row.SenderID == a && row.ReceiverID == b) || (row.SenderID == b && row.ReceiverID == a) {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeMessageStore) InsertMessage(_ context.Context, message store.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, message)
	return nil
}

type fakeProfiles struct {
	profiles map[string]store.Profile
}

func (f *fakeProfiles) GetProfile(_ context.Context, id string) (store.Profile, error) {
	profile, ok := f.profiles[id]
	if !ok {
		return store.Profile{}, store.ErrNotFound
	}
	return profile, nil
}

func setupBridge(t *testing.T) (*Bridge, *fakeMessageStore, *Stream) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	messages := &fakeMessageStore{}
	profiles := &fakeProfiles{profiles: map[string]store.Profile{
		"prof-me":      {ID: "prof-me", DisplayName: "Dr. João Silva"},
		"prof-contact": {ID: "prof-contact", DisplayName: "Dra. Maria Santos"},
	}}
	stream := NewStream(client)
	bridge := NewBridge(messages, profiles, stream)
	t.Cleanup(bridge.Close)
	return bridge, messages, stream
}

func waitForMessages(t *testing.T, bridge *Bridge, want int) []Message {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		got := bridge.Messages()
		if len(got) >= want {
			return got
		}
		time.Sleep(5 * time.Millisecond)
	}
	got := bridge.Messages()
	t.Fatalf("timed out waiting for %d messages, have %d", want, len(got))
	return got
}

func TestOpenReturnsHistoryOldestFirst(t *testing.T) {
	bridge, messages, _ := setupBridge(t)
	base := time.Now().UTC().Add(-time.Hour)
	messages.rows = []store.Message{
		{ID: "m2", SenderID: "prof-contact", ReceiverID: "prof-me", Content: "segunda", CreatedAt: base.Add(time.Minute)},
		{ID: "m1", SenderID: "prof-me", ReceiverID: "prof-contact", Content: "primeira", CreatedAt: base},
		{ID: "x1", SenderID: "prof-me", ReceiverID: "prof-other", Content: "outra conversa", CreatedAt: base},
	}

	history, err := bridge.Open(context.Background(), "prof-me", "prof-contact")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 messages for the pair, got %d", len(history))
	}
	if history[0].ID != "m1" || history[1].ID != "m2" {
		t.Fatalf("expected ascending creation order, got %s then %s", history[0].ID, history[1].ID)
	}
	if history[0].SenderName != "Dr. João Silva" {
		t.Fatalf("expected resolved sender name, got %q", history[0].SenderName)
	}
}

func TestInsertEventsAppendInArrivalOrder(t *testing.T) {
	bridge, _, stream := setupBridge(t)
	ctx := context.Background()

	if _, err := bridge.Open(ctx, "prof-me", "prof-contact"); err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	now := time.Now().UTC()
	if err := stream.PublishInsert(ctx, store.Message{ID: "e1", SenderID: "prof-contact", ReceiverID: "prof-me", Content: "oi", CreatedAt: now}); err != nil {
		t.Fatalf("PublishInsert failed: %v", err)
	}
	if err := stream.PublishInsert(ctx, store.Message{ID: "e2", SenderID: "prof-me", ReceiverID: "prof-contact", Content: "olá", CreatedAt: now}); err != nil {
		t.Fatalf("PublishInsert failed: %v", err)
	}
	// An event for an unrelated pair must be filtered out.
	if err := stream.PublishInsert(ctx, store.Message{ID: "e3", SenderID: "prof-other", ReceiverID: "prof-me", Content: "ignorar", CreatedAt: now}); err != nil {
		t.Fatalf("PublishInsert failed: %v", err)
	}

	got := waitForMessages(t, bridge, 2)
	if got[0].ID != "e1" || got[1].ID != "e2" {
		t.Fatalf("expected arrival order e1,e2 got %s,%s", got[0].ID, got[1].ID)
	}
	time.Sleep(50 * time.Millisecond)
	for _, message := range bridge.Messages() {
		if message.ID == "e3" {
			t.Fatal("event for another conversation leaked into the list")
		}
	}
}

func TestSwitchingContactsTearsDownPreviousSubscription(t *testing.T) {
	bridge, _, stream := setupBridge(t)
	ctx := context.Background()

	if _, err := bridge.Open(ctx, "prof-me", "prof-contact"); err != nil {
		t.Fatalf("first Open failed: %v", err)
	}
	if _, err := bridge.Open(ctx, "prof-me", "prof-other"); err != nil {
		t.Fatalf("second Open failed: %v", err)
	}

	// Events for the previous conversation must no longer be consumed.
	if err := stream.PublishInsert(ctx, store.Message{ID: "old", SenderID: "prof-contact", ReceiverID: "prof-me", Content: "atrasada", CreatedAt: time.Now().UTC()}); err != nil {
		t.Fatalf("PublishInsert failed: %v", err)
	}
	time.Sleep(100 * time.Millisecond)
	if got := bridge.Messages(); len(got) != 0 {
		t.Fatalf("expected empty list for the new conversation, got %d messages", len(got))
	}
}

func TestSlowOpenDoesNotOverrideNewerConversation(t *testing.T) {
	bridge, messages, stream := setupBridge(t)
	ctx := context.Background()

	messages.rows = []store.Message{
		{ID: "a1", SenderID: "prof-contact", ReceiverID: "prof-me", Content: "oi de maria", CreatedAt: time.Now().UTC()},
	}

	started := make(chan struct{})
	release := make(chan struct{})
	messages.listHook = func(_, b string) {
		if b == "prof-contact" {
			close(started)
			<-release
		}
	}

	firstDone := make(chan struct{})
	go func() {
		defer close(firstDone)
		if _, err := bridge.Open(ctx, "prof-me", "prof-contact"); err != nil {
			t.Errorf("first Open failed: %v", err)
		}
	}()

	// While the first open is stuck loading history, switch to another contact.
	<-started
	if _, err := bridge.Open(ctx, "prof-me", "prof-other"); err != nil {
		t.Fatalf("second Open failed: %v", err)
	}
	close(release)
	<-firstDone

	for _, message := range bridge.Messages() {
		if message.ID == "a1" {
			t.Fatal("history of the superseded conversation leaked into the list")
		}
	}

	// The newer conversation's subscription must still be the live one.
	if err := stream.PublishInsert(ctx, store.Message{ID: "n1", SenderID: "prof-other", ReceiverID: "prof-me", Content: "nova", CreatedAt: time.Now().UTC()}); err != nil {
		t.Fatalf("PublishInsert failed: %v", err)
	}
	got := waitForMessages(t, bridge, 1)
	if got[0].ID != "n1" {
		t.Fatalf("expected the new conversation's event, got %+v", got[0])
	}
}

func TestSendToUnregisteredContactIsRejected(t *testing.T) {
	bridge, messages, _ := setupBridge(t)
	ctx := context.Background()

	// prof-ghost only exists in the local collections, not as an account.
	if _, err := bridge.Open(ctx, "prof-me", "prof-ghost"); err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	_, err := bridge.Send(ctx, "olá?")
	if !errors.Is(err, ErrContactNotRegistered) {
		t.Fatalf("expected ErrContactNotRegistered, got %v", err)
	}
	if len(messages.rows) != 0 {
		t.Fatal("expected nothing to be written for a rejected send")
	}
	if len(bridge.Messages()) != 0 {
		t.Fatal("expected the message list to remain unchanged")
	}
}

func TestSendInsertsAndResolves(t *testing.T) {
	bridge, messages, _ := setupBridge(t)
	ctx := context.Background()

	if _, err := bridge.Open(ctx, "prof-me", "prof-contact"); err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	sent, err := bridge.Send(ctx, "bom dia")
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if sent.SenderName != "Dr. João Silva" {
		t.Fatalf("expected resolved sender, got %q", sent.SenderName)
	}
	if len(messages.rows) != 1 || messages.rows[0].Content != "bom dia" {
		t.Fatalf("expected one stored row, got %+v", messages.rows)
	}
	// The stored timestamp must be the send-side one, not a store default,
	// so history and live events agree on ordering.
	if !messages.rows[0].CreatedAt.Equal(sent.CreatedAt) || sent.CreatedAt.IsZero() {
		t.Fatalf("expected stored CreatedAt %v to match the sent message, got %v", sent.CreatedAt, messages.rows[0].CreatedAt)
	}
	// The sender's own subscription also receives the insert event.
	got := waitForMessages(t, bridge, 1)
	if got[0].Content != "bom dia" {
		t.Fatalf("expected echoed message, got %+v", got[0])
	}
}
