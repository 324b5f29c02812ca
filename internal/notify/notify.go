// Package notify carries user-facing persistence notifications, the server
// side of the toasts the dashboard shows after every save.
package notify

import (
	"log"
	"sync"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelError   Level = "error"
)

type Notification struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// Notifier receives user-facing notifications. Persistence errors are always
// converted into one of these rather than propagated.
type Notifier interface {
	Notify(level Level, message string)
}

// LogNotifier writes notifications to the process log.
type LogNotifier struct{}

func (LogNotifier) Notify(level Level, message string) {
	log.Printf("notify: [%s] %s", level, message)
}

// Buffer retains notifications so the HTTP layer can drain them to the client,
// and tests can assert on them.
type Buffer struct {
	mu      sync.Mutex
	pending []Notification
}

func NewBuffer() *Buffer {
	return &Buffer{}
}

func (b *Buffer) Notify(level Level, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending = append(b.pending, Notification{Level: level, Message: message})
}

// Drain returns and clears the pending notifications in arrival order.
func (b *Buffer) Drain() []Notification {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.pending
	b.pending = nil
	return out
}

// Multi fans a notification out to several notifiers.
type Multi []Notifier

func (m Multi) Notify(level Level, message string) {
	for _, n := range m {
		n.Notify(level, message)
	}
}
