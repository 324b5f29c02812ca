package store

import "time"

// Profile is a registered account in the hosted backend. Contacts that exist
// only in the local clients/lawyers collections have no Profile row and are
// display-only in the chat.
type Profile struct {
	ID           string
	DisplayName  string
	Email        string
	AvatarURL    string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Message is one chat message row.
type Message struct {
	ID         string
	SenderID   string
	ReceiverID string
	Content    string
	CreatedAt  time.Time
}
