package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("not found")

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) CreateProfile(ctx context.Context, profile Profile) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (id, display_name, email, avatar_url, password_hash)
		VALUES ($1, $2, $3, $4, $5)
	`, profile.ID, profile.DisplayName, profile.Email, profile.AvatarURL, profile.PasswordHash)
	if err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetProfile(ctx context.Context, id string) (Profile, error) {
	var profile Profile
	err := s.db.QueryRowContext(ctx, `
		SELECT id, display_name, email, avatar_url, password_hash, created_at
		FROM profiles WHERE id = $1
	`, id).Scan(&profile.ID, &profile.DisplayName, &profile.Email, &profile.AvatarURL, &profile.PasswordHash, &profile.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Profile{}, ErrNotFound
	}
	if err != nil {
		return Profile{}, fmt.Errorf("get profile: %w", err)
	}
	return profile, nil
}

func (s *PostgresStore) GetProfileByEmail(ctx context.Context, email string) (Profile, error) {
	var profile Profile
	err := s.db.QueryRowContext(ctx, `
		SELECT id, display_name, email, avatar_url, password_hash, created_at
		FROM profiles WHERE email = $1
	`, email).Scan(&profile.ID, &profile.DisplayName, &profile.Email, &profile.AvatarURL, &profile.PasswordHash, &profile.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Profile{}, ErrNotFound
	}
	if err != nil {
		return Profile{}, fmt.Errorf("get profile by email: %w", err)
	}
	return profile, nil
}

func (s *PostgresStore) ListProfiles(ctx context.Context) ([]Profile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, display_name, email, avatar_url, created_at
		FROM profiles ORDER BY display_name
	`)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []Profile
	for rows.Next() {
		var profile Profile
		if err := rows.Scan(&profile.ID, &profile.DisplayName, &profile.Email, &profile.AvatarURL, &profile.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		profiles = append(profiles, profile)
	}
	return profiles, rows.Err()
}

func (s *PostgresStore) UpdateProfile(ctx context.Context, id, displayName, avatarURL string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE profiles SET display_name = $2, avatar_url = $3, updated_at = NOW() WHERE id = $1
	`, id, displayName, avatarURL)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) InsertMessage(ctx context.Context, message Message) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (id, sender_id, receiver_id, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, message.ID, message.SenderID, message.ReceiverID, message.Content, message.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// ListConversation returns the full history for the unordered participant
// pair, oldest first.
func (s *PostgresStore) ListConversation(ctx context.Context, a, b string) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sender_id, receiver_id, content, created_at
		FROM messages
		WHERE (sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1)
		ORDER BY created_at ASC
	`, a, b)
	if err != nil {
		return nil, fmt.Errorf("list conversation: %w", err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var message Message
		if err := rows.Scan(&message.ID, &message.SenderID, &message.ReceiverID, &message.Content, &message.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, message)
	}
	return messages, rows.Err()
}
