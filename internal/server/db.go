// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/minichat-tui/internal/model"
)

// ErrConversationNotFound is returned for operations on unknown ids.
var ErrConversationNotFound = errors.New("conversation not found")

// =============================================================================
// STORAGE
// =============================================================================

const schema = `
CREATE TABLE IF NOT EXISTS conversations (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	id              TEXT PRIMARY KEY,
	conversation_id TEXT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
	role            TEXT NOT NULL,
	content         TEXT NOT NULL,
	image_path      TEXT NOT NULL DEFAULT '',
	created_at      TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_messages_conversation
	ON messages(conversation_id, created_at);
`

// Storage persists conversations and messages in SQLite.
type Storage struct {
	db *sql.DB
}

// OpenStorage opens (and migrates) the database at path. ":memory:" gives a
// throwaway database for tests.
func OpenStorage(path string) (*Storage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// modernc.org/sqlite serializes writes per connection; a single
	// connection avoids SQLITE_BUSY under concurrent handlers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &Storage{db: db}, nil
}

// Close releases the database handle.
func (s *Storage) Close() error {
	return s.db.Close()
}

// =============================================================================
// CONVERSATIONS
// =============================================================================

// CreateConversation inserts a new conversation with the given title.
func (s *Storage) CreateConversation(title string) (*model.Conversation, error) {
	now := time.Now().UTC()
	c := &model.Conversation{
		ID:        uuid.NewString(),
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := s.db.Exec(
		`INSERT INTO conversations (id, title, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		c.ID, c.Title, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// GetConversation retrieves one conversation by id.
func (s *Storage) GetConversation(id string) (*model.Conversation, error) {
	row := s.db.QueryRow(
		`SELECT id, title, created_at, updated_at FROM conversations WHERE id = ?`, id,
	)
	var c model.Conversation
	if err := row.Scan(&c.ID, &c.Title, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}
	return &c, nil
}

// ListConversations returns all conversations, most recently updated first.
func (s *Storage) ListConversations() ([]model.Conversation, error) {
	rows, err := s.db.Query(
		`SELECT id, title, created_at, updated_at FROM conversations ORDER BY updated_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	conversations := []model.Conversation{}
	for rows.Next() {
		var c model.Conversation
		if err := rows.Scan(&c.ID, &c.Title, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		conversations = append(conversations, c)
	}
	return conversations, rows.Err()
}

// RenameConversation updates a conversation's title.
func (s *Storage) RenameConversation(id, title string) (*model.Conversation, error) {
	result, err := s.db.Exec(
		`UPDATE conversations SET title = ?, updated_at = ? WHERE id = ?`,
		title, time.Now().UTC(), id,
	)
	if err != nil {
		return nil, err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, ErrConversationNotFound
	}
	return s.GetConversation(id)
}

// TouchConversation bumps a conversation's updated_at.
func (s *Storage) TouchConversation(id string) error {
	_, err := s.db.Exec(
		`UPDATE conversations SET updated_at = ? WHERE id = ?`, time.Now().UTC(), id,
	)
	return err
}

// DeleteConversation removes a conversation; messages cascade. It returns
// the image paths of the deleted messages so the caller can remove the
// files.
func (s *Storage) DeleteConversation(id string) ([]string, error) {
	if _, err := s.GetConversation(id); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(
		`SELECT image_path FROM messages WHERE conversation_id = ? AND image_path != ''`, id,
	)
	if err != nil {
		return nil, err
	}
	var imagePaths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			rows.Close()
			return nil, err
		}
		imagePaths = append(imagePaths, p)
	}
	rows.Close()

	if _, err := s.db.Exec(`DELETE FROM conversations WHERE id = ?`, id); err != nil {
		return nil, err
	}
	return imagePaths, nil
}

// =============================================================================
// MESSAGES
// =============================================================================

// AppendMessage inserts one message at the end of a conversation.
func (s *Storage) AppendMessage(conversationID string, role model.Role, content, imagePath string) (*model.Message, error) {
	m := &model.Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		ImagePath:      imagePath,
		CreatedAt:      time.Now().UTC(),
	}
	_, err := s.db.Exec(
		`INSERT INTO messages (id, conversation_id, role, content, image_path, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, m.ConversationID, m.Role, m.Content, m.ImagePath, m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ListMessages returns a conversation's messages, oldest first. Insertion
// order breaks created_at ties.
func (s *Storage) ListMessages(conversationID string) ([]model.Message, error) {
	rows, err := s.db.Query(
		`SELECT id, conversation_id, role, content, image_path, created_at
		 FROM messages WHERE conversation_id = ? ORDER BY created_at, rowid`,
		conversationID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []model.Message{}
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &m.ImagePath, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// MessageCount returns how many messages a conversation holds.
func (s *Storage) MessageCount(conversationID string) (int, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM messages WHERE conversation_id = ?`, conversationID,
	).Scan(&n)
	return n, err
}
