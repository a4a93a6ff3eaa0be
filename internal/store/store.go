// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store holds the client-side cache of conversations and messages.
//
// There is one Store per running client. The session engine is its sole
// writer; the presentation layer only reads. Reads return copies so the UI
// can never observe a slice mid-mutation.
package store

import (
	"sync"

	"github.com/jeranaias/minichat-tui/internal/model"
)

// =============================================================================
// STORE
// =============================================================================

// Store is the process-wide cache of the conversation list and the message
// list of the currently active conversation.
//
// Invariant: ActiveMessages is populated only while ActiveID is set. Both
// collections are replaced wholesale from server fetches, never patched.
type Store struct {
	mu sync.RWMutex

	conversations  []model.Conversation
	activeID       string // empty means no active conversation
	activeMessages []model.Message
}

// New creates an empty store.
func New() *Store {
	return &Store{}
}

// =============================================================================
// READS (presentation layer)
// =============================================================================

// Conversations returns a copy of the cached conversation list.
func (s *Store) Conversations() []model.Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Conversation, len(s.conversations))
	copy(out, s.conversations)
	return out
}

// ActiveID returns the id of the active conversation, or "" when none is
// selected.
func (s *Store) ActiveID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeID
}

// ActiveMessages returns a copy of the active conversation's message list.
func (s *Store) ActiveMessages() []model.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Message, len(s.activeMessages))
	copy(out, s.activeMessages)
	return out
}

// ActiveConversation returns the active conversation, or nil when none is
// selected or the id is not present in the cached list.
func (s *Store) ActiveConversation() *model.Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.activeID == "" {
		return nil
	}
	for i := range s.conversations {
		if s.conversations[i].ID == s.activeID {
			c := s.conversations[i]
			return &c
		}
	}
	return nil
}

// ConversationCount returns the number of cached conversations.
func (s *Store) ConversationCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conversations)
}

// MessageCount returns the number of cached active messages.
func (s *Store) MessageCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.activeMessages)
}

// =============================================================================
// WRITES (session engine only)
// =============================================================================

// SetConversations replaces the conversation list wholesale.
func (s *Store) SetConversations(conversations []model.Conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations = conversations
}

// SetActiveID records which conversation is active and returns the previous
// value. It does not touch the message list; the session engine reacts to
// the transition separately.
func (s *Store) SetActiveID(id string) (previous string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	previous = s.activeID
	s.activeID = id
	return previous
}

// SetActiveMessages replaces the active message list wholesale.
func (s *Store) SetActiveMessages(messages []model.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeMessages = messages
}

// ClearActive drops both the active id and its message list.
func (s *Store) ClearActive() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeID = ""
	s.activeMessages = nil
}
