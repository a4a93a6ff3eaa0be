// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session implements the conversation synchronization engine.
//
// The engine is the sole writer of the store. Every mutating operation ends
// in a wholesale reload of the affected collection rather than a local
// patch: a small latency cost in exchange for the displayed state never
// drifting from server state after an acknowledged mutation.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/jeranaias/minichat-tui/internal/api"
	"github.com/jeranaias/minichat-tui/internal/model"
	"github.com/jeranaias/minichat-tui/internal/store"
)

// =============================================================================
// REMOTE CONTRACT
// =============================================================================

// Remote is the backend surface the engine consumes. *api.Client satisfies
// it; tests substitute an in-memory fake.
type Remote interface {
	ListConversations(ctx context.Context) ([]model.Conversation, error)
	ListMessages(ctx context.Context, conversationID string) ([]model.Message, error)
	SendTurn(ctx context.Context, content, conversationID, imagePath string) (*api.ChatResponse, error)
	CreateConversation(ctx context.Context) (*model.Conversation, error)
	DeleteConversation(ctx context.Context, conversationID string) error
	UpdateConversation(ctx context.Context, conversationID, title string) (*model.Conversation, error)
}

// =============================================================================
// SENTINEL ERRORS
// =============================================================================

var (
	// ErrEmptyTurn is returned when a send has neither content nor image.
	// The call is a no-op: no network traffic, no state change, and the
	// user-visible error text is left alone.
	ErrEmptyTurn = errors.New("empty turn")

	// ErrEmptyTitle is returned when a rename title is blank after trimming.
	// Same no-op semantics as ErrEmptyTurn.
	ErrEmptyTitle = errors.New("empty title")

	// ErrSendInFlight is returned when a send is attempted while another is
	// still in progress. The gate makes the second call a no-op rather than
	// queueing it; it is a caller error, not a user-visible one.
	ErrSendInFlight = errors.New("send already in flight")
)

// =============================================================================
// SESSION ENGINE
// =============================================================================

// Session orchestrates conversation and message synchronization against the
// backend. It owns the loading flag (the send gate) and the last error text.
//
// Operations may be invoked from separate goroutines (bubbletea commands run
// off the update loop); the gate serializes sends, and non-send operations
// interleave with last-write-wins semantics on the store.
type Session struct {
	mu      sync.Mutex
	loading bool
	lastErr string

	store  *store.Store
	remote Remote
}

// New creates a session engine owning the given store.
func New(s *store.Store, remote Remote) *Session {
	return &Session{store: s, remote: remote}
}

// Store exposes the read-only view for the presentation layer.
func (s *Session) Store() *store.Store {
	return s.store
}

// Loading reports whether a send is in flight. UI affordances that trigger
// SendTurn must check this before invoking it.
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// LastError returns the most recent error text, or "" when the last
// attempted operation succeeded. Newer errors replace older ones; there is
// no history.
func (s *Session) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// =============================================================================
// CONVERSATION LIST
// =============================================================================

// LoadConversations fetches the full conversation list and replaces the
// cached one wholesale. On failure the prior list is left untouched.
func (s *Session) LoadConversations(ctx context.Context) error {
	s.clearError()

	conversations, err := s.remote.ListConversations(ctx)
	if err != nil {
		s.setError("could not load conversations", err)
		return err
	}
	s.store.SetConversations(conversations)
	return nil
}

// =============================================================================
// SELECTION
// =============================================================================

// Select makes id the active conversation and fires the reaction rule:
// a transition to a non-empty id fetches that conversation's messages, a
// transition to "" clears the displayed messages. Re-selecting the id that
// is already active is a no-op; callers wanting a forced refetch use
// LoadMessages.
func (s *Session) Select(ctx context.Context, id string) error {
	previous := s.store.SetActiveID(id)
	if id == previous {
		return nil
	}
	if id == "" {
		s.store.ClearActive()
		return nil
	}
	return s.LoadMessages(ctx, id)
}

// LoadMessages fetches the message list for id and, if id is still the
// active conversation when the fetch completes, replaces the displayed
// messages wholesale.
func (s *Session) LoadMessages(ctx context.Context, id string) error {
	s.clearError()

	messages, err := s.remote.ListMessages(ctx, id)
	if err != nil {
		s.setError("could not load messages", err)
		return err
	}
	if s.store.ActiveID() == id {
		s.store.SetActiveMessages(messages)
	}
	return nil
}

// =============================================================================
// MUTATIONS
// =============================================================================

// Create starts a new empty conversation on the server, makes it active,
// and refreshes the conversation list so it appears in the sidebar. No
// client-side placeholder exists before the round trip completes.
func (s *Session) Create(ctx context.Context) error {
	s.clearError()

	conversation, err := s.remote.CreateConversation(ctx)
	if err != nil {
		s.setError("could not create conversation", err)
		return err
	}

	if err := s.Select(ctx, conversation.ID); err != nil {
		return err
	}
	return s.LoadConversations(ctx)
}

// Delete removes a conversation. Deleting the active conversation clears
// the displayed view immediately, before the list refresh resolves. The
// conversation list is always reconciled from the server afterward.
func (s *Session) Delete(ctx context.Context, id string) error {
	s.clearError()

	if err := s.remote.DeleteConversation(ctx, id); err != nil {
		s.setError("could not delete conversation", err)
		return err
	}
	if s.store.ActiveID() == id {
		s.store.ClearActive()
	}
	return s.LoadConversations(ctx)
}

// Rename updates a conversation title and refreshes the conversation list
// so the new title shows everywhere. There is no optimistic local rename.
// A title that is blank after trimming makes the call a silent no-op.
func (s *Session) Rename(ctx context.Context, id, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyTitle
	}
	s.clearError()

	if _, err := s.remote.UpdateConversation(ctx, id, title); err != nil {
		s.setError("could not rename conversation", err)
		return err
	}
	return s.LoadConversations(ctx)
}

// =============================================================================
// SEND
// =============================================================================

// SendTurn submits one chat turn: the user's text and/or an image attachment.
//
// Preconditions: the turn is non-empty and no other send holds the gate.
// The server may create the conversation when none is active; on success the
// engine reloads the authoritative message list for the returned id rather
// than hand-assembling it from partial response data, and adopts the id as
// active when the turn started with no active conversation.
//
// The gate is released on every path, including a failing reload, so it can
// never be left permanently held. A failing send leaves the displayed
// messages untouched.
func (s *Session) SendTurn(ctx context.Context, content, imagePath string) error {
	if strings.TrimSpace(content) == "" && imagePath == "" {
		return ErrEmptyTurn
	}

	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return ErrSendInFlight
	}
	s.loading = true
	s.lastErr = ""
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	previousActive := s.store.ActiveID()

	resp, err := s.remote.SendTurn(ctx, content, previousActive, imagePath)
	if err != nil {
		s.setError("could not send message", err)
		return err
	}

	conversationID := resp.Conversation.ID

	// The response is authoritative about which conversation the turn landed
	// in. Adopt it before the reload so the fetched messages are displayed.
	if previousActive == "" {
		s.store.SetActiveID(conversationID)
	}

	messages, err := s.remote.ListMessages(ctx, conversationID)
	if err != nil {
		s.setError("could not load messages", err)
		return err
	}
	if s.store.ActiveID() == conversationID {
		s.store.SetActiveMessages(messages)
	}

	if previousActive == "" {
		return s.LoadConversations(ctx)
	}
	return nil
}

// =============================================================================
// ERROR STATE
// =============================================================================

// clearError implements the clear-on-attempt convention: every operation
// wipes the previous error before touching the network.
func (s *Session) clearError() {
	s.mu.Lock()
	s.lastErr = ""
	s.mu.Unlock()
}

// setError records a human-readable error. Backend-supplied detail is shown
// verbatim; anything else gets the generic description prefixed.
func (s *Session) setError(generic string, err error) {
	var clientErr *api.ClientError
	text := generic
	if errors.As(err, &clientErr) {
		text = clientErr.Message
	} else if err != nil {
		text = generic + ": " + err.Error()
	}

	s.mu.Lock()
	s.lastErr = text
	s.mu.Unlock()
}
