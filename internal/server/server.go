// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server provides the bundled chat backend.
//
// Endpoints:
//   - GET    /health                            - health check
//   - GET    /api/conversations                 - list conversations
//   - POST   /api/conversations/new             - create an empty conversation
//   - GET    /api/conversations/{id}/messages   - list a conversation's messages
//   - PUT    /api/conversations/{id}            - rename a conversation
//   - DELETE /api/conversations/{id}            - delete a conversation
//   - POST   /api/chat                          - submit one chat turn
//   - GET    /uploads/...                       - uploaded images
package server

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/jeranaias/minichat-tui/internal/api"
	"github.com/jeranaias/minichat-tui/internal/config"
	"github.com/jeranaias/minichat-tui/internal/model"
)

// =============================================================================
// SERVER
// =============================================================================

// Server implements the backend contract the client consumes.
type Server struct {
	storage   *Storage
	responder Responder

	uploadsDir    string
	maxImageBytes int64

	limiters   map[string]*rate.Limiter
	limitersMu sync.Mutex
	ratePerSec float64

	mux *http.ServeMux
}

// New creates a server backed by the given storage.
func New(storage *Storage, cfg config.ServeConfig) *Server {
	s := &Server{
		storage:       storage,
		responder:     EchoResponder{},
		uploadsDir:    cfg.UploadsDir,
		maxImageBytes: cfg.MaxImageBytes,
		limiters:      make(map[string]*rate.Limiter),
		ratePerSec:    cfg.RatePerSecond,
		mux:           http.NewServeMux(),
	}
	s.routes()
	return s
}

// SetResponder swaps the assistant responder. Tests use this for scripted
// replies.
func (s *Server) SetResponder(r Responder) {
	s.responder = r
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/conversations", s.handleListConversations)
	s.mux.HandleFunc("POST /api/conversations/new", s.handleCreateConversation)
	s.mux.HandleFunc("GET /api/conversations/{id}/messages", s.handleListMessages)
	s.mux.HandleFunc("PUT /api/conversations/{id}", s.handleRenameConversation)
	s.mux.HandleFunc("DELETE /api/conversations/{id}", s.handleDeleteConversation)
	s.mux.HandleFunc("POST /api/chat", s.handleChat)
	s.mux.Handle("GET /uploads/", http.StripPrefix("/uploads/",
		http.FileServer(http.Dir(s.uploadsDir))))
}

// ServeHTTP applies rate limiting, then dispatches.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !s.allow(r) {
		writeDetail(w, http.StatusTooManyRequests, "too many requests")
		return
	}
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe runs the server until the listener fails.
func (s *Server) ListenAndServe(addr string) error {
	log.Printf("[serve] listening on http://%s", addr)
	return http.ListenAndServe(addr, s)
}

// allow checks the per-client rate limit. Zero configured rate disables
// limiting entirely.
func (s *Server) allow(r *http.Request) bool {
	if s.ratePerSec <= 0 {
		return true
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}

	s.limitersMu.Lock()
	limiter, ok := s.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(s.ratePerSec), int(s.ratePerSec)+1)
		s.limiters[host] = limiter
	}
	s.limitersMu.Unlock()

	return limiter.Allow()
}

// =============================================================================
// HANDLERS
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleListConversations(w http.ResponseWriter, r *http.Request) {
	conversations, err := s.storage.ListConversations()
	if err != nil {
		s.internalError(w, "list conversations", err)
		return
	}
	writeJSON(w, http.StatusOK, conversations)
}

func (s *Server) handleCreateConversation(w http.ResponseWriter, r *http.Request) {
	conversation, err := s.storage.CreateConversation(model.DefaultTitle)
	if err != nil {
		s.internalError(w, "create conversation", err)
		return
	}
	log.Printf("[serve] conversation created id=%s", conversation.ID)
	writeJSON(w, http.StatusOK, conversation)
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := s.storage.GetConversation(id); err != nil {
		s.conversationError(w, err)
		return
	}
	messages, err := s.storage.ListMessages(id)
	if err != nil {
		s.internalError(w, "list messages", err)
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

func (s *Server) handleRenameConversation(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeDetail(w, http.StatusBadRequest, "malformed form")
		return
	}
	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		writeDetail(w, http.StatusBadRequest, "Title cannot be empty")
		return
	}

	conversation, err := s.storage.RenameConversation(r.PathValue("id"), title)
	if err != nil {
		s.conversationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, conversation)
}

func (s *Server) handleDeleteConversation(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	imagePaths, err := s.storage.DeleteConversation(id)
	if err != nil {
		s.conversationError(w, err)
		return
	}

	// Uploaded images belong to the conversation; remove them with it.
	for _, p := range imagePaths {
		full := filepath.Join(s.uploadsDir, filepath.Base(p))
		if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Printf("[serve] could not remove %s: %v", full, err)
		}
	}

	log.Printf("[serve] conversation deleted id=%s", id)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Conversation deleted successfully"})
}

// handleChat processes one turn: persist the user message (and optional
// image), produce the assistant reply, persist it, and return the reply
// together with the authoritative conversation.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(s.maxImageBytes + 64*1024); err != nil {
		writeDetail(w, http.StatusBadRequest, "malformed multipart form")
		return
	}

	content := r.FormValue("content")
	conversationID := r.FormValue("conversation_id")
	imageFile, imageHeader, imageErr := r.FormFile("image")
	hasImage := imageErr == nil

	if strings.TrimSpace(content) == "" && !hasImage {
		writeDetail(w, http.StatusBadRequest, "Message cannot be empty")
		return
	}

	// Resolve or create the conversation. The server, not the client, owns
	// conversation creation when no id was supplied.
	var conversation *model.Conversation
	var err error
	if conversationID != "" {
		conversation, err = s.storage.GetConversation(conversationID)
		if err != nil {
			if hasImage {
				imageFile.Close()
			}
			s.conversationError(w, err)
			return
		}
	} else {
		title := model.DefaultTitle
		if trimmed := strings.TrimSpace(content); trimmed != "" {
			title = truncateTitle(trimmed)
		}
		conversation, err = s.storage.CreateConversation(title)
		if err != nil {
			if hasImage {
				imageFile.Close()
			}
			s.internalError(w, "create conversation", err)
			return
		}
	}

	var imagePath string
	if hasImage {
		imagePath, err = s.saveImage(conversation.ID, imageHeader.Filename, imageFile)
		imageFile.Close()
		if err != nil {
			var clientErr *api.ClientError
			if errors.As(err, &clientErr) {
				writeDetail(w, http.StatusBadRequest, clientErr.Message)
				return
			}
			s.internalError(w, "store image", err)
			return
		}
	}

	if _, err := s.storage.AppendMessage(conversation.ID, model.RoleUser, content, imagePath); err != nil {
		s.internalError(w, "store user message", err)
		return
	}

	replyText := s.responder.Reply(content, hasImage)
	reply, err := s.storage.AppendMessage(conversation.ID, model.RoleAssistant, replyText, "")
	if err != nil {
		s.internalError(w, "store assistant message", err)
		return
	}

	if err := s.storage.TouchConversation(conversation.ID); err != nil {
		s.internalError(w, "touch conversation", err)
		return
	}
	conversation, err = s.storage.GetConversation(conversation.ID)
	if err != nil {
		s.internalError(w, "reload conversation", err)
		return
	}

	writeJSON(w, http.StatusOK, api.ChatResponse{
		Message:      *reply,
		Conversation: *conversation,
	})
}

// saveImage writes an uploaded image under the uploads dir and returns its
// server-relative path. Bytes are stored untouched; the server does not
// validate image formats.
func (s *Server) saveImage(conversationID, filename string, src io.Reader) (string, error) {
	if err := os.MkdirAll(s.uploadsDir, 0o755); err != nil {
		return "", err
	}

	safe := strings.ReplaceAll(filepath.Base(filename), " ", "_")
	if safe == "" || safe == "." {
		safe = "image"
	}
	name := conversationID + "_" + uuid.NewString()[:8] + "_" + safe

	dst, err := os.Create(filepath.Join(s.uploadsDir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	written, err := io.Copy(dst, io.LimitReader(src, s.maxImageBytes+1))
	if err != nil {
		return "", err
	}
	if written == 0 {
		os.Remove(dst.Name())
		return "", &api.ClientError{Type: api.ErrTypeBadRequest, Message: "Image file is empty"}
	}
	if written > s.maxImageBytes {
		os.Remove(dst.Name())
		return "", &api.ClientError{Type: api.ErrTypeBadRequest, Message: "Image file is too large"}
	}

	return "uploads/" + name, nil
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func (s *Server) conversationError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrConversationNotFound) {
		writeDetail(w, http.StatusNotFound, "Conversation not found")
		return
	}
	s.internalError(w, "storage", err)
}

func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	log.Printf("[serve] %s failed: %v", op, err)
	writeDetail(w, http.StatusInternalServerError, "Internal server error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[serve] encode response: %v", err)
	}
}

// writeDetail mirrors the failure shape clients parse: {"detail": "..."}.
func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// truncateTitle derives a conversation title from the first user message.
func truncateTitle(content string) string {
	runes := []rune(content)
	if len(runes) <= model.TitlePreviewRunes {
		return content
	}
	return string(runes[:model.TitlePreviewRunes])
}
