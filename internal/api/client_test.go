// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/jeranaias/minichat-tui/internal/model"
)

// =============================================================================
// CLIENT TESTS
// =============================================================================

func TestListConversations(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/conversations" || r.Method != http.MethodGet {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode([]model.Conversation{
			{ID: "c1", Title: "first"},
			{ID: "c2", Title: "second"},
		})
	}))
	defer ts.Close()

	client := NewClientWithConfig(&ClientConfig{BaseURL: ts.URL})
	conversations, err := client.ListConversations(context.Background())
	if err != nil {
		t.Fatalf("ListConversations() error = %v", err)
	}
	if len(conversations) != 2 || conversations[0].ID != "c1" {
		t.Errorf("ListConversations() = %+v", conversations)
	}
}

func TestSendTurn_MultipartFields(t *testing.T) {
	var gotContent, gotConversationID, gotFilename string

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("server could not parse multipart form: %v", err)
		}
		gotContent = r.FormValue("content")
		gotConversationID = r.FormValue("conversation_id")
		if _, header, err := r.FormFile("image"); err == nil {
			gotFilename = header.Filename
		}
		json.NewEncoder(w).Encode(ChatResponse{
			Conversation: model.Conversation{ID: "c1"},
		})
	}))
	defer ts.Close()

	imagePath := filepath.Join(t.TempDir(), "shot.png")
	if err := os.WriteFile(imagePath, []byte("px"), 0o644); err != nil {
		t.Fatal(err)
	}

	client := NewClientWithConfig(&ClientConfig{BaseURL: ts.URL})
	resp, err := client.SendTurn(context.Background(), "hello", "c1", imagePath)
	if err != nil {
		t.Fatalf("SendTurn() error = %v", err)
	}

	if gotContent != "hello" || gotConversationID != "c1" || gotFilename != "shot.png" {
		t.Errorf("form fields = (%q, %q, %q)", gotContent, gotConversationID, gotFilename)
	}
	if resp.Conversation.ID != "c1" {
		t.Errorf("Conversation.ID = %q", resp.Conversation.ID)
	}
}

func TestSendTurn_OmitsEmptyConversationID(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseMultipartForm(1 << 20)
		if _, ok := r.MultipartForm.Value["conversation_id"]; ok {
			t.Error("conversation_id field should be absent when no conversation is active")
		}
		json.NewEncoder(w).Encode(ChatResponse{Conversation: model.Conversation{ID: "new"}})
	}))
	defer ts.Close()

	client := NewClientWithConfig(&ClientConfig{BaseURL: ts.URL})
	if _, err := client.SendTurn(context.Background(), "hi", "", ""); err != nil {
		t.Fatalf("SendTurn() error = %v", err)
	}
}

func TestSendTurn_MissingImageFile(t *testing.T) {
	client := NewClientWithConfig(&ClientConfig{BaseURL: "http://127.0.0.1:1"})
	_, err := client.SendTurn(context.Background(), "hi", "", "/does/not/exist.png")

	var clientErr *ClientError
	if !errors.As(err, &clientErr) || clientErr.Type != ErrTypeBadRequest {
		t.Errorf("SendTurn() error = %v, want bad-request ClientError before any network use", err)
	}
}

func TestDo_SurfacesBackendDetail(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Message cannot be empty"})
	}))
	defer ts.Close()

	client := NewClientWithConfig(&ClientConfig{BaseURL: ts.URL})
	_, err := client.ListConversations(context.Background())

	var clientErr *ClientError
	if !errors.As(err, &clientErr) {
		t.Fatalf("error = %v, want *ClientError", err)
	}
	if clientErr.Message != "Message cannot be empty" {
		t.Errorf("Message = %q, want backend detail verbatim", clientErr.Message)
	}
}

func TestDo_UnreachableBackend(t *testing.T) {
	client := NewClientWithConfig(&ClientConfig{BaseURL: "http://127.0.0.1:1"})
	err := client.CheckRunning(context.Background())
	if !errors.Is(err, ErrUnreachable) {
		t.Errorf("CheckRunning() error = %v, want ErrUnreachable", err)
	}
}

func TestImageURL(t *testing.T) {
	client := NewClientWithConfig(&ClientConfig{BaseURL: "http://host:8000"})
	tests := []struct{ in, want string }{
		{"uploads/a.png", "http://host:8000/uploads/a.png"},
		{"/uploads/a.png", "http://host:8000/uploads/a.png"},
	}
	for _, tc := range tests {
		if got := client.ImageURL(tc.in); got != tc.want {
			t.Errorf("ImageURL(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
