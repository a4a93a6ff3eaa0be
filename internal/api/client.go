// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the minichat backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jeranaias/minichat-tui/internal/model"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the backend client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeUnreachable
	ErrTypeNotFound
	ErrTypeBadRequest
	ErrTypeServer
	ErrTypeInvalidResponse
)

// Sentinel errors for easy checking.
var (
	ErrUnreachable = &ClientError{Type: ErrTypeUnreachable, Message: "backend is not reachable"}
	ErrNotFound    = &ClientError{Type: ErrTypeNotFound, Message: "conversation not found"}
)

// Detail is surfaced by the backend on failure; the engine shows it to the
// user verbatim when present.
type errorBody struct {
	Detail string `json:"detail"`
}

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the backend client.
type ClientConfig struct {
	// BaseURL is the backend base URL (default: http://127.0.0.1:8000)
	BaseURL string

	// Timeout for requests. Zero means no client-side timeout: an in-flight
	// turn always runs to completion, success or failure.
	Timeout time.Duration
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL: "http://127.0.0.1:8000",
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the minichat backend.
// It is safe for concurrent use.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
}

// NewClient creates a new backend client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a new backend client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BaseURL == "" {
		config.BaseURL = "http://127.0.0.1:8000"
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// ImageURL resolves a server-relative image path to an absolute URL.
func (c *Client) ImageURL(imagePath string) string {
	return strings.TrimSuffix(c.config.BaseURL, "/") + "/" + strings.TrimPrefix(imagePath, "/")
}

// =============================================================================
// HEALTH CHECK
// =============================================================================

// CheckRunning verifies that the backend is reachable.
func (c *Client) CheckRunning(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/health", nil)
	if err != nil {
		return &ClientError{Type: ErrTypeUnreachable, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ErrUnreachable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &ClientError{
			Type:    ErrTypeUnreachable,
			Message: "unexpected status from backend: " + resp.Status,
		}
	}
	return nil
}

// =============================================================================
// CONVERSATION OPERATIONS
// =============================================================================

// ListConversations retrieves all conversations, in server order.
func (c *Client) ListConversations(ctx context.Context) ([]model.Conversation, error) {
	var conversations []model.Conversation
	if err := c.getJSON(ctx, "/api/conversations", &conversations); err != nil {
		return nil, err
	}
	return conversations, nil
}

// ListMessages retrieves all messages of one conversation, oldest first.
func (c *Client) ListMessages(ctx context.Context, conversationID string) ([]model.Message, error) {
	var messages []model.Message
	path := "/api/conversations/" + url.PathEscape(conversationID) + "/messages"
	if err := c.getJSON(ctx, path, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// CreateConversation starts a new empty conversation server-side.
func (c *Client) CreateConversation(ctx context.Context) (*model.Conversation, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/api/conversations/new", nil)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeUnreachable, Message: "failed to create request", Cause: err}
	}

	var conversation model.Conversation
	if err := c.do(req, &conversation); err != nil {
		return nil, err
	}
	return &conversation, nil
}

// DeleteConversation removes a conversation and all of its messages.
func (c *Client) DeleteConversation(ctx context.Context, conversationID string) error {
	path := c.config.BaseURL + "/api/conversations/" + url.PathEscape(conversationID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return &ClientError{Type: ErrTypeUnreachable, Message: "failed to create request", Cause: err}
	}
	return c.do(req, nil)
}

// UpdateConversation renames a conversation.
func (c *Client) UpdateConversation(ctx context.Context, conversationID, title string) (*model.Conversation, error) {
	form := url.Values{}
	form.Set("title", title)

	path := c.config.BaseURL + "/api/conversations/" + url.PathEscape(conversationID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &ClientError{Type: ErrTypeUnreachable, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var conversation model.Conversation
	if err := c.do(req, &conversation); err != nil {
		return nil, err
	}
	return &conversation, nil
}

// =============================================================================
// CHAT
// =============================================================================

// SendTurn submits one chat turn as a multipart form. conversationID may be
// empty, in which case the server creates the conversation and the response
// carries its id. imagePath may be empty; when set it names a local file
// whose bytes are attached, unvalidated, as the image part.
func (c *Client) SendTurn(ctx context.Context, content, conversationID, imagePath string) (*ChatResponse, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if err := writer.WriteField("content", content); err != nil {
		return nil, &ClientError{Type: ErrTypeUnknown, Message: "failed to encode request", Cause: err}
	}
	if conversationID != "" {
		if err := writer.WriteField("conversation_id", conversationID); err != nil {
			return nil, &ClientError{Type: ErrTypeUnknown, Message: "failed to encode request", Cause: err}
		}
	}
	if imagePath != "" {
		if err := attachImage(writer, imagePath); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, &ClientError{Type: ErrTypeUnknown, Message: "failed to encode request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/api/chat", &body)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeUnreachable, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var chatResp ChatResponse
	if err := c.do(req, &chatResp); err != nil {
		return nil, err
	}
	return &chatResp, nil
}

// attachImage streams a local file into the multipart image part.
func attachImage(writer *multipart.Writer, imagePath string) error {
	file, err := os.Open(imagePath)
	if err != nil {
		return &ClientError{Type: ErrTypeBadRequest, Message: "cannot open image " + imagePath, Cause: err}
	}
	defer file.Close()

	part, err := writer.CreateFormFile("image", filepath.Base(imagePath))
	if err != nil {
		return &ClientError{Type: ErrTypeUnknown, Message: "failed to encode image", Cause: err}
	}
	if _, err := io.Copy(part, file); err != nil {
		return &ClientError{Type: ErrTypeUnknown, Message: "failed to read image", Cause: err}
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

// getJSON performs a GET and decodes the JSON response into out.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+path, nil)
	if err != nil {
		return &ClientError{Type: ErrTypeUnreachable, Message: "failed to create request", Cause: err}
	}
	return c.do(req, out)
}

// do executes a request, maps failures to ClientError, and decodes a JSON
// body into out when out is non-nil.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return &ClientError{Type: ErrTypeUnreachable, Message: "request timed out", Cause: err}
		}
		return ErrUnreachable
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return c.failure(resp, ErrTypeNotFound, "not found")
	case resp.StatusCode == http.StatusBadRequest:
		return c.failure(resp, ErrTypeBadRequest, "rejected by backend")
	case resp.StatusCode >= 500:
		return c.failure(resp, ErrTypeServer, "backend error")
	case resp.StatusCode != http.StatusOK:
		return c.failure(resp, ErrTypeUnknown, "unexpected status "+resp.Status)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}
	return nil
}

// failure builds a ClientError from a non-OK response, preferring the
// backend's detail message when one is present.
func (c *Client) failure(resp *http.Response, errType ErrorType, fallback string) error {
	var body errorBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Detail != "" {
		return &ClientError{Type: errType, Message: body.Detail}
	}
	return &ClientError{Type: errType, Message: fallback}
}
