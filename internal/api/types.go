// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"github.com/jeranaias/minichat-tui/internal/model"
)

// ChatResponse is the payload of a successful POST /api/chat. The
// conversation field carries the authoritative id of the conversation the
// turn belongs to, whether it existed before the call or the server created
// it because none was supplied.
type ChatResponse struct {
	Message      model.Message      `json:"message"`
	Conversation model.Conversation `json:"conversation"`
}
