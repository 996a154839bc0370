package model

import (
	"encoding/json"
)

// Role represents the role of a message sender.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// ConversationTurn is a single chat message.
type ConversationTurn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// CallerContext identifies the person talking to the assistant.
// It is supplied by the upstream authentication layer.
type CallerContext struct {
	UserID    string `json:"userId"`
	Role      string `json:"role,omitempty"`
	AreaLabel string `json:"areaLabel,omitempty"`
}

// ChatRequest is the request body of the chat turn endpoint.
// Messages is kept raw so malformed payloads can be sanitized instead of rejected.
type ChatRequest struct {
	Messages      json.RawMessage `json:"messages"`
	CallerContext CallerContext   `json:"callerContext"`
}

// ChatResponse is the reply to a chat turn.
type ChatResponse struct {
	Reply string `json:"reply"`

	// Draft preview
	ReportData           *ReportFields `json:"reportData,omitempty"`
	PreviewMode          bool          `json:"previewMode,omitempty"`
	AwaitingConfirmation bool          `json:"awaitingConfirmation,omitempty"`

	// Confirmed report
	ReportCreated bool           `json:"reportCreated,omitempty"`
	ReportID      string         `json:"reportId,omitempty"`
	Report        *CreatedReport `json:"report,omitempty"`
}

// DraftResponse is the body of the draft inspection endpoint.
type DraftResponse struct {
	Draft            *Draft `json:"draft"`
	ExpiresInSeconds int64  `json:"expiresInSeconds"`
}
