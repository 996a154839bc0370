package model

import (
	"time"
)

// EventType represents the type of dialogue event.
type EventType string

const (
	EventTypeDraftOpened    EventType = "draft_opened"
	EventTypeDraftReplaced  EventType = "draft_replaced"
	EventTypeDraftConfirmed EventType = "draft_confirmed"
	EventTypeDraftCancelled EventType = "draft_cancelled"
	EventTypeReportFailed   EventType = "report_failed"
)

// DialogueEvent records a draft lifecycle transition.
type DialogueEvent struct {
	ID        string         `json:"id"`
	OwnerID   string         `json:"owner_id"`
	DraftID   string         `json:"draft_id,omitempty"`
	Type      EventType      `json:"type"`
	Reason    string         `json:"reason,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
