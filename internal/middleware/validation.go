package middleware

import (
	"encoding/json"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/civic-report/report-assistant/internal/model"
)

// MaxUserIDLength bounds caller user IDs.
const MaxUserIDLength = 128

// ValidateUserID validates a caller user ID.
func ValidateUserID(id string) error {
	if strings.TrimSpace(id) == "" {
		return errors.New("user ID cannot be empty")
	}
	if len(id) > MaxUserIDLength {
		return errors.New("user ID exceeds maximum length")
	}
	if !utf8.ValidString(id) {
		return errors.New("user ID must be valid UTF-8")
	}
	return nil
}

type rawTurn struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}

// SanitizeTurns turns an untrusted messages payload into at most maxTurns
// conversation turns of at most maxChars characters each. It never fails:
// entries that are not {role, content} objects with a user or assistant role
// and string content are dropped, and a bare string is read as one user turn.
func SanitizeTurns(raw json.RawMessage, maxTurns, maxChars int) []model.ConversationTurn {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		var single string
		if json.Unmarshal(raw, &single) != nil {
			return nil
		}
		items = []json.RawMessage{mustMarshal(rawTurn{Role: string(model.RoleUser), Content: mustMarshal(single)})}
	}

	turns := make([]model.ConversationTurn, 0, len(items))
	for _, item := range items {
		var rt rawTurn
		if err := json.Unmarshal(item, &rt); err != nil {
			continue
		}
		role := model.Role(strings.ToLower(strings.TrimSpace(rt.Role)))
		if role != model.RoleUser && role != model.RoleAssistant {
			continue
		}
		var content string
		if err := json.Unmarshal(rt.Content, &content); err != nil {
			continue
		}
		content = strings.TrimSpace(strings.ToValidUTF8(content, ""))
		if content == "" {
			continue
		}
		if maxChars > 0 {
			content = model.TruncateRunes(content, maxChars, "")
		}
		turns = append(turns, model.ConversationTurn{Role: role, Content: content})
	}

	if maxTurns > 0 && len(turns) > maxTurns {
		turns = turns[len(turns)-maxTurns:]
	}
	return turns
}

func mustMarshal(v interface{}) json.RawMessage {
	b, _ := json.Marshal(v)
	return b
}
