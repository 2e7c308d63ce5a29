package internal

import (
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// ChatRole is the author of a brainstorm message
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatMessage is one turn of a brainstorm conversation about an idea
type ChatMessage struct {
	ID        string   `json:"id" yaml:"id"`
	Role      ChatRole `json:"role" yaml:"role"`
	Content   string   `json:"content" yaml:"content"`
	CreatedAt string   `json:"createdAt" yaml:"created_at"`
}

// NewChatMessage creates a message stamped at now. The id is the epoch
// milliseconds followed by the role.
func NewChatMessage(role ChatRole, content string, now time.Time) ChatMessage {
	return ChatMessage{
		ID:        fmt.Sprintf("%d-%s", now.UnixMilli(), role),
		Role:      role,
		Content:   strings.TrimSpace(content),
		CreatedAt: FormatTimestamp(now),
	}
}

// ValidateChatMessage checks a stored message
func ValidateChatMessage(raw gjson.Result) (ChatMessage, error) {
	var msg ChatMessage
	if !raw.IsObject() {
		return msg, &SchemaError{Path: "chat", Reason: "expected object"}
	}
	for key, dst := range map[string]*string{
		"id":        &msg.ID,
		"content":   &msg.Content,
		"createdAt": &msg.CreatedAt,
	} {
		v := raw.Get(key)
		if v.Type != gjson.String {
			return msg, &SchemaError{Path: "chat." + key, Reason: "expected string"}
		}
		*dst = v.String()
	}
	switch role := ChatRole(raw.Get("role").String()); role {
	case ChatRoleUser, ChatRoleAssistant:
		msg.Role = role
	default:
		return msg, &SchemaError{Path: "chat.role", Reason: "expected user or assistant"}
	}
	if strings.TrimSpace(msg.Content) == "" {
		return msg, &SchemaError{Path: "chat.content", Reason: "must not be empty"}
	}
	return msg, nil
}
