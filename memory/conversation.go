package memory

import (
	"encoding/json"
	"errors"
	"os"
	"strings"

	"github.com/Mithul-Joseph/mcp-project/chat"
)

// Message is a minimal persisted view of a chat turn.
type Message struct {
	Role string `json:"role"`
	Text string `json:"text,omitempty"`
}

// FromTranscript reduces a query's transcript to its persistable messages:
// the user turn plus any assistant text. Tool turns and empty assistant
// turns are dropped.
func FromTranscript(turns []chat.Turn) []Message {
	var msgs []Message
	for _, t := range turns {
		switch t.Role {
		case chat.RoleUser:
			msgs = append(msgs, Message{Role: string(chat.RoleUser), Text: t.Text})
		case chat.RoleAssistant:
			if strings.TrimSpace(t.Text) != "" {
				msgs = append(msgs, Message{Role: string(chat.RoleAssistant), Text: t.Text})
			}
		}
	}
	return msgs
}

func LoadConversation(path string) ([]Message, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var msgs []Message
	if err := json.Unmarshal(b, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

func SaveConversation(path string, msgs []Message) error {
	b, err := json.MarshalIndent(msgs, "", " ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
