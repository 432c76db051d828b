package storage

import (
	"github.com/villaops/villaops/src/aisdk"
)

// SanitizeMessages repairs tool-call pairing in a loaded transcript so it can
// be replayed to the model. A run can die between persisting an assistant
// tool request and persisting its results, leaving either side dangling:
//
//   - tool results whose call id no preceding assistant message declared are
//     dropped, as are duplicate results for the same id
//   - assistant tool calls that never produced a surviving result are
//     stripped, and a request message left with no calls and no text is
//     dropped entirely
func SanitizeMessages(messages []Message) []Message {
	declared := make(map[string]struct{})
	resulted := make(map[string]struct{})

	// First pass: decide which tool results survive.
	keepResult := make([]bool, len(messages))
	for i := range messages {
		msg := &messages[i]
		switch {
		case msg.Role == aisdk.RoleAssistant:
			for _, call := range msg.ToolCalls {
				declared[call.ID] = struct{}{}
			}
		case msg.Role == aisdk.RoleTool:
			if msg.ToolCallID == nil {
				continue
			}
			id := *msg.ToolCallID
			if _, ok := declared[id]; !ok {
				continue
			}
			if _, dup := resulted[id]; dup {
				continue
			}
			resulted[id] = struct{}{}
			keepResult[i] = true
		}
	}

	// Second pass: strip unfulfilled calls and rebuild.
	out := make([]Message, 0, len(messages))
	for i := range messages {
		msg := messages[i]
		switch msg.Role {
		case aisdk.RoleAssistant:
			if len(msg.ToolCalls) > 0 {
				kept := msg.ToolCalls[:0:0]
				for _, call := range msg.ToolCalls {
					if _, ok := resulted[call.ID]; ok {
						kept = append(kept, call)
					}
				}
				msg.ToolCalls = kept
				if len(kept) == 0 && msg.Content == "" {
					continue
				}
			}
			out = append(out, msg)
		case aisdk.RoleTool:
			if keepResult[i] {
				out = append(out, msg)
			}
		default:
			out = append(out, msg)
		}
	}
	return out
}

// FromModelMessage converts a model message into a row for the given
// conversation. model tags assistant rows with the generating model.
func FromModelMessage(conversationID string, m *aisdk.Message, model string) Message {
	row := Message{
		ConversationID: conversationID,
		Role:           m.Role,
		Content:        m.Content,
		ToolCalls:      ToolCallsJSON(m.ToolCalls),
		CreatedAt:      m.CreatedAt,
	}
	if m.Name != "" {
		name := m.Name
		row.Name = &name
	}
	if m.ToolCallID != "" {
		id := m.ToolCallID
		row.ToolCallID = &id
	}
	if m.Role == aisdk.RoleAssistant && model != "" {
		mdl := model
		row.Model = &mdl
	}
	return row
}

// ToModelMessage converts a stored row back into a model message.
func ToModelMessage(row *Message) *aisdk.Message {
	msg := &aisdk.Message{
		Role:      row.Role,
		Content:   row.Content,
		ToolCalls: []aisdk.ToolCall(row.ToolCalls),
		CreatedAt: row.CreatedAt,
	}
	if row.Name != nil {
		msg.Name = *row.Name
	}
	if row.ToolCallID != nil {
		msg.ToolCallID = *row.ToolCallID
	}
	return msg
}

// ToModelMessages converts stored rows in order.
func ToModelMessages(rows []Message) []*aisdk.Message {
	out := make([]*aisdk.Message, 0, len(rows))
	for i := range rows {
		out = append(out, ToModelMessage(&rows[i]))
	}
	return out
}
