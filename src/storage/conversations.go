package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/google/uuid"
)

// CreateConversation creates a new conversation owned by a user
func CreateConversation(ctx context.Context, db Execer, conversation *Conversation) error {
	if conversation.ID == "" {
		conversation.ID = uuid.New().String()
	}
	if conversation.CreatedAt.IsZero() {
		conversation.CreatedAt = time.Now().UTC()
	}
	if conversation.UpdatedAt.IsZero() {
		conversation.UpdatedAt = conversation.CreatedAt
	}

	query := `INSERT INTO conversations (id, user_id, title, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, query, conversation.ID, conversation.UserID, conversation.Title, conversation.CreatedAt, conversation.UpdatedAt)
	return err
}

// GetConversation retrieves a conversation by ID, scoped to its owner.
// Returns nil when the conversation does not exist or belongs to another user.
func GetConversation(ctx context.Context, db sqlscan.Querier, conversationID, userID string) (*Conversation, error) {
	query := `SELECT id, user_id, title, created_at, updated_at FROM conversations WHERE id = ? AND user_id = ?`
	var conv Conversation
	err := sqlscan.Get(ctx, db, &conv, query, conversationID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, err
	}
	return &conv, nil
}

// ListConversations retrieves a user's conversations, most recently updated first
func ListConversations(ctx context.Context, db sqlscan.Querier, userID string, limit, offset int) ([]Conversation, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT id, user_id, title, created_at, updated_at FROM conversations WHERE user_id = ? ORDER BY updated_at DESC LIMIT ? OFFSET ?`
	var conversations []Conversation
	err := sqlscan.Select(ctx, db, &conversations, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	return conversations, nil
}

// CountMessages returns the number of messages in a conversation
func CountMessages(ctx context.Context, db sqlscan.Querier, conversationID string) (int, error) {
	var count int
	err := sqlscan.Get(ctx, db, &count, `SELECT COUNT(*) FROM messages WHERE conversation_id = ?`, conversationID)
	return count, err
}

// DeleteConversation removes a conversation and, via cascade, its messages and
// checkpoint. Reports whether a row was deleted.
func DeleteConversation(ctx context.Context, db Execer, conversationID, userID string) (bool, error) {
	result, err := db.ExecContext(ctx, `DELETE FROM conversations WHERE id = ? AND user_id = ?`, conversationID, userID)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// UpdateConversationTitle sets the conversation title
func UpdateConversationTitle(ctx context.Context, db Execer, conversationID, title string) error {
	_, err := db.ExecContext(ctx, `UPDATE conversations SET title = ?, updated_at = ? WHERE id = ?`, title, time.Now().UTC(), conversationID)
	return err
}

// GetMessages retrieves all messages for a conversation ordered by creation time
func GetMessages(ctx context.Context, db sqlscan.Querier, conversationID string) ([]Message, error) {
	query := `SELECT id, conversation_id, role, content, name, tool_call_id, tool_calls, model, created_at FROM messages WHERE conversation_id = ? ORDER BY created_at, id`
	var messages []Message
	err := sqlscan.Select(ctx, db, &messages, query, conversationID)
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// AppendMessages inserts a batch of messages in one transaction. Each message
// gets the batch base time plus a one-microsecond offset per position, so a
// later load returns the batch in append order even when the wall clock does
// not advance between rows. Bumps the conversation's updated_at.
func AppendMessages(ctx context.Context, db *sql.DB, conversationID string, messages []Message) error {
	if len(messages) == 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	base := time.Now().UTC()
	query := `INSERT INTO messages (id, conversation_id, role, content, name, tool_call_id, tool_calls, model, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for i := range messages {
		msg := &messages[i]
		if msg.ID == "" {
			msg.ID = uuid.New().String()
		}
		msg.ConversationID = conversationID
		msg.CreatedAt = base.Add(time.Duration(i) * time.Microsecond)

		if _, err := tx.ExecContext(ctx, query, msg.ID, msg.ConversationID, msg.Role, msg.Content, msg.Name, msg.ToolCallID, msg.ToolCalls, msg.Model, msg.CreatedAt); err != nil {
			return fmt.Errorf("failed to insert message: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `UPDATE conversations SET updated_at = ? WHERE id = ?`, base, conversationID); err != nil {
		return fmt.Errorf("failed to touch conversation: %w", err)
	}

	return tx.Commit()
}
