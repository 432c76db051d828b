package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RecordUsage creates a token accounting record for one model invocation
func RecordUsage(ctx context.Context, db Execer, record *UsageRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO llm_usage (id, conversation_id, user_id, model, prompt_tokens, completion_tokens, total_tokens, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, query, record.ID, record.ConversationID, record.UserID, record.Model, record.PromptTokens, record.CompletionTokens, record.TotalTokens, record.CreatedAt)
	return err
}
