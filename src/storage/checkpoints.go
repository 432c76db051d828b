package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/google/uuid"

	"github.com/villaops/villaops/src/agent"
	"github.com/villaops/villaops/src/aisdk"
)

// SaveCheckpoint inserts or replaces the conversation's suspension record
func SaveCheckpoint(ctx context.Context, db Execer, cp *Checkpoint) error {
	now := time.Now().UTC()
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = now
	}
	cp.UpdatedAt = now

	query := `INSERT INTO checkpoints (conversation_id, user_id, calls, next_index, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(conversation_id) DO UPDATE SET user_id = excluded.user_id, calls = excluded.calls, next_index = excluded.next_index, updated_at = excluded.updated_at`
	_, err := db.ExecContext(ctx, query, cp.ConversationID, cp.UserID, cp.Calls, cp.NextIndex, cp.CreatedAt, cp.UpdatedAt)
	return err
}

// GetCheckpoint retrieves the conversation's suspension record, or nil
func GetCheckpoint(ctx context.Context, db sqlscan.Querier, conversationID string) (*Checkpoint, error) {
	query := `SELECT conversation_id, user_id, calls, next_index, created_at, updated_at FROM checkpoints WHERE conversation_id = ?`
	var cp Checkpoint
	err := sqlscan.Get(ctx, db, &cp, query, conversationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, err
	}
	return &cp, nil
}

// ClearCheckpoint removes the conversation's suspension record if present
func ClearCheckpoint(ctx context.Context, db Execer, conversationID string) error {
	_, err := db.ExecContext(ctx, `DELETE FROM checkpoints WHERE conversation_id = ?`, conversationID)
	return err
}

// Checkpoints adapts the checkpoint table to the runner's store interface.
type Checkpoints struct {
	DB ExecQuerier
}

var _ agent.CheckpointStore = (*Checkpoints)(nil)

func (s *Checkpoints) Save(ctx context.Context, cp *agent.Checkpoint) error {
	calls, err := json.Marshal(cp.Calls)
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint calls: %w", err)
	}
	return SaveCheckpoint(ctx, s.DB, &Checkpoint{
		ConversationID: cp.ConversationID.String(),
		UserID:         cp.UserID.String(),
		Calls:          string(calls),
		NextIndex:      cp.Next,
	})
}

func (s *Checkpoints) Clear(ctx context.Context, conversationID uuid.UUID) error {
	return ClearCheckpoint(ctx, s.DB, conversationID.String())
}

// Load retrieves and decodes the conversation's checkpoint, or nil when the
// run is not suspended.
func (s *Checkpoints) Load(ctx context.Context, conversationID uuid.UUID) (*agent.Checkpoint, error) {
	row, err := GetCheckpoint(ctx, s.DB, conversationID.String())
	if err != nil || row == nil {
		return nil, err
	}

	userID, err := uuid.Parse(row.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid checkpoint user id: %w", err)
	}
	var calls []aisdk.ToolCall
	if err := json.Unmarshal([]byte(row.Calls), &calls); err != nil {
		return nil, fmt.Errorf("failed to unmarshal checkpoint calls: %w", err)
	}

	return &agent.Checkpoint{
		ConversationID: conversationID,
		UserID:         userID,
		Calls:          calls,
		Next:           row.NextIndex,
	}, nil
}
