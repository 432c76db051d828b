package agent

import (
	"context"

	"github.com/google/uuid"

	"github.com/villaops/villaops/src/aisdk"
)

// Decision is the external answer that resumes a suspended run.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionCancel  Decision = "cancel"
)

// Valid reports whether d is a recognized decision.
func (d Decision) Valid() bool {
	return d == DecisionApprove || d == DecisionCancel
}

// Checkpoint is the serialized position of a suspended run: the tool-call
// batch being executed and the index of the call awaiting a decision. At most
// one checkpoint is active per conversation.
type Checkpoint struct {
	ConversationID uuid.UUID
	UserID         uuid.UUID
	Calls          []aisdk.ToolCall
	Next           int
}

// PendingCall returns the call awaiting a decision.
func (c *Checkpoint) PendingCall() *aisdk.ToolCall {
	if c.Next < 0 || c.Next >= len(c.Calls) {
		return nil
	}
	return &c.Calls[c.Next]
}

// CheckpointStore persists checkpoints so a suspended run survives a process
// restart between suspend and resume.
type CheckpointStore interface {
	Save(ctx context.Context, cp *Checkpoint) error
	Clear(ctx context.Context, conversationID uuid.UUID) error
}
