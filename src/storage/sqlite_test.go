package storage

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/villaops/villaops/src/agent"
	"github.com/villaops/villaops/src/aisdk"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestConversation(t *testing.T, db *DB, userID string) *Conversation {
	t.Helper()
	conv := &Conversation{UserID: userID, Title: "test conversation"}
	require.NoError(t, CreateConversation(context.Background(), db.DB(), conv))
	return conv
}

func TestOpenRunsMigrations(t *testing.T) {
	db := newTestDB(t)

	// All tables exist after Open.
	for _, table := range []string{"conversations", "messages", "checkpoints", "llm_usage"} {
		var name string
		err := db.DB().QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, "table %s", table)
	}

	// Re-opening the same file is a no-op, not a failure.
	path := filepath.Join(t.TempDir(), "reopen.db")
	first, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, first.Close())
	second, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, second.Close())
}

func TestConversationCRUD(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	userID := uuid.New().String()

	conv := newTestConversation(t, db, userID)
	assert.NotEmpty(t, conv.ID)
	assert.False(t, conv.CreatedAt.IsZero())

	got, err := GetConversation(ctx, db.DB(), conv.ID, userID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "test conversation", got.Title)

	// Another user cannot see it.
	got, err = GetConversation(ctx, db.DB(), conv.ID, uuid.New().String())
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, UpdateConversationTitle(ctx, db.DB(), conv.ID, "renamed"))
	got, err = GetConversation(ctx, db.DB(), conv.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Title)

	deleted, err := DeleteConversation(ctx, db.DB(), conv.ID, userID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = DeleteConversation(ctx, db.DB(), conv.ID, userID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestListConversationsMostRecentFirst(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	userID := uuid.New().String()

	first := newTestConversation(t, db, userID)
	second := newTestConversation(t, db, userID)
	newTestConversation(t, db, uuid.New().String()) // other user

	// Appending a message bumps updated_at, moving first to the top.
	require.NoError(t, AppendMessages(ctx, db.DB(), first.ID, []Message{
		{Role: aisdk.RoleUser, Content: "hello"},
	}))

	conversations, err := ListConversations(ctx, db.DB(), userID, 0, 0)
	require.NoError(t, err)
	require.Len(t, conversations, 2)
	assert.Equal(t, first.ID, conversations[0].ID)
	assert.Equal(t, second.ID, conversations[1].ID)

	// Pagination.
	page, err := ListConversations(ctx, db.DB(), userID, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, second.ID, page[0].ID)
}

func TestAppendMessagesPreservesOrder(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	conv := newTestConversation(t, db, uuid.New().String())

	name := "item_lookup"
	callID := "call_1"
	batch := []Message{
		{Role: aisdk.RoleUser, Content: "find it"},
		{Role: aisdk.RoleAssistant, ToolCalls: ToolCallsJSON{{
			ID:       callID,
			Type:     "function",
			Function: aisdk.FunctionCall{Name: name, Arguments: json.RawMessage(`{}`)},
		}}},
		{Role: aisdk.RoleTool, Content: `{"found":true}`, Name: &name, ToolCallID: &callID},
		{Role: aisdk.RoleAssistant, Content: "found it"},
	}
	require.NoError(t, AppendMessages(ctx, db.DB(), conv.ID, batch))

	messages, err := GetMessages(ctx, db.DB(), conv.ID)
	require.NoError(t, err)
	require.Len(t, messages, 4)

	// Rows within one batch share a base time with a strictly increasing
	// microsecond offset, so load order matches append order.
	roles := make([]string, 0, len(messages))
	for i, msg := range messages {
		roles = append(roles, msg.Role)
		if i > 0 {
			assert.True(t, messages[i-1].CreatedAt.Before(msg.CreatedAt))
		}
	}
	assert.Equal(t, []string{aisdk.RoleUser, aisdk.RoleAssistant, aisdk.RoleTool, aisdk.RoleAssistant}, roles)

	// The tool call survived the round trip.
	require.Len(t, messages[1].ToolCalls, 1)
	assert.Equal(t, callID, messages[1].ToolCalls[0].ID)
	require.NotNil(t, messages[2].ToolCallID)
	assert.Equal(t, callID, *messages[2].ToolCallID)

	count, err := CountMessages(ctx, db.DB(), conv.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestDeleteConversationCascades(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	userID := uuid.New().String()
	conv := newTestConversation(t, db, userID)

	require.NoError(t, AppendMessages(ctx, db.DB(), conv.ID, []Message{
		{Role: aisdk.RoleUser, Content: "hello"},
	}))
	require.NoError(t, SaveCheckpoint(ctx, db.DB(), &Checkpoint{
		ConversationID: conv.ID,
		UserID:         userID,
		Calls:          `[]`,
	}))

	deleted, err := DeleteConversation(ctx, db.DB(), conv.ID, userID)
	require.NoError(t, err)
	require.True(t, deleted)

	count, err := CountMessages(ctx, db.DB(), conv.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	cp, err := GetCheckpoint(ctx, db.DB(), conv.ID)
	require.NoError(t, err)
	assert.Nil(t, cp)
}

func TestCheckpointStoreRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	userID := uuid.New()
	conv := newTestConversation(t, db, userID.String())
	convID := uuid.MustParse(conv.ID)

	store := &Checkpoints{DB: db.DB()}

	// Nothing suspended yet.
	cp, err := store.Load(ctx, convID)
	require.NoError(t, err)
	assert.Nil(t, cp)

	calls := []aisdk.ToolCall{
		{ID: "call_1", Type: "function", Function: aisdk.FunctionCall{Name: "item_lookup", Arguments: json.RawMessage(`{}`)}},
		{ID: "call_2", Type: "function", Function: aisdk.FunctionCall{Name: "item_delete", Arguments: json.RawMessage(`{"id":"42"}`)}},
	}
	require.NoError(t, store.Save(ctx, &agent.Checkpoint{
		ConversationID: convID,
		UserID:         userID,
		Calls:          calls,
		Next:           1,
	}))

	cp, err = store.Load(ctx, convID)
	require.NoError(t, err)
	require.NotNil(t, cp)
	assert.Equal(t, userID, cp.UserID)
	assert.Equal(t, 1, cp.Next)
	require.Len(t, cp.Calls, 2)
	assert.Equal(t, "item_delete", cp.Calls[1].Function.Name)

	// Saving again upserts rather than conflicting.
	require.NoError(t, store.Save(ctx, &agent.Checkpoint{
		ConversationID: convID,
		UserID:         userID,
		Calls:          calls[:1],
		Next:           0,
	}))
	cp, err = store.Load(ctx, convID)
	require.NoError(t, err)
	require.NotNil(t, cp)
	assert.Equal(t, 0, cp.Next)
	assert.Len(t, cp.Calls, 1)

	require.NoError(t, store.Clear(ctx, convID))
	cp, err = store.Load(ctx, convID)
	require.NoError(t, err)
	assert.Nil(t, cp)
}

func TestRecordUsage(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	userID := uuid.New().String()
	conv := newTestConversation(t, db, userID)

	require.NoError(t, RecordUsage(ctx, db.DB(), &UsageRecord{
		ConversationID:   &conv.ID,
		UserID:           userID,
		Model:            "test-model",
		PromptTokens:     100,
		CompletionTokens: 20,
		TotalTokens:      120,
	}))

	var total int
	err := db.DB().QueryRow(`SELECT SUM(total_tokens) FROM llm_usage WHERE user_id = ?`, userID).Scan(&total)
	require.NoError(t, err)
	assert.Equal(t, 120, total)
}
