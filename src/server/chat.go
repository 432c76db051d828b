package server

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/villaops/villaops/src/agent"
	"github.com/villaops/villaops/src/aisdk"
	"github.com/villaops/villaops/src/storage"
	"github.com/villaops/villaops/src/stream"
)

const maxMessageLength = 10000

var resumeActionRE = regexp.MustCompile(`^(approve|cancel)$`)

type chatRequest struct {
	ConversationID string `json:"conversation_id,omitempty"`
	Message        string `json:"message"`
}

type resumeRequest struct {
	Action string `json:"action"`
}

// handleChat runs one agent turn and streams events back over SSE. With no
// conversation_id a new conversation is created, titled from the message.
func (s *Server) handleChat(c echo.Context) error {
	userID := UserID(c)
	ctx := c.Request().Context()

	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	message := strings.TrimSpace(req.Message)
	if message == "" || utf8.RuneCountInString(message) > maxMessageLength {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "message must be between 1 and 10000 characters")
	}

	var conversationID uuid.UUID
	if req.ConversationID != "" {
		id, err := uuid.Parse(req.ConversationID)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "conversation_id must be a UUID")
		}
		conv, err := storage.GetConversation(ctx, s.db.DB(), id.String(), userID.String())
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to load conversation")
		}
		if conv == nil {
			return echo.NewHTTPError(http.StatusNotFound, "conversation not found")
		}

		// A suspended run must be resumed or cancelled first.
		cp, err := s.checkpoints.Load(ctx, id)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to load checkpoint")
		}
		if cp != nil {
			return echo.NewHTTPError(http.StatusConflict, "conversation is awaiting a decision; use the resume endpoint")
		}
		conversationID = id
	} else {
		conv := &storage.Conversation{
			UserID: userID.String(),
			Title:  storage.DeriveTitle(message),
		}
		if err := storage.CreateConversation(ctx, s.db.DB(), conv); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to create conversation")
		}
		conversationID, _ = uuid.Parse(conv.ID)
	}

	userMessage := &aisdk.Message{Role: aisdk.RoleUser, Content: message}
	return s.runConversation(c, userID, conversationID, userMessage, nil, "")
}

// handleResume answers a pending confirmation and streams the rest of the
// suspended turn.
func (s *Server) handleResume(c echo.Context) error {
	userID := UserID(c)
	ctx := c.Request().Context()

	conversationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "conversation id must be a UUID")
	}

	var req resumeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if !resumeActionRE.MatchString(req.Action) {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "action must be approve or cancel")
	}

	conv, err := storage.GetConversation(ctx, s.db.DB(), conversationID.String(), userID.String())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load conversation")
	}
	if conv == nil {
		return echo.NewHTTPError(http.StatusNotFound, "conversation not found")
	}

	cp, err := s.checkpoints.Load(ctx, conversationID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load checkpoint")
	}
	if cp == nil {
		return echo.NewHTTPError(http.StatusConflict, "conversation has no pending confirmation")
	}

	return s.runConversation(c, userID, conversationID, nil, cp, agent.Decision(req.Action))
}

// runConversation drives the agent loop for one turn, streaming events over
// SSE. The run is detached from the request context: a client disconnect
// stops the outbound stream but not the run.
func (s *Server) runConversation(c echo.Context, userID, conversationID uuid.UUID, userMessage *aisdk.Message, resume *agent.Checkpoint, decision agent.Decision) error {
	release, err := s.guard.Acquire(conversationID)
	if err != nil {
		if errors.Is(err, agent.ErrResumeInFlight) {
			return echo.NewHTTPError(http.StatusConflict, "a run is already in progress for this conversation")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to start run")
	}
	defer release()

	reqCtx := c.Request().Context()
	rows, err := storage.GetMessages(reqCtx, s.db.DB(), conversationID.String())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load messages")
	}
	history := storage.ToModelMessages(storage.SanitizeMessages(rows))

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set("Cache-Control", "no-cache")
	resp.Header().Set("Connection", "keep-alive")
	resp.WriteHeader(http.StatusOK)
	resp.Flush()

	disconnected := func() bool {
		select {
		case <-reqCtx.Done():
			return true
		default:
			return false
		}
	}
	events := stream.NewMultiplexer(newSSESink(resp), disconnected, s.logger)

	flush := func(ctx context.Context, messages ...*aisdk.Message) error {
		batch := make([]storage.Message, 0, len(messages))
		for _, m := range messages {
			batch = append(batch, storage.FromModelMessage(conversationID.String(), m, s.cfg.Model))
		}
		return storage.AppendMessages(ctx, s.db.DB(), conversationID.String(), batch)
	}

	// The run outlives a dropped connection; persistence must not be tied
	// to the client.
	runCtx := context.WithoutCancel(reqCtx)

	result, runErr := s.runner.Run(runCtx, &agent.RunRequest{
		ConversationID: conversationID,
		Identity:       agent.Identity{UserID: userID},
		History:        history,
		UserMessage:    userMessage,
		Resume:         resume,
		Decision:       decision,
		Events:         events,
		Flush:          flush,
		Checkpoints:    s.checkpoints,
	})
	if runErr != nil {
		s.logger.Error("agent run failed", "conversation_id", conversationID, "error", runErr)
		events.Error("The assistant run failed. Please try again.")
	}

	if result != nil && result.Usage.TotalTokens > 0 {
		cid := conversationID.String()
		record := &storage.UsageRecord{
			ConversationID:   &cid,
			UserID:           userID.String(),
			Model:            s.cfg.Model,
			PromptTokens:     result.Usage.PromptTokens,
			CompletionTokens: result.Usage.CompletionTokens,
			TotalTokens:      result.Usage.TotalTokens,
		}
		if err := storage.RecordUsage(runCtx, s.db.DB(), record); err != nil {
			s.logger.Warn("failed to record usage", "conversation_id", conversationID, "error", err)
		}
	}

	events.Done(conversationID.String(), runErr == nil)
	return nil
}
