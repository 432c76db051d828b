package server

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/villaops/villaops/src/storage"
)

type conversationSummary struct {
	storage.Conversation
	MessageCount int `json:"message_count"`
}

type conversationDetail struct {
	storage.Conversation
	Messages []storage.Message `json:"messages"`
}

// listConversations returns the caller's conversations, newest first.
func (s *Server) listConversations(c echo.Context) error {
	userID := UserID(c)
	ctx := c.Request().Context()

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	conversations, err := storage.ListConversations(ctx, s.db.DB(), userID.String(), limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list conversations")
	}

	summaries := make([]conversationSummary, 0, len(conversations))
	for _, conv := range conversations {
		count, err := storage.CountMessages(ctx, s.db.DB(), conv.ID)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to count messages")
		}
		summaries = append(summaries, conversationSummary{Conversation: conv, MessageCount: count})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"conversations": summaries})
}

// getConversation returns one conversation with its sanitized transcript.
func (s *Server) getConversation(c echo.Context) error {
	userID := UserID(c)
	ctx := c.Request().Context()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "conversation id must be a UUID")
	}

	conv, err := storage.GetConversation(ctx, s.db.DB(), id.String(), userID.String())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load conversation")
	}
	if conv == nil {
		return echo.NewHTTPError(http.StatusNotFound, "conversation not found")
	}

	rows, err := storage.GetMessages(ctx, s.db.DB(), id.String())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load messages")
	}

	return c.JSON(http.StatusOK, conversationDetail{
		Conversation: *conv,
		Messages:     storage.SanitizeMessages(rows),
	})
}

// deleteConversation removes a conversation, its messages, and any
// checkpoint.
func (s *Server) deleteConversation(c echo.Context) error {
	userID := UserID(c)
	ctx := c.Request().Context()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "conversation id must be a UUID")
	}

	deleted, err := storage.DeleteConversation(ctx, s.db.DB(), id.String(), userID.String())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete conversation")
	}
	if !deleted {
		return echo.NewHTTPError(http.StatusNotFound, "conversation not found")
	}
	return c.NoContent(http.StatusNoContent)
}
