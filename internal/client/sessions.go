package client

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/gennadis/poshana/internal/chat"
)

// CreateSession asks the service for a fresh session id
func (c *Client) CreateSession(ctx context.Context) (string, error) {
	const op = "create_session"

	var resp NewSessionResponse
	if err := c.do(ctx, op, http.MethodPost, "/chat/new", nil, &resp); err != nil {
		return "", err
	}
	if resp.SessionID == "" {
		return "", &ProtocolError{Op: op, StatusCode: http.StatusOK, Message: "missing session_id"}
	}

	slog.Debug("session created", slog.String("session_id", resp.SessionID))
	return resp.SessionID, nil
}

// FetchHistory returns every session the service stores for userID
func (c *Client) FetchHistory(ctx context.Context, userID string) ([]chat.Session, error) {
	const op = "fetch_history"

	var resp HistoryResponse
	if err := c.do(ctx, op, http.MethodGet, "/chat/history/"+url.PathEscape(userID), nil, &resp); err != nil {
		return nil, err
	}

	sessions := make([]chat.Session, 0, len(resp.ChatSessions))
	for _, s := range resp.ChatSessions {
		if s.SessionID == "" {
			slog.Warn("Skipping history entry without session_id")
			continue
		}
		sessions = append(sessions, s.toSession())
	}

	slog.Debug("history fetched",
		slog.String("user_id", userID),
		slog.Int("count", len(sessions)),
	)
	return sessions, nil
}

// PostMessage sends a user message and returns the assistant reply
func (c *Client) PostMessage(ctx context.Context, req PostRequest) (PostResponse, error) {
	const op = "post_message"

	body := postMessageBody{
		Message: req.Message,
		UserID:  req.UserID,
		Lang:    req.Lang,
	}
	if req.SessionID != "" {
		body.SessionID = &req.SessionID
	}

	var resp postResponseBody
	if err := c.do(ctx, op, http.MethodPost, "/chat/", body, &resp); err != nil {
		return PostResponse{}, err
	}
	if resp.SessionID == "" {
		return PostResponse{}, &ProtocolError{Op: op, StatusCode: http.StatusOK, Message: "missing session_id"}
	}
	if resp.Response == nil {
		return PostResponse{}, &ProtocolError{Op: op, StatusCode: http.StatusOK, Message: "missing response"}
	}
	return PostResponse{SessionID: resp.SessionID, Response: *resp.Response}, nil
}

// ClearSession removes all messages of a session on the service
func (c *Client) ClearSession(ctx context.Context, sessionID string) error {
	return c.do(ctx, "clear_session", http.MethodDelete, "/chat/clear/"+url.PathEscape(sessionID), nil, nil)
}

// DeleteSession removes a session from the service
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	return c.do(ctx, "delete_session", http.MethodDelete, "/chat/delete/"+url.PathEscape(sessionID), nil, nil)
}

// EditMessage replaces the text of a stored message
func (c *Client) EditMessage(ctx context.Context, req EditRequest) error {
	return c.do(ctx, "edit_message", http.MethodPut, "/chat/edit", req, nil)
}
