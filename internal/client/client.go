package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	JSONContentType = "application/json"
	RequestIDHeader = "X-Request-ID"
	defaultTimeout  = 10 * time.Second
)

type ApiErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Client talks to the remote chat service
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a Client for the service at baseURL
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// BaseURL returns the service root the client was built with
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do sends a JSON request and decodes a JSON response into out.
// A nil payload sends no body, a nil out skips decoding.
func (c *Client) do(ctx context.Context, op, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		reqBytes, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal %s request: %w", op, err)
		}
		body = bytes.NewReader(reqBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		slog.Error("Failed to build request", "op", op, "error", err)
		return &NetworkError{Op: op, Err: err}
	}

	reqID := uuid.NewString()
	req.Header.Set("Content-Type", JSONContentType)
	req.Header.Set("Accept", JSONContentType)
	req.Header.Set(RequestIDHeader, reqID)

	res, err := c.httpClient.Do(req)
	if err != nil {
		slog.Error("Failed to send request", "op", op, "request_id", reqID, "error", err)
		return &NetworkError{Op: op, Err: err}
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		slog.Error("Failed to read response body", "op", op, "request_id", reqID, "error", err)
		return &NetworkError{Op: op, Err: err}
	}

	if err := handleApiError(op, res, resBody); err != nil {
		slog.Error("Api request failed", "op", op, "request_id", reqID, "error", err)
		return err
	}

	slog.Debug("api request completed",
		slog.String("op", op),
		slog.String("request_id", reqID),
		slog.Int("status", res.StatusCode),
	)

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resBody, out); err != nil {
		slog.Error("Failed to unmarshal response body", "op", op, "error", err)
		return &ProtocolError{Op: op, StatusCode: res.StatusCode, Message: "invalid response body", Err: err}
	}
	return nil
}

func handleApiError(op string, res *http.Response, body []byte) error {
	if res.StatusCode >= 200 && res.StatusCode < 300 {
		return nil
	}
	apiErr := ApiErrorResponse{}
	message := http.StatusText(res.StatusCode)
	if err := json.Unmarshal(body, &apiErr); err == nil {
		switch {
		case apiErr.Error != "":
			message = apiErr.Error
		case apiErr.Message != "":
			message = apiErr.Message
		}
	}
	return &ProtocolError{Op: op, StatusCode: res.StatusCode, Message: message}
}
