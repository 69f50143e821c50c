package session

import "fmt"

// NotFoundError reports a session id that is absent from the Store
type NotFoundError struct {
	SessionID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("session not found: %s", e.SessionID)
}
