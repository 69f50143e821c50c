package client

import (
	"errors"
	"fmt"
	"net/http"
)

// NetworkError means the request could not be sent or no response arrived
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error [%s]: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ProtocolError means a response arrived but was unusable: a non-success
// status, an undecodable body or a missing required field
type ProtocolError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("protocol error [%s] status %d: %s: %v", e.Op, e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("protocol error [%s] status %d: %s", e.Op, e.StatusCode, e.Message)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is a ProtocolError carrying a 404
func IsNotFound(err error) bool {
	var protoErr *ProtocolError
	return errors.As(err, &protoErr) && protoErr.StatusCode == http.StatusNotFound
}
