package store

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned for calls on a closed client.
	ErrClosed = errors.New("store: client is closed")
	// ErrUnexpectedReply is returned when a reply has the wrong shape.
	ErrUnexpectedReply = errors.New("store: unexpected reply")
)

// ReplyError is an error reply sent by the server.
type ReplyError struct {
	Command string
	Message string
}

func (e *ReplyError) Error() string {
	return fmt.Sprintf("store: %s: %s", e.Command, e.Message)
}
