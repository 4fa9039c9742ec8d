package mail

import "errors"

// Sentinel errors for message parsing.
var (
	// ErrEmptyMessage indicates the raw message had no bytes.
	ErrEmptyMessage = errors.New("empty message")
	// ErrNoTextBody indicates no text/plain or text/html part was found.
	ErrNoTextBody = errors.New("no text body in message")
)
