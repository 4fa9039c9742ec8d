package oauth

import "errors"

var (
	// ErrNoToken indicates a mailbox row with no stored OAuth token
	ErrNoToken = errors.New("mailbox has no stored token")

	// ErrTokenRevoked indicates the refresh token was rejected by the
	// provider. The mailbox is marked disconnected and must be re-linked.
	ErrTokenRevoked = errors.New("refresh token revoked")

	// ErrMailboxDisconnected indicates the mailbox was previously marked
	// disconnected and triage should skip it.
	ErrMailboxDisconnected = errors.New("mailbox is disconnected")

	// ErrUnknownProvider indicates an unsupported mailbox provider
	ErrUnknownProvider = errors.New("unknown mailbox provider")
)
