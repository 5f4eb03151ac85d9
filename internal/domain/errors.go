package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent error conditions in the receiptd domain.
// These errors are returned by the public API and can be checked with errors.Is.
var (
	// ErrAlreadyRunning is returned when Start() is called on a running server.
	ErrAlreadyRunning = errors.New("receiptd: already running")

	// ErrNotRunning is returned when Stop() is called on a stopped server.
	ErrNotRunning = errors.New("receiptd: not running")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("receiptd: invalid configuration")

	// ErrUnsupportedMethod is returned when a request uses any method other
	// than POST. No body is read for such requests.
	ErrUnsupportedMethod = errors.New("receiptd: unsupported method")

	// ErrTruncatedBody is returned when the declared Content-Length exceeds
	// the bytes available before the client closed the stream.
	ErrTruncatedBody = errors.New("receiptd: truncated request body")

	// ErrClientClosed is returned when the client hangs up before sending a
	// request line. This is not a failure; the connection is dropped silently.
	ErrClientClosed = errors.New("receiptd: client closed connection")
)

// CredentialError reports malformed or mismatched key/trust material.
// It is fatal to server startup and is the only per-component error that
// propagates to the process level.
type CredentialError struct {
	// Source names the offending container (keystore or truststore)
	Source string

	// Err is the underlying cause
	Err error
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("credentials: %s: %v", e.Source, e.Err)
}

func (e *CredentialError) Unwrap() error {
	return e.Err
}

// DecodeError reports a request body that is not a valid line item array.
// The whole batch is rejected; there is no partial acceptance.
type DecodeError struct {
	// Reason is a human-readable diagnostic, echoed back to the client
	Reason string
}

func (e *DecodeError) Error() string {
	return "decode: " + e.Reason
}
