package session

import "fmt"

// AuthenticationError indicates the gateway rejected the login
// password. The session performs no further requests after this.
type AuthenticationError struct {
	// State is the login state the gateway reported instead of "ok".
	State string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("gateway rejected login (state %q)", e.State)
}

// ProtocolError indicates the gateway rejected or could not complete an
// operation: a non-empty error message field, or a non-OK overall
// result state. Fatal for the connection; the explicit error message
// always takes precedence when present.
type ProtocolError struct {
	Operation string // "system-config", "pull", "push"
	Message   string // gateway-supplied error message, may be empty
	State     string // overall result state
}

func (e *ProtocolError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s failed: %s", e.Operation, e.Message)
	}
	return fmt.Sprintf("%s failed: result state %q", e.Operation, e.State)
}
