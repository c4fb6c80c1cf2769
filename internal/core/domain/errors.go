package domain

import (
	"errors"
	"strings"
)

// Sentinel errors for profile operations.
var (
	// ErrUnauthorized indicates the remote API rejected the caller's credentials.
	// The UI forces navigation to the login destination.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrBusy indicates a submit or cancel is already in flight for this component.
	// HTTP Status: 409 Conflict
	ErrBusy = errors.New("request already in progress")

	// ErrFieldNotEditable indicates an unknown or immutable field name.
	// HTTP Status: 400 Bad Request
	ErrFieldNotEditable = errors.New("field is not editable")

	// ErrNotEditing indicates a field change or submit while the editor is in
	// view-only mode.
	// HTTP Status: 400 Bad Request
	ErrNotEditing = errors.New("profile is not in edit mode")

	// ErrDialogClosed indicates an event was sent to a closed password dialog.
	// HTTP Status: 409 Conflict
	ErrDialogClosed = errors.New("password dialog is closed")
)

// UnauthorizedMessage is the message the remote API uses for rejected credentials.
const UnauthorizedMessage = "Unauthorized: Invalid credentials"

// RequestError is raised by the remote API collaborator.
type RequestError struct {
	Op            string
	StatusCode    int
	ServerMessage string // data.content from the response body, if any
	Err           error
}

func (e *RequestError) Error() string {
	msg := e.ServerMessage
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Op == "" {
		return msg
	}
	return e.Op + ": " + msg
}

func (e *RequestError) Unwrap() error { return e.Err }

// IsUnauthorized reports whether err signals invalid credentials, either by
// wrapping ErrUnauthorized or by carrying the API's unauthorized message.
func IsUnauthorized(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrUnauthorized) {
		return true
	}
	return strings.Contains(err.Error(), UnauthorizedMessage)
}

// DisplayMessage returns the text shown to the user for a failed request:
// the server-supplied message when present, otherwise the raw error text.
func DisplayMessage(err error) string {
	var reqErr *RequestError
	if errors.As(err, &reqErr) && reqErr.ServerMessage != "" {
		return reqErr.ServerMessage
	}
	if reqErr != nil && reqErr.Err != nil {
		return reqErr.Err.Error()
	}
	return err.Error()
}
