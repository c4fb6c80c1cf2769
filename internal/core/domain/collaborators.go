package domain

import (
	"context"
	"time"
)

// ProfileAPI is the remote customer API consumed by the profile UI.
type ProfileAPI interface {
	FetchProfile(ctx context.Context) (ProfileResponse, error)
	UpdateProfile(ctx context.Context, payload ProfilePayload) (Result, error)
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) (Result, error)
	Logout(ctx context.Context) error
}

// NotificationKind selects the toast style.
type NotificationKind string

const (
	NotifyComplete NotificationKind = "complete"
	NotifyFail     NotificationKind = "fail"
)

// Notifier shows a fire-and-forget toast.
type Notifier interface {
	Notify(ctx context.Context, message string, duration time.Duration, kind NotificationKind)
}

// Confirmer asks the user a yes/no question and reports the answer.
type Confirmer interface {
	Confirm(ctx context.Context, message, kind string) bool
}

// Navigator performs a client-side route change.
type Navigator interface {
	Navigate(path string)
}
