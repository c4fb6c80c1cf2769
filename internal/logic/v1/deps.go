package v1

import (
	"time"

	"go.uber.org/zap"

	"github.com/duynhne/profile-web/internal/core/domain"
	"github.com/duynhne/profile-web/internal/core/validation"
)

// User-facing messages.
const (
	EmailChangeConfirmMessage = "Changing your email will log you out and require you to log in again. Do you want to proceed?"
	EmailChangeConfirmKind    = "warning"

	MsgProfileUpdated       = "Profile updated successfully"
	MsgProfileUpdateFailed  = "Failed to update profile"
	MsgPasswordChanged      = "Password changed successfully"
	MsgPasswordChangeFailed = "Failed to change password"
	MsgProfileLoadFailed    = "We could not load your profile. Please try again later."
)

// Default option values.
const (
	DefaultLoginPath      = "/login"
	DefaultNotifyDuration = 3 * time.Second
)

// Outcome is the terminal state of a submit attempt.
type Outcome string

const (
	OutcomeInvalid      Outcome = "invalid"      // validation failed, errors shown
	OutcomeDeclined     Outcome = "declined"     // user declined the confirmation
	OutcomeSuccess      Outcome = "success"      // request accepted
	OutcomeFailure      Outcome = "failure"      // request failed, input retained
	OutcomeUnauthorized Outcome = "unauthorized" // credentials rejected, sent to login
)

// Options holds UI behavior settings.
type Options struct {
	LoginPath      string
	NotifyDuration time.Duration
}

// Deps are the external collaborators shared by the profile components.
type Deps struct {
	API       domain.ProfileAPI
	Notifier  domain.Notifier
	Confirmer domain.Confirmer
	Navigator domain.Navigator
	Validator *validation.Validator
	Logger    *zap.Logger
	Options   Options
}

func (d Deps) withDefaults() Deps {
	if d.Validator == nil {
		d.Validator = validation.MustNew(validation.Options{})
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Options.LoginPath == "" {
		d.Options.LoginPath = DefaultLoginPath
	}
	if d.Options.NotifyDuration <= 0 {
		d.Options.NotifyDuration = DefaultNotifyDuration
	}
	return d
}
