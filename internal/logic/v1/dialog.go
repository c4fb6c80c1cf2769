package v1

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/duynhne/profile-web/internal/core/domain"
	"github.com/duynhne/profile-web/middleware"
)

// DialogState is the parent-owned state of the password dialog.
type DialogState struct {
	Open    bool               `json:"open"`
	UserID  string             `json:"userId,omitempty"`
	Visible map[string]bool    `json:"visible,omitempty"`
	Errors  domain.FieldErrors `json:"errors,omitempty"`
}

func (s DialogState) clone() DialogState {
	c := s
	c.Errors = s.Errors.Clone()
	if s.Visible != nil {
		c.Visible = make(map[string]bool, len(s.Visible))
		for k, v := range s.Visible {
			c.Visible[k] = v
		}
	}
	return c
}

// PasswordDialog collects and submits a password change. The typed
// passwords live only in the dialog value and are never part of DialogState.
type PasswordDialog struct {
	deps     Deps
	state    *DialogState
	req      domain.PasswordChangeRequest
	inFlight atomic.Bool
}

func newPasswordDialog(deps Deps, state *DialogState) *PasswordDialog {
	if state.Errors == nil {
		state.Errors = domain.FieldErrors{}
	}
	return &PasswordDialog{deps: deps, state: state}
}

// IsOpen reports whether the dialog is shown.
func (d *PasswordDialog) IsOpen() bool { return d.state.Open }

// Errors returns a copy of the dialog's field errors.
func (d *PasswordDialog) Errors() domain.FieldErrors { return d.state.Errors.Clone() }

// Request returns the typed passwords.
func (d *PasswordDialog) Request() domain.PasswordChangeRequest { return d.req }

func (d *PasswordDialog) open(userID string) {
	d.reset()
	d.state.Open = true
	d.state.UserID = userID
}

// Refill puts back passwords typed before the current event. Errors are
// left untouched. It has no effect on a closed dialog.
func (d *PasswordDialog) Refill(req domain.PasswordChangeRequest) {
	if d.state.Open {
		d.req = req
	}
}

// Close hides the dialog and discards its input and errors.
func (d *PasswordDialog) Close() {
	d.reset()
	d.state.Open = false
}

func (d *PasswordDialog) reset() {
	d.req = domain.PasswordChangeRequest{}
	d.state.Errors = domain.FieldErrors{}
	d.state.Visible = nil
}

// SetField updates one password field and clears its error.
func (d *PasswordDialog) SetField(name, value string) error {
	if !d.state.Open {
		return domain.ErrDialogClosed
	}
	switch name {
	case domain.FieldCurrentPassword:
		d.req.CurrentPassword = value
	case domain.FieldNewPassword:
		d.req.NewPassword = value
	case domain.FieldConfirmPassword:
		d.req.ConfirmPassword = value
	default:
		return fmt.Errorf("%w: %q", domain.ErrFieldNotEditable, name)
	}
	delete(d.state.Errors, name)
	return nil
}

// ToggleVisibility flips one field between masked and plain text.
// It has no effect on validation or submission.
func (d *PasswordDialog) ToggleVisibility(name string) error {
	if !d.state.Open {
		return domain.ErrDialogClosed
	}
	switch name {
	case domain.FieldCurrentPassword, domain.FieldNewPassword, domain.FieldConfirmPassword:
	default:
		return fmt.Errorf("%w: %q", domain.ErrFieldNotEditable, name)
	}
	if d.state.Visible == nil {
		d.state.Visible = make(map[string]bool, 3)
	}
	d.state.Visible[name] = !d.state.Visible[name]
	return nil
}

// Visible reports whether a field is shown in plain text.
func (d *PasswordDialog) Visible(name string) bool { return d.state.Visible[name] }

// Validate recomputes the dialog's errors and reports whether there are none.
func (d *PasswordDialog) Validate() bool {
	d.state.Errors = d.deps.Validator.ValidatePassword(d.req)
	return d.state.Errors.Valid()
}

// Submit validates and sends the password change for the dialog's user.
func (d *PasswordDialog) Submit(ctx context.Context) (Outcome, error) {
	if !d.state.Open {
		return "", domain.ErrDialogClosed
	}
	if !d.inFlight.CompareAndSwap(false, true) {
		return "", domain.ErrBusy
	}
	defer d.inFlight.Store(false)

	ctx, span := middleware.StartSpan(ctx, "password.submit", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("user.id", d.state.UserID),
	))
	defer span.End()

	outcome, err := d.submit(ctx)
	span.SetAttributes(attribute.String("outcome", string(outcome)))
	middleware.RecordFormSubmission("password", string(outcome))
	return outcome, err
}

func (d *PasswordDialog) submit(ctx context.Context) (Outcome, error) {
	logger := d.deps.Logger.With(zap.String("user_id", d.state.UserID))

	if !d.Validate() {
		logger.Info("Password change rejected by validation", zap.Int("errors", len(d.state.Errors)))
		return OutcomeInvalid, nil
	}

	res, err := d.deps.API.ChangePassword(ctx, d.state.UserID, d.req.CurrentPassword, d.req.NewPassword)
	if err != nil {
		if domain.IsUnauthorized(err) {
			logger.Warn("Password change unauthorized, redirecting to login")
			d.deps.Navigator.Navigate(d.deps.Options.LoginPath)
			return OutcomeUnauthorized, err
		}
		logger.Error("Failed to change password", zap.Error(err))
		d.notify(ctx, domain.DisplayMessage(err), domain.NotifyFail)
		return OutcomeFailure, err
	}
	if !res.Success {
		logger.Warn("Password change returned no success indicator")
		d.notify(ctx, MsgPasswordChangeFailed, domain.NotifyFail)
		return OutcomeFailure, nil
	}

	d.Close()
	d.notify(ctx, MsgPasswordChanged, domain.NotifyComplete)
	logger.Info("Password changed")
	return OutcomeSuccess, nil
}

func (d *PasswordDialog) notify(ctx context.Context, msg string, kind domain.NotificationKind) {
	d.deps.Notifier.Notify(ctx, msg, d.deps.Options.NotifyDuration, kind)
}
