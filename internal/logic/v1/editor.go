package v1

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/duynhne/profile-web/internal/core/domain"
	"github.com/duynhne/profile-web/middleware"
)

// errNoContent marks a fetch that succeeded at transport level but carried no profile.
var errNoContent = errors.New("profile response has no content")

// EditorState is the persistent state of a ProfileEditor. It holds no
// password material.
type EditorState struct {
	Working   domain.ProfileFields `json:"working"`
	Baseline  domain.ProfileFields `json:"baseline"`
	Editing   bool                 `json:"editing"`
	Loading   bool                 `json:"loading"`
	LoadError string               `json:"loadError,omitempty"`
	Errors    domain.FieldErrors   `json:"errors,omitempty"`
	Dialog    DialogState          `json:"dialog"`
}

// ProfileEditor shows the customer's profile, switches between view and
// edit mode, validates edits and submits them.
//
// A ProfileEditor is driven by one caller at a time. Overlapping Load,
// Submit or Cancel calls are rejected with domain.ErrBusy.
type ProfileEditor struct {
	deps     Deps
	state    EditorState
	inFlight atomic.Bool
	dialog   *PasswordDialog
}

// NewProfileEditor restores an editor from state. Pass a zero EditorState
// for a fresh mount and call Load.
func NewProfileEditor(deps Deps, state EditorState) *ProfileEditor {
	deps = deps.withDefaults()
	if state.Errors == nil {
		state.Errors = domain.FieldErrors{}
	}
	e := &ProfileEditor{deps: deps, state: state}
	e.dialog = newPasswordDialog(deps, &e.state.Dialog)
	return e
}

// State returns a copy of the editor state for persistence.
func (e *ProfileEditor) State() EditorState {
	s := e.state
	s.Working = e.state.Working.Clone()
	s.Baseline = e.state.Baseline.Clone()
	s.Errors = e.state.Errors.Clone()
	s.Dialog = e.state.Dialog.clone()
	return s
}

// Errors returns a copy of the current field errors.
func (e *ProfileEditor) Errors() domain.FieldErrors { return e.state.Errors.Clone() }

// Editing reports whether the editor is in edit mode.
func (e *ProfileEditor) Editing() bool { return e.state.Editing }

// Load fetches the profile on mount. A failed or empty fetch leaves the
// fields at their empty defaults and sets a visible load error.
func (e *ProfileEditor) Load(ctx context.Context) error {
	if !e.inFlight.CompareAndSwap(false, true) {
		return domain.ErrBusy
	}
	defer e.inFlight.Store(false)

	ctx, span := middleware.StartSpan(ctx, "profile.load", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	e.state.Loading = true
	defer func() { e.state.Loading = false }()

	fields, err := e.fetch(ctx)
	if err != nil {
		span.RecordError(err)
		e.state.Working = domain.ProfileFields{}
		e.state.Baseline = domain.ProfileFields{}
		e.state.LoadError = MsgProfileLoadFailed
		e.handleFetchError(err)
		return fmt.Errorf("load profile: %w", err)
	}

	e.state.Working = fields.Clone()
	e.state.Baseline = fields.Clone()
	e.state.LoadError = ""
	e.state.Dialog.UserID = fields.UserID
	span.SetAttributes(attribute.String("user.id", fields.UserID))
	return nil
}

// SetEditing switches between view-only and editable rendering. It never fetches.
func (e *ProfileEditor) SetEditing(on bool) {
	e.state.Editing = on
}

// SetField applies one input event to the working copy and clears that
// field's error. Errors are recomputed only on submit. It fails with
// domain.ErrNotEditing in view-only mode.
func (e *ProfileEditor) SetField(name, value string) error {
	if !e.state.Editing {
		return domain.ErrNotEditing
	}
	w := &e.state.Working
	switch name {
	case domain.FieldFirstName:
		w.FirstName = value
	case domain.FieldLastName:
		w.LastName = value
	case domain.FieldPhone:
		w.Phone = value
	case domain.FieldEmail:
		w.Email = value
	case domain.FieldAddress:
		w.Address = value
	case domain.FieldCompanyName:
		w.CompanyName = value
	case domain.FieldTaxCode:
		w.TaxCode = value
	case domain.FieldSex:
		w.Sex = domain.ParseSex(value)
	case domain.FieldDateOfBirth:
		w.DateOfBirth = parseDateInput(value)
	default:
		return fmt.Errorf("%w: %q", domain.ErrFieldNotEditable, name)
	}
	delete(e.state.Errors, name)
	return nil
}

// Validate recomputes the full error set from the working copy and reports
// whether it is empty.
func (e *ProfileEditor) Validate() bool {
	e.state.Errors = e.deps.Validator.ValidateProfile(e.state.Working)
	return e.state.Errors.Valid()
}

// Submit validates and sends the working copy. A changed email asks for
// consent first and logs the customer out after a successful update.
// Only an editor in edit mode can submit.
func (e *ProfileEditor) Submit(ctx context.Context) (Outcome, error) {
	if !e.inFlight.CompareAndSwap(false, true) {
		return "", domain.ErrBusy
	}
	defer e.inFlight.Store(false)

	if !e.state.Editing {
		return "", domain.ErrNotEditing
	}

	ctx, span := middleware.StartSpan(ctx, "profile.submit", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("user.id", e.state.Baseline.UserID),
	))
	defer span.End()

	outcome, err := e.submit(ctx)
	span.SetAttributes(attribute.String("outcome", string(outcome)))
	middleware.RecordFormSubmission("profile", string(outcome))
	return outcome, err
}

func (e *ProfileEditor) submit(ctx context.Context) (Outcome, error) {
	logger := e.deps.Logger.With(zap.String("user_id", e.state.Baseline.UserID))

	if !e.Validate() {
		logger.Info("Profile submit rejected by validation", zap.Int("errors", len(e.state.Errors)))
		return OutcomeInvalid, nil
	}

	emailChanged := strings.TrimSpace(e.state.Working.Email) != strings.TrimSpace(e.state.Baseline.Email)
	if emailChanged && !e.deps.Confirmer.Confirm(ctx, EmailChangeConfirmMessage, EmailChangeConfirmKind) {
		logger.Info("Email change declined")
		return OutcomeDeclined, nil
	}

	payload := domain.NewProfilePayload(e.state.Working)
	res, err := e.deps.API.UpdateProfile(ctx, payload)
	if err != nil {
		return e.requestFailed(ctx, logger, err)
	}
	if !res.Success {
		logger.Warn("Profile update returned no success indicator")
		e.notify(ctx, MsgProfileUpdateFailed, domain.NotifyFail)
		return OutcomeFailure, nil
	}

	e.state.Editing = false
	e.state.Baseline = e.state.Working.Clone()
	e.notify(ctx, MsgProfileUpdated, domain.NotifyComplete)
	logger.Info("Profile updated", zap.Bool("email_changed", emailChanged))

	if emailChanged {
		if err := e.deps.API.Logout(ctx); err != nil {
			logger.Warn("Logout after email change failed", zap.Error(err))
		}
		e.deps.Navigator.Navigate(e.deps.Options.LoginPath)
	}
	return OutcomeSuccess, nil
}

// Cancel discards local edits: the working copy falls back to the baseline
// and a fresh fetch replaces both when it succeeds.
func (e *ProfileEditor) Cancel(ctx context.Context) error {
	if !e.inFlight.CompareAndSwap(false, true) {
		return domain.ErrBusy
	}
	defer e.inFlight.Store(false)

	ctx, span := middleware.StartSpan(ctx, "profile.cancel", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	e.state.Working = e.state.Baseline.Clone()
	e.state.Errors = domain.FieldErrors{}
	e.state.Editing = false

	fields, err := e.fetch(ctx)
	if err != nil {
		span.RecordError(err)
		e.handleFetchError(err)
		return fmt.Errorf("reload profile: %w", err)
	}
	e.state.Working = fields.Clone()
	e.state.Baseline = fields.Clone()
	e.state.LoadError = ""
	e.state.Dialog.UserID = fields.UserID
	return nil
}

// PasswordDialog returns the child dialog. Its open flag lives in the
// editor's state.
func (e *ProfileEditor) PasswordDialog() *PasswordDialog { return e.dialog }

// OpenPasswordDialog opens the dialog for the active user.
func (e *ProfileEditor) OpenPasswordDialog() {
	e.dialog.open(e.state.Baseline.UserID)
}

// ClosePasswordDialog closes the dialog and discards its input.
func (e *ProfileEditor) ClosePasswordDialog() {
	e.dialog.Close()
}

func (e *ProfileEditor) fetch(ctx context.Context) (domain.ProfileFields, error) {
	resp, err := e.deps.API.FetchProfile(ctx)
	if err != nil {
		return domain.ProfileFields{}, err
	}
	if !resp.Success || resp.Content == nil {
		return domain.ProfileFields{}, errNoContent
	}
	return *resp.Content, nil
}

func (e *ProfileEditor) handleFetchError(err error) {
	e.deps.Logger.Warn("Failed to fetch profile", zap.Error(err))
	if domain.IsUnauthorized(err) {
		e.deps.Navigator.Navigate(e.deps.Options.LoginPath)
	}
}

func (e *ProfileEditor) requestFailed(ctx context.Context, logger *zap.Logger, err error) (Outcome, error) {
	if domain.IsUnauthorized(err) {
		logger.Warn("Profile update unauthorized, redirecting to login")
		e.deps.Navigator.Navigate(e.deps.Options.LoginPath)
		return OutcomeUnauthorized, err
	}
	logger.Error("Failed to update profile", zap.Error(err))
	e.notify(ctx, domain.DisplayMessage(err), domain.NotifyFail)
	return OutcomeFailure, err
}

func (e *ProfileEditor) notify(ctx context.Context, msg string, kind domain.NotificationKind) {
	e.deps.Notifier.Notify(ctx, msg, e.deps.Options.NotifyDuration, kind)
}

// parseDateInput reads a date input value. Empty or malformed input means absent.
func parseDateInput(v string) *time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	t, err := time.Parse(domain.DateLayout, v)
	if err != nil {
		return nil
	}
	return &t
}
