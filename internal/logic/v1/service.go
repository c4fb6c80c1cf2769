package v1

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/duynhne/profile-web/internal/core/domain"
	"github.com/duynhne/profile-web/internal/core/session"
	"github.com/duynhne/profile-web/internal/core/validation"
	"github.com/duynhne/profile-web/middleware"
)

// Interaction bundles the collaborators scoped to one user interaction
// (one HTTP request in the web layer).
type Interaction struct {
	Notifier  domain.Notifier
	Confirmer domain.Confirmer
	Navigator domain.Navigator
	Logger    *zap.Logger
}

// Result is what a component operation hands back to the view layer.
type Result struct {
	View    EditorView
	Outcome Outcome
}

// ProfileService hosts one ProfileEditor per browser session. Component
// state is restored from the session store, driven by a single event and
// saved again.
type ProfileService struct {
	api       domain.ProfileAPI
	store     session.Store
	validator *validation.Validator
	opts      Options
}

// NewProfileService creates a profile service.
func NewProfileService(api domain.ProfileAPI, store session.Store, validator *validation.Validator, opts Options) *ProfileService {
	return &ProfileService{
		api:       api,
		store:     store,
		validator: validator,
		opts:      opts,
	}
}

// Mount creates a fresh editor for the session and loads the profile.
// A failed load still renders, with empty fields and a load error.
func (s *ProfileService) Mount(ctx context.Context, sessionID string, ui Interaction) (Result, error) {
	return s.run(ctx, "profile.mount", sessionID, ui, true, func(ctx context.Context, e *ProfileEditor) (Outcome, error) {
		return "", nil
	})
}

// Edit switches the editor into or out of edit mode.
func (s *ProfileService) Edit(ctx context.Context, sessionID string, ui Interaction, on bool) (Result, error) {
	return s.run(ctx, "profile.edit", sessionID, ui, false, func(ctx context.Context, e *ProfileEditor) (Outcome, error) {
		e.SetEditing(on)
		return "", nil
	})
}

// SetField applies a single input event.
func (s *ProfileService) SetField(ctx context.Context, sessionID string, ui Interaction, name, value string) (Result, error) {
	return s.run(ctx, "profile.set_field", sessionID, ui, false, func(ctx context.Context, e *ProfileEditor) (Outcome, error) {
		return "", e.SetField(name, value)
	})
}

// Submit applies the posted fields, then submits the editor.
func (s *ProfileService) Submit(ctx context.Context, sessionID string, ui Interaction, fields map[string]string) (Result, error) {
	return s.run(ctx, "profile.submit", sessionID, ui, false, func(ctx context.Context, e *ProfileEditor) (Outcome, error) {
		for name, value := range fields {
			if err := e.SetField(name, value); err != nil {
				return "", err
			}
		}
		return e.Submit(ctx)
	})
}

// Cancel discards edits and reloads the profile.
func (s *ProfileService) Cancel(ctx context.Context, sessionID string, ui Interaction) (Result, error) {
	return s.run(ctx, "profile.cancel", sessionID, ui, false, func(ctx context.Context, e *ProfileEditor) (Outcome, error) {
		if err := e.Cancel(ctx); err != nil {
			ui.Logger.Warn("Profile reload after cancel failed", zap.Error(err))
		}
		return "", nil
	})
}

// OpenPasswordDialog shows the password dialog.
func (s *ProfileService) OpenPasswordDialog(ctx context.Context, sessionID string, ui Interaction) (Result, error) {
	return s.run(ctx, "password.open", sessionID, ui, false, func(ctx context.Context, e *ProfileEditor) (Outcome, error) {
		e.OpenPasswordDialog()
		return "", nil
	})
}

// ClosePasswordDialog hides the password dialog.
func (s *ProfileService) ClosePasswordDialog(ctx context.Context, sessionID string, ui Interaction) (Result, error) {
	return s.run(ctx, "password.close", sessionID, ui, false, func(ctx context.Context, e *ProfileEditor) (Outcome, error) {
		e.ClosePasswordDialog()
		return "", nil
	})
}

// TogglePasswordVisibility flips one password field between masked and plain.
// typed carries the passwords already entered so the form can be refilled.
func (s *ProfileService) TogglePasswordVisibility(ctx context.Context, sessionID string, ui Interaction, name string, typed domain.PasswordChangeRequest) (Result, error) {
	return s.run(ctx, "password.toggle", sessionID, ui, false, func(ctx context.Context, e *ProfileEditor) (Outcome, error) {
		d := e.PasswordDialog()
		d.Refill(typed)
		return "", d.ToggleVisibility(name)
	})
}

// SetPasswordField applies an input event on one password field, clearing
// its error. The value is taken from typed.
func (s *ProfileService) SetPasswordField(ctx context.Context, sessionID string, ui Interaction, name string, typed domain.PasswordChangeRequest) (Result, error) {
	return s.run(ctx, "password.set_field", sessionID, ui, false, func(ctx context.Context, e *ProfileEditor) (Outcome, error) {
		d := e.PasswordDialog()
		d.Refill(typed)
		value, ok := typed.Field(name)
		if !ok {
			return "", fmt.Errorf("%w: %q", domain.ErrFieldNotEditable, name)
		}
		return "", d.SetField(name, value)
	})
}

// SubmitPassword fills the dialog from req and submits it. The passwords
// are never written to the session store.
func (s *ProfileService) SubmitPassword(ctx context.Context, sessionID string, ui Interaction, req domain.PasswordChangeRequest) (Result, error) {
	return s.run(ctx, "password.submit", sessionID, ui, false, func(ctx context.Context, e *ProfileEditor) (Outcome, error) {
		d := e.PasswordDialog()
		for name, value := range map[string]string{
			domain.FieldCurrentPassword: req.CurrentPassword,
			domain.FieldNewPassword:     req.NewPassword,
			domain.FieldConfirmPassword: req.ConfirmPassword,
		} {
			if err := d.SetField(name, value); err != nil {
				return "", err
			}
		}
		return d.Submit(ctx)
	})
}

// Forget drops the session's component state.
func (s *ProfileService) Forget(ctx context.Context, sessionID string) error {
	return s.store.Delete(ctx, sessionID)
}

type editorOp func(ctx context.Context, e *ProfileEditor) (Outcome, error)

// run serializes the session, restores the editor, applies op and saves the
// resulting state. A session without stored state is mounted first.
func (s *ProfileService) run(ctx context.Context, name, sessionID string, ui Interaction, mount bool, op editorOp) (Result, error) {
	ctx, span := middleware.StartSpan(ctx, name, trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	if ui.Logger == nil {
		ui.Logger = zap.NewNop()
	}

	unlock, err := s.store.Lock(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrBusy) {
			middleware.AddSpanEvent(ctx, "session.busy", attribute.String("session.id", sessionID))
		}
		return Result{}, err
	}
	defer unlock()

	var state EditorState
	if !mount {
		state, err = s.restore(ctx, sessionID)
		switch {
		case errors.Is(err, session.ErrNotFound):
			mount = true
		case err != nil:
			span.RecordError(err)
			return Result{}, err
		}
	}

	editor := NewProfileEditor(Deps{
		API:       s.api,
		Notifier:  ui.Notifier,
		Confirmer: ui.Confirmer,
		Navigator: ui.Navigator,
		Validator: s.validator,
		Logger:    ui.Logger,
		Options:   s.opts,
	}, state)

	if mount {
		if err := editor.Load(ctx); err != nil {
			ui.Logger.Warn("Profile load failed", zap.Error(err))
		}
	}

	outcome, opErr := op(ctx, editor)
	if errors.Is(opErr, domain.ErrBusy) {
		return Result{}, opErr
	}

	if err := s.save(ctx, sessionID, editor.State()); err != nil {
		span.RecordError(err)
		return Result{}, err
	}

	res := Result{View: editor.View(), Outcome: outcome}
	// Errors that come with an outcome were already shown to the user.
	if opErr != nil && outcome == "" {
		span.RecordError(opErr)
		return res, opErr
	}
	return res, nil
}

func (s *ProfileService) restore(ctx context.Context, sessionID string) (EditorState, error) {
	data, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return EditorState{}, err
	}
	var state EditorState
	if err := json.Unmarshal(data, &state); err != nil {
		return EditorState{}, fmt.Errorf("decode editor state: %w", err)
	}
	return state, nil
}

func (s *ProfileService) save(ctx context.Context, sessionID string, state EditorState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode editor state: %w", err)
	}
	if err := s.store.Set(ctx, sessionID, data); err != nil {
		return fmt.Errorf("save editor state: %w", err)
	}
	return nil
}
