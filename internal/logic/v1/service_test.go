package v1

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/duynhne/profile-web/internal/core/domain"
	"github.com/duynhne/profile-web/internal/core/session"
)

func newTestService(api *fakeAPI) (*ProfileService, *session.MemoryStore) {
	store := session.NewMemoryStore(time.Hour)
	return NewProfileService(api, store, nil, Options{LoginPath: "/login"}), store
}

func TestService_MountAndRestore(t *testing.T) {
	api := newFakeAPI(testProfile())
	svc, _ := newTestService(api)
	ctx := context.Background()
	ui := &fakeUI{}

	res, err := svc.Mount(ctx, "s1", ui.interaction())
	if err != nil {
		t.Fatalf("mount: %v", err)
	}
	if res.View.Profile.Email != "giulia@example.it" || res.View.Profile.SexLabel == "" {
		t.Fatalf("unexpected view %+v", res.View.Profile)
	}

	res, err = svc.Edit(ctx, "s1", ui.interaction(), true)
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if !res.View.Editing {
		t.Fatal("expected edit mode")
	}

	res, err = svc.SetField(ctx, "s1", ui.interaction(), domain.FieldFirstName, "Giuliana")
	if err != nil {
		t.Fatalf("set field: %v", err)
	}
	if res.View.Profile.FirstName != "Giuliana" || !res.View.Editing {
		t.Fatalf("expected restored editor with new value, got %+v", res.View)
	}
	if api.fetchCalls != 1 {
		t.Fatalf("expected state restored from the store, got %d fetches", api.fetchCalls)
	}
}

func TestService_UnknownSessionIsMounted(t *testing.T) {
	api := newFakeAPI(testProfile())
	svc, _ := newTestService(api)

	res, err := svc.Edit(context.Background(), "fresh", (&fakeUI{}).interaction(), true)
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if api.fetchCalls != 1 || res.View.Profile.UserID != "42" {
		t.Fatalf("expected transparent mount, fetches=%d view=%+v", api.fetchCalls, res.View.Profile)
	}
}

func TestService_SubmitWithConfirmation(t *testing.T) {
	api := newFakeAPI(testProfile())
	svc, _ := newTestService(api)
	ctx := context.Background()

	if _, err := svc.Mount(ctx, "s1", (&fakeUI{}).interaction()); err != nil {
		t.Fatalf("mount: %v", err)
	}
	if _, err := svc.Edit(ctx, "s1", (&fakeUI{}).interaction(), true); err != nil {
		t.Fatalf("edit: %v", err)
	}

	declined := &fakeUI{answer: false}
	res, err := svc.Submit(ctx, "s1", declined.interaction(), map[string]string{domain.FieldEmail: "other@example.it"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.Outcome != OutcomeDeclined || len(api.updates) != 0 {
		t.Fatalf("expected decline without update, got %q / %d updates", res.Outcome, len(api.updates))
	}

	accepted := &fakeUI{answer: true}
	res, err = svc.Submit(ctx, "s1", accepted.interaction(), nil)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.Outcome != OutcomeSuccess || api.logoutCalls != 1 {
		t.Fatalf("expected success with logout, got %q / %d logouts", res.Outcome, api.logoutCalls)
	}
	if len(accepted.navigated) != 1 || accepted.navigated[0] != "/login" {
		t.Fatalf("expected navigation to login, got %v", accepted.navigated)
	}
}

func TestService_SubmitRejectsImmutableField(t *testing.T) {
	api := newFakeAPI(testProfile())
	svc, _ := newTestService(api)
	if _, err := svc.Edit(context.Background(), "s1", (&fakeUI{}).interaction(), true); err != nil {
		t.Fatalf("edit: %v", err)
	}

	_, err := svc.Submit(context.Background(), "s1", (&fakeUI{}).interaction(), map[string]string{domain.FieldUsername: "root"})
	if !errors.Is(err, domain.ErrFieldNotEditable) {
		t.Fatalf("expected ErrFieldNotEditable, got %v", err)
	}
	if len(api.updates) != 0 {
		t.Fatal("rejected submit must not call the API")
	}
}

func TestService_ViewModeRejectsEdits(t *testing.T) {
	api := newFakeAPI(testProfile())
	svc, store := newTestService(api)
	ctx := context.Background()

	if _, err := svc.Mount(ctx, "s1", (&fakeUI{}).interaction()); err != nil {
		t.Fatalf("mount: %v", err)
	}
	if _, err := svc.SetField(ctx, "s1", (&fakeUI{}).interaction(), domain.FieldFirstName, "Mallory"); !errors.Is(err, domain.ErrNotEditing) {
		t.Fatalf("set field: expected ErrNotEditing, got %v", err)
	}
	if _, err := svc.Submit(ctx, "s1", (&fakeUI{}).interaction(), map[string]string{domain.FieldFirstName: "Mallory"}); !errors.Is(err, domain.ErrNotEditing) {
		t.Fatalf("submit with fields: expected ErrNotEditing, got %v", err)
	}
	if _, err := svc.Submit(ctx, "s1", (&fakeUI{}).interaction(), nil); !errors.Is(err, domain.ErrNotEditing) {
		t.Fatalf("submit: expected ErrNotEditing, got %v", err)
	}
	if len(api.updates) != 0 {
		t.Fatal("view mode must not reach the update API")
	}

	data, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if strings.Contains(string(data), "Mallory") {
		t.Fatal("rejected input must not be stored")
	}
}

func TestService_PasswordFlow(t *testing.T) {
	api := newFakeAPI(testProfile())
	svc, store := newTestService(api)
	ctx := context.Background()
	ui := (&fakeUI{}).interaction()

	if _, err := svc.ClosePasswordDialog(ctx, "s1", ui); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := svc.TogglePasswordVisibility(ctx, "s1", ui, domain.FieldNewPassword, domain.PasswordChangeRequest{}); !errors.Is(err, domain.ErrDialogClosed) {
		t.Fatalf("expected ErrDialogClosed, got %v", err)
	}

	res, err := svc.OpenPasswordDialog(ctx, "s1", ui)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if res.View.Dialog == nil || res.View.Dialog.UserID != "42" {
		t.Fatalf("expected open dialog for user 42, got %+v", res.View.Dialog)
	}

	req := domain.PasswordChangeRequest{CurrentPassword: "OldPass1!", NewPassword: "Password1!", ConfirmPassword: "Password1!"}
	res, err = svc.TogglePasswordVisibility(ctx, "s1", ui, domain.FieldNewPassword, req)
	if err != nil || !res.View.Dialog.Visible[domain.FieldNewPassword] {
		t.Fatalf("expected visible new password, got %+v / %v", res.View.Dialog, err)
	}
	if res.View.Dialog.NewPassword != req.NewPassword {
		t.Fatal("expected typed passwords to be refilled")
	}

	data, _ := store.Get(ctx, "s1")
	if strings.Contains(string(data), req.CurrentPassword) {
		t.Fatal("session must not contain passwords")
	}

	res, err = svc.SubmitPassword(ctx, "s1", ui, req)
	if err != nil {
		t.Fatalf("submit password: %v", err)
	}
	if res.Outcome != OutcomeSuccess || res.View.Dialog != nil {
		t.Fatalf("expected closed dialog after success, got %q / %+v", res.Outcome, res.View.Dialog)
	}

	data, _ = store.Get(ctx, "s1")
	for _, secret := range []string{req.CurrentPassword, req.NewPassword} {
		if strings.Contains(string(data), secret) {
			t.Fatal("session must not contain passwords")
		}
	}
}

func TestService_SetPasswordFieldClearsError(t *testing.T) {
	api := newFakeAPI(testProfile())
	svc, _ := newTestService(api)
	ctx := context.Background()
	ui := (&fakeUI{}).interaction()

	if _, err := svc.OpenPasswordDialog(ctx, "s1", ui); err != nil {
		t.Fatalf("open: %v", err)
	}
	res, err := svc.SubmitPassword(ctx, "s1", ui, domain.PasswordChangeRequest{})
	if err != nil || res.Outcome != OutcomeInvalid || len(res.View.Dialog.Errors) != 3 {
		t.Fatalf("expected three errors, got %+v / %v", res.View.Dialog, err)
	}

	typed := domain.PasswordChangeRequest{NewPassword: "x"}
	res, err = svc.SetPasswordField(ctx, "s1", ui, domain.FieldNewPassword, typed)
	if err != nil {
		t.Fatalf("set password field: %v", err)
	}
	if _, ok := res.View.Dialog.Errors[domain.FieldNewPassword]; ok || len(res.View.Dialog.Errors) != 2 {
		t.Fatalf("expected only the new password error cleared, got %v", res.View.Dialog.Errors)
	}

	if _, err := svc.SetPasswordField(ctx, "s1", ui, "pin", typed); !errors.Is(err, domain.ErrFieldNotEditable) {
		t.Fatalf("expected ErrFieldNotEditable, got %v", err)
	}
}

func TestService_FailedSubmitReturnsOutcomeWithoutError(t *testing.T) {
	api := newFakeAPI(testProfile())
	api.updateErr = errors.New("connection reset")
	svc, _ := newTestService(api)
	ui := &fakeUI{}
	if _, err := svc.Edit(context.Background(), "s1", ui.interaction(), true); err != nil {
		t.Fatalf("edit: %v", err)
	}

	res, err := svc.Submit(context.Background(), "s1", ui.interaction(), map[string]string{domain.FieldLastName: "Verdi"})
	if err != nil {
		t.Fatalf("expected the failure to be reported through the outcome, got %v", err)
	}
	if res.Outcome != OutcomeFailure || len(ui.notices) != 1 {
		t.Fatalf("expected one failure notice, got %q / %v", res.Outcome, ui.notices)
	}
	if res.View.Profile.LastName != "Verdi" {
		t.Fatal("failure must keep the user's input")
	}
}

func TestService_BusySession(t *testing.T) {
	api := newFakeAPI(testProfile())
	svc, store := newTestService(api)
	ctx := context.Background()

	unlock, err := store.Lock(ctx, "s1")
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	defer unlock()

	if _, err := svc.Submit(ctx, "s1", (&fakeUI{}).interaction(), nil); !errors.Is(err, domain.ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	if api.networkCalls() != 0 {
		t.Fatal("busy session must not reach the API")
	}
}

func TestService_Forget(t *testing.T) {
	api := newFakeAPI(testProfile())
	svc, store := newTestService(api)
	ctx := context.Background()

	if _, err := svc.Mount(ctx, "s1", (&fakeUI{}).interaction()); err != nil {
		t.Fatalf("mount: %v", err)
	}
	if err := svc.Forget(ctx, "s1"); err != nil {
		t.Fatalf("forget: %v", err)
	}
	if _, err := store.Get(ctx, "s1"); !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
