package v1

import (
	"context"
	"sync"
	"time"

	"github.com/duynhne/profile-web/internal/core/domain"
)

type fakeAPI struct {
	mu sync.Mutex

	profile  *domain.ProfileFields
	fetchErr error

	updateRes domain.Result
	updateErr error
	updates   []domain.ProfilePayload

	passwordRes   domain.Result
	passwordErr   error
	passwordCalls [][3]string

	logoutCalls int
	fetchCalls  int

	// onFetch runs inside FetchProfile, before it returns.
	onFetch func()
}

func newFakeAPI(p domain.ProfileFields) *fakeAPI {
	return &fakeAPI{
		profile:     &p,
		updateRes:   domain.Result{Success: true},
		passwordRes: domain.Result{Success: true},
	}
}

func (f *fakeAPI) FetchProfile(ctx context.Context) (domain.ProfileResponse, error) {
	f.mu.Lock()
	f.fetchCalls++
	hook := f.onFetch
	f.mu.Unlock()
	if hook != nil {
		hook()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return domain.ProfileResponse{}, f.fetchErr
	}
	if f.profile == nil {
		return domain.ProfileResponse{Success: true}, nil
	}
	p := f.profile.Clone()
	return domain.ProfileResponse{Success: true, Content: &p}, nil
}

func (f *fakeAPI) UpdateProfile(ctx context.Context, payload domain.ProfilePayload) (domain.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, payload)
	return f.updateRes, f.updateErr
}

func (f *fakeAPI) ChangePassword(ctx context.Context, userID, current, next string) (domain.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.passwordCalls = append(f.passwordCalls, [3]string{userID, current, next})
	return f.passwordRes, f.passwordErr
}

func (f *fakeAPI) Logout(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logoutCalls++
	return nil
}

func (f *fakeAPI) networkCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetchCalls + len(f.updates) + len(f.passwordCalls) + f.logoutCalls
}

type notice struct {
	msg      string
	duration time.Duration
	kind     domain.NotificationKind
}

type fakeUI struct {
	notices   []notice
	prompts   []string
	answer    bool
	navigated []string
}

func (u *fakeUI) Notify(_ context.Context, msg string, d time.Duration, kind domain.NotificationKind) {
	u.notices = append(u.notices, notice{msg: msg, duration: d, kind: kind})
}

func (u *fakeUI) Confirm(_ context.Context, msg, _ string) bool {
	u.prompts = append(u.prompts, msg)
	return u.answer
}

func (u *fakeUI) Navigate(path string) {
	u.navigated = append(u.navigated, path)
}

func (u *fakeUI) interaction() Interaction {
	return Interaction{Notifier: u, Confirmer: u, Navigator: u}
}

func testProfile() domain.ProfileFields {
	dob := time.Date(1985, time.July, 2, 0, 0, 0, 0, time.UTC)
	return domain.ProfileFields{
		UserID:      "42",
		Username:    "gbianchi",
		Role:        "customer",
		FirstName:   "Giulia",
		LastName:    "Bianchi",
		Phone:       "3471234567",
		Email:       "giulia@example.it",
		DateOfBirth: &dob,
		Address:     "Corso Italia 5, Torino",
		Sex:         domain.SexFemale,
	}
}

func newTestEditor(api *fakeAPI, ui *fakeUI) *ProfileEditor {
	return NewProfileEditor(Deps{
		API:       api,
		Notifier:  ui,
		Confirmer: ui,
		Navigator: ui,
		Options:   Options{LoginPath: "/login", NotifyDuration: 3 * time.Second},
	}, EditorState{})
}
