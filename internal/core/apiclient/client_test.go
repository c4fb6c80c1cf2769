package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/duynhne/profile-web/internal/core/domain"
	"github.com/duynhne/profile-web/middleware"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL, 2*time.Second, zap.NewNop())
}

func TestFetchProfile_MapsServerFields(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/customers/me" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Errorf("expected forwarded token, got %q", got)
		}
		_, _ = w.Write([]byte(`{
			"success": true,
			"content": {
				"id": 42,
				"username": "mrossi",
				"role": {"name": "customer"},
				"firstName": "Mario",
				"lastName": "Rossi",
				"phone": "3331234567",
				"email": "mario@example.it",
				"dateOfBirth": "1990-03-14T00:00:00.000Z",
				"address": "Via Roma 1",
				"sex": 0,
				"companyName": null,
				"taxCode": "RSS1234567890"
			}
		}`))
	})

	ctx := middleware.WithAccessToken(context.Background(), "tok-1")
	resp, err := c.FetchProfile(ctx)
	if err != nil {
		t.Fatalf("fetch: unexpected error: %v", err)
	}
	if !resp.Success || resp.Content == nil {
		t.Fatalf("expected content, got %+v", resp)
	}

	p := resp.Content
	if p.UserID != "42" || p.Username != "mrossi" || p.Role != "customer" {
		t.Fatalf("identity not mapped: %+v", p)
	}
	if p.Sex != domain.SexFemale {
		t.Fatalf("expected sex %q, got %q", domain.SexFemale, p.Sex)
	}
	if p.DateOfBirthInput() != "1990-03-14" {
		t.Fatalf("expected date 1990-03-14, got %q", p.DateOfBirthInput())
	}
	if p.CompanyName != "" || p.TaxCode != "RSS1234567890" {
		t.Fatalf("optional fields not mapped: %+v", p)
	}
}

func TestFetchProfile_NoContent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success": true, "content": null}`))
	})

	resp, err := c.FetchProfile(context.Background())
	if err != nil {
		t.Fatalf("fetch: unexpected error: %v", err)
	}
	if resp.Content != nil {
		t.Fatalf("expected nil content, got %+v", resp.Content)
	}
}

func TestUpdateProfile_SendsPayload(t *testing.T) {
	var got domain.ProfilePayload
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("expected PUT, got %s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		_, _ = w.Write([]byte(`{"success": true}`))
	})

	dob := "1990-03-14T00:00:00Z"
	res, err := c.UpdateProfile(context.Background(), domain.ProfilePayload{ID: "42", Email: "a@b.it", Sex: 1, DateOfBirth: &dob})
	if err != nil {
		t.Fatalf("update: unexpected error: %v", err)
	}
	if !res.Success {
		t.Fatal("expected success")
	}
	if got.ID != "42" || got.Sex != 1 || got.DateOfBirth == nil || *got.DateOfBirth != dob {
		t.Fatalf("payload not sent as expected: %+v", got)
	}
}

func TestChangePassword_Path(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/customers/42/password" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["currentPassword"] != "old" || body["newPassword"] != "Password1!" {
			t.Errorf("unexpected body %v", body)
		}
		_, _ = w.Write([]byte(`{"success": false}`))
	})

	res, err := c.ChangePassword(context.Background(), "42", "old", "Password1!")
	if err != nil {
		t.Fatalf("change password: unexpected error: %v", err)
	}
	if res.Success {
		t.Fatal("expected success=false to be passed through")
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		body         string
		unauthorized bool
		display      string
	}{
		{name: "401", status: http.StatusUnauthorized, body: `{}`, unauthorized: true, display: domain.UnauthorizedMessage},
		{name: "content message", status: http.StatusBadRequest, body: `{"success":false,"content":"Email already in use"}`, display: "Email already in use"},
		{name: "error field", status: http.StatusConflict, body: `{"error":"conflict"}`, display: "conflict"},
		{name: "unauthorized in body", status: http.StatusForbidden, body: `{"content":"Unauthorized: Invalid credentials"}`, unauthorized: true, display: domain.UnauthorizedMessage},
		{name: "no message", status: http.StatusInternalServerError, body: `oops`, display: "unexpected status 500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := c.UpdateProfile(context.Background(), domain.ProfilePayload{})
			if err == nil {
				t.Fatal("expected error")
			}
			var reqErr *domain.RequestError
			if !errors.As(err, &reqErr) {
				t.Fatalf("expected *domain.RequestError, got %T", err)
			}
			if reqErr.StatusCode != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, reqErr.StatusCode)
			}
			if domain.IsUnauthorized(err) != tt.unauthorized {
				t.Fatalf("expected unauthorized=%v for %v", tt.unauthorized, err)
			}
			if got := domain.DisplayMessage(err); got != tt.display {
				t.Fatalf("expected display %q, got %q", tt.display, got)
			}
		})
	}
}

func TestLogout_TransportError(t *testing.T) {
	c := New("http://127.0.0.1:1", 200*time.Millisecond, nil)

	err := c.Logout(context.Background())
	var reqErr *domain.RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("expected *domain.RequestError, got %v", err)
	}
	if domain.IsUnauthorized(err) {
		t.Fatal("transport error must not be classified as unauthorized")
	}
}
