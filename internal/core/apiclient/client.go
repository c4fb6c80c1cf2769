// Package apiclient is the HTTP client for the remote customer API. It maps
// the server's field names onto domain.ProfileFields and turns failed
// responses into *domain.RequestError.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/duynhne/profile-web/internal/core/domain"
	"github.com/duynhne/profile-web/middleware"
)

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 64 << 10

// Client implements domain.ProfileAPI over HTTP/JSON.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

var _ domain.ProfileAPI = (*Client)(nil)

// FetchProfile retrieves the current customer's profile.
func (c *Client) FetchProfile(ctx context.Context) (domain.ProfileResponse, error) {
	var env envelope
	if err := c.do(ctx, "fetch profile", http.MethodGet, "/customers/me", nil, &env); err != nil {
		return domain.ProfileResponse{}, err
	}

	resp := domain.ProfileResponse{Success: env.Success}
	if !env.Success || isEmptyContent(env.Content) {
		return resp, nil
	}

	var dto profileDTO
	if err := json.Unmarshal(env.Content, &dto); err != nil {
		return domain.ProfileResponse{}, &domain.RequestError{Op: "fetch profile", Err: fmt.Errorf("decode profile: %w", err)}
	}
	fields := dto.toDomain()
	resp.Content = &fields
	return resp, nil
}

// UpdateProfile sends the edited profile.
func (c *Client) UpdateProfile(ctx context.Context, payload domain.ProfilePayload) (domain.Result, error) {
	var env envelope
	if err := c.do(ctx, "update profile", http.MethodPut, "/customers/me", payload, &env); err != nil {
		return domain.Result{}, err
	}
	return domain.Result{Success: env.Success}, nil
}

// ChangePassword asks the API to replace the customer's password.
func (c *Client) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) (domain.Result, error) {
	body := map[string]string{
		"currentPassword": currentPassword,
		"newPassword":     newPassword,
	}
	var env envelope
	path := "/customers/" + url.PathEscape(userID) + "/password"
	if err := c.do(ctx, "change password", http.MethodPost, path, body, &env); err != nil {
		return domain.Result{}, err
	}
	return domain.Result{Success: env.Success}, nil
}

// Logout invalidates the caller's session on the API side.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, "logout", http.MethodPost, "/auth/logout", nil, nil)
}

// do performs one request. out may be nil when the response body is ignored.
func (c *Client) do(ctx context.Context, op, method, path string, body any, out *envelope) error {
	ctx, span := middleware.StartSpan(ctx, "api."+strings.ReplaceAll(op, " ", "_"), trace.WithAttributes(
		attribute.String("layer", "client"),
		attribute.String("http.method", method),
		attribute.String("http.path", path),
	))
	defer span.End()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return &domain.RequestError{Op: op, Err: fmt.Errorf("encode request: %w", err)}
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &domain.RequestError{Op: op, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := middleware.AccessTokenFromContext(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		middleware.ObserveAPIRequest(op, "error", time.Since(start))
		span.RecordError(err)
		c.logger.Warn("API request failed", zap.String("op", op), zap.Error(err))
		return &domain.RequestError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	middleware.ObserveAPIRequest(op, strconv.Itoa(resp.StatusCode), time.Since(start))
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode == http.StatusUnauthorized {
		return &domain.RequestError{
			Op:            op,
			StatusCode:    resp.StatusCode,
			ServerMessage: domain.UnauthorizedMessage,
			Err:           domain.ErrUnauthorized,
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		reqErr := &domain.RequestError{
			Op:            op,
			StatusCode:    resp.StatusCode,
			ServerMessage: serverMessage(raw),
			Err:           fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
		if strings.Contains(reqErr.ServerMessage, domain.UnauthorizedMessage) {
			reqErr.Err = domain.ErrUnauthorized
		}
		span.RecordError(reqErr)
		return reqErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return &domain.RequestError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// serverMessage extracts a human-readable message from an error body. The
// API puts it in "content"; "error" and "message" are accepted as fallbacks.
func serverMessage(raw []byte) string {
	var body struct {
		Content json.RawMessage `json:"content"`
		Error   string          `json:"error"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	var content string
	if len(body.Content) > 0 && json.Unmarshal(body.Content, &content) == nil && content != "" {
		return content
	}
	if body.Error != "" {
		return body.Error
	}
	return body.Message
}

func isEmptyContent(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s == "" || s == "null"
}
