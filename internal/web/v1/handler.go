package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/duynhne/profile-web/internal/core/domain"
	logicv1 "github.com/duynhne/profile-web/internal/logic/v1"
	"github.com/duynhne/profile-web/middleware"
)

// profileForm is the profile editor form. Absent fields are left unchanged.
type profileForm struct {
	FirstName   *string `form:"firstName" json:"firstName"`
	LastName    *string `form:"lastName" json:"lastName"`
	Phone       *string `form:"phone" json:"phone"`
	Email       *string `form:"email" json:"email"`
	DateOfBirth *string `form:"dateOfBirth" json:"dateOfBirth"`
	Address     *string `form:"address" json:"address"`
	Sex         *string `form:"sex" json:"sex"`
	CompanyName *string `form:"companyName" json:"companyName"`
	TaxCode     *string `form:"taxCode" json:"taxCode"`
	Confirmed   *bool   `form:"confirmed" json:"confirmed"`
}

func (f profileForm) fields() map[string]string {
	out := make(map[string]string, 9)
	for name, v := range map[string]*string{
		domain.FieldFirstName:   f.FirstName,
		domain.FieldLastName:    f.LastName,
		domain.FieldPhone:       f.Phone,
		domain.FieldEmail:       f.Email,
		domain.FieldDateOfBirth: f.DateOfBirth,
		domain.FieldAddress:     f.Address,
		domain.FieldSex:         f.Sex,
		domain.FieldCompanyName: f.CompanyName,
		domain.FieldTaxCode:     f.TaxCode,
	} {
		if v != nil {
			out[name] = *v
		}
	}
	return out
}

type fieldForm struct {
	Name  string `form:"name" json:"name" binding:"required"`
	Value string `form:"value" json:"value"`
}

type editForm struct {
	Editing *bool `form:"editing" json:"editing"`
}

// passwordForm carries the typed passwords on every dialog request. Name
// selects the field for field and toggle events.
type passwordForm struct {
	Name            string `form:"name" json:"name"`
	CurrentPassword string `form:"currentPassword" json:"currentPassword"`
	NewPassword     string `form:"newPassword" json:"newPassword"`
	ConfirmPassword string `form:"confirmPassword" json:"confirmPassword"`
}

func (f passwordForm) request() domain.PasswordChangeRequest {
	return domain.PasswordChangeRequest{
		CurrentPassword: f.CurrentPassword,
		NewPassword:     f.NewPassword,
		ConfirmPassword: f.ConfirmPassword,
	}
}

// profileResponse is the JSON body of every profile endpoint.
type profileResponse struct {
	View     logicv1.EditorView `json:"view"`
	Outcome  logicv1.Outcome    `json:"outcome,omitempty"`
	Notices  []Notice           `json:"notices,omitempty"`
	Confirm  *Prompt            `json:"confirm,omitempty"`
	Redirect string             `json:"redirect,omitempty"`
}

// ProfileHandler serves the profile page and its component events.
type ProfileHandler struct {
	service *logicv1.ProfileService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(service *logicv1.ProfileService) *ProfileHandler {
	return &ProfileHandler{
		service: service,
	}
}

// RegisterRoutes mounts the profile endpoints on g.
func (h *ProfileHandler) RegisterRoutes(g *gin.RouterGroup) {
	g.GET("", h.Show)
	g.POST("/edit", h.Edit)
	g.POST("/field", h.SetField)
	g.POST("/submit", h.Submit)
	g.POST("/cancel", h.Cancel)

	pw := g.Group("/password")
	pw.POST("/open", h.OpenPasswordDialog)
	pw.POST("/close", h.ClosePasswordDialog)
	pw.POST("/field", h.SetPasswordField)
	pw.POST("/toggle", h.TogglePasswordVisibility)
	pw.POST("/submit", h.SubmitPassword)
}

// Show mounts a fresh editor for the session and renders the profile.
func (h *ProfileHandler) Show(c *gin.Context) {
	h.handle(c, "profile.show", nil, func(ctx context.Context, sid string, ui logicv1.Interaction) (logicv1.Result, error) {
		return h.service.Mount(ctx, sid, ui)
	})
}

// Edit switches edit mode on, or off with editing=false.
func (h *ProfileHandler) Edit(c *gin.Context) {
	var form editForm
	if !bind(c, &form) {
		return
	}
	on := form.Editing == nil || *form.Editing
	h.handle(c, "profile.edit", nil, func(ctx context.Context, sid string, ui logicv1.Interaction) (logicv1.Result, error) {
		return h.service.Edit(ctx, sid, ui, on)
	})
}

// SetField applies one input event.
func (h *ProfileHandler) SetField(c *gin.Context) {
	var form fieldForm
	if !bind(c, &form) {
		return
	}
	h.handle(c, "profile.set_field", nil, func(ctx context.Context, sid string, ui logicv1.Interaction) (logicv1.Result, error) {
		return h.service.SetField(ctx, sid, ui, form.Name, form.Value)
	})
}

// Submit applies the posted fields and submits the profile. A changed email
// is only sent once the request carries confirmed=true.
func (h *ProfileHandler) Submit(c *gin.Context) {
	var form profileForm
	if !bind(c, &form) {
		return
	}
	h.handle(c, "profile.submit", form.Confirmed, func(ctx context.Context, sid string, ui logicv1.Interaction) (logicv1.Result, error) {
		return h.service.Submit(ctx, sid, ui, form.fields())
	})
}

// Cancel discards edits and reloads the profile.
func (h *ProfileHandler) Cancel(c *gin.Context) {
	h.handle(c, "profile.cancel", nil, func(ctx context.Context, sid string, ui logicv1.Interaction) (logicv1.Result, error) {
		return h.service.Cancel(ctx, sid, ui)
	})
}

// OpenPasswordDialog shows the change password dialog.
func (h *ProfileHandler) OpenPasswordDialog(c *gin.Context) {
	h.handle(c, "password.open", nil, func(ctx context.Context, sid string, ui logicv1.Interaction) (logicv1.Result, error) {
		return h.service.OpenPasswordDialog(ctx, sid, ui)
	})
}

// ClosePasswordDialog hides the dialog and discards its input.
func (h *ProfileHandler) ClosePasswordDialog(c *gin.Context) {
	h.handle(c, "password.close", nil, func(ctx context.Context, sid string, ui logicv1.Interaction) (logicv1.Result, error) {
		return h.service.ClosePasswordDialog(ctx, sid, ui)
	})
}

// SetPasswordField applies an input event on the password field named by name.
func (h *ProfileHandler) SetPasswordField(c *gin.Context) {
	var form passwordForm
	if !bind(c, &form) {
		return
	}
	h.handle(c, "password.set_field", nil, func(ctx context.Context, sid string, ui logicv1.Interaction) (logicv1.Result, error) {
		return h.service.SetPasswordField(ctx, sid, ui, form.Name, form.request())
	})
}

// TogglePasswordVisibility flips the field named by name between masked and plain.
func (h *ProfileHandler) TogglePasswordVisibility(c *gin.Context) {
	var form passwordForm
	if !bind(c, &form) {
		return
	}
	h.handle(c, "password.toggle", nil, func(ctx context.Context, sid string, ui logicv1.Interaction) (logicv1.Result, error) {
		return h.service.TogglePasswordVisibility(ctx, sid, ui, form.Name, form.request())
	})
}

// SubmitPassword validates and sends the password change.
func (h *ProfileHandler) SubmitPassword(c *gin.Context) {
	var form passwordForm
	if !bind(c, &form) {
		return
	}
	h.handle(c, "password.submit", nil, func(ctx context.Context, sid string, ui logicv1.Interaction) (logicv1.Result, error) {
		return h.service.SubmitPassword(ctx, sid, ui, form.request())
	})
}

type serviceCall func(ctx context.Context, sessionID string, ui logicv1.Interaction) (logicv1.Result, error)

// handle runs one component event for the caller's session and writes the
// outcome as HTML or JSON.
func (h *ProfileHandler) handle(c *gin.Context, name string, confirmed *bool, call serviceCall) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
		attribute.String("event", name),
	))
	defer span.End()

	zapLogger := middleware.GetLoggerFromGinContext(c)

	sid := middleware.GetSessionID(c)
	if sid == "" {
		zapLogger.Error("No session id in context", zap.String("event", name))
		h.fail(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	middleware.AddSpanAttributes(ctx, attribute.String("session.id", sid))

	ui := newInteraction(confirmed)
	res, err := call(ctx, sid, ui.forLogic(zapLogger))
	if err != nil {
		middleware.RecordError(ctx, err)

		switch {
		case errors.Is(err, domain.ErrBusy):
			zapLogger.Info("Request rejected, session busy", zap.String("event", name))
			h.fail(c, http.StatusConflict, "Another request is in progress")
		case errors.Is(err, domain.ErrDialogClosed):
			h.fail(c, http.StatusConflict, "Password dialog is not open")
		case errors.Is(err, domain.ErrNotEditing):
			h.fail(c, http.StatusBadRequest, "Profile is not in edit mode")
		case errors.Is(err, domain.ErrFieldNotEditable):
			h.fail(c, http.StatusBadRequest, requestErrorMessage(err))
		default:
			zapLogger.Error("Profile event failed", zap.String("event", name), zap.Error(err))
			h.fail(c, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	if res.Outcome != "" {
		span.SetAttributes(attribute.String("outcome", string(res.Outcome)))
	}

	resp := profileResponse{
		View:     res.View,
		Outcome:  res.Outcome,
		Notices:  ui.notices,
		Confirm:  ui.prompt,
		Redirect: ui.redirect,
	}

	if resp.Redirect != "" {
		// The customer is logged out or the token was rejected.
		if err := h.service.Forget(ctx, sid); err != nil {
			zapLogger.Warn("Failed to drop session state", zap.Error(err))
		}
		c.SetCookie(middleware.AccessTokenCookie, "", -1, "/", "", false, true)
	}

	status := http.StatusOK
	if res.Outcome == logicv1.OutcomeInvalid {
		status = http.StatusUnprocessableEntity
	}

	if wantsJSON(c) {
		c.JSON(status, resp)
		return
	}
	if resp.Redirect != "" {
		setFlash(c, resp.Notices)
		c.Redirect(http.StatusSeeOther, resp.Redirect)
		return
	}
	if flashed := takeFlash(c); len(flashed) > 0 {
		resp.Notices = append(flashed, resp.Notices...)
	}
	c.HTML(status, pageTemplate, newPage(resp))
}

func (h *ProfileHandler) fail(c *gin.Context, status int, message string) {
	if wantsJSON(c) {
		c.JSON(status, gin.H{"error": message})
		return
	}
	c.HTML(status, errorTemplate, gin.H{"Status": status, "Message": message})
}

// bind decodes a JSON or form body. It writes a 400 and returns false on failure.
func bind(c *gin.Context, obj any) bool {
	if err := c.ShouldBind(obj); err != nil {
		middleware.GetLoggerFromGinContext(c).Debug("Invalid request body", zap.Error(err))
		if wantsJSON(c) {
			c.JSON(http.StatusBadRequest, gin.H{"error": requestErrorMessage(err)})
		} else {
			c.HTML(http.StatusBadRequest, errorTemplate, gin.H{"Status": http.StatusBadRequest, "Message": requestErrorMessage(err)})
		}
		return false
	}
	return true
}

func wantsJSON(c *gin.Context) bool {
	return c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) == gin.MIMEJSON
}
