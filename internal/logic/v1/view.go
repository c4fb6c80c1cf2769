package v1

import "github.com/duynhne/profile-web/internal/core/domain"

// ProfileView is the render model of the profile fields.
type ProfileView struct {
	UserID      string `json:"userId"`
	Username    string `json:"username"`
	Role        string `json:"role"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	DateOfBirth string `json:"dateOfBirth"`
	Address     string `json:"address"`
	Sex         string `json:"sex"`
	SexLabel    string `json:"sexLabel"`
	CompanyName string `json:"companyName"`
	TaxCode     string `json:"taxCode"`
}

// EditorView is the render model of the profile editor.
type EditorView struct {
	Loading   bool               `json:"loading"`
	LoadError string             `json:"loadError,omitempty"`
	Editing   bool               `json:"editing"`
	Profile   ProfileView        `json:"profile"`
	Errors    domain.FieldErrors `json:"errors"`
	Dialog    *DialogView        `json:"passwordDialog,omitempty"`
}

// DialogView is the render model of an open password dialog. Password
// values are only used to refill an HTML form and are never encoded as JSON.
type DialogView struct {
	UserID          string             `json:"userId"`
	Visible         map[string]bool    `json:"visible"`
	Errors          domain.FieldErrors `json:"errors"`
	CurrentPassword string             `json:"-"`
	NewPassword     string             `json:"-"`
	ConfirmPassword string             `json:"-"`
}

// View builds the render model from the working copy.
func (e *ProfileEditor) View() EditorView {
	w := e.state.Working
	return EditorView{
		Loading:   e.state.Loading,
		LoadError: e.state.LoadError,
		Editing:   e.state.Editing,
		Profile: ProfileView{
			UserID:      w.UserID,
			Username:    w.Username,
			Role:        w.Role,
			FirstName:   w.FirstName,
			LastName:    w.LastName,
			Phone:       w.Phone,
			Email:       w.Email,
			DateOfBirth: w.DateOfBirthInput(),
			Address:     w.Address,
			Sex:         string(w.Sex),
			SexLabel:    w.Sex.Label(),
			CompanyName: w.CompanyName,
			TaxCode:     w.TaxCode,
		},
		Errors: e.state.Errors.Clone(),
		Dialog: e.dialog.View(),
	}
}

// View returns nil while the dialog is closed.
func (d *PasswordDialog) View() *DialogView {
	if !d.state.Open {
		return nil
	}
	visible := map[string]bool{
		domain.FieldCurrentPassword: d.state.Visible[domain.FieldCurrentPassword],
		domain.FieldNewPassword:     d.state.Visible[domain.FieldNewPassword],
		domain.FieldConfirmPassword: d.state.Visible[domain.FieldConfirmPassword],
	}
	return &DialogView{
		UserID:          d.state.UserID,
		Visible:         visible,
		Errors:          d.state.Errors.Clone(),
		CurrentPassword: d.req.CurrentPassword,
		NewPassword:     d.req.NewPassword,
		ConfirmPassword: d.req.ConfirmPassword,
	}
}
