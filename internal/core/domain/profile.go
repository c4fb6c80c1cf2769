package domain

import (
	"strings"
	"time"
)

// Field names used as FieldErrors keys and form input names.
const (
	FieldUserID      = "userId"
	FieldUsername    = "username"
	FieldRole        = "role"
	FieldFirstName   = "firstName"
	FieldLastName    = "lastName"
	FieldPhone       = "phone"
	FieldEmail       = "email"
	FieldDateOfBirth = "dateOfBirth"
	FieldAddress     = "address"
	FieldSex         = "sex"
	FieldCompanyName = "companyName"
	FieldTaxCode     = "taxCode"

	FieldCurrentPassword = "currentPassword"
	FieldNewPassword     = "newPassword"
	FieldConfirmPassword = "confirmPassword"
)

// DateLayout is the layout used for date-of-birth form inputs.
const DateLayout = "2006-01-02"

// Sex is edited as a string-valued enum and transmitted as an integer.
type Sex string

const (
	SexUnspecified Sex = ""
	SexMale        Sex = "1"
	SexFemale      Sex = "0"
)

// ParseSex maps a form value to Sex. Anything unknown is unspecified.
func ParseSex(v string) Sex {
	switch strings.TrimSpace(v) {
	case string(SexMale):
		return SexMale
	case string(SexFemale):
		return SexFemale
	default:
		return SexUnspecified
	}
}

// SexFromInt maps the wire integer to Sex. nil means unspecified.
func SexFromInt(v *int) Sex {
	if v == nil {
		return SexUnspecified
	}
	switch *v {
	case 1:
		return SexMale
	case 0:
		return SexFemale
	default:
		return SexUnspecified
	}
}

// Int returns the wire value. ok is false for SexUnspecified.
func (s Sex) Int() (v int, ok bool) {
	switch s {
	case SexMale:
		return 1, true
	case SexFemale:
		return 0, true
	default:
		return 0, false
	}
}

// Label is the human readable name shown in read-only mode.
func (s Sex) Label() string {
	switch s {
	case SexMale:
		return "Male"
	case SexFemale:
		return "Female"
	default:
		return ""
	}
}

// ProfileFields is the canonical customer profile shape.
// Username and Role are never user-editable.
type ProfileFields struct {
	UserID      string     `json:"userId"`
	Username    string     `json:"username"`
	Role        string     `json:"role"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	Phone       string     `json:"phone"`
	Email       string     `json:"email"`
	DateOfBirth *time.Time `json:"dateOfBirth,omitempty"`
	Address     string     `json:"address"`
	Sex         Sex        `json:"sex"`
	CompanyName string     `json:"companyName,omitempty"`
	TaxCode     string     `json:"taxCode,omitempty"`
}

// Clone returns a deep copy.
func (p ProfileFields) Clone() ProfileFields {
	c := p
	if p.DateOfBirth != nil {
		dob := *p.DateOfBirth
		c.DateOfBirth = &dob
	}
	return c
}

// DateOfBirthInput formats the date of birth for a date input, or "".
func (p ProfileFields) DateOfBirthInput() string {
	if p.DateOfBirth == nil {
		return ""
	}
	return p.DateOfBirth.Format(DateLayout)
}

// ProfilePayload is the body sent to the update profile API.
type ProfilePayload struct {
	ID          string  `json:"id"`
	FirstName   string  `json:"firstName"`
	LastName    string  `json:"lastName"`
	Phone       string  `json:"phone"`
	Email       string  `json:"email"`
	DateOfBirth *string `json:"dateOfBirth"`
	Address     string  `json:"address"`
	Sex         int     `json:"sex"`
	CompanyName string  `json:"companyName"`
	TaxCode     string  `json:"taxCode"`
}

// NewProfilePayload converts Sex to its integer and normalizes the date of
// birth to an RFC 3339 UTC midnight timestamp (nil when absent).
func NewProfilePayload(p ProfileFields) ProfilePayload {
	sex, _ := p.Sex.Int()
	payload := ProfilePayload{
		ID:          p.UserID,
		FirstName:   strings.TrimSpace(p.FirstName),
		LastName:    strings.TrimSpace(p.LastName),
		Phone:       strings.TrimSpace(p.Phone),
		Email:       strings.TrimSpace(p.Email),
		Address:     strings.TrimSpace(p.Address),
		Sex:         sex,
		CompanyName: strings.TrimSpace(p.CompanyName),
		TaxCode:     strings.TrimSpace(p.TaxCode),
	}
	if p.DateOfBirth != nil {
		d := p.DateOfBirth.UTC()
		ts := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC).Format(time.RFC3339)
		payload.DateOfBirth = &ts
	}
	return payload
}

// FieldErrors maps an invalid field name to a human-readable message.
// A missing key means the field is valid.
type FieldErrors map[string]string

// Valid reports whether no field has an error.
func (e FieldErrors) Valid() bool { return len(e) == 0 }

// Clone returns a copy that never aliases e.
func (e FieldErrors) Clone() FieldErrors {
	c := make(FieldErrors, len(e))
	for k, v := range e {
		c[k] = v
	}
	return c
}

// PasswordChangeRequest exists only while the password dialog is open.
type PasswordChangeRequest struct {
	CurrentPassword string
	NewPassword     string
	ConfirmPassword string
}

// Field returns the value of the named password field.
func (r PasswordChangeRequest) Field(name string) (string, bool) {
	switch name {
	case FieldCurrentPassword:
		return r.CurrentPassword, true
	case FieldNewPassword:
		return r.NewPassword, true
	case FieldConfirmPassword:
		return r.ConfirmPassword, true
	}
	return "", false
}

// ProfileResponse is the result of a profile fetch. Content is nil when the
// server answered without a profile.
type ProfileResponse struct {
	Success bool
	Content *ProfileFields
}

// Result is the acknowledgement returned by write calls.
type Result struct {
	Success bool
}
