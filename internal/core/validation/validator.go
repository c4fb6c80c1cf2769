// Package validation holds the pure field validation rules for the profile
// editor and the password change dialog. Validation never touches the
// network; it only produces domain.FieldErrors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/duynhne/profile-web/internal/core/domain"
)

// DefaultNameLetters covers ASCII letters, the accented Latin-1 range
// (à, è, é, ì, ò, ù, ...), Latin Extended-A (đ, ł, ő, ...) and the
// Vietnamese letters (ơ, ư, ạ, ễ, ...). It is a character-class body, not a
// full regexp.
const DefaultNameLetters = "A-Za-zÀ-ÖØ-öø-ÿĀ-ſƠ-ưẠ-ỹ"

// PasswordSymbols is the punctuation set accepted as a password symbol.
const PasswordSymbols = "!@#$%^&*()_+-=[]{};':\"\\|,.<>/?`~"

// MinPasswordLength is the minimum number of characters in a new password.
const MinPasswordLength = 8

// Validation messages.
const (
	MsgFirstNameRequired = "First name is required"
	MsgFirstNameInvalid  = "First name can only contain letters, spaces, hyphens and underscores"
	MsgLastNameRequired  = "Last name is required"
	MsgLastNameInvalid   = "Last name can only contain letters, spaces, hyphens and underscores"
	MsgEmailRequired     = "Email is required"
	MsgEmailInvalid      = "Email address is not valid"
	MsgPhoneRequired     = "Phone number is required"
	MsgPhoneInvalid      = "Phone number can only contain up to 15 digits"
	MsgAddressRequired   = "Address is required"
	MsgSexRequired       = "Sex is required"
	MsgDateOfBirthReq    = "Date of birth is required"
	MsgTaxCodeInvalid    = "Tax code must be 10 to 13 digits, optionally preceded by up to 3 letters"
	MsgCompanyInvalid    = "Company name can only contain letters, numbers, spaces, hyphens and underscores"

	MsgCurrentPasswordRequired = "Current password is required"
	MsgNewPasswordRequired     = "New password is required"
	MsgNewPasswordTooShort     = "Password must be at least 8 characters long"
	MsgNewPasswordWeak         = "Password must contain at least one lowercase letter, one uppercase letter, one number and one special character"
	MsgConfirmPasswordRequired = "Please confirm your new password"
	MsgConfirmPasswordMismatch = "Passwords do not match"
)

// Custom validation tags.
const (
	tagNameLetters      = "name_letters"
	tagCompany          = "company"
	tagTaxCode          = "tax_code"
	tagEmailDomain      = "email_domain"
	tagPasswordStrength = "password_strength"
)

var (
	emailDomainPattern = regexp.MustCompile(`@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	taxCodePattern     = regexp.MustCompile(`^[A-Za-z]{0,3}[0-9]{10,13}$`)
	lowerPattern       = regexp.MustCompile(`[a-z]`)
	upperPattern       = regexp.MustCompile(`[A-Z]`)
	digitPattern       = regexp.MustCompile(`[0-9]`)
)

// profileInput is the validated view of domain.ProfileFields. Text fields
// are trimmed before validation.
type profileInput struct {
	FirstName   string     `json:"firstName" validate:"required,name_letters"`
	LastName    string     `json:"lastName" validate:"required,name_letters"`
	Email       string     `json:"email" validate:"required,email,email_domain"`
	Phone       string     `json:"phone" validate:"required,number,max=15"`
	Address     string     `json:"address" validate:"required"`
	Sex         string     `json:"sex" validate:"required"`
	DateOfBirth *time.Time `json:"dateOfBirth" validate:"required"`
	TaxCode     string     `json:"taxCode" validate:"omitempty,tax_code"`
	CompanyName string     `json:"companyName" validate:"omitempty,company"`
}

// passwordInput is the validated view of domain.PasswordChangeRequest.
// Passwords are validated as typed, without trimming.
type passwordInput struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,password_strength"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=NewPassword"`
}

// messages maps a field and failing tag to the message shown to the user.
// The "" entry is the fallback for tags without their own message.
var messages = map[string]map[string]string{
	domain.FieldFirstName:       {"required": MsgFirstNameRequired, "": MsgFirstNameInvalid},
	domain.FieldLastName:        {"required": MsgLastNameRequired, "": MsgLastNameInvalid},
	domain.FieldEmail:           {"required": MsgEmailRequired, "": MsgEmailInvalid},
	domain.FieldPhone:           {"required": MsgPhoneRequired, "": MsgPhoneInvalid},
	domain.FieldAddress:         {"": MsgAddressRequired},
	domain.FieldSex:             {"": MsgSexRequired},
	domain.FieldDateOfBirth:     {"": MsgDateOfBirthReq},
	domain.FieldTaxCode:         {"": MsgTaxCodeInvalid},
	domain.FieldCompanyName:     {"": MsgCompanyInvalid},
	domain.FieldCurrentPassword: {"": MsgCurrentPasswordRequired},
	domain.FieldNewPassword: {
		"required":          MsgNewPasswordRequired,
		"min":               MsgNewPasswordTooShort,
		tagPasswordStrength: MsgNewPasswordWeak,
		"":                  MsgNewPasswordWeak,
	},
	domain.FieldConfirmPassword: {"required": MsgConfirmPasswordRequired, "": MsgConfirmPasswordMismatch},
}

// Options configures the locale-dependent parts of validation.
type Options struct {
	// NameLetters is the regexp character-class body accepted as "letters"
	// in names and company names. Empty means DefaultNameLetters.
	NameLetters string
}

// Validator validates profile and password input.
type Validator struct {
	validate *validator.Validate
}

// New compiles the locale-dependent patterns from opts and registers the
// custom tags.
func New(opts Options) (*Validator, error) {
	letters := opts.NameLetters
	if letters == "" {
		letters = DefaultNameLetters
	}
	if strings.ContainsAny(letters, "[]") {
		return nil, fmt.Errorf("name letter class %q must not contain brackets", letters)
	}

	name, err := regexp.Compile(`^[` + letters + ` _-]+$`)
	if err != nil {
		return nil, fmt.Errorf("compile name pattern: %w", err)
	}
	company, err := regexp.Compile(`^[` + letters + `0-9 _-]+$`)
	if err != nil {
		return nil, fmt.Errorf("compile company pattern: %w", err)
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	})

	for tag, fn := range map[string]validator.Func{
		tagNameLetters:      matches(name),
		tagCompany:          matches(company),
		tagTaxCode:          matches(taxCodePattern),
		tagEmailDomain:      matches(emailDomainPattern),
		tagPasswordStrength: func(fl validator.FieldLevel) bool { return IsStrongPassword(fl.Field().String()) },
	} {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return nil, fmt.Errorf("register %s: %w", tag, err)
		}
	}

	return &Validator{validate: v}, nil
}

// MustNew is New for static options; it panics on an invalid letter class.
func MustNew(opts Options) *Validator {
	v, err := New(opts)
	if err != nil {
		panic("validation: " + err.Error())
	}
	return v
}

// ValidateProfile checks required fields first and then patterns, producing
// at most one message per field.
func (v *Validator) ValidateProfile(p domain.ProfileFields) domain.FieldErrors {
	return v.check(profileInput{
		FirstName:   strings.TrimSpace(p.FirstName),
		LastName:    strings.TrimSpace(p.LastName),
		Email:       strings.TrimSpace(p.Email),
		Phone:       strings.TrimSpace(p.Phone),
		Address:     strings.TrimSpace(p.Address),
		Sex:         string(p.Sex),
		DateOfBirth: p.DateOfBirth,
		TaxCode:     strings.TrimSpace(p.TaxCode),
		CompanyName: strings.TrimSpace(p.CompanyName),
	})
}

// ValidatePassword checks the password change request. Password values are
// compared exactly, without trimming.
func (v *Validator) ValidatePassword(r domain.PasswordChangeRequest) domain.FieldErrors {
	return v.check(passwordInput{
		CurrentPassword: r.CurrentPassword,
		NewPassword:     r.NewPassword,
		ConfirmPassword: r.ConfirmPassword,
	})
}

// IsStrongPassword reports whether pw has a lowercase letter, an uppercase
// letter, a digit and a symbol from PasswordSymbols.
func IsStrongPassword(pw string) bool {
	return lowerPattern.MatchString(pw) &&
		upperPattern.MatchString(pw) &&
		digitPattern.MatchString(pw) &&
		strings.ContainsAny(pw, PasswordSymbols)
}

// check runs the struct tags on input. The validator stops at the first
// failing tag of a field, so each field yields at most one message.
func (v *Validator) check(input any) domain.FieldErrors {
	errs := domain.FieldErrors{}

	err := v.validate.Struct(input)
	if err == nil {
		return errs
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		panic("validation: " + err.Error())
	}
	for _, fe := range fieldErrs {
		errs[fe.Field()] = message(fe.Field(), fe.Tag())
	}
	return errs
}

func message(field, tag string) string {
	byTag := messages[field]
	if msg, ok := byTag[tag]; ok {
		return msg
	}
	return byTag[""]
}

func matches(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}
