package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/duynhne/profile-web/internal/core/domain"
)

func validProfile() domain.ProfileFields {
	dob := time.Date(1990, time.March, 14, 0, 0, 0, 0, time.UTC)
	return domain.ProfileFields{
		UserID:      "42",
		Username:    "mrossi",
		Role:        "customer",
		FirstName:   "Niccolò",
		LastName:    "De Santis-Rossi",
		Phone:       "3331234567",
		Email:       "mario.rossi@example.it",
		DateOfBirth: &dob,
		Address:     "Via Roma 1, Milano",
		Sex:         domain.SexMale,
	}
}

func TestValidateProfile_Valid(t *testing.T) {
	v := MustNew(Options{})

	errs := v.ValidateProfile(validProfile())
	if !errs.Valid() {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestValidateProfile_RequiredFieldsYieldOneErrorEach(t *testing.T) {
	v := MustNew(Options{})

	tests := []struct {
		field string
		clear func(p *domain.ProfileFields)
		want  string
	}{
		{domain.FieldFirstName, func(p *domain.ProfileFields) { p.FirstName = "  " }, MsgFirstNameRequired},
		{domain.FieldLastName, func(p *domain.ProfileFields) { p.LastName = "" }, MsgLastNameRequired},
		{domain.FieldEmail, func(p *domain.ProfileFields) { p.Email = "" }, MsgEmailRequired},
		{domain.FieldPhone, func(p *domain.ProfileFields) { p.Phone = "" }, MsgPhoneRequired},
		{domain.FieldAddress, func(p *domain.ProfileFields) { p.Address = "" }, MsgAddressRequired},
		{domain.FieldSex, func(p *domain.ProfileFields) { p.Sex = domain.SexUnspecified }, MsgSexRequired},
		{domain.FieldDateOfBirth, func(p *domain.ProfileFields) { p.DateOfBirth = nil }, MsgDateOfBirthReq},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			p := validProfile()
			tt.clear(&p)

			errs := v.ValidateProfile(p)
			if len(errs) != 1 {
				t.Fatalf("expected exactly one error, got %v", errs)
			}
			if errs[tt.field] != tt.want {
				t.Fatalf("expected %q for %s, got %q", tt.want, tt.field, errs[tt.field])
			}
		})
	}
}

func TestValidateProfile_AllEmpty(t *testing.T) {
	v := MustNew(Options{})

	errs := v.ValidateProfile(domain.ProfileFields{})
	required := []string{
		domain.FieldFirstName, domain.FieldLastName, domain.FieldEmail, domain.FieldPhone,
		domain.FieldAddress, domain.FieldSex, domain.FieldDateOfBirth,
	}
	if len(errs) != len(required) {
		t.Fatalf("expected %d errors, got %v", len(required), errs)
	}
	for _, f := range required {
		if _, ok := errs[f]; !ok {
			t.Errorf("missing error for %s", f)
		}
	}
}

func TestValidateProfile_Phone(t *testing.T) {
	v := MustNew(Options{})

	tests := []struct {
		phone string
		ok    bool
	}{
		{"0", true},
		{"123456789012345", true},
		{"1234567890123456", false},
		{"333-1234567", false},
		{"+393331234567", false},
		{"33312a4567", false},
	}

	for _, tt := range tests {
		t.Run(tt.phone, func(t *testing.T) {
			p := validProfile()
			p.Phone = tt.phone

			errs := v.ValidateProfile(p)
			_, bad := errs[domain.FieldPhone]
			if bad == tt.ok {
				t.Fatalf("phone %q: expected ok=%v, got errors %v", tt.phone, tt.ok, errs)
			}
		})
	}
}

func TestValidateProfile_Names(t *testing.T) {
	v := MustNew(Options{})

	tests := []struct {
		name string
		ok   bool
	}{
		{"Zoë", true},
		{"Anna_Maria", true},
		{"Jean-Luc Picard", true},
		{"R2D2", false},
		{"O'Brien", false},
		{"Łukasz", true},
		{"Đức", true},
		{"Nguyễn Thị", true},
		{"Ωmega", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validProfile()
			p.FirstName = tt.name

			errs := v.ValidateProfile(p)
			if got := errs[domain.FieldFirstName]; (got == "") != tt.ok {
				t.Fatalf("first name %q: expected ok=%v, got %q", tt.name, tt.ok, got)
			}
		})
	}
}

func TestValidateProfile_ConfigurableLetters(t *testing.T) {
	v, err := New(Options{NameLetters: "A-Za-zĄąĆćĘęŁłŃńÓóŚśŹźŻż"})
	if err != nil {
		t.Fatalf("new validator: %v", err)
	}

	p := validProfile()
	p.FirstName = "Łukasz"
	p.LastName = "Wójcik"
	if errs := v.ValidateProfile(p); !errs.Valid() {
		t.Fatalf("expected polish letters to be accepted, got %v", errs)
	}
}

func TestValidateProfile_NarrowLetters(t *testing.T) {
	v := MustNew(Options{NameLetters: "A-Za-z"})

	p := validProfile()
	p.FirstName = "Đức"
	p.LastName = "Nguyễn"
	errs := v.ValidateProfile(p)
	if errs[domain.FieldFirstName] != MsgFirstNameInvalid || errs[domain.FieldLastName] != MsgLastNameInvalid {
		t.Fatalf("expected ASCII-only names to reject accents, got %v", errs)
	}
	if _, ok := errs[domain.FieldCompanyName]; ok {
		t.Fatalf("empty company must stay optional, got %v", errs)
	}
}

func TestNew_RejectsBadLetterClass(t *testing.T) {
	if _, err := New(Options{NameLetters: "a-z]|.*["}); err == nil {
		t.Fatal("expected error for letter class containing brackets")
	}
	if _, err := New(Options{NameLetters: "z-a"}); err == nil {
		t.Fatal("expected error for letter class that does not compile")
	}
}

func TestValidateProfile_Email(t *testing.T) {
	v := MustNew(Options{})

	for _, email := range []string{"plainaddress", "a@b", "a@b.c", "@example.com", "a b@example.com"} {
		p := validProfile()
		p.Email = email
		if got := v.ValidateProfile(p)[domain.FieldEmail]; got != MsgEmailInvalid {
			t.Errorf("email %q: expected %q, got %q", email, MsgEmailInvalid, got)
		}
	}
}

func TestValidateProfile_OptionalFields(t *testing.T) {
	v := MustNew(Options{})

	tests := []struct {
		name    string
		tax     string
		company string
		field   string
	}{
		{name: "tax digits only", tax: "1234567890"},
		{name: "tax with prefix", tax: "ABC1234567890123"},
		{name: "tax too short", tax: "123456789", field: domain.FieldTaxCode},
		{name: "tax too many letters", tax: "ABCD1234567890", field: domain.FieldTaxCode},
		{name: "tax too long", tax: "12345678901234", field: domain.FieldTaxCode},
		{name: "company ok", company: "Rossi Figli-2_srl"},
		{name: "company bad", company: "Rossi & Figli", field: domain.FieldCompanyName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validProfile()
			p.TaxCode = tt.tax
			p.CompanyName = tt.company

			errs := v.ValidateProfile(p)
			if tt.field == "" {
				if !errs.Valid() {
					t.Fatalf("expected no errors, got %v", errs)
				}
				return
			}
			if len(errs) != 1 || errs[tt.field] == "" {
				t.Fatalf("expected a single error on %s, got %v", tt.field, errs)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	v := MustNew(Options{})

	tests := []struct {
		name string
		req  domain.PasswordChangeRequest
		want domain.FieldErrors
	}{
		{
			name: "too short",
			req:  domain.PasswordChangeRequest{CurrentPassword: "old", NewPassword: "abc", ConfirmPassword: "abc"},
			want: domain.FieldErrors{domain.FieldNewPassword: MsgNewPasswordTooShort},
		},
		{
			name: "missing uppercase",
			req:  domain.PasswordChangeRequest{CurrentPassword: "old", NewPassword: "alllowercase1!", ConfirmPassword: "alllowercase1!"},
			want: domain.FieldErrors{domain.FieldNewPassword: MsgNewPasswordWeak},
		},
		{
			name: "strong",
			req:  domain.PasswordChangeRequest{CurrentPassword: "old", NewPassword: "Password1!", ConfirmPassword: "Password1!"},
			want: domain.FieldErrors{},
		},
		{
			name: "confirm mismatch",
			req:  domain.PasswordChangeRequest{CurrentPassword: "old", NewPassword: "Password1!", ConfirmPassword: "Password2!"},
			want: domain.FieldErrors{domain.FieldConfirmPassword: MsgConfirmPasswordMismatch},
		},
		{
			name: "all empty",
			req:  domain.PasswordChangeRequest{},
			want: domain.FieldErrors{
				domain.FieldCurrentPassword: MsgCurrentPasswordRequired,
				domain.FieldNewPassword:     MsgNewPasswordRequired,
				domain.FieldConfirmPassword: MsgConfirmPasswordRequired,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := v.ValidatePassword(tt.req)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for k, msg := range tt.want {
				if got[k] != msg {
					t.Errorf("%s: expected %q, got %q", k, msg, got[k])
				}
			}
		})
	}
}

func TestIsStrongPassword_EverySymbol(t *testing.T) {
	for _, r := range PasswordSymbols {
		pw := "Abcdefg1" + string(r)
		if !IsStrongPassword(pw) {
			t.Errorf("expected %q to be strong", pw)
		}
	}
	if IsStrongPassword("Abcdefg12") {
		t.Error("expected password without symbol to be weak")
	}
	if strings.ContainsAny("Abcdefg1 ", PasswordSymbols) {
		t.Error("space must not count as a symbol")
	}
}
