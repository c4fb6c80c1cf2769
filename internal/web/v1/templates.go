package v1

import (
	"embed"
	"html/template"

	"github.com/gin-gonic/gin"

	"github.com/duynhne/profile-web/internal/core/domain"
)

const (
	pageTemplate  = "profile.html"
	errorTemplate = "error.html"
)

//go:embed templates/*.html
var templateFS embed.FS

// LoadTemplates installs the profile page templates on r.
func LoadTemplates(r *gin.Engine) {
	tmpl := template.Must(template.New("").Funcs(template.FuncMap{
		"inputType": func(visible bool) string {
			if visible {
				return "text"
			}
			return "password"
		},
	}).ParseFS(templateFS, "templates/*.html"))
	r.SetHTMLTemplate(tmpl)
}

type sexOption struct {
	Value string
	Label string
}

type inputField struct {
	Name  string
	Label string
	Type  string
	Value string
	Error string
}

type passwordField struct {
	Name    string
	Label   string
	Value   string
	Visible bool
	Error   string
}

// page is the data passed to profile.html.
type page struct {
	profileResponse
	Fields         []inputField
	SexOptions     []sexOption
	PasswordFields []passwordField
}

func newPage(resp profileResponse) page {
	p := resp.View.Profile
	errs := resp.View.Errors
	pg := page{
		profileResponse: resp,
		Fields: []inputField{
			{Name: domain.FieldFirstName, Label: "First name", Type: "text", Value: p.FirstName, Error: errs[domain.FieldFirstName]},
			{Name: domain.FieldLastName, Label: "Last name", Type: "text", Value: p.LastName, Error: errs[domain.FieldLastName]},
			{Name: domain.FieldEmail, Label: "Email", Type: "email", Value: p.Email, Error: errs[domain.FieldEmail]},
			{Name: domain.FieldPhone, Label: "Phone", Type: "tel", Value: p.Phone, Error: errs[domain.FieldPhone]},
			{Name: domain.FieldDateOfBirth, Label: "Date of birth", Type: "date", Value: p.DateOfBirth, Error: errs[domain.FieldDateOfBirth]},
			{Name: domain.FieldAddress, Label: "Address", Type: "text", Value: p.Address, Error: errs[domain.FieldAddress]},
			{Name: domain.FieldCompanyName, Label: "Company name", Type: "text", Value: p.CompanyName, Error: errs[domain.FieldCompanyName]},
			{Name: domain.FieldTaxCode, Label: "Tax code", Type: "text", Value: p.TaxCode, Error: errs[domain.FieldTaxCode]},
		},
		SexOptions: []sexOption{
			{Value: string(domain.SexMale), Label: domain.SexMale.Label()},
			{Value: string(domain.SexFemale), Label: domain.SexFemale.Label()},
		},
	}

	if d := resp.View.Dialog; d != nil {
		pg.PasswordFields = []passwordField{
			{Name: domain.FieldCurrentPassword, Label: "Current password", Value: d.CurrentPassword, Visible: d.Visible[domain.FieldCurrentPassword], Error: d.Errors[domain.FieldCurrentPassword]},
			{Name: domain.FieldNewPassword, Label: "New password", Value: d.NewPassword, Visible: d.Visible[domain.FieldNewPassword], Error: d.Errors[domain.FieldNewPassword]},
			{Name: domain.FieldConfirmPassword, Label: "Confirm new password", Value: d.ConfirmPassword, Visible: d.Visible[domain.FieldConfirmPassword], Error: d.Errors[domain.FieldConfirmPassword]},
		}
	}
	return pg
}
