package apiclient

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/duynhne/profile-web/internal/core/domain"
)

// envelope is the response wrapper used by every API endpoint.
type envelope struct {
	Success bool            `json:"success"`
	Content json.RawMessage `json:"content"`
}

// profileDTO mirrors the server's customer record.
type profileDTO struct {
	ID          flexID   `json:"id"`
	Username    string   `json:"username"`
	Role        *roleDTO `json:"role"`
	FirstName   string   `json:"firstName"`
	LastName    string   `json:"lastName"`
	Phone       flexID   `json:"phone"`
	Email       string   `json:"email"`
	DateOfBirth *string  `json:"dateOfBirth"`
	Address     string   `json:"address"`
	Sex         *int     `json:"sex"`
	CompanyName *string  `json:"companyName"`
	TaxCode     *string  `json:"taxCode"`
}

type roleDTO struct {
	Name string `json:"name"`
}

// dateLayouts are the date-of-birth encodings seen from the API.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	domain.DateLayout,
}

func (d profileDTO) toDomain() domain.ProfileFields {
	p := domain.ProfileFields{
		UserID:    string(d.ID),
		Username:  d.Username,
		FirstName: d.FirstName,
		LastName:  d.LastName,
		Phone:     string(d.Phone),
		Email:     d.Email,
		Address:   d.Address,
		Sex:       domain.SexFromInt(d.Sex),
	}
	if d.Role != nil {
		p.Role = d.Role.Name
	}
	if d.CompanyName != nil {
		p.CompanyName = *d.CompanyName
	}
	if d.TaxCode != nil {
		p.TaxCode = *d.TaxCode
	}
	if d.DateOfBirth != nil {
		p.DateOfBirth = parseDate(*d.DateOfBirth)
	}
	return p
}

// parseDate keeps only the calendar date; an unknown layout yields nil.
func parseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &d
		}
	}
	return nil
}

// flexID accepts a JSON string or number and keeps its textual form.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}
