package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/duynhne/profile-web/internal/core/domain"
)

const msgInvalidRequest = "Invalid request"

// requestErrorMessage turns a binding or field-name error into a message safe
// to show the browser. Raw decoder and validator output never reaches it.
func requestErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		field := lowerFirst(fe.Field())
		if fe.Tag() == "required" {
			return fmt.Sprintf("%s is required", field)
		}
		return fmt.Sprintf("%s is invalid", field)
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return "Malformed request body"
	}

	if errors.Is(err, domain.ErrFieldNotEditable) {
		// Wrapped as `field is not editable: "<name>"`.
		if _, name, ok := strings.Cut(err.Error(), ": "); ok {
			return "Field " + name + " cannot be edited"
		}
		return "Field cannot be edited"
	}

	return msgInvalidRequest
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
