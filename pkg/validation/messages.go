package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var fieldMessages = map[string]map[string]string{
	"Email": {
		"required": "email is required",
		"email":    "email is not a valid address",
	},
	"Password": {
		"required":       "password is required",
		"min":            "password must be at least 8 characters",
		"strongpassword": "password must contain an upper-case letter, a lower-case letter, and a digit",
	},
	"NewPassword": {
		"required":       "new password is required",
		"min":            "new password must be at least 8 characters",
		"strongpassword": "new password must contain an upper-case letter, a lower-case letter, and a digit",
	},
	"CurrentPassword": {
		"required": "current password is required",
	},
	"ConfirmPassword": {
		"required": "password confirmation is required",
	},
	"FirstName": {
		"required": "first name is required",
	},
	"LastName": {
		"required": "last name is required",
	},
	"Token": {
		"required": "token is required",
	},
}

func defaultMessage(field, tag, param string) string {
	name := strings.ToLower(field)
	switch tag {
	case "required":
		return fmt.Sprintf("%s is required", name)
	case "email":
		return fmt.Sprintf("%s is not a valid address", name)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", name, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", name, param)
	case "url":
		return fmt.Sprintf("%s is not a valid URL", name)
	default:
		return fmt.Sprintf("%s is invalid", name)
	}
}

// FormatErrors renders a binding error as user-facing messages. Non-field
// errors (malformed JSON, wrong types) collapse into one generic message so
// parser internals never reach the client.
func FormatErrors(err error) []string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []string{"request body is invalid"}
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		if custom, ok := fieldMessages[e.Field()]; ok {
			if msg, ok := custom[e.Tag()]; ok {
				messages = append(messages, msg)
				continue
			}
		}
		messages = append(messages, defaultMessage(e.Field(), e.Tag(), e.Param()))
	}

	return messages
}
