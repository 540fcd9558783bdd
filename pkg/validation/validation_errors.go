package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldLabels maps json field names to user-friendly labels
var FieldLabels = map[string]string{
	"full_name":           "Full name",
	"email":               "Email",
	"date_of_birth":       "Date of birth",
	"years_of_experience": "Years of experience",
	"department":          "Department",
	"resume":              "Resume",
	"status":              "Status",
	"feedback":            "Feedback",
	"username":            "Username",
	"password":            "Password",
	"otp":                 "One-time code",
}

// FieldErrors converts validator.ValidationErrors into a field -> message map.
// Only the first failure per field is kept.
func FieldErrors(err error) map[string]string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return map[string]string{"non_field_errors": err.Error()}
	}

	out := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		if _, seen := out[e.Field()]; seen {
			continue
		}
		out[e.Field()] = formatSingleError(e)
	}
	return out
}

// FormatValidationErrors converts validator.ValidationErrors to user-friendly messages
func FormatValidationErrors(err error) []string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []string{err.Error()}
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, fmt.Sprintf("%s: %s", getFieldLabel(e.Field()), formatSingleError(e)))
	}
	return messages
}

func formatSingleError(e validator.FieldError) string {
	tag := e.Tag()
	param := e.Param()

	switch tag {
	case "required":
		return "This field is required."

	case "min":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("Must be at least %s characters.", param)
		}
		return fmt.Sprintf("Must be at least %s.", param)

	case "max":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("Must be at most %s characters.", param)
		}
		return fmt.Sprintf("Must be at most %s.", param)

	case "oneof":
		return fmt.Sprintf("Must be one of: %s.", strings.Join(strings.Fields(param), ", "))

	case "email":
		return "Enter a valid email address."

	case "datetime":
		return "Use the YYYY-MM-DD format."

	case "valid_name":
		return "Only letters, spaces and common punctuation (. ' - , ( )) are allowed."

	case "no_emoji":
		return "Emoji and special symbols are not allowed."

	case "past_date":
		return "Must be a date in the past."

	default:
		return fmt.Sprintf("Invalid value (%s).", tag)
	}
}

func getFieldLabel(field string) string {
	if label, ok := FieldLabels[field]; ok {
		return label
	}
	return strings.ReplaceAll(field, "_", " ")
}
