package validation

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldLabels maps struct field names to user-friendly labels
var FieldLabels = map[string]string{
	// Job posting fields
	"Title":                  "Job title",
	"Description":            "Job description",
	"RequiredSkills":         "Required skills",
	"RequiredLanguages":      "Required languages",
	"ExperienceYears":        "Years of experience",
	"PreferredNationality":   "Preferred nationality",
	"Country":                "Country",
	"City":                   "City",
	"ContractDurationMonths": "Contract duration",
	"StartDate":              "Start date",
	"Amount":                 "Salary amount",
	"Currency":               "Currency",
	"Period":                 "Salary period",
	"Benefits":               "Benefits",
	"WorkingHours":           "Working hours",
	"DaysOff":                "Days off",
	"AccommodationType":      "Accommodation type",
	"MaxApplications":        "Application limit",
	"ExpiryDays":             "Expiry window",

	// Application fields
	"CoverLetter":    "Cover letter",
	"ProposedSalary": "Proposed salary",
	"AvailableFrom":  "Available from",
	"ScheduledAt":    "Interview date",
	"Notes":          "Notes",
	"Reason":         "Reason",
}

// FormatValidationErrors converts validator.ValidationErrors to user-friendly messages
func FormatValidationErrors(err error) []string {
	var messages []string

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		// Not a validation error, return generic message
		return []string{err.Error()}
	}

	for _, e := range validationErrors {
		messages = append(messages, formatSingleError(e))
	}

	return messages
}

// formatSingleError formats a single validation error to a user-friendly message
func formatSingleError(e validator.FieldError) string {
	label := getFieldLabel(e.Field())
	param := e.Param()

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", label)

	case "min":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at least %s characters", label, param)
		}
		return fmt.Sprintf("%s must be at least %s", label, param)

	case "max":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at most %s characters", label, param)
		}
		return fmt.Sprintf("%s must be at most %s", label, param)

	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, strings.Join(strings.Split(param, " "), ", "))

	case "gt":
		return fmt.Sprintf("%s must be greater than %s", label, param)

	case "gte":
		return fmt.Sprintf("%s must be at least %s", label, param)

	case "valid_name":
		return fmt.Sprintf("%s may only contain letters, spaces and common punctuation", label)

	case "no_emoji":
		return fmt.Sprintf("%s may not contain emoji or special symbols", label)

	case "future_date":
		return fmt.Sprintf("%s must be in the future", label)

	default:
		return fmt.Sprintf("%s failed validation (%s)", label, e.Tag())
	}
}

// getFieldLabel returns the user-friendly label for a field
func getFieldLabel(fieldName string) string {
	if label, ok := FieldLabels[fieldName]; ok {
		return label
	}
	// Return field name with spaces between camelCase words
	var result strings.Builder
	for i, r := range fieldName {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteRune(' ')
		}
		result.WriteRune(r)
	}
	return result.String()
}
