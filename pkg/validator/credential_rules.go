package validator

import (
	"regexp"
	"strings"
)

var (
	otpCodeRegex       = regexp.MustCompile(`^\d{6}$`)
	emergencyCodeRegex = regexp.MustCompile(`^[0-9A-Fa-f]{16}$`)
	usernameRegex      = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)
)

// ValidOTPCode requires exactly six ASCII digits.
func ValidOTPCode(field, value string) Rule {
	return Rule{
		Check: func() bool { return otpCodeRegex.MatchString(value) },
		Error: ValidationError{
			Field:          field,
			Message:        "must be a 6-digit code",
			TranslationKey: "validation.otp_code",
		},
	}
}

// ValidEmergencyCode requires 16 hex characters, surrounding whitespace ignored.
func ValidEmergencyCode(field, value string) Rule {
	return Rule{
		Check: func() bool { return emergencyCodeRegex.MatchString(strings.TrimSpace(value)) },
		Error: ValidationError{
			Field:          field,
			Message:        "must be a 16-character hex code",
			TranslationKey: "validation.emergency_code",
		},
	}
}

// ValidUsername allows letters, digits, dot, underscore and dash, starting with a letter or digit.
func ValidUsername(field, value string) Rule {
	return Rule{
		Check: func() bool { return value == "" || usernameRegex.MatchString(value) },
		Error: ValidationError{
			Field:          field,
			Message:        "may contain only letters, digits, '.', '_' and '-'",
			TranslationKey: "validation.username",
		},
	}
}
