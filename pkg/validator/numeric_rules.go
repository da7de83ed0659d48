package validator

import "fmt"

// RangeInt fails unless min <= value <= max.
func RangeInt(field string, value, min, max int) Rule {
	return Rule{
		Check: func() bool { return value >= min && value <= max },
		Error: ValidationError{
			Field:          field,
			Message:        fmt.Sprintf("must be between %d and %d", min, max),
			TranslationKey: "validation.range",
		},
	}
}
