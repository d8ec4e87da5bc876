package utils

import (
	"fmt"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// MaxTextLength bounds thought text and reaction bodies; valid lengths are
// 1 through 279 characters inclusive.
const MaxTextLength = 280

// IsValidLength reports whether a thought text or reaction body is within
// bounds. The limit counts characters, not bytes, so multibyte text is not
// penalized.
func IsValidLength(s string) bool {
	n := utf8.RuneCountInString(s)
	return n > 0 && n < MaxTextLength
}

// ValidLengthMessage builds the client-facing message for a length violation.
func ValidLengthMessage(field string) string {
	return fmt.Sprintf("%s must be between 1 and %d characters", field, MaxTextLength-1)
}

// IsEmail reports whether the string is a plausible email address.
func IsEmail(email string) bool {
	return validate.Var(email, "required,email") == nil
}
