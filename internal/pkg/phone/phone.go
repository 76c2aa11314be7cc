package phone

import (
	"regexp"
	"strings"

	"github.com/rolevate/roomgo/internal/pkg/err"
)

var e164Regexp = regexp.MustCompile(`^\+[1-9]\d{7,14}$`)

//Normalize turns a raw phone string into canonical E.164 form.
//Rules: leading "00" is an international prefix, a number already starting
//with defaultCode is kept, a leading "0" marks a local number to be joined
//with defaultCode, a bare subscriber number gets defaultCode prepended.
//The function is pure and idempotent
func Normalize(raw string, defaultCode string) (string, error) {
	digits := stripNonDigits(raw)
	if digits == "" {
		return "", err.Validationf("no digits in phone '%s'", raw)
	}
	defaultCode = stripNonDigits(defaultCode)

	var res string
	switch {
	case strings.HasPrefix(raw, "+"):
		res = "+" + digits
	case strings.HasPrefix(digits, "00"):
		res = "+" + digits[2:]
	case defaultCode != "" && strings.HasPrefix(digits, defaultCode):
		res = "+" + digits
	case strings.HasPrefix(digits, "0"):
		res = "+" + defaultCode + digits[1:]
	default:
		res = "+" + defaultCode + digits
	}

	if !e164Regexp.MatchString(res) {
		return "", err.Validationf("'%s' is not a valid phone number", raw)
	}
	return res, nil
}

//Valid tests a string for canonical E.164 form
func Valid(p string) bool {
	return e164Regexp.MatchString(p)
}

func stripNonDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
