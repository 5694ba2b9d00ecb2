// internal/engine/phone/phone.go

// Package phone canonicalizes raw user-entered phone input to a dialable
// international form.
package phone

import (
	"strings"

	engerrors "license-alert-engine/internal/common/errors"
)

// Normalize converts raw input to a dialable E.164-style number. It is pure
// and idempotent: normalizing an already-normalized number returns it
// unchanged.
//
// Rules, in order:
//   - strip all non-digit characters
//   - 11 digits starting with "1": prefix "+"
//   - exactly 10 digits: assume the default country and prefix "+1"
//   - input already starting with "+": pass through unchanged
//   - 10+ digits but unrecognized: best effort, last 10 digits with "+1"
//   - anything else: InvalidPhoneNumber
func Normalize(raw string) (string, error) {
	digits := stripNonDigits(raw)

	switch {
	case len(digits) == 11 && digits[0] == '1':
		return "+" + digits, nil
	case len(digits) == 10:
		return "+1" + digits, nil
	case strings.HasPrefix(strings.TrimSpace(raw), "+"):
		return raw, nil
	case len(digits) >= 10:
		return "+1" + digits[len(digits)-10:], nil
	default:
		return "", engerrors.NewInvalidPhoneNumberError(raw)
	}
}

func stripNonDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
