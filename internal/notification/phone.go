package notification

import (
	"strings"

	ierr "github.com/netcycle/netcycle/internal/errors"
)

// NormalizePhone converts a Philippine mobile number to the 63XXXXXXXXXX
// form the gateway expects. It accepts 09XXXXXXXXX, +639XXXXXXXXX,
// 639XXXXXXXXX and 9XXXXXXXXX with any spaces, dashes or brackets.
func NormalizePhone(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	var normalized string
	switch {
	case len(digits) == 12 && strings.HasPrefix(digits, "639"):
		normalized = digits
	case len(digits) == 11 && strings.HasPrefix(digits, "09"):
		normalized = "63" + digits[1:]
	case len(digits) == 10 && strings.HasPrefix(digits, "9"):
		normalized = "63" + digits
	default:
		return "", ierr.NewError("invalid phone number").
			WithHintf("%q is not a valid mobile number", raw).
			Mark(ierr.ErrValidation)
	}
	return normalized, nil
}
