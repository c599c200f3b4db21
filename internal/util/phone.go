package util

import "strings"

// NormalizePhoneKey canonicalizes user-entered phone numbers into the key
// format used for opt-out lookups. Already-prefixed values pass through
// untouched, bare 10-digit numbers are assumed US/Canada. Idempotent.
func NormalizePhoneKey(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "+") {
		return trimmed
	}

	digits := DigitsOnly(trimmed)
	switch n := len(digits); {
	case n == 10:
		return "+1" + digits
	case n > 0:
		return "+" + digits
	default:
		return trimmed
	}
}

// DigitsOnly strips everything but ASCII digits.
func DigitsOnly(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Last10 returns the trailing 10 digits of a phone string, or "" when fewer
// than 10 digits are present. Used for fuzzy user-by-phone matching.
func Last10(raw string) string {
	d := DigitsOnly(raw)
	if len(d) < 10 {
		return ""
	}
	return d[len(d)-10:]
}
