package phone

import (
	"fmt"
	"regexp"
	"strings"
)

// Canonical Bangladesh mobile: +880, subscriber prefix 1, operator digit 3-9,
// then 8 digits.
var bdMobileRe = regexp.MustCompile(`^\+8801[3-9]\d{8}$`)

var nonDialRe = regexp.MustCompile(`[^\d+]`)

// NormalizeBD normalizes a Bangladesh mobile number to +8801XXXXXXXXX.
// Accepts +8801XXXXXXXXX, 8801XXXXXXXXX, 01XXXXXXXXX and bare 1XXXXXXXXX,
// with any spacing or separators. Returns an error when the result does not
// match the canonical pattern.
func NormalizeBD(raw string) (string, error) {
	s := nonDialRe.ReplaceAllString(strings.TrimSpace(raw), "")

	var normalized string
	switch {
	case strings.HasPrefix(s, "+880"):
		normalized = s
	case strings.HasPrefix(s, "880"):
		normalized = "+" + s
	case strings.HasPrefix(s, "01"):
		normalized = "+880" + s[1:]
	case strings.HasPrefix(s, "1") && (len(s) == 9 || len(s) == 10):
		normalized = "+880" + s
	case len(s) == 11 && strings.HasPrefix(s, "0"):
		normalized = "+880" + s[1:]
	default:
		normalized = s
	}

	if !bdMobileRe.MatchString(normalized) {
		return "", fmt.Errorf("invalid Bangladesh mobile number %q, expected +8801XXXXXXXXX", raw)
	}
	return normalized, nil
}

// IsCanonicalBD reports whether s is already in +8801XXXXXXXXX form
func IsCanonicalBD(s string) bool {
	return bdMobileRe.MatchString(s)
}
