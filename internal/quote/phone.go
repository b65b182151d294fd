package quote

import (
	"regexp"
	"strings"
)

// countryPrefix is replaced by the local trunk prefix "0"
const countryPrefix = "27"

var localPhonePattern = regexp.MustCompile(`^[0-9]{10}$`)

// NormalizePhone strips spaces and dashes and maps the country code to a leading 0.
// The result is not validated; see ValidPhone.
func NormalizePhone(raw string) string {
	p := strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(raw))
	switch {
	case strings.HasPrefix(p, "+"+countryPrefix):
		p = "0" + strings.TrimPrefix(p, "+"+countryPrefix)
	case len(p) == 11 && strings.HasPrefix(p, countryPrefix):
		p = "0" + strings.TrimPrefix(p, countryPrefix)
	}
	return p
}

// ValidPhone reports whether a normalized phone is exactly 10 digits
func ValidPhone(normalized string) bool {
	return localPhonePattern.MatchString(normalized)
}
