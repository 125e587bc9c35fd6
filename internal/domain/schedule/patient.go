package schedule

import (
	"regexp"
	"strings"
)

// PhoneDigits is the length of a normalized phone number (country prefix stripped).
const PhoneDigits = 10

var snilsPattern = regexp.MustCompile(`^\d{3}-\d{3}-\d{3} \d{2}$`)

// NormalizePhone keeps the digits of s and returns the last ten of them.
// Shorter inputs return all their digits, so they never equal a stored number.
func NormalizePhone(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) > PhoneDigits {
		return digits[len(digits)-PhoneDigits:]
	}
	return digits
}

// IsValidSNILS checks the ddd-ddd-ddd dd layout only; the checksum is not verified.
func IsValidSNILS(s string) bool {
	return snilsPattern.MatchString(s)
}
