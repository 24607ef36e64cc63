package checkout

import "strings"

// PhoneDigits is the length of a local phone number.
const PhoneDigits = 9

// PhoneChoice records whether a shopper with a stored phone number has
// decided to reuse it or enter a new one.
type PhoneChoice string

const (
	PhoneUnconfirmed PhoneChoice = "unconfirmed"
	PhoneUseExisting PhoneChoice = "existing"
	PhoneEnterNew    PhoneChoice = "new"
)

// Confirmed reports whether the shopper made an explicit choice.
func (c PhoneChoice) Confirmed() bool {
	return c == PhoneUseExisting || c == PhoneEnterNew
}

// NormalizePhone strips spaces and dashes.
func NormalizePhone(raw string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return -1
		}
		return r
	}, strings.TrimSpace(raw))
}

// ValidLocalPhone reports whether raw is exactly PhoneDigits digits once
// spaces and dashes are removed.
func ValidLocalPhone(raw string) bool {
	p := NormalizePhone(raw)
	if len(p) != PhoneDigits {
		return false
	}
	for _, r := range p {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
