package auth

import (
	"regexp"
	"unicode/utf8"
)

var (
	upperRe   = regexp.MustCompile(`[A-Z]`)
	lowerRe   = regexp.MustCompile(`[a-z]`)
	digitRe   = regexp.MustCompile(`\d`)
	specialRe = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
)

// PasswordStrength scores a password from 0 to 5: one point each for eight
// or more characters, an upper-case letter, a lower-case letter, a digit and
// a special character.
func PasswordStrength(password string) (int, string) {
	score := 0
	if utf8.RuneCountInString(password) >= 8 {
		score++
	}
	for _, re := range []*regexp.Regexp{upperRe, lowerRe, digitRe, specialRe} {
		if re.MatchString(password) {
			score++
		}
	}

	switch {
	case score == 5:
		return score, "very strong"
	case score >= 3:
		return score, "medium"
	case score == 2:
		return score, "weak"
	default:
		return score, "very weak"
	}
}
