package password

import (
	"errors"
	"unicode"
)

// Policy errors returned by [Policy.Validate]. Callers that only care about
// pass/fail can treat any non-nil error as a weak password.
var (
	ErrTooFewLetters = errors.New("password needs more letters")
	ErrTooFewDigits  = errors.New("password needs more digits")
	ErrTooFewSymbols = errors.New("password needs a special character")
)

// Policy is a character-class strength requirement. Counting uses Unicode
// classes, so accented letters count as letters and any rune that is
// neither letter nor digit counts as a symbol.
type Policy struct {
	MinLetters int
	MinDigits  int
	MinSymbols int
}

// DefaultPolicy returns the marketplace signup policy: at least four
// letters, two digits, and one special character.
func DefaultPolicy() Policy {
	return Policy{MinLetters: 4, MinDigits: 2, MinSymbols: 1}
}

// Validate checks pw against the policy. The first unmet requirement is
// reported in letter, digit, symbol order.
func (p Policy) Validate(pw string) error {
	var letters, digits, symbols int
	for _, r := range pw {
		switch {
		case unicode.IsLetter(r):
			letters++
		case unicode.IsDigit(r):
			digits++
		default:
			symbols++
		}
	}
	if letters < p.MinLetters {
		return ErrTooFewLetters
	}
	if digits < p.MinDigits {
		return ErrTooFewDigits
	}
	if symbols < p.MinSymbols {
		return ErrTooFewSymbols
	}
	return nil
}
