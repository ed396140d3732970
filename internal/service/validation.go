package service

import (
	"net/mail"
	"strings"
	"unicode"
)

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// fixedDigits reports whether s is exactly n ASCII digits.
func fixedDigits(s string, n int) bool {
	s = strings.TrimSpace(s)
	if len(s) != n {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// phoneLike accepts 6 to 15 digits with optional +, spaces and dashes.
func phoneLike(s string) bool {
	digits := 0
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '+' && i == 0, r == ' ', r == '-':
		default:
			return false
		}
	}
	return digits >= 6 && digits <= 15
}

func validateEmail(email string, required bool) error {
	email = strings.TrimSpace(email)
	if email == "" {
		if required {
			return validationError("El email es obligatorio")
		}
		return nil
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@")+1:], ".") {
		return validationError("El email no es válido")
	}
	return nil
}

func minRunes(s string, n int) bool {
	return len([]rune(strings.TrimSpace(s))) >= n
}
