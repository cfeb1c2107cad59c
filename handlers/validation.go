package handlers

import (
	"regexp"
	"strings"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const passwordSpecials = "@$!%*?&#"

func validEmail(email string) bool {
	return emailRe.MatchString(email)
}

// validPassword enforces the signup complexity rule: at least 8 characters
// with an upper-case letter, a lower-case letter, a digit and one of
// @$!%*?&#.
func validPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}
	return upper && lower && digit && special
}

func validFullname(fullname string) bool {
	return len(strings.TrimSpace(fullname)) >= 3
}
