package client

import "unicode/utf8"

// PasswordSymbols is the set of special characters the password policy
// accepts (and requires at least one of).
const PasswordSymbols = "@$!%*?&"

// MinPasswordLen is the shortest accepted password.
const MinPasswordLen = 8

const msgWeakPassword = "Le mot de passe doit contenir au moins 8 caractères, une majuscule, une minuscule, un chiffre et un caractère spécial."

// CheckPassword enforces the registration password policy: at least 8
// characters drawn from ASCII letters, digits and PasswordSymbols, with at
// least one of each class.
func CheckPassword(pw string) error {
	if utf8.RuneCountInString(pw) < MinPasswordLen {
		return &ValidationError{Message: msgWeakPassword}
	}
	var lower, upper, digit, symbol bool
	for _, r := range pw {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case isSymbol(r):
			symbol = true
		default:
			return &ValidationError{Message: msgWeakPassword}
		}
	}
	if !lower || !upper || !digit || !symbol {
		return &ValidationError{Message: msgWeakPassword}
	}
	return nil
}

func isSymbol(r rune) bool {
	for _, s := range PasswordSymbols {
		if r == s {
			return true
		}
	}
	return false
}
