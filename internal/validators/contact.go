package validators

import (
	"net/mail"
	"strings"
)

// NormalizePhone keeps the digits of phone. Brazilian numbers with area
// code have 10 or 11 digits; the country prefix adds two more.
func NormalizePhone(phone string) (string, bool) {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}

	digits := b.String()
	if len(digits) < 10 || len(digits) > 13 {
		return "", false
	}
	return digits, true
}

// IsEmail checks the syntax only. No lookup is made: clients book from
// the public page and a slow resolver must not hold the request.
func IsEmail(email string) bool {
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email && strings.Contains(email[strings.LastIndex(email, "@")+1:], ".")
}
