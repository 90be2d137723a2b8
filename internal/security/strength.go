package security

import (
	"strings"
	"unicode"
)

const MinPasswordLength = 8

var commonPasswords = map[string]struct{}{}

func init() {
	for _, p := range strings.Fields(`
		password password1 password123 passw0rd 12345678 123456789 1234567890
		qwerty qwerty123 qwertyuiop abc12345 abcd1234 iloveyou letmein
		welcome welcome1 admin123 administrator football baseball monkey
		dragon sunshine princess trustno1 starwars superman batman master
		whatever shadow michael jennifer computer internet changeme secret123
		11111111 00000000 87654321 asdfghjk zxcvbnm1 1q2w3e4r q1w2e3r4
		`) {
		commonPasswords[p] = struct{}{}
	}
}

// PasswordProblems lists every rule plain breaks. username may be empty
// when it is not known yet.
func PasswordProblems(plain, username string) []string {
	var problems []string

	if len([]rune(plain)) < MinPasswordLength {
		problems = append(problems, "This password is too short. It must contain at least 8 characters.")
	}

	if _, ok := commonPasswords[strings.ToLower(plain)]; ok {
		problems = append(problems, "This password is too common.")
	}

	if plain != "" && strings.IndexFunc(plain, func(r rune) bool { return !unicode.IsDigit(r) }) == -1 {
		problems = append(problems, "This password is entirely numeric.")
	}

	if u := strings.ToLower(strings.TrimSpace(username)); u != "" {
		p := strings.ToLower(plain)
		if p == u || (len(u) >= 4 && strings.Contains(p, u)) {
			problems = append(problems, "The password is too similar to the username.")
		}
	}

	return problems
}
