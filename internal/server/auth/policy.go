package auth

import (
	"fmt"
	"unicode/utf8"
)

// PasswordPolicy is the set of rules a new password must satisfy.
// Lengths count characters, not bytes. A zero MaxLength means no upper
// bound.
type PasswordPolicy struct {
	MinLength              int
	MaxLength              int
	RequireDigit           bool
	RequireLowercase       bool
	RequireUppercase       bool
	RequireNonAlphanumeric bool
}

// DefaultPasswordPolicy: 8 to 64 characters with a digit, a lowercase and an
// uppercase letter and one symbol.
var DefaultPasswordPolicy = PasswordPolicy{
	MinLength:              8,
	MaxLength:              64,
	RequireDigit:           true,
	RequireLowercase:       true,
	RequireUppercase:       true,
	RequireNonAlphanumeric: true,
}

// Check returns one human-readable reason per violated rule, or nil.
func (p PasswordPolicy) Check(password string) []string {
	var reasons []string

	n := utf8.RuneCountInString(password)
	if n < p.MinLength {
		reasons = append(reasons, fmt.Sprintf("Passwords must be at least %d characters.", p.MinLength))
	}
	if p.MaxLength > 0 && n > p.MaxLength {
		reasons = append(reasons, fmt.Sprintf("Passwords must be at most %d characters.", p.MaxLength))
	}

	var hasDigit, hasLower, hasUpper, hasOther bool
	for _, r := range password {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		default:
			hasOther = true
		}
	}

	if p.RequireNonAlphanumeric && !hasOther {
		reasons = append(reasons, "Passwords must have at least one non alphanumeric character.")
	}
	if p.RequireDigit && !hasDigit {
		reasons = append(reasons, "Passwords must have at least one digit ('0'-'9').")
	}
	if p.RequireLowercase && !hasLower {
		reasons = append(reasons, "Passwords must have at least one lowercase ('a'-'z').")
	}
	if p.RequireUppercase && !hasUpper {
		reasons = append(reasons, "Passwords must have at least one uppercase ('A'-'Z').")
	}

	return reasons
}
