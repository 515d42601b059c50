// Package ident implements the shared identifier-quoting and
// savepoint-name validation rules of spec §4.1 and §9.
package ident

import (
	"fmt"
	"strings"
)

// Quote double-quote-wraps a SQL identifier, doubling any embedded double
// quote (spec §9 "Identifier escaping"). A NUL byte is rejected.
func Quote(name string) (string, error) {
	if strings.IndexByte(name, 0) >= 0 {
		return "", fmt.Errorf("ident: identifier contains NUL byte")
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`, nil
}

// MaxSavepointName is the shorter of the two dialect limits (PostgreSQL 63,
// MySQL 64); validating against it keeps one rule portable across both.
const MaxSavepointName = 63

// ValidateSavepointName checks a savepoint name before interpolation into
// SQL (spec §4.1): non-empty, within the length limit, a leading letter or
// underscore, then alphanumerics/underscore/dollar only.
func ValidateSavepointName(name string) error {
	if name == "" {
		return fmt.Errorf("ident: savepoint name must not be empty")
	}
	if len(name) > MaxSavepointName {
		return fmt.Errorf("ident: savepoint name exceeds %d characters", MaxSavepointName)
	}
	first := name[0]
	if !isLetter(first) && first != '_' {
		return fmt.Errorf("ident: savepoint name must start with a letter or underscore")
	}
	for i := 1; i < len(name); i++ {
		c := name[i]
		if !isLetter(c) && !isDigit(c) && c != '_' && c != '$' {
			return fmt.Errorf("ident: invalid character %q in savepoint name", c)
		}
	}
	return nil
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
