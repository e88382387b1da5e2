package auth

import "strings"

// Token normalizes a user-supplied token.
func Token(s string) string {
	return strings.TrimSpace(strings.ToLower(s))
}
