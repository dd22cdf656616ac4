package ldap

import (
	"strings"
)

// EscapeFilterValue escapes a value for use in an LDAP search filter
// assertion according to RFC 4515.
//
// Only the filter metacharacters are escaped, as a backslash followed by
// two lowercase hex digits:
//   - "*"  → "\2a"
//   - "("  → "\28"
//   - ")"  → "\29"
//   - "\"  → "\5c"
//   - NUL  → "\00"
//
// Examples:
//   - "jdoe" → "jdoe" (no change)
//   - "a*b(c)" → "a\2ab\28c\29"
func EscapeFilterValue(value string) string {
	if !NeedsFilterEscaping(value) {
		return value
	}

	const hex = "0123456789abcdef"

	var result strings.Builder
	result.Grow(len(value) + 10) // Pre-allocate with buffer for escape sequences

	for i := 0; i < len(value); i++ {
		c := value[i]
		switch c {
		case '*', '(', ')', '\\', 0:
			result.WriteByte('\\')
			result.WriteByte(hex[c>>4])
			result.WriteByte(hex[c&0x0f])
		default:
			result.WriteByte(c)
		}
	}

	return result.String()
}

// NeedsFilterEscaping checks if a value contains filter metacharacters.
func NeedsFilterEscaping(value string) bool {
	return strings.ContainsAny(value, "*()\\\x00")
}

// UserFilter builds the equality filter locating a principal's entry.
func UserFilter(uidAttribute, principal string) string {
	return "(" + uidAttribute + "=" + EscapeFilterValue(principal) + ")"
}
