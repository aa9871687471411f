// Package naming maps raw spec names onto target-language identifiers.
package naming

import (
	"strings"
	"unicode"
)

// Snake converts a CamelCase spec name to snake_case. Acronym runs stay
// together: GetObjectACL becomes get_object_acl, DBInstance becomes
// db_instance.
func Snake(name string) string {
	rs := []rune(strings.TrimSpace(name))
	var b strings.Builder
	b.Grow(len(rs) + 4)
	for i, r := range rs {
		switch {
		case unicode.IsUpper(r):
			if i > 0 {
				prev := rs[i-1]
				nextIsLower := i+1 < len(rs) && unicode.IsLower(rs[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextIsLower) {
					b.WriteByte('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
		case r == '-' || r == '.' || r == ' ':
			b.WriteByte('_')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Exported converts a name to an exported CamelCase identifier, splitting on
// underscores, dashes, dots, and spaces. Existing interior capitalization is
// preserved.
func Exported(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-' || r == '.' || r == ' '
	})
	var b strings.Builder
	for _, part := range parts {
		rs := []rune(part)
		b.WriteRune(unicode.ToUpper(rs[0]))
		b.WriteString(string(rs[1:]))
	}
	return b.String()
}
