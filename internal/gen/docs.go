package gen

import "strings"

// FormatDoc is the default documentation formatter: it drops the HTML markup
// the source docs carry and collapses runs of whitespace. Callers with richer
// needs swap it out via WithDocFormatter.
func FormatDoc(doc string) string {
	if doc == "" {
		return ""
	}
	var b strings.Builder
	inTag := false
	for _, r := range doc {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
			b.WriteByte(' ')
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
