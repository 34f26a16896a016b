package catalogue

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Named is any catalogue row with a display name.
type Named interface {
	DisplayName() string
}

// FilterByName keeps the rows whose name contains query, ignoring case,
// accents and repeated whitespace. An empty query keeps every row.
func FilterByName[T Named](rows []T, query string) []T {
	q := normalizeName(query)
	if q == "" {
		return rows
	}
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		if strings.Contains(normalizeName(r.DisplayName()), q) {
			out = append(out, r)
		}
	}
	return out
}

func normalizeName(s string) string {
	s = stripDiacritics(s)
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func stripDiacritics(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range norm.NFD.String(s) {
		if !unicode.Is(unicode.Mn, r) { // combining accents
			b.WriteRune(r)
		}
	}
	return b.String()
}
