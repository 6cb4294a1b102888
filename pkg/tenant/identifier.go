package tenant

import (
	"regexp"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	MinIdentifierLength = 3
	MaxIdentifierLength = 30
)

// identifierPattern is a single DNS label: lowercase alphanumerics and
// hyphens, starting with an alphanumeric, 3 to 30 characters long.
const identifierPattern = `[a-z0-9][a-z0-9-]{2,29}`

var identifierRegex = regexp.MustCompile(`^` + identifierPattern + `$`)

// reservedIdentifiers cannot be provisioned as tenants. Only "www" is
// ignored by host resolution; the rest protect platform hostnames.
var reservedIdentifiers = []string{"www", "api", "app", "admin", "mail", "static", "status"}

// ValidIdentifier reports whether s is a well-formed tenant identifier.
func ValidIdentifier(s string) bool {
	return identifierRegex.MatchString(s)
}

// IsReserved reports whether s is kept back for platform hostnames.
func IsReserved(s string) bool {
	return slices.Contains(reservedIdentifiers, s)
}

// Letters that have no combining-mark decomposition.
var letterFolds = strings.NewReplacer(
	"ß", "ss", "æ", "ae", "œ", "oe", "ø", "o", "ł", "l", "đ", "d", "þ", "th",
)

// foldASCII lowercases s and strips diacritics, so "Zürich" becomes "zurich".
func foldASCII(s string) string {
	s = letterFolds.Replace(strings.ToLower(s))
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(t, s); err == nil {
		return folded
	}
	return s
}

// NormalizeIdentifier derives an identifier from free text such as a company
// name: lowercase, accents stripped, runs of other characters collapsed to a
// single hyphen, truncated to MaxIdentifierLength. It returns "" when nothing
// usable remains.
func NormalizeIdentifier(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	lastWasSep := true
	for _, r := range foldASCII(name) {
		if b.Len() >= MaxIdentifierLength {
			break
		}
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastWasSep = false
			continue
		}
		if !lastWasSep {
			b.WriteByte('-')
			lastWasSep = true
		}
	}

	id := strings.Trim(b.String(), "-")
	if !ValidIdentifier(id) {
		return ""
	}
	return id
}
