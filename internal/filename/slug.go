package filename

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const maxSlugLength = 60

var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slug returns a shortened, sanitized form of a file basename suitable for
// tagged filenames. Diacritics are stripped and runs of characters outside
// [A-Za-z0-9_/.-] collapse to a single hyphen; letter case survives so a
// clean basename tags without changing. The result is truncated to 60
// characters. Path separators survive so that basenames relative to the
// payload root keep their directory structure.
func Slug(basename string) string {
	flattened, _, err := transform.String(deaccent, basename)
	if err != nil {
		flattened = basename
	}

	var b strings.Builder
	b.Grow(len(flattened))
	pendingHyphen := false
	for _, r := range flattened {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '/', r == '.', r == '-':
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		default:
			pendingHyphen = true
		}
	}

	slug := strings.Trim(b.String(), "-")
	if len(slug) > maxSlugLength {
		slug = strings.Trim(slug[:maxSlugLength], "-")
	}
	return slug
}
