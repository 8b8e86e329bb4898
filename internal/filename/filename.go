package filename

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrMalformed reports a filename that cannot be parsed. The only fatal
// condition is a missing basename or extension; tags and identifiers are
// optional.
var ErrMalformed = errors.New("malformed filename")

// TagSource marks an original source file.
const TagSource = "SRC"

var uuidPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// Parts is the decomposition of a tagged filename. Basename and Ext are
// always present after a successful Parse; FormatTag and UUID are empty when
// the filename does not carry them.
type Parts struct {
	Basename  string
	FormatTag string
	UUID      string
	Ext       string
}

// Tagged reports whether the parts carry both a format tag and an identifier.
func (p Parts) Tagged() bool {
	return p.FormatTag != "" && p.UUID != ""
}

// Parse decomposes a filename (the final path element, without directories)
// into its dot-separated parts. An identifier anywhere in the interior splits
// the name: the format tag is the longest valid tag ending just before it,
// segments after it belong to the extension, and everything else stays in
// the basename. Dotted basenames like "2024.01.15.interview" therefore
// survive parsing untouched rather than being mistaken for a tag.
func Parse(name string) (Parts, error) {
	segs := strings.Split(name, ".")
	if len(segs) < 2 || segs[0] == "" || segs[len(segs)-1] == "" {
		return Parts{}, fmt.Errorf("%w: %q needs a basename and an extension", ErrMalformed, name)
	}

	p := Parts{Basename: segs[0], Ext: segs[len(segs)-1]}
	interior := segs[1 : len(segs)-1]

	tagEnd := len(interior)
	for i, seg := range interior {
		if IsUUID(seg) {
			p.UUID = seg
			tagEnd = i
			if rest := interior[i+1:]; len(rest) > 0 {
				p.Ext = strings.Join(rest, ".") + "." + p.Ext
			}
			break
		}
	}

	tagStart := tagEnd
	for j := tagEnd - 1; j >= 0; j-- {
		if IsFormatTag(strings.Join(interior[j:tagEnd], ".")) {
			tagStart = j
		}
	}
	p.FormatTag = strings.Join(interior[tagStart:tagEnd], ".")
	if tagStart > 0 {
		p.Basename = strings.Join(append([]string{p.Basename}, interior[:tagStart]...), ".")
	}
	return p, nil
}

// Build assembles the filename for the given parts, the exact inverse of
// Parse for all valid inputs. A non-empty format tag must belong to the
// SRC/df-*/pf-* vocabulary.
func Build(p Parts) (string, error) {
	if p.Basename == "" || p.Ext == "" {
		return "", fmt.Errorf("%w: basename and extension are required", ErrMalformed)
	}
	if p.FormatTag != "" && !IsFormatTag(p.FormatTag) {
		return "", fmt.Errorf("invalid format tag %q", p.FormatTag)
	}
	parts := make([]string, 0, 4)
	for _, s := range []string{p.Basename, p.FormatTag, p.UUID, p.Ext} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "."), nil
}

// IsFormatTag reports whether s is a valid format tag: SRC, or a df-/pf-
// prefixed tag with a non-empty free-form suffix.
func IsFormatTag(s string) bool {
	if s == TagSource {
		return true
	}
	for _, prefix := range []string{"df-", "pf-"} {
		if strings.HasPrefix(s, prefix) && len(s) > len(prefix) {
			return true
		}
	}
	return false
}

// IsUUID reports whether s is a canonical hex UUID string.
func IsUUID(s string) bool {
	return uuidPattern.MatchString(s)
}

// FindUUID returns the last UUID embedded anywhere in s, or "".
func FindUUID(s string) string {
	found := ""
	for _, seg := range strings.FieldsFunc(s, func(r rune) bool { return r == '.' || r == '/' || r == '\\' }) {
		if IsUUID(seg) {
			found = seg
		}
	}
	return found
}
