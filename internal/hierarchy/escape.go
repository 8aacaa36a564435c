package hierarchy

import (
	"net/url"
	"strings"

	gcperrors "gcpath/internal/errors"
)

const upperhex = "0123456789ABCDEF"

// PathEscape percent-encodes every byte outside the RFC 3986 unreserved set.
// Display names are arbitrary user-chosen strings, so path-meaningful
// characters ('/', ' ', '%') must never survive into a display path.
func PathEscape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
		} else {
			b.WriteByte('%')
			b.WriteByte(upperhex[c>>4])
			b.WriteByte(upperhex[c&0x0f])
		}
	}
	return b.String()
}

// PathUnescape reverses PathEscape.
func PathUnescape(s string) (string, error) {
	out, err := url.PathUnescape(s)
	if err != nil {
		return "", gcperrors.Wrap(gcperrors.PathParseError, err, "invalid escape in path segment %q", s)
	}
	return out, nil
}

func isUnreserved(c byte) bool {
	return 'A' <= c && c <= 'Z' ||
		'a' <= c && c <= 'z' ||
		'0' <= c && c <= '9' ||
		c == '-' || c == '.' || c == '_' || c == '~'
}

// ParsePath splits a display path into the organization segment and the
// remaining segments, both unescaped. A path must start with "//" and carry
// at least an organization segment.
func ParsePath(path string) (string, []string, error) {
	if !strings.HasPrefix(path, "//") {
		return "", nil, gcperrors.New(gcperrors.PathParseError, "path %q must start with //", path)
	}

	rest := path[2:]
	if rest == "" {
		return "", nil, gcperrors.New(gcperrors.PathParseError, "path %q has no organization segment", path)
	}

	parts := strings.Split(rest, "/")
	org, err := PathUnescape(parts[0])
	if err != nil {
		return "", nil, err
	}
	if org == "" {
		return "", nil, gcperrors.New(gcperrors.PathParseError, "path %q has an empty organization segment", path)
	}

	var segments []string
	for _, part := range parts[1:] {
		if part == "" {
			continue
		}
		seg, err := PathUnescape(part)
		if err != nil {
			return "", nil, err
		}
		segments = append(segments, seg)
	}

	return org, segments, nil
}
