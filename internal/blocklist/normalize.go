package blocklist

import (
	"strings"

	"golang.org/x/net/idna"
)

// NormalizeDomain returns the bare domain of a user-entered hostname or URL.
//
// The rules mirror what a user expects when pasting into the blocklist form:
//   - Trim surrounding whitespace and lower-case everything
//   - Drop a leading "scheme://"
//   - Cut at the first "/", "?" or "#"
//   - Convert internationalized names to their ASCII (punycode) form
//   - Drop a leading "www." so the base domain (and www.*) is blocked
//
// The rules are applied until the value stops changing, which keeps the
// function idempotent for inputs such as "www.www.example.com". Empty input
// yields "". It never fails; input that cannot be IDNA-converted is kept
// lower-cased as-is.
func NormalizeDomain(raw string) string {
	value := raw
	for {
		next := normalizeOnce(value)
		if next == value {
			return value
		}
		value = next
	}
}

// normalizeOnce applies the rules a single time. After the first pass the
// value is ASCII, so later passes can only shorten it and the loop above ends.
func normalizeOnce(raw string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == "" {
		return ""
	}

	value = stripScheme(value)

	if i := strings.IndexAny(value, "/?#"); i >= 0 {
		value = value[:i]
	}

	if !isASCII(value) {
		if ascii, err := idna.Lookup.ToASCII(value); err == nil {
			value = ascii
		}
	}

	for strings.HasPrefix(value, "www.") {
		value = value[len("www."):]
	}

	return strings.TrimSpace(value)
}

// stripScheme removes a leading "[a-z]+://".
func stripScheme(value string) string {
	i := strings.Index(value, "://")
	if i <= 0 {
		return value
	}
	for _, r := range value[:i] {
		if r < 'a' || r > 'z' {
			return value
		}
	}

	return value[i+3:]
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}

	return true
}
