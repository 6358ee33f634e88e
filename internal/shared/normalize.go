// Artist name canonicalization.
//
// Both the library sync and the concert ingest run their artist names
// through NormalizeArtistName so that "The Black Lips" (Spotify) and
// "The Black Lips" (listings site) resolve to the same matching key.
// The display name is always stored separately; normalized forms are
// never shown to the user.
package shared

import (
	"regexp"
	"strings"
)

var (
	whitespaceRun  = regexp.MustCompile(`\s+`)
	leadingThe     = regexp.MustCompile(`(?i)^the\s+`)
	ampersandWord  = regexp.MustCompile(`\s+&\s+`)
	curlyApostrope = strings.NewReplacer("‘", "'", "’", "'")
	keyPartStrip   = regexp.MustCompile(`[^a-z0-9-]`)
)

// NormalizeArtistName canonicalizes an artist display name into the key
// used for matching. The transform is pure, total and idempotent:
// lowercase, collapse whitespace runs, trim, strip one leading "the ",
// fold " & " to " and ", fold curly apostrophes to straight ones.
func NormalizeArtistName(name string) string {
	s := strings.ToLower(name)
	s = whitespaceRun.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	s = leadingThe.ReplaceAllString(s, "")
	s = ampersandWord.ReplaceAllString(s, " and ")
	s = curlyApostrope.Replace(s)
	return strings.TrimSpace(s)
}

// SanitizeKeyPart converts s into a slug usable inside a concert
// source_id: lowercase, spaces to hyphens, anything outside [a-z0-9-]
// stripped, truncated to max bytes.
//
// Truncation bounds key length at the cost of a theoretical collision
// between two long names sharing a long prefix.
func SanitizeKeyPart(s string, max int) string {
	part := strings.ToLower(s)
	part = whitespaceRun.ReplaceAllString(part, "-")
	part = keyPartStrip.ReplaceAllString(part, "")
	if len(part) > max {
		part = part[:max]
	}
	return part
}
