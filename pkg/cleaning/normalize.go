// Package cleaning implements the deterministic batch transform that
// turns raw imported documents into a normalized, filtered,
// deduplicated subsequence.
package cleaning

import (
	"html"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	emailRe   = regexp.MustCompile(`[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+`)
	urlRe     = regexp.MustCompile(`https?://\S+|www\.\S+`)
	htmlTagRe = regexp.MustCompile(`<[^>]+>`)
	spaceRe   = regexp.MustCompile(`\s+`)
	wordRe    = regexp.MustCompile(`\w+`)
)

// DefaultDenylist is the built-in profanity denylist. Runs may extend
// it via PipelineConfig.ProfanityDenylist.
var DefaultDenylist = []string{"damn", "hell"}

// Normalize canonicalizes one text: NFKC composition, a single newline
// convention, HTML entities decoded, surrounding whitespace trimmed.
// An empty result means the document carries no content and should be
// dropped by the caller.
func Normalize(text string) string {
	text = norm.NFKC.String(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = html.UnescapeString(text)
	return strings.TrimSpace(text)
}

// PatternScrub removes email addresses, URLs and HTML tags, then
// collapses whitespace runs. Removal runs before the collapse so the
// scrubbed spans do not leave double spaces behind.
func PatternScrub(text string) string {
	text = emailRe.ReplaceAllString(text, " ")
	text = urlRe.ReplaceAllString(text, " ")
	text = htmlTagRe.ReplaceAllString(text, " ")
	text = spaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// ContainsProfanity reports whether any lowercased word token of text
// is present in the denylist. Gating is all-or-nothing per document;
// there is no partial redaction.
func ContainsProfanity(text string, denylist map[string]struct{}) bool {
	for _, tok := range wordRe.FindAllString(strings.ToLower(text), -1) {
		if _, bad := denylist[tok]; bad {
			return true
		}
	}
	return false
}

// BuildDenylist merges the built-in denylist with extra entries,
// lowercasing everything.
func BuildDenylist(extra []string) map[string]struct{} {
	deny := make(map[string]struct{}, len(DefaultDenylist)+len(extra))
	for _, w := range DefaultDenylist {
		deny[w] = struct{}{}
	}
	for _, w := range extra {
		deny[strings.ToLower(w)] = struct{}{}
	}
	return deny
}
