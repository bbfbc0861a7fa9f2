package cleaning

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"trims whitespace", "  hello  ", "hello"},
		{"unifies line endings", "a\r\nb\rc", "a\nb\nc"},
		{"decodes html entities", "fish &amp; chips", "fish & chips"},
		{"nfkc composes", "ﬁne", "fine"}, // U+FB01 ligature
		{"empty stays empty", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"  Héllo\r\nwörld  ", "fish &amp; chips", "ﬁne print"}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestPatternScrub(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"removes email", "contact me at bob@example.com please", "contact me at please"},
		{"removes url", "see https://example.com/x for info", "see for info"},
		{"removes www url", "see www.example.com for info", "see for info"},
		{"removes html tags", "a <b>bold</b> claim", "a bold claim"},
		{"collapses whitespace", "a   b\t\nc", "a b c"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PatternScrub(tt.in); got != tt.want {
				t.Errorf("PatternScrub(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestContainsProfanity(t *testing.T) {
	deny := BuildDenylist(nil)

	if !ContainsProfanity("what the Hell", deny) {
		t.Error("expected denylisted word to be detected case-insensitively")
	}
	if ContainsProfanity("a perfectly clean sentence", deny) {
		t.Error("clean text flagged as profane")
	}
	// Substrings of denylisted words are not matches.
	if ContainsProfanity("hello shellfish", deny) {
		t.Error("substring match should not trigger the gate")
	}

	extra := BuildDenylist([]string{"Frak"})
	if !ContainsProfanity("frak this", extra) {
		t.Error("extra denylist entry not applied")
	}
}
