package moderation

import (
	"regexp"
	"strings"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	urlRe        = regexp.MustCompile(`https?://\S+|www\.\S+`)
	emailRe      = regexp.MustCompile(`\S+@\S+`)
	punctRe      = regexp.MustCompile(`[^a-z0-9_\s]`)
	digitsRe     = regexp.MustCompile(`[0-9]+`)
)

// Normalize canonicalizes raw text for classification: lowercase, URLs,
// emails and digit runs replaced with placeholder tokens, punctuation
// stripped, whitespace collapsed. The output alphabet is [a-z_] words
// separated by single spaces, so normalizing twice is a no-op.
func Normalize(text string) string {
	text = strings.ToLower(text)
	text = whitespaceRe.ReplaceAllString(text, " ")
	text = urlRe.ReplaceAllString(text, " url ")
	text = emailRe.ReplaceAllString(text, " email ")
	text = punctRe.ReplaceAllString(text, " ")
	text = digitsRe.ReplaceAllString(text, " num ")
	text = whitespaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
