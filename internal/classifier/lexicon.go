package classifier

// Curated per-category lexicons of violation-indicative terms. They back
// the heuristic explanations produced before a category model is trained,
// so the "every classification has an explanation" contract holds from the
// first request onward.
var categoryLexicons = map[string][]string{
	"profanity":      {"damn", "hell", "ass", "crap", "stupid", "idiot", "dumb"},
	"hate_speech":    {"hate", "racist", "bigot", "inferior", "disgusting"},
	"violence":       {"kill", "hurt", "attack", "hit", "fight", "break"},
	"sexual_content": {"sexy", "hot", "body", "naked", "nude"},
	"harassment":     {"annoying", "stalker", "follow", "creep", "weird"},
}

// Used for categories without a curated lexicon (media stub categories).
var defaultLexicon = []string{"bad", "inappropriate", "offensive", "problematic"}

func lexiconFor(category string) []string {
	if words, ok := categoryLexicons[category]; ok {
		return words
	}
	return defaultLexicon
}
