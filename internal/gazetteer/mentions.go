package gazetteer

import (
	"strings"
	"unicode"
)

// maxMentionWords bounds candidate spans; gazetteer names rarely exceed
// four tokens.
const maxMentionWords = 4

// mentionStopwords are sentence-leading words that capitalization alone
// would otherwise promote into mentions.
var mentionStopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "this": {}, "that": {}, "these": {},
	"those": {}, "it": {}, "he": {}, "she": {}, "they": {}, "we": {},
	"i": {}, "you": {}, "but": {}, "and": {}, "or": {}, "if": {},
	"when": {}, "while": {}, "after": {}, "before": {}, "on": {}, "in": {},
	"at": {}, "by": {}, "for": {}, "with": {}, "from": {}, "to": {},
}

// ExtractMentions pulls candidate entity mentions out of free text:
// maximal runs of capitalized tokens, up to maxMentionWords long. This is
// surface-level matching only; disambiguation happens against the gazetteer.
func ExtractMentions(text string) []string {
	var (
		mentions []string
		seen     = make(map[string]struct{})
		run      []string
	)
	flush := func() {
		if len(run) == 0 {
			return
		}
		// Drop a leading stopword that only looks like a name because it
		// starts a sentence.
		if _, stop := mentionStopwords[strings.ToLower(run[0])]; stop {
			run = run[1:]
		}
		if len(run) > 0 && len(run) <= maxMentionWords {
			mention := strings.Join(run, " ")
			if _, dup := seen[mention]; !dup {
				seen[mention] = struct{}{}
				mentions = append(mentions, mention)
			}
		}
		run = nil
	}

	for _, field := range strings.Fields(text) {
		word := strings.TrimFunc(field, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		})
		if word == "" || !unicode.IsUpper([]rune(word)[0]) {
			flush()
			continue
		}
		run = append(run, word)
		// Punctuation after the token ends the span.
		if strings.ContainsAny(field, ".,;:!?\"”’)") {
			flush()
		}
	}
	flush()
	return mentions
}
