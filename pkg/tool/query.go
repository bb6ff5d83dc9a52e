package tool

import (
	"regexp"
	"strings"

	"github.com/m-mizutani/rosetta/pkg/model"
)

// Adapter names wired into query preparation and reasoning triggers
const (
	NameWikipedia   = "wikipedia"
	NameEgypt       = "egyptian_knowledge"
	NameTimeline    = "historical_timeline"
	NameTranslation = "translation"
)

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true,
	"but": true, "in": true, "on": true, "at": true, "to": true,
	"for": true, "of": true, "with": true, "by": true, "was": true,
	"is": true, "are": true, "were": true, "who": true, "what": true,
	"when": true, "where": true, "how": true, "why": true,
}

var (
	wordRe = regexp.MustCompile(`[a-zA-Z0-9]+`)
	dateRe = regexp.MustCompile(`\b\d{1,4}\s*(?:bce|ce|bc|ad)\b`)
)

var egyptVocab = []string{"egypt", "pharaoh", "pyramid", "nile", "hieroglyph", "ptolemy", "dynasty"}
var translationVocab = []string{"hieroglyph", "demotic", "greek", "translate", "glyph", "script"}

// keyTerms extracts up to max content words from text
func keyTerms(text string, max int) []string {
	var terms []string
	for _, w := range wordRe.FindAllString(strings.ToLower(text), -1) {
		if len(w) > 2 && !stopWords[w] {
			terms = append(terms, w)
			if len(terms) >= max {
				break
			}
		}
	}
	return terms
}

func filterByVocab(input string, vocab []string) string {
	var kept []string
	for _, word := range strings.Fields(input) {
		lower := strings.ToLower(word)
		for _, v := range vocab {
			if strings.Contains(lower, v) {
				kept = append(kept, word)
				break
			}
		}
	}
	if len(kept) == 0 {
		return input
	}
	return strings.Join(kept, " ")
}

// PrepareQuery derives the adapter-specific query from the raw input.
// It is a pure function of its arguments so selection and dispatch stay
// deterministic and testable.
func PrepareQuery(name, input string, rr *model.ReasoningResult) string {
	switch name {
	case NameWikipedia:
		if rr != nil && len(rr.KeyEntities) > 0 {
			n := len(rr.KeyEntities)
			if n > 3 {
				n = 3
			}
			return strings.Join(rr.KeyEntities[:n], " ")
		}
		if terms := keyTerms(input, 3); len(terms) > 0 {
			return strings.Join(terms, " ")
		}
		return input

	case NameEgypt:
		return filterByVocab(input, egyptVocab)

	case NameTimeline:
		if dates := dateRe.FindAllString(strings.ToLower(input), -1); len(dates) > 0 {
			return "timeline " + strings.Join(dates, " ")
		}
		return "timeline " + input

	case NameTranslation:
		return filterByVocab(input, translationVocab)

	default:
		return input
	}
}
