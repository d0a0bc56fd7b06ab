package extract

import (
	"strings"
	"unicode"

	"github.com/campus-notice-collector/internal/models"
)

// TaggedWord is a segmented token with its part-of-speech tag
type TaggedWord struct {
	Text string
	Tag  string
}

// Tagger segments text and assigns part-of-speech tags
type Tagger interface {
	Tag(text string) []TaggedWord
}

// KeywordExtractor collects noun tokens plus any taxonomy term that occurs
// literally in the text.
type KeywordExtractor struct {
	tagger Tagger
	terms  []string
}

// NewKeywordExtractor creates an extractor that always recognizes terms
func NewKeywordExtractor(tagger Tagger, terms []string) *KeywordExtractor {
	return &KeywordExtractor{
		tagger: tagger,
		terms:  append([]string(nil), terms...),
	}
}

// Extract returns the distinct keywords of text, nouns first in token
// order followed by literal taxonomy terms.
func (e *KeywordExtractor) Extract(text string) []string {
	var keywords []string

	if e.tagger != nil {
		for _, w := range e.tagger.Tag(text) {
			word := strings.TrimSpace(w.Text)
			if word == "" || !isNounTag(w.Tag) || !hasLetter(word) {
				continue
			}
			keywords = append(keywords, word)
		}
	}

	for _, term := range e.terms {
		if strings.Contains(text, term) {
			keywords = append(keywords, term)
		}
	}

	return models.UniqueStrings(keywords)
}

func isNounTag(tag string) bool {
	return strings.HasPrefix(tag, "n")
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
