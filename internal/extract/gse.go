package extract

import (
	"fmt"
	"sync"

	"github.com/go-ego/gse"
	"github.com/go-ego/gse/hmm/pos"
)

// GseTagger tags Chinese text with the gse segmenter and its HMM
// part-of-speech model.
type GseTagger struct {
	mu  sync.Mutex
	seg gse.Segmenter
	pos pos.Segmenter
}

// NewGseTagger loads the given dictionary files, or the dictionary
// compiled into the binary when none are given.
func NewGseTagger(dictFiles ...string) (*GseTagger, error) {
	t := &GseTagger{}

	var err error
	if len(dictFiles) == 0 {
		err = t.seg.LoadDictEmbed()
	} else {
		err = t.seg.LoadDict(dictFiles...)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load segmentation dictionary: %w", err)
	}
	t.pos.WithGse(t.seg)
	return t, nil
}

// Tag implements Tagger
func (t *GseTagger) Tag(text string) []TaggedWord {
	t.mu.Lock()
	defer t.mu.Unlock()

	segs := t.pos.Cut(text, true)
	words := make([]TaggedWord, 0, len(segs))
	for _, s := range segs {
		words = append(words, TaggedWord{Text: s.Text, Tag: s.Pos})
	}
	return words
}
