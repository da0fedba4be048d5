// Package langinfo holds the linguistic analysis of a single utterance as
// produced by an external annotation pipeline: parallel sequences of
// tokens, lemmas, part-of-speech tags, NER tags and normalized NER values.
package langinfo

import (
	"fmt"
	"strings"

	"github.com/stanford-oval/almond-tokenizer/pkg/almond/internalerr"
)

// NoEntity is the NER tag of a token that is not part of any entity span.
const NoEntity = "O"

// LanguageInfo is the tagged token stream for one utterance. All five
// sequences have the same length; NerValues uses "" where the category
// carries no auxiliary string.
type LanguageInfo struct {
	Tokens      []string `json:"tokens"`
	LemmaTokens []string `json:"lemmaTokens"`
	PosTags     []string `json:"posTags"`
	NerTags     []string `json:"nerTags"`
	NerValues   []string `json:"nerValues"`
	Sentiment   string   `json:"sentiment,omitempty"`
}

// New creates an empty LanguageInfo with the given sentiment label.
func New(sentiment string) *LanguageInfo {
	if sentiment == "" {
		sentiment = "neutral"
	}
	return &LanguageInfo{Sentiment: sentiment}
}

// Append adds one token with its annotations.
func (li *LanguageInfo) Append(token, lemma, pos, nerTag, nerValue string) {
	li.Tokens = append(li.Tokens, token)
	li.LemmaTokens = append(li.LemmaTokens, lemma)
	li.PosTags = append(li.PosTags, pos)
	li.NerTags = append(li.NerTags, nerTag)
	li.NerValues = append(li.NerValues, nerValue)
}

// Validate checks the parallel-sequence invariant.
func (li *LanguageInfo) Validate() error {
	n := len(li.Tokens)
	if len(li.LemmaTokens) != n || len(li.PosTags) != n || len(li.NerTags) != n || len(li.NerValues) != n {
		return fmt.Errorf("%w: sequences have unequal lengths (tokens=%d lemmas=%d pos=%d nerTags=%d nerValues=%d)",
			internalerr.ErrInvalidInput, n, len(li.LemmaTokens), len(li.PosTags), len(li.NerTags), len(li.NerValues))
	}
	return nil
}

// NumTokens returns the number of tokens.
func (li *LanguageInfo) NumTokens() int { return len(li.Tokens) }

// Phrase returns the tokens in [start, end) joined by spaces.
func (li *LanguageInfo) Phrase(start, end int) string {
	return strings.Join(li.Tokens[start:end], " ")
}

// LemmaPhrase returns the lemmatized tokens in [start, end) joined by spaces.
func (li *LanguageInfo) LemmaPhrase(start, end int) string {
	return strings.Join(li.LemmaTokens[start:end], " ")
}

// NerTokens returns an abstracted view of the token stream: one NER tag per
// recognized span (tokens that carry a NER value), plain tokens elsewhere.
func (li *LanguageInfo) NerTokens() []string {
	var out []string
	previousTag := ""
	for i := range li.Tokens {
		if li.NerValues[i] != "" {
			if li.NerTags[i] == previousTag {
				continue
			}
			previousTag = li.NerTags[i]
			out = append(out, li.NerTags[i])
		} else {
			previousTag = ""
			out = append(out, li.Tokens[i])
		}
	}
	return out
}

// Clone returns a deep copy. The engine clones before applying destructive
// per-request rewrites so a shared LanguageInfo is never mutated.
func (li *LanguageInfo) Clone() *LanguageInfo {
	cp := &LanguageInfo{
		Tokens:      append([]string(nil), li.Tokens...),
		LemmaTokens: append([]string(nil), li.LemmaTokens...),
		PosTags:     append([]string(nil), li.PosTags...),
		NerTags:     append([]string(nil), li.NerTags...),
		NerValues:   append([]string(nil), li.NerValues...),
		Sentiment:   li.Sentiment,
	}
	return cp
}

// Remove returns a copy with tokens in [start, end) removed.
func (li *LanguageInfo) Remove(start, end int) (*LanguageInfo, error) {
	if start > end || start < 0 || end > li.NumTokens() {
		return nil, fmt.Errorf("%w: bad range [%d, %d) over %d tokens", internalerr.ErrInvalidInput, start, end, li.NumTokens())
	}
	out := New(li.Sentiment)
	for i := 0; i < li.NumTokens(); i++ {
		if i < start || i >= end {
			out.Append(li.Tokens[i], li.LemmaTokens[i], li.PosTags[i], li.NerTags[i], li.NerValues[i])
		}
	}
	return out, nil
}
