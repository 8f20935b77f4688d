// Package keywords derives short keyword lists from book summaries.
//
// Two extractors are provided: a fully offline frequency-based one and an
// optional Gemini-backed one for installations with an API key. Both
// return a comma-separated string, matching how keywords are stored on
// book records.
package keywords

import (
	"context"
	"sort"
	"strings"
)

// DefaultMax is the keyword cap used when callers pass max <= 0.
const DefaultMax = 8

// minTextLen is the shortest summary worth extracting from. Anything
// shorter produces noise, so it yields an empty result instead.
const minTextLen = 30

// Extractor produces up to max keywords from free text.
type Extractor interface {
	Extract(ctx context.Context, text string, max int) (string, error)
}

// Frequency is an offline extractor that scores stopword-filtered
// unigrams and bigrams by occurrence count. Bigrams are weighted double
// so that repeated phrases beat their component words.
type Frequency struct{}

// NewFrequency returns the default offline extractor.
func NewFrequency() *Frequency { return &Frequency{} }

type candidate struct {
	phrase string
	score  int
}

// Extract implements Extractor.
func (f *Frequency) Extract(_ context.Context, text string, max int) (string, error) {
	if max <= 0 {
		max = DefaultMax
	}
	if len(strings.TrimSpace(text)) < minTextLen {
		return "", nil
	}

	tokens := tokenize(text)

	counts := make(map[string]int)
	for i, tok := range tokens {
		if stopwords[tok] {
			continue
		}
		counts[tok]++
		if i+1 < len(tokens) && !stopwords[tokens[i+1]] {
			counts[tok+" "+tokens[i+1]] += 2
		}
	}

	cands := make([]candidate, 0, len(counts))
	for phrase, score := range counts {
		cands = append(cands, candidate{phrase: phrase, score: score})
	}
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].score != cands[j].score {
			return cands[i].score > cands[j].score
		}
		return cands[i].phrase < cands[j].phrase
	})

	if len(cands) > max {
		cands = cands[:max]
	}
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.phrase
	}
	return strings.Join(out, ", "), nil
}

// tokenize lower-cases the text and splits it into alphanumeric runs,
// dropping single-character fragments.
func tokenize(text string) []string {
	var tokens []string
	var b strings.Builder
	flush := func() {
		if b.Len() > 1 {
			tokens = append(tokens, b.String())
		}
		b.Reset()
	}
	for _, r := range strings.ToLower(text) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return tokens
}

// stopwords is a compact English stopword list tuned for publisher blurbs.
var stopwords = map[string]bool{
	"a": true, "about": true, "after": true, "all": true, "also": true,
	"an": true, "and": true, "any": true, "are": true, "as": true,
	"at": true, "be": true, "because": true, "been": true, "before": true,
	"but": true, "by": true, "can": true, "could": true, "did": true,
	"do": true, "does": true, "for": true, "from": true, "had": true,
	"has": true, "have": true, "he": true, "her": true, "here": true,
	"him": true, "his": true, "how": true, "if": true, "in": true,
	"into": true, "is": true, "it": true, "its": true, "just": true,
	"like": true, "more": true, "most": true, "my": true, "no": true,
	"not": true, "now": true, "of": true, "on": true, "one": true,
	"only": true, "or": true, "other": true, "our": true, "out": true,
	"over": true, "own": true, "she": true, "so": true, "some": true,
	"such": true, "than": true, "that": true, "the": true, "their": true,
	"them": true, "then": true, "there": true, "these": true, "they": true,
	"this": true, "through": true, "to": true, "up": true, "was": true,
	"we": true, "were": true, "what": true, "when": true, "where": true,
	"which": true, "while": true, "who": true, "will": true, "with": true,
	"would": true, "you": true, "your": true,
}
