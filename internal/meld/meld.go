// Package meld aligns a source corpus, its reference translation and any number of
// hypothesis corpora sentence by sentence, and renders the result for review.
package meld

import (
	"github.com/23skdu/meld/internal/corpus"
)

// Hypothesis is one system's output for a sentence.
type Hypothesis struct {
	Text  string `cbor:"text" json:"text"`
	Match bool   `cbor:"match" json:"match"`
}

// Sentence is everything shown for one index.
type Sentence struct {
	Index      int          `cbor:"index" json:"index"`
	Source     string       `cbor:"source" json:"source"`
	Reference  string       `cbor:"reference" json:"reference"`
	Hypotheses []Hypothesis `cbor:"hypotheses" json:"hypotheses"`
}

// Input is a fully loaded and preprocessed set of parallel corpora.
type Input struct {
	Source     corpus.Named
	Reference  corpus.Named
	Hypotheses []corpus.Named
}

// Align checks that every corpus has as many lines as the source and pairs them up.
// A hypothesis line matches when it is byte-identical to the reference line.
func Align(in Input) ([]Sentence, error) {
	all := make([]corpus.Named, 0, 2+len(in.Hypotheses))
	all = append(all, in.Source, in.Reference)
	all = append(all, in.Hypotheses...)
	if err := corpus.CheckLengths(all...); err != nil {
		return nil, err
	}

	n := len(in.Source.Lines)
	sentences := make([]Sentence, n)
	for i := 0; i < n; i++ {
		ref := in.Reference.Lines[i]
		hyps := make([]Hypothesis, len(in.Hypotheses))
		for h, hc := range in.Hypotheses {
			hyps[h] = Hypothesis{Text: hc.Lines[i], Match: hc.Lines[i] == ref}
		}
		sentences[i] = Sentence{
			Index:      i,
			Source:     in.Source.Lines[i],
			Reference:  ref,
			Hypotheses: hyps,
		}
	}
	return sentences, nil
}

// Limit returns the first k sentences, or all of them when k <= 0.
func Limit(sentences []Sentence, k int) []Sentence {
	if k <= 0 || k >= len(sentences) {
		return sentences
	}
	return sentences[:k]
}
