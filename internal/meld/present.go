package meld

import (
	"bufio"
	"fmt"
	"io"
)

const (
	// MatchMark prefixes a hypothesis identical to the reference.
	MatchMark = ":-) "
	// NoMark keeps unmarked hypotheses aligned with marked ones.
	NoMark = "    "
)

// Presenter writes the side-by-side listing.
type Presenter struct {
	w *bufio.Writer
}

// NewPresenter returns a presenter writing to w.
func NewPresenter(w io.Writer) *Presenter {
	return &Presenter{w: bufio.NewWriter(w)}
}

// Render writes one block per sentence and flushes.
//
//	Src:     Esto es una prueba
//	Ref:     This is a test
//	MT1: :-) This is a test
//	MT2:     That was a dog
func (p *Presenter) Render(sentences []Sentence) error {
	for _, s := range sentences {
		p.writeSentence(s)
	}
	return p.w.Flush()
}

func (p *Presenter) writeSentence(s Sentence) {
	fmt.Fprintf(p.w, "Src:     %s\n", s.Source)
	fmt.Fprintf(p.w, "Ref:     %s\n", s.Reference)
	for i, h := range s.Hypotheses {
		mark := NoMark
		if h.Match {
			mark = MatchMark
		}
		fmt.Fprintf(p.w, "MT%d: %s%s\n", i+1, mark, h.Text)
	}
	fmt.Fprintln(p.w)
}

// RenderSummary writes the per-hypothesis exact-match counts and flushes.
func (p *Presenter) RenderSummary(sum Summary) error {
	for i, m := range sum.Matches {
		fmt.Fprintf(p.w, "MT%d: %d/%d exact matches (%.1f%%)\n", i+1, m, sum.Sentences, sum.Rate(i)*100)
	}
	return p.w.Flush()
}
