package meld

// Summary counts exact matches per hypothesis.
type Summary struct {
	Sentences int
	Matches   []int
}

// Summarize counts the matches of each hypothesis over sentences.
func Summarize(sentences []Sentence) Summary {
	sum := Summary{Sentences: len(sentences)}
	if len(sentences) == 0 {
		return sum
	}
	sum.Matches = make([]int, len(sentences[0].Hypotheses))
	for _, s := range sentences {
		for i, h := range s.Hypotheses {
			if h.Match {
				sum.Matches[i]++
			}
		}
	}
	return sum
}

// Rate is the share of sentences hypothesis i got exactly right.
func (s Summary) Rate(i int) float64 {
	if s.Sentences == 0 || i < 0 || i >= len(s.Matches) {
		return 0
	}
	return float64(s.Matches[i]) / float64(s.Sentences)
}
