package text

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/runes"
)

var (
	// closing attaches to the previous token: ) ] } and sentence punctuation.
	closing = runes.In(unicode.Pe)
	// opening attaches to the next token: ( [ { and inverted marks.
	opening = runes.In(unicode.Ps)
	// currency symbols are written before the amount.
	currency = runes.In(unicode.Sc)
)

// trailingPunct attach to the word on their left in every language.
const trailingPunct = ",.?!:;%…"

// englishClitics are split off by the Moses tokenizer and glued back on the left.
var englishClitics = map[string]bool{
	"'s": true, "'re": true, "'ve": true, "'ll": true, "'d": true, "'m": true, "n't": true,
	"'S": true, "'RE": true, "'VE": true, "'LL": true, "'D": true, "'M": true, "N'T": true,
}

// Detokenizer rejoins Moses-tokenized text for one language.
type Detokenizer struct {
	lang string
}

// NewDetokenizer returns a detokenizer for the given language code.
func NewDetokenizer(code string) (*Detokenizer, error) {
	tag, err := ParseLanguage("detok", code)
	if err != nil {
		return nil, err
	}
	return newDetokenizer(tag), nil
}

func newDetokenizer(tag language.Tag) *Detokenizer {
	return &Detokenizer{lang: baseLanguage(tag)}
}

// Language returns the base language the rules are applied for.
func (d *Detokenizer) Language() string { return d.lang }

// Detokenize joins the whitespace separated tokens of line into running text.
// Moses entity escapes are undone first.
func (d *Detokenizer) Detokenize(line string) string {
	tokens := strings.Fields(UnescapeMoses(line))
	if len(tokens) == 0 {
		return ""
	}

	var b strings.Builder
	b.Grow(len(line))
	sep := ""
	quotes := make(map[string]int)

	for _, tok := range tokens {
		switch {
		case tok == "@-@" || tok == "@/@":
			b.WriteString(tok[1:2])
			sep = ""
		case isAll(tok, currency) || isAll(tok, opening) || tok == "¿" || tok == "¡":
			b.WriteString(sep)
			b.WriteString(tok)
			sep = ""
		case isAll(tok, closing) || isTrailing(tok):
			b.WriteString(tok)
			sep = " "
		case d.lang == "en" && englishClitics[tok]:
			b.WriteString(tok)
			sep = " "
		case (d.lang == "fr" || d.lang == "it") && isElision(tok):
			b.WriteString(sep)
			b.WriteString(tok)
			sep = ""
		case tok == `"` || tok == "'" || tok == "`" || tok == "``" || tok == "''":
			if quotes[tok]%2 == 0 {
				b.WriteString(sep)
				b.WriteString(tok)
				sep = ""
			} else {
				b.WriteString(tok)
				sep = " "
			}
			quotes[tok]++
		default:
			b.WriteString(sep)
			b.WriteString(tok)
			sep = " "
		}
	}
	return b.String()
}

func isAll(tok string, set runes.Set) bool {
	for _, r := range tok {
		if !set.Contains(r) {
			return false
		}
	}
	return true
}

func isTrailing(tok string) bool {
	return strings.Trim(tok, trailingPunct) == ""
}

// isElision matches l' d' qu' and friends.
func isElision(tok string) bool {
	if !strings.HasSuffix(tok, "'") || len(tok) < 2 {
		return false
	}
	for _, r := range strings.TrimSuffix(tok, "'") {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return utf8.RuneCountInString(tok) <= 4
}
