package text

import (
	"bufio"
	"os"
	"strings"

	"github.com/23skdu/meld/internal/corpus"
)

// Truecaser restores the preferred casing of known words.
type Truecaser struct {
	forms map[string]string
}

// LoadTruecaser reads a Moses truecaser model. The first token of each line is the
// preferred form of that word; the remaining frequency columns are ignored.
func LoadTruecaser(path string) (*Truecaser, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &corpus.IOError{Path: path, Err: err}
	}
	defer func() { _ = file.Close() }()

	forms := make(map[string]string)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		forms[strings.ToLower(fields[0])] = fields[0]
	}
	if err := scanner.Err(); err != nil {
		return nil, &corpus.IOError{Path: path, Err: err}
	}
	return &Truecaser{forms: forms}, nil
}

// NewTruecaser builds a truecaser from preferred word forms.
func NewTruecaser(words ...string) *Truecaser {
	forms := make(map[string]string, len(words))
	for _, w := range words {
		forms[strings.ToLower(w)] = w
	}
	return &Truecaser{forms: forms}
}

// Len returns the number of known words.
func (t *Truecaser) Len() int { return len(t.forms) }

// Truecase rewrites every known word to its preferred form. Words are rejoined with
// single spaces.
func (t *Truecaser) Truecase(line string) string {
	tokens := strings.Fields(line)
	for i, word := range tokens {
		if form, ok := t.forms[strings.ToLower(word)]; ok {
			tokens[i] = form
		}
	}
	return strings.Join(tokens, " ")
}
