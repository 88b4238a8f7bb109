package text

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/23skdu/meld/internal/corpus"
)

// Config selects the transforms applied to every loaded line.
type Config struct {
	Lowercase  bool
	StripBPE   bool
	Truecase   string // path to a Moses truecaser model
	Detokenize string // language code
	Unescape   bool   // undo Moses entity escapes
	Normalize  bool   // NFC before anything else
}

// Pipeline applies the configured transforms in a fixed order:
// NFC, lowercase, BPE removal, truecasing, detokenization, entity unescape.
// The detokenizer unescapes entities itself, so the last step only runs without it.
type Pipeline struct {
	normalize bool
	lowercase bool
	lower     cases.Caser
	stripBPE  bool
	truecaser *Truecaser
	detok     *Detokenizer
	unescape  bool
}

// NewPipeline validates cfg and loads the truecasing model if one is configured.
func NewPipeline(cfg Config) (*Pipeline, error) {
	p := &Pipeline{
		normalize: cfg.Normalize,
		lowercase: cfg.Lowercase,
		stripBPE:  cfg.StripBPE,
		unescape:  cfg.Unescape,
	}

	tag := language.Und
	if cfg.Detokenize != "" {
		t, err := ParseLanguage("detok", cfg.Detokenize)
		if err != nil {
			return nil, err
		}
		tag = t
		p.detok = newDetokenizer(t)
	}
	if cfg.Lowercase {
		p.lower = cases.Lower(tag)
	}
	if cfg.Truecase != "" {
		tc, err := LoadTruecaser(cfg.Truecase)
		if err != nil {
			return nil, err
		}
		p.truecaser = tc
	}
	return p, nil
}

// WithTruecaser returns a copy of p that uses tc, or no truecasing when tc is nil.
func (p *Pipeline) WithTruecaser(tc *Truecaser) *Pipeline {
	cp := *p
	cp.truecaser = tc
	return &cp
}

// Apply runs one line through the enabled transforms.
func (p *Pipeline) Apply(line string) string {
	if p.normalize {
		line = norm.NFC.String(line)
	}
	if p.lowercase {
		line = p.lower.String(line)
	}
	if p.stripBPE {
		line = StripBPE(line)
	}
	if p.truecaser != nil {
		line = p.truecaser.Truecase(line)
	}
	if p.detok != nil {
		line = p.detok.Detokenize(line)
	}
	if p.unescape && p.detok == nil {
		line = UnescapeMoses(line)
	}
	return line
}

// ApplyAll returns a new corpus of the same length with every line transformed.
func (p *Pipeline) ApplyAll(c corpus.Corpus) corpus.Corpus {
	out := make(corpus.Corpus, len(c))
	for i, line := range c {
		out[i] = p.Apply(line)
	}
	return out
}
