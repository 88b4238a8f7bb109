package corpus

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Corpus is one side of a parallel sentence set, one entry per line.
type Corpus []string

// Named pairs a corpus with the path it was read from, for error reporting.
type Named struct {
	Path  string
	Lines Corpus
}

// maxLineBytes bounds a single sentence. Subtitle and news corpora stay far below it.
const maxLineBytes = 1 << 20

// Load reads a corpus file. Line terminators are removed, nothing else is touched.
func Load(path string) (Corpus, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Path: path, Err: err}
	}
	defer func() { _ = file.Close() }()

	var lines Corpus
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		lines = append(lines, strings.TrimSuffix(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, &IOError{Path: path, Err: err}
	}
	return lines, nil
}

// LoadAll loads every path in order.
func LoadAll(paths []string) ([]Named, error) {
	out := make([]Named, 0, len(paths))
	for _, p := range paths {
		lines, err := Load(p)
		if err != nil {
			return nil, err
		}
		out = append(out, Named{Path: p, Lines: lines})
	}
	return out, nil
}

// CheckLengths verifies that all corpora have the length of the first one.
func CheckLengths(corpora ...Named) error {
	if len(corpora) == 0 {
		return nil
	}
	want := len(corpora[0].Lines)
	for _, c := range corpora[1:] {
		if len(c.Lines) != want {
			return &LengthMismatchError{
				Path:     c.Path,
				Expected: want,
				Got:      len(c.Lines),
				Against:  corpora[0].Path,
			}
		}
	}
	return nil
}

func (n Named) String() string {
	return fmt.Sprintf("%s (%d lines)", n.Path, len(n.Lines))
}
