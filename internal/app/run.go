package app

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/rs/zerolog/log"

	"github.com/23skdu/meld/internal/client"
	"github.com/23skdu/meld/internal/corpus"
	"github.com/23skdu/meld/internal/meld"
	"github.com/23skdu/meld/internal/text"
	"github.com/23skdu/meld/internal/translate"
)

// Deps are the collaborators of a run that tests replace with fakes.
type Deps struct {
	Translator translate.Translator
	Sink       client.RecordSink // optional Flight upload
	Alloc      memory.Allocator
}

// Load reads every corpus named in opts.
func Load(opts Options) (Corpora, error) {
	paths := make([]string, 0, 2+len(opts.Hypotheses))
	paths = append(paths, opts.Source, opts.Reference)
	paths = append(paths, opts.Hypotheses...)

	loaded, err := corpus.LoadAll(paths)
	if err != nil {
		return Corpora{}, err
	}
	return Corpora{Source: loaded[0], Reference: loaded[1], Hypotheses: loaded[2:]}, nil
}

// Run executes one meld and writes the result to stdout. All input is loaded,
// checked, translated and compared before the first byte is written.
func Run(ctx context.Context, opts Options, deps Deps, stdout io.Writer) error {
	if err := opts.Validate(); err != nil {
		return err
	}

	corpora, err := Load(opts)
	if err != nil {
		return err
	}
	log.Debug().
		Stringer("source", corpora.Source).
		Stringer("reference", corpora.Reference).
		Int("hypotheses", len(corpora.Hypotheses)).
		Msg("Loaded corpora")

	pipeline, err := text.NewPipeline(opts.Text)
	if err != nil {
		return err
	}

	sentences, err := NewMelder(pipeline, deps.Translator, opts.TranslateLang, opts.Head).Meld(ctx, corpora)
	if err != nil {
		return err
	}
	sentences = meld.Limit(sentences, opts.Head)
	hyps := len(corpora.Hypotheses)
	if opts.TranslateLang != "" {
		hyps++
	}

	sum := meld.Summarize(sentences)
	for i, m := range sum.Matches {
		log.Info().Int("hypothesis", i+1).Int("matches", m).Int("sentences", sum.Sentences).Msg("Exact matches")
	}

	if deps.Sink != nil || opts.Format == FormatArrow {
		if err := emitArrow(ctx, opts, deps, sentences, hyps, stdout); err != nil {
			return err
		}
		if opts.Format == FormatArrow {
			return nil
		}
	}

	// the listing reaches stdout in one piece
	var buf bytes.Buffer
	p := meld.NewPresenter(&buf)
	if err := p.Render(sentences); err != nil {
		return err
	}
	if opts.Summary {
		if err := p.RenderSummary(sum); err != nil {
			return err
		}
	}
	if _, err := buf.WriteTo(stdout); err != nil {
		return fmt.Errorf("write listing: %w", err)
	}
	return nil
}

func emitArrow(ctx context.Context, opts Options, deps Deps, sentences []meld.Sentence, hyps int, stdout io.Writer) error {
	alloc := deps.Alloc
	if alloc == nil {
		alloc = memory.NewGoAllocator()
	}
	rec, err := meld.NewRecordBatchBuilder(alloc).Build(sentences, hyps)
	if err != nil {
		return err
	}
	defer rec.Release()

	if deps.Sink != nil {
		if err := deps.Sink.DoPut(ctx, opts.Dataset, rec); err != nil {
			return err
		}
		log.Info().Int64("rows", rec.NumRows()).Str("dataset", opts.Dataset).Msg("Sent melded sentences")
	}
	if opts.Format == FormatArrow {
		if err := meld.WriteStream(stdout, rec); err != nil {
			return fmt.Errorf("write arrow stream: %w", err)
		}
	}
	return nil
}
